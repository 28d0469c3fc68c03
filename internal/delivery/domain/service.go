package domain

import (
	"context"
	"io"
	"time"

	"github.com/smallbiznis/vitrine/pkg/db/pagination"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	Get(ctx context.Context, id string) (*Response, error)
	// Track looks a delivery up by tracking number and includes its history.
	Track(ctx context.Context, trackingNumber string) (*Response, error)
	List(ctx context.Context, req ListRequest) (*ListResponse, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*Response, error)
	UpdateStatus(ctx context.Context, id string, status string) (*Response, error)
	Delete(ctx context.Context, id string) error

	AddHistory(ctx context.Context, id string, req HistoryRequest) (*HistoryResponse, error)
	ListHistory(ctx context.Context, id string) ([]HistoryResponse, error)

	// Slip renders the printable delivery slip as a PDF.
	Slip(ctx context.Context, id string) (io.Reader, string, error)
}

type CreateRequest struct {
	OrderID        string `json:"order_id"`
	TrackingNumber string `json:"tracking_number"`
	Carrier        string `json:"carrier"`
	PackageCount   *int   `json:"package_count"`
	Status         string `json:"status"`
	Notes          string `json:"notes"`
}

// UpdateRequest changes only the fields that are set.
type UpdateRequest struct {
	TrackingNumber *string `json:"tracking_number"`
	Carrier        *string `json:"carrier"`
	PackageCount   *int    `json:"package_count"`
	Notes          *string `json:"notes"`
}

type HistoryRequest struct {
	Status      string `json:"status"`
	Description string `json:"description"`
	Location    string `json:"location"`
	CreatedBy   string `json:"-"`
}

type ListRequest struct {
	Status  string
	Carrier string
	Search  string
	Page    pagination.Pagination
}

type HistoryResponse struct {
	ID          string    `json:"id"`
	Status      Status    `json:"status"`
	Description string    `json:"description"`
	Location    *string   `json:"location"`
	CreatedBy   *string   `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

type Response struct {
	ID             string            `json:"id"`
	OrderID        string            `json:"order_id"`
	OrderNumber    string            `json:"order_number,omitempty"`
	TrackingNumber string            `json:"tracking_number"`
	Status         Status            `json:"status"`
	Carrier        string            `json:"carrier"`
	PackageCount   int               `json:"package_count"`
	Notes          *string           `json:"notes"`
	ShippedAt      *time.Time        `json:"shipped_at"`
	DeliveredAt    *time.Time        `json:"delivered_at"`
	History        []HistoryResponse `json:"history,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

type ListResponse struct {
	pagination.PageInfo
	Results []Response `json:"results"`
}
