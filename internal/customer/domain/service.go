package domain

import (
	"context"
	"errors"
	"time"

	"github.com/smallbiznis/vitrine/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListCustomerRequest struct {
	Search      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Page        pagination.Pagination
}

type ListCustomerFilter struct {
	Search      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Offset      int
	Limit       int
}

type ListCustomerResponse struct {
	pagination.PageInfo
	Customers []Response `json:"results"`
}

// CreateCustomerRequest is the contact block of a checkout.
type CreateCustomerRequest struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	Region     string `json:"region"`
	PostalCode string `json:"postal_code"`
}

type Response struct {
	ID         string    `json:"id"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	FullName   string    `json:"full_name"`
	Email      *string   `json:"email"`
	Phone      string    `json:"phone"`
	Address    string    `json:"address"`
	City       string    `json:"city"`
	Region     *string   `json:"region"`
	PostalCode *string   `json:"postal_code"`
	CreatedAt  time.Time `json:"created_at"`
}

type Service interface {
	// Capture validates and inserts a customer inside the caller's transaction.
	Capture(ctx context.Context, tx *gorm.DB, req CreateCustomerRequest) (*Customer, error)
	List(ctx context.Context, req ListCustomerRequest) (*ListCustomerResponse, error)
	GetByID(ctx context.Context, id string) (*Response, error)
}

var (
	ErrInvalidName    = errors.New("invalid_customer_name")
	ErrInvalidEmail   = errors.New("invalid_email")
	ErrInvalidPhone   = errors.New("invalid_phone")
	ErrInvalidAddress = errors.New("invalid_address")
	ErrInvalidCity    = errors.New("invalid_city")
	ErrInvalidID      = errors.New("invalid_id")
	ErrNotFound       = errors.New("not_found")
)
