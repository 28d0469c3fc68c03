package domain

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	customerdomain "github.com/smallbiznis/vitrine/internal/customer/domain"
	"github.com/smallbiznis/vitrine/pkg/db/pagination"
)

type Service interface {
	// Create stores the customer, the order and its items in one transaction.
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	// Get accepts either the numeric id or the order number.
	Get(ctx context.Context, id string) (*Response, error)
	List(ctx context.Context, req ListRequest) (*ListResponse, error)
	Confirm(ctx context.Context, id string) (*Response, error)
	Cancel(ctx context.Context, id string) (*Response, error)
	UpdateStatus(ctx context.Context, id string, status string) (*Response, error)
}

type CreateRequest struct {
	customerdomain.CreateCustomerRequest
	Items         []ItemRequest `json:"items"`
	PaymentMethod string        `json:"payment_method"`
	Notes         string        `json:"notes"`
}

// ItemRequest.ProductID accepts a JSON number or a numeric string. Any other
// literal is kept as text and rejected per item by Create.
type ItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

func (r *ItemRequest) UnmarshalJSON(data []byte) error {
	var raw struct {
		ProductID json.RawMessage `json:"product_id"`
		Quantity  int             `json:"quantity"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	r.Quantity = raw.Quantity
	r.ProductID = ""
	id := bytes.TrimSpace(raw.ProductID)
	switch {
	case len(id) == 0, bytes.Equal(id, []byte("null")):
	case id[0] == '"':
		return json.Unmarshal(id, &r.ProductID)
	default:
		r.ProductID = string(id)
	}
	return nil
}

type ListRequest struct {
	Status string
	Search string
	Page   pagination.Pagination
}

type ItemResponse struct {
	ID               string  `json:"id"`
	ProductID        *string `json:"product_id"`
	ProductName      string  `json:"product_name"`
	ProductReference string  `json:"product_reference"`
	UnitPrice        string  `json:"unit_price"`
	Quantity         int     `json:"quantity"`
	TotalPrice       string  `json:"total_price"`
}

type Response struct {
	ID            string                   `json:"id"`
	OrderNumber   string                   `json:"order_number"`
	Status        Status                   `json:"status"`
	PaymentMethod PaymentMethod            `json:"payment_method"`
	Notes         *string                  `json:"notes"`
	Customer      *customerdomain.Response `json:"customer,omitempty"`
	Items         []ItemResponse           `json:"items"`
	Subtotal      string                   `json:"subtotal"`
	ShippingCost  string                   `json:"shipping_cost"`
	Total         string                   `json:"total"`
	ConfirmedAt   *time.Time               `json:"confirmed_at"`
	CreatedAt     time.Time                `json:"created_at"`
	UpdatedAt     time.Time                `json:"updated_at"`
}

type ListResponse struct {
	pagination.PageInfo
	Results []Response `json:"results"`
}
