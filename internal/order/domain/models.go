package domain

import (
	"time"

	"github.com/shopspring/decimal"
	customerdomain "github.com/smallbiznis/vitrine/internal/customer/domain"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusPreparing Status = "preparing"
	StatusReady     Status = "ready"
	StatusShipped   Status = "shipped"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

var statuses = []Status{
	StatusPending, StatusConfirmed, StatusPreparing, StatusReady,
	StatusShipped, StatusDelivered, StatusCancelled,
}

func Statuses() []Status {
	out := make([]Status, len(statuses))
	copy(out, statuses)
	return out
}

func (s Status) Valid() bool {
	for _, candidate := range statuses {
		if s == candidate {
			return true
		}
	}
	return false
}

func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// Cancellable reports whether an order in s may still be cancelled.
func (s Status) Cancellable() bool {
	return s == StatusPending || s == StatusConfirmed
}

type PaymentMethod string

const (
	PaymentCashOnDelivery PaymentMethod = "cash_on_delivery"
	PaymentBankTransfer   PaymentMethod = "bank_transfer"
	PaymentCard           PaymentMethod = "card"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCashOnDelivery, PaymentBankTransfer, PaymentCard:
		return true
	}
	return false
}

type Order struct {
	ID            int64                    `gorm:"primaryKey"`
	OrderNumber   string                   `gorm:"column:order_number;type:varchar(40);not null;uniqueIndex:ux_orders_number"`
	CustomerID    int64                    `gorm:"column:customer_id;not null;index"`
	Customer      *customerdomain.Customer `gorm:"foreignKey:CustomerID;constraint:OnDelete:RESTRICT"`
	Status        Status                   `gorm:"type:varchar(20);not null;default:'pending';index"`
	PaymentMethod PaymentMethod            `gorm:"column:payment_method;type:varchar(30);not null"`
	Notes         *string                  `gorm:"type:text"`
	Subtotal      decimal.Decimal          `gorm:"type:decimal(12,2);not null"`
	ShippingCost  decimal.Decimal          `gorm:"column:shipping_cost;type:decimal(12,2);not null"`
	Total         decimal.Decimal          `gorm:"type:decimal(12,2);not null"`
	ConfirmedAt   *time.Time               `gorm:"column:confirmed_at"`
	Items         []OrderItem              `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time                `gorm:"not null;index"`
	UpdatedAt     time.Time                `gorm:"not null"`
}

func (Order) TableName() string { return "orders" }

// OrderItem snapshots the product at checkout. ProductID becomes NULL when
// the product is deleted; the snapshot columns keep the order readable.
type OrderItem struct {
	ID               int64           `gorm:"primaryKey"`
	OrderID          int64           `gorm:"column:order_id;not null;index"`
	ProductID        *int64          `gorm:"column:product_id;index"`
	ProductName      string          `gorm:"column:product_name;type:varchar(255);not null"`
	ProductReference string          `gorm:"column:product_reference;type:varchar(100);not null"`
	UnitPrice        decimal.Decimal `gorm:"column:unit_price;type:decimal(12,2);not null"`
	Quantity         int             `gorm:"not null"`
	TotalPrice       decimal.Decimal `gorm:"column:total_price;type:decimal(12,2);not null"`
}

func (OrderItem) TableName() string { return "order_items" }
