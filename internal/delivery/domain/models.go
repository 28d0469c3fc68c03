package domain

import (
	"time"

	orderdomain "github.com/smallbiznis/vitrine/internal/order/domain"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusInTransit Status = "in_transit"
	StatusDelivered Status = "delivered"
	StatusFailed    Status = "failed"
	StatusReturned  Status = "returned"
)

var statuses = []Status{StatusPending, StatusInTransit, StatusDelivered, StatusFailed, StatusReturned}

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

// Delivery is the shipment of exactly one order.
type Delivery struct {
	ID             int64              `gorm:"primaryKey"`
	OrderID        int64              `gorm:"column:order_id;not null;uniqueIndex:ux_deliveries_order"`
	Order          *orderdomain.Order `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	TrackingNumber string             `gorm:"column:tracking_number;type:varchar(100);not null;uniqueIndex:ux_deliveries_tracking"`
	Status         Status             `gorm:"type:varchar(20);not null;default:'pending';index"`
	Carrier        string             `gorm:"type:varchar(100);not null;default:''"`
	PackageCount   int                `gorm:"column:package_count;not null;default:1"`
	Notes          *string            `gorm:"type:text"`
	ShippedAt      *time.Time         `gorm:"column:shipped_at"`
	DeliveredAt    *time.Time         `gorm:"column:delivered_at"`
	History        []History          `gorm:"foreignKey:DeliveryID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time          `gorm:"not null;index"`
	UpdatedAt      time.Time          `gorm:"not null"`
}

func (Delivery) TableName() string { return "deliveries" }

// History is a staff-written entry in a delivery's log. Entries are never
// edited once written.
type History struct {
	ID          int64     `gorm:"primaryKey"`
	DeliveryID  int64     `gorm:"column:delivery_id;not null;index"`
	Status      Status    `gorm:"type:varchar(20);not null"`
	Description string    `gorm:"type:text;not null"`
	Location    *string   `gorm:"type:varchar(255)"`
	CreatedBy   *string   `gorm:"column:created_by;type:varchar(150)"`
	CreatedAt   time.Time `gorm:"not null;index"`
}

func (History) TableName() string { return "delivery_history" }
