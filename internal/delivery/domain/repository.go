package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, delivery *Delivery) error
	Save(ctx context.Context, db *gorm.DB, delivery *Delivery) error
	Delete(ctx context.Context, db *gorm.DB, id int64) error
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*Delivery, error)
	FindByIDForUpdate(ctx context.Context, db *gorm.DB, id int64) (*Delivery, error)
	FindByOrderID(ctx context.Context, db *gorm.DB, orderID int64) (*Delivery, error)
	FindByTracking(ctx context.Context, db *gorm.DB, tracking string) (*Delivery, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]Delivery, int64, error)

	AppendHistory(ctx context.Context, db *gorm.DB, entry *History) error
	ListHistory(ctx context.Context, db *gorm.DB, deliveryID int64) ([]History, error)
}

type ListFilter struct {
	Status  Status
	Carrier string
	Search  string
	Offset  int
	Limit   int
}
