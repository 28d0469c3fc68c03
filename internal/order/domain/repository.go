package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, order *Order) error
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*Order, error)
	FindByNumber(ctx context.Context, db *gorm.DB, number string) (*Order, error)
	// FindByIDForUpdate locks the order row until the transaction ends.
	FindByIDForUpdate(ctx context.Context, db *gorm.DB, id int64) (*Order, error)
	UpdateStatus(ctx context.Context, db *gorm.DB, order *Order) error
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]Order, int64, error)
}

type ListFilter struct {
	Status Status
	Search string
	Offset int
	Limit  int
}
