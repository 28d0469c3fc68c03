package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, run *ImportRun) error
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*ImportRun, error)
	List(ctx context.Context, db *gorm.DB, offset, limit int) ([]ImportRun, int64, error)
}
