package repository

import (
	"context"
	"errors"

	"github.com/smallbiznis/vitrine/internal/catalogimport/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, run *domain.ImportRun) error {
	return db.WithContext(ctx).Create(run).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*domain.ImportRun, error) {
	var run domain.ImportRun
	err := db.WithContext(ctx).Where("id = ?", id).First(&run).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// List omits the report column; callers fetch it per run.
func (r *repo) List(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.ImportRun, int64, error) {
	stmt := db.WithContext(ctx).Model(&domain.ImportRun{})

	var total int64
	if err := stmt.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []domain.ImportRun
	err := db.WithContext(ctx).
		Omit("report").
		Order("started_at DESC").
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
