package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/smallbiznis/vitrine/internal/delivery/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, delivery *domain.Delivery) error {
	return db.WithContext(ctx).Omit("Order", "History").Create(delivery).Error
}

func (r *repo) Save(ctx context.Context, db *gorm.DB, delivery *domain.Delivery) error {
	return db.WithContext(ctx).Omit("Order", "History").Save(delivery).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id int64) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("delivery_id = ?", id).Delete(&domain.History{}).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Delivery{}, id).Error
	})
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*domain.Delivery, error) {
	return r.findOne(db.WithContext(ctx).Preload("Order"), "id = ?", id)
}

func (r *repo) FindByIDForUpdate(ctx context.Context, db *gorm.DB, id int64) (*domain.Delivery, error) {
	return r.findOne(db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), "id = ?", id)
}

func (r *repo) FindByOrderID(ctx context.Context, db *gorm.DB, orderID int64) (*domain.Delivery, error) {
	return r.findOne(db.WithContext(ctx), "order_id = ?", orderID)
}

func (r *repo) FindByTracking(ctx context.Context, db *gorm.DB, tracking string) (*domain.Delivery, error) {
	return r.findOne(db.WithContext(ctx).Preload("Order"), "tracking_number = ?", tracking)
}

func (r *repo) findOne(stmt *gorm.DB, query string, args ...any) (*domain.Delivery, error) {
	var delivery domain.Delivery
	err := stmt.Where(query, args...).First(&delivery).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &delivery, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]domain.Delivery, int64, error) {
	stmt := db.WithContext(ctx).Model(&domain.Delivery{})
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.Carrier != "" {
		stmt = stmt.Where("LOWER(carrier) = ?", strings.ToLower(filter.Carrier))
	}
	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		orders := db.Session(&gorm.Session{NewDB: true}).
			Table("orders").
			Select("id").
			Where("LOWER(order_number) LIKE ?", like)
		stmt = stmt.Where("LOWER(tracking_number) LIKE ? OR order_id IN (?)", like, orders)
	}

	var total int64
	if err := stmt.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var deliveries []domain.Delivery
	err := stmt.
		Preload("Order").
		Order("created_at DESC").
		Order("id DESC").
		Offset(filter.Offset).
		Limit(filter.Limit).
		Find(&deliveries).Error
	if err != nil {
		return nil, 0, err
	}
	return deliveries, total, nil
}

func (r *repo) AppendHistory(ctx context.Context, db *gorm.DB, entry *domain.History) error {
	return db.WithContext(ctx).Create(entry).Error
}

func (r *repo) ListHistory(ctx context.Context, db *gorm.DB, deliveryID int64) ([]domain.History, error) {
	var entries []domain.History
	err := db.WithContext(ctx).
		Where("delivery_id = ?", deliveryID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&entries).Error
	return entries, err
}
