package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/smallbiznis/vitrine/internal/order/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func withRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Customer").
		Preload("Items", func(tx *gorm.DB) *gorm.DB { return tx.Order("id ASC") })
}

// Create writes the order and its items; the customer row must already exist.
func (r *repo) Create(ctx context.Context, db *gorm.DB, order *domain.Order) error {
	return db.WithContext(ctx).Omit("Customer").Create(order).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*domain.Order, error) {
	return r.findOne(withRelations(db.WithContext(ctx)), "id = ?", id)
}

func (r *repo) FindByNumber(ctx context.Context, db *gorm.DB, number string) (*domain.Order, error) {
	return r.findOne(withRelations(db.WithContext(ctx)), "order_number = ?", number)
}

func (r *repo) FindByIDForUpdate(ctx context.Context, db *gorm.DB, id int64) (*domain.Order, error) {
	return r.findOne(db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), "id = ?", id)
}

func (r *repo) findOne(stmt *gorm.DB, query string, args ...any) (*domain.Order, error) {
	var order domain.Order
	err := stmt.Where(query, args...).First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, order *domain.Order) error {
	return db.WithContext(ctx).
		Model(&domain.Order{}).
		Where("id = ?", order.ID).
		Updates(map[string]any{
			"status":       order.Status,
			"confirmed_at": order.ConfirmedAt,
			"updated_at":   order.UpdatedAt,
		}).Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]domain.Order, int64, error) {
	stmt := db.WithContext(ctx).Model(&domain.Order{})
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		customers := db.Session(&gorm.Session{NewDB: true}).
			Table("customers").
			Select("id").
			Where("LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR phone LIKE ?", like, like, like)
		stmt = stmt.Where("LOWER(order_number) LIKE ? OR customer_id IN (?)", like, customers)
	}

	var total int64
	if err := stmt.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []domain.Order
	err := withRelations(stmt).
		Order("created_at DESC").
		Order("id DESC").
		Offset(filter.Offset).
		Limit(filter.Limit).
		Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}
