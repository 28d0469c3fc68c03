package domain

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Repository persists products. Lookups return nil, nil when no row matches.
type Repository interface {
	Create(ctx context.Context, db *gorm.DB, p *Product) error
	Save(ctx context.Context, db *gorm.DB, p *Product) error
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*Product, error)
	FindBySlug(ctx context.Context, db *gorm.DB, slug string) (*Product, error)
	FindByReference(ctx context.Context, db *gorm.DB, reference string) (*Product, error)
	FindByIDs(ctx context.Context, db *gorm.DB, ids []int64) ([]Product, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]Product, int64, error)
	Curated(ctx context.Context, db *gorm.DB, filter CuratedFilter) ([]Product, error)
	IncrementViews(ctx context.Context, db *gorm.DB, id int64) error
	Delete(ctx context.Context, db *gorm.DB, id int64) error
	SlugExists(ctx context.Context, db *gorm.DB, slug string, excludeID int64) (bool, error)

	ListImages(ctx context.Context, db *gorm.DB, productID int64) ([]ProductImage, error)
	FindImage(ctx context.Context, db *gorm.DB, productID, imageID int64) (*ProductImage, error)
	CreateImage(ctx context.Context, db *gorm.DB, img *ProductImage) error
	SaveImage(ctx context.Context, db *gorm.DB, img *ProductImage) error
	DeleteImage(ctx context.Context, db *gorm.DB, img *ProductImage) error
	// ClearMainImage unsets is_main on every image of the product except keepID.
	ClearMainImage(ctx context.Context, db *gorm.DB, productID, keepID int64) error

	ListSpecs(ctx context.Context, db *gorm.DB, productID int64) ([]ProductSpecification, error)
	ReplaceSpecs(ctx context.Context, db *gorm.DB, productID int64, specs []ProductSpecification) error
}

// ListFilter taxonomy fields match either a slug or a numeric id.
type ListFilter struct {
	Category     string
	SubCategory  string
	Type         string
	Brand        string
	IsBestseller *bool
	IsNew        *bool
	IsFeatured   *bool
	Status       Status
	MinPrice     *decimal.Decimal
	MaxPrice     *decimal.Decimal
	Search       string
	Ordering     string
	Offset       int
	Limit        int
}

type CuratedFilter struct {
	List        CuratedList
	SubCategory string
	Limit       int
}
