package domain

import (
	"context"

	"gorm.io/gorm"
)

// Repository persists taxonomy rows. Lookups return nil, nil when no row matches.
type Repository interface {
	CreateCategory(ctx context.Context, db *gorm.DB, c *Category) error
	SaveCategory(ctx context.Context, db *gorm.DB, c *Category) error
	FindCategoryByID(ctx context.Context, db *gorm.DB, id int64) (*Category, error)
	FindCategoryBySlug(ctx context.Context, db *gorm.DB, slug string) (*Category, error)
	FindCategoryByKey(ctx context.Context, db *gorm.DB, nameKey string) (*Category, error)
	ListCategories(ctx context.Context, db *gorm.DB, activeOnly, withSubCategories bool) ([]Category, error)
	DeleteCategory(ctx context.Context, db *gorm.DB, id int64) error

	CreateSubCategory(ctx context.Context, db *gorm.DB, s *SubCategory) error
	SaveSubCategory(ctx context.Context, db *gorm.DB, s *SubCategory) error
	FindSubCategoryByID(ctx context.Context, db *gorm.DB, id int64) (*SubCategory, error)
	FindSubCategoryBySlug(ctx context.Context, db *gorm.DB, slug string) (*SubCategory, error)
	FindSubCategoryByKey(ctx context.Context, db *gorm.DB, categoryID int64, nameKey string) (*SubCategory, error)
	ListSubCategories(ctx context.Context, db *gorm.DB, filter SubCategoryFilter) ([]SubCategory, error)
	DeleteSubCategory(ctx context.Context, db *gorm.DB, id int64) error
	CountInStock(ctx context.Context, db *gorm.DB, subCategoryIDs []int64) (map[int64]int64, error)

	CreateType(ctx context.Context, db *gorm.DB, t *Type) error
	SaveType(ctx context.Context, db *gorm.DB, t *Type) error
	FindTypeByID(ctx context.Context, db *gorm.DB, id int64) (*Type, error)
	FindTypeByKey(ctx context.Context, db *gorm.DB, subCategoryID int64, nameKey string) (*Type, error)
	ListTypes(ctx context.Context, db *gorm.DB, subCategoryID *int64, activeOnly bool) ([]Type, error)
	DeleteType(ctx context.Context, db *gorm.DB, id int64) error

	CreateBrand(ctx context.Context, db *gorm.DB, b *Brand) error
	SaveBrand(ctx context.Context, db *gorm.DB, b *Brand) error
	FindBrandByID(ctx context.Context, db *gorm.DB, id int64) (*Brand, error)
	FindBrandByKey(ctx context.Context, db *gorm.DB, nameKey string) (*Brand, error)
	ListBrands(ctx context.Context, db *gorm.DB, activeOnly bool) ([]Brand, error)
	DeleteBrand(ctx context.Context, db *gorm.DB, id int64) error

	CreateCollection(ctx context.Context, db *gorm.DB, c *Collection) error
	SaveCollection(ctx context.Context, db *gorm.DB, c *Collection) error
	FindCollectionByID(ctx context.Context, db *gorm.DB, id int64) (*Collection, error)
	FindCollectionByKey(ctx context.Context, db *gorm.DB, nameKey string) (*Collection, error)
	ListCollections(ctx context.Context, db *gorm.DB, activeOnly bool) ([]Collection, error)
	DeleteCollection(ctx context.Context, db *gorm.DB, id int64) error

	// SlugExists checks one of the taxonomy tables for a slug.
	SlugExists(ctx context.Context, db *gorm.DB, table, slug string, excludeID int64) (bool, error)
}

type SubCategoryFilter struct {
	CategoryID   *int64
	HomepageOnly bool
	ActiveOnly   bool
	WithCategory bool
}
