package domain

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

type Service interface {
	ListCategories(ctx context.Context, req CategoryListRequest) ([]CategoryResponse, error)
	GetCategory(ctx context.Context, idOrSlug string) (*CategoryResponse, error)
	CreateCategory(ctx context.Context, req CategoryRequest) (*CategoryResponse, error)
	UpdateCategory(ctx context.Context, id string, req CategoryRequest) (*CategoryResponse, error)
	DeleteCategory(ctx context.Context, id string) error

	ListSubCategories(ctx context.Context, req SubCategoryListRequest) ([]SubCategoryResponse, error)
	GetSubCategory(ctx context.Context, idOrSlug string) (*SubCategoryResponse, error)
	CreateSubCategory(ctx context.Context, req SubCategoryRequest) (*SubCategoryResponse, error)
	UpdateSubCategory(ctx context.Context, id string, req SubCategoryRequest) (*SubCategoryResponse, error)
	DeleteSubCategory(ctx context.Context, id string) error

	ListTypes(ctx context.Context, req TypeListRequest) ([]TypeResponse, error)
	CreateType(ctx context.Context, req TypeRequest) (*TypeResponse, error)
	UpdateType(ctx context.Context, id string, req TypeRequest) (*TypeResponse, error)
	DeleteType(ctx context.Context, id string) error

	ListBrands(ctx context.Context, activeOnly bool) ([]BrandResponse, error)
	CreateBrand(ctx context.Context, req BrandRequest) (*BrandResponse, error)
	UpdateBrand(ctx context.Context, id string, req BrandRequest) (*BrandResponse, error)
	DeleteBrand(ctx context.Context, id string) error

	ListCollections(ctx context.Context, activeOnly bool) ([]CollectionResponse, error)
	CreateCollection(ctx context.Context, req CollectionRequest) (*CollectionResponse, error)
	UpdateCollection(ctx context.Context, id string, req CollectionRequest) (*CollectionResponse, error)
	DeleteCollection(ctx context.Context, id string) error
}

// Resolver looks up taxonomy nodes by normalized name inside a caller-owned
// transaction. The bool result reports whether the node was created.
type Resolver interface {
	FindCategory(ctx context.Context, tx *gorm.DB, name string) (*Category, error)
	FindSubCategory(ctx context.Context, tx *gorm.DB, categoryID int64, name string) (*SubCategory, error)
	GetOrCreateCategory(ctx context.Context, tx *gorm.DB, name string) (*Category, bool, error)
	GetOrCreateSubCategory(ctx context.Context, tx *gorm.DB, categoryID int64, name string) (*SubCategory, bool, error)
	GetOrCreateBrand(ctx context.Context, tx *gorm.DB, name string) (*Brand, bool, error)
	GetOrCreateType(ctx context.Context, tx *gorm.DB, subCategoryID int64, brandID *int64, name string) (*Type, bool, error)
	GetOrCreateCollection(ctx context.Context, tx *gorm.DB, name string) (*Collection, bool, error)
}

type CategoryListRequest struct {
	ActiveOnly bool
}

// CategoryRequest is used for both create and partial update; nil fields are left unchanged.
type CategoryRequest struct {
	Name           *string `json:"name"`
	Slug           *string `json:"slug"`
	Image          *string `json:"image"`
	Description    *string `json:"description"`
	Order          *int    `json:"order"`
	IsActive       *bool   `json:"is_active"`
	ShowInAdSlider *bool   `json:"show_in_ad_slider"`
	CollectionID   *string `json:"collection_id"`
}

type SubCategoryListRequest struct {
	Category     string
	HomepageOnly bool
	ActiveOnly   bool
}

type SubCategoryRequest struct {
	CategoryID     *string `json:"category_id"`
	Name           *string `json:"name"`
	Slug           *string `json:"slug"`
	Image          *string `json:"image"`
	Description    *string `json:"description"`
	Order          *int    `json:"order"`
	IsActive       *bool   `json:"is_active"`
	ShowInAdSlider *bool   `json:"show_in_ad_slider"`
	IsEssential    *bool   `json:"is_essential"`
	ShowOnHomepage *bool   `json:"show_on_homepage"`
}

type TypeListRequest struct {
	SubCategory string
	ActiveOnly  bool
}

type TypeRequest struct {
	SubCategoryID *string `json:"subcategory_id"`
	BrandID       *string `json:"brand_id"`
	Name          *string `json:"name"`
	Slug          *string `json:"slug"`
	Description   *string `json:"description"`
	Order         *int    `json:"order"`
	IsActive      *bool   `json:"is_active"`
}

type BrandRequest struct {
	Name        *string `json:"name"`
	Slug        *string `json:"slug"`
	Logo        *string `json:"logo"`
	LogoURL     *string `json:"logo_url"`
	Description *string `json:"description"`
	Order       *int    `json:"order"`
	IsActive    *bool   `json:"is_active"`
}

type CollectionRequest struct {
	Name        *string `json:"name"`
	Slug        *string `json:"slug"`
	Image       *string `json:"image"`
	Description *string `json:"description"`
	Order       *int    `json:"order"`
	IsActive    *bool   `json:"is_active"`
}

type CategoryResponse struct {
	ID             string                `json:"id"`
	Name           string                `json:"name"`
	Slug           string                `json:"slug"`
	Image          *string               `json:"image"`
	Description    *string               `json:"description"`
	Order          int                   `json:"order"`
	IsActive       bool                  `json:"is_active"`
	ShowInAdSlider bool                  `json:"show_in_ad_slider"`
	CollectionID   *string               `json:"collection_id"`
	SubCategories  []SubCategoryResponse `json:"subcategories,omitempty"`
	CreatedAt      time.Time             `json:"created_at"`
	UpdatedAt      time.Time             `json:"updated_at"`
}

type SubCategoryResponse struct {
	ID             string    `json:"id"`
	CategoryID     string    `json:"category_id"`
	CategoryName   string    `json:"category_name,omitempty"`
	CategorySlug   string    `json:"category_slug,omitempty"`
	Name           string    `json:"name"`
	Slug           string    `json:"slug"`
	Image          *string   `json:"image"`
	Description    *string   `json:"description"`
	Order          int       `json:"order"`
	IsActive       bool      `json:"is_active"`
	ShowInAdSlider bool      `json:"show_in_ad_slider"`
	IsEssential    bool      `json:"is_essential"`
	ShowOnHomepage bool      `json:"show_on_homepage"`
	ProductCount   *int64    `json:"product_count,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type TypeResponse struct {
	ID              string    `json:"id"`
	SubCategoryID   string    `json:"subcategory_id"`
	SubCategorySlug string    `json:"subcategory_slug,omitempty"`
	BrandID         *string   `json:"brand_id"`
	Name            string    `json:"name"`
	Slug            string    `json:"slug"`
	Description     *string   `json:"description"`
	Order           int       `json:"order"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type BrandResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Logo        *string   `json:"logo"`
	Description *string   `json:"description"`
	Order       int       `json:"order"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type CollectionResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Image       *string   `json:"image"`
	Description *string   `json:"description"`
	Order       int       `json:"order"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

var (
	ErrNotFound          = errors.New("not_found")
	ErrInvalidID         = errors.New("invalid_id")
	ErrInvalidName       = errors.New("invalid_name")
	ErrInvalidSlug       = errors.New("invalid_slug")
	ErrInvalidCategory   = errors.New("invalid_category")
	ErrInvalidParent     = errors.New("invalid_subcategory")
	ErrInvalidBrand      = errors.New("invalid_brand")
	ErrInvalidCollection = errors.New("invalid_collection")
	ErrDuplicateName     = errors.New("duplicate_name")
	ErrDuplicateSlug     = errors.New("duplicate_slug")
)
