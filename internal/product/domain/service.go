package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/vitrine/pkg/db/pagination"
	"gorm.io/gorm"
)

type Service interface {
	List(ctx context.Context, req ListRequest) (*ListResponse, error)
	Curated(ctx context.Context, list CuratedList, req CuratedRequest) ([]Response, error)
	Get(ctx context.Context, id string) (*Response, error)
	// GetBySlug counts a view for every successful lookup.
	GetBySlug(ctx context.Context, slug string) (*Response, error)
	Create(ctx context.Context, req Request) (*Response, error)
	Update(ctx context.Context, id string, req Request) (*Response, error)
	Delete(ctx context.Context, id string) error

	AddImage(ctx context.Context, productID string, req ImageRequest) (*ImageResponse, error)
	UpdateImage(ctx context.Context, productID, imageID string, req ImageRequest) (*ImageResponse, error)
	DeleteImage(ctx context.Context, productID, imageID string) error

	ReplaceSpecifications(ctx context.Context, productID string, specs []SpecRequest) ([]SpecResponse, error)
	SpecificationsFromCharacteristics(ctx context.Context, productID string) ([]SpecResponse, error)
}

// Store is the transaction-scoped write surface for bulk loaders.
type Store interface {
	FindByReference(ctx context.Context, tx *gorm.DB, reference string) (*Product, error)
	// Insert assigns the id, slug and timestamps before writing.
	Insert(ctx context.Context, tx *gorm.DB, p *Product) error
	Save(ctx context.Context, tx *gorm.DB, p *Product) error
	ReplaceSpecs(ctx context.Context, tx *gorm.DB, productID int64, specs []Spec) error
}

type CuratedList string

const (
	CuratedBestsellers   CuratedList = "bestsellers"
	CuratedNew           CuratedList = "new"
	CuratedFeatured      CuratedList = "featured"
	CuratedBySubCategory CuratedList = "by_subcategory"
	CuratedAdSlider      CuratedList = "ad_slider"
)

const (
	DefaultCuratedLimit = 8
	MaxCuratedLimit     = 50
)

type CuratedRequest struct {
	Limit       int
	SubCategory string
}

type ListRequest struct {
	Category     string
	SubCategory  string
	Type         string
	Brand        string
	IsBestseller *bool
	IsNew        *bool
	IsFeatured   *bool
	Status       string
	MinPrice     *decimal.Decimal
	MaxPrice     *decimal.Decimal
	Search       string
	Ordering     string
	Page         pagination.Pagination
}

// Request serves create and partial update. Taxonomy ids accept "" to clear
// the link; a zero discount_price clears the discount.
type Request struct {
	Reference       *string          `json:"reference"`
	Name            *string          `json:"name"`
	MetaTitle       *string          `json:"meta_title"`
	MetaDescription *string          `json:"meta_description"`
	Description     *string          `json:"description"`
	Characteristics *string          `json:"caracteristiques"`
	Price           *decimal.Decimal `json:"price"`
	DiscountPrice   *decimal.Decimal `json:"discount_price"`
	Weight          *string          `json:"weight"`
	Warranty        *string          `json:"warranty"`
	Quantity        *int             `json:"quantity"`
	Status          *string          `json:"status"`
	IsBestseller    *bool            `json:"is_bestseller"`
	IsFeatured      *bool            `json:"is_featured"`
	IsNew           *bool            `json:"is_new"`
	ShowInAdSlider  *bool            `json:"show_in_ad_slider"`
	Image           *string          `json:"image"`
	CategoryID      *string          `json:"category_id"`
	SubCategoryID   *string          `json:"subcategory_id"`
	TypeID          *string          `json:"type_id"`
	BrandID         *string          `json:"brand_id"`
	CollectionID    *string          `json:"collection_id"`
}

type ImageRequest struct {
	Image   *string `json:"image"`
	AltText *string `json:"alt_text"`
	IsMain  *bool   `json:"is_main"`
	Order   *int    `json:"order"`
}

type SpecRequest struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type TaxonRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type ImageResponse struct {
	ID      string  `json:"id"`
	Image   string  `json:"image"`
	AltText *string `json:"alt_text"`
	IsMain  bool    `json:"is_main"`
	Order   int     `json:"order"`
}

type SpecResponse struct {
	Key   string `json:"key"`
	Value string `json:"value"`
	Order int    `json:"order"`
}

type Response struct {
	ID                 string          `json:"id"`
	Reference          string          `json:"reference"`
	Name               string          `json:"name"`
	Slug               string          `json:"slug"`
	MetaTitle          *string         `json:"meta_title"`
	MetaDescription    *string         `json:"meta_description"`
	Description        *string         `json:"description"`
	Characteristics    *string         `json:"caracteristiques"`
	Price              string          `json:"price"`
	DiscountPrice      *string         `json:"discount_price"`
	FinalPrice         string          `json:"final_price"`
	HasDiscount        bool            `json:"has_discount"`
	DiscountPercentage int64           `json:"discount_percentage"`
	Weight             *string         `json:"weight"`
	Warranty           *string         `json:"warranty"`
	Quantity           int             `json:"quantity"`
	Status             Status          `json:"status"`
	IsBestseller       bool            `json:"is_bestseller"`
	IsFeatured         bool            `json:"is_featured"`
	IsNew              bool            `json:"is_new"`
	ShowInAdSlider     bool            `json:"show_in_ad_slider"`
	ViewsCount         int64           `json:"views_count"`
	MainImage          string          `json:"main_image"`
	Category           *TaxonRef       `json:"category"`
	SubCategory        *TaxonRef       `json:"subcategory"`
	Type               *TaxonRef       `json:"type"`
	Brand              *TaxonRef       `json:"brand"`
	Collection         *TaxonRef       `json:"collection"`
	Images             []ImageResponse `json:"images"`
	Specifications     []SpecResponse  `json:"specifications"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

type ListResponse struct {
	pagination.PageInfo
	Results []Response `json:"results"`
}

var (
	ErrNotFound           = errors.New("not_found")
	ErrInvalidID          = errors.New("invalid_id")
	ErrInvalidReference   = errors.New("invalid_reference")
	ErrInvalidName        = errors.New("invalid_name")
	ErrInvalidPrice       = errors.New("invalid_price")
	ErrInvalidDiscount    = errors.New("invalid_discount_price")
	ErrInvalidQuantity    = errors.New("invalid_quantity")
	ErrInvalidStatus      = errors.New("invalid_status")
	ErrInvalidCategory    = errors.New("invalid_category")
	ErrInvalidSubCategory = errors.New("invalid_subcategory")
	ErrInvalidType        = errors.New("invalid_type")
	ErrInvalidBrand       = errors.New("invalid_brand")
	ErrInvalidCollection  = errors.New("invalid_collection")
	ErrInvalidImage       = errors.New("invalid_image")
	ErrInvalidSpec        = errors.New("invalid_specification")
	ErrInvalidCuratedList = errors.New("invalid_list")
	ErrDuplicateReference = errors.New("duplicate_reference")
)
