package domain

import (
	"time"

	"github.com/shopspring/decimal"
	taxdomain "github.com/smallbiznis/vitrine/internal/taxonomy/domain"
)

type Status string

const (
	StatusInStock      Status = "in_stock"
	StatusOutOfStock   Status = "out_of_stock"
	StatusPreorder     Status = "preorder"
	StatusDiscontinued Status = "discontinued"
)

func (s Status) Valid() bool {
	switch s {
	case StatusInStock, StatusOutOfStock, StatusPreorder, StatusDiscontinued:
		return true
	}
	return false
}

// DefaultStatus is the creation-time status for a stock level.
func DefaultStatus(quantity int) Status {
	if quantity == 0 {
		return StatusOutOfStock
	}
	return StatusInStock
}

// Product is keyed by Reference for every import and update path.
type Product struct {
	ID              int64               `gorm:"primaryKey"`
	Reference       string              `gorm:"type:varchar(100);not null;uniqueIndex:ux_products_reference"`
	Name            string              `gorm:"type:varchar(255);not null"`
	Slug            string              `gorm:"type:varchar(300);not null;uniqueIndex:ux_products_slug"`
	MetaTitle       *string             `gorm:"column:meta_title;type:varchar(255)"`
	MetaDescription *string             `gorm:"column:meta_description;type:text"`
	Description     *string             `gorm:"type:text"`
	Characteristics *string             `gorm:"column:caracteristiques;type:text"`
	Price           decimal.Decimal     `gorm:"type:decimal(12,2);not null"`
	DiscountPrice   decimal.NullDecimal `gorm:"column:discount_price;type:decimal(12,2)"`
	Weight          *string             `gorm:"type:varchar(50)"`
	Warranty        *string             `gorm:"type:varchar(100)"`
	Quantity        int                 `gorm:"not null;default:0"`
	Status          Status              `gorm:"type:varchar(20);not null;default:'in_stock';index"`
	IsBestseller    bool                `gorm:"column:is_bestseller;not null;default:false"`
	IsFeatured      bool                `gorm:"column:is_featured;not null;default:false"`
	IsNew           bool                `gorm:"column:is_new;not null;default:false"`
	ShowInAdSlider  bool                `gorm:"column:show_in_ad_slider;not null;default:false"`
	ViewsCount      int64               `gorm:"column:views_count;not null;default:0"`
	// Image is the single picture kept from before the gallery existed.
	Image *string `gorm:"type:varchar(255)"`

	CategoryID    *int64                 `gorm:"column:category_id;index"`
	Category      *taxdomain.Category    `gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL"`
	SubCategoryID *int64                 `gorm:"column:subcategory_id;index"`
	SubCategory   *taxdomain.SubCategory `gorm:"foreignKey:SubCategoryID;constraint:OnDelete:SET NULL"`
	TypeID        *int64                 `gorm:"column:type_id;index"`
	Type          *taxdomain.Type        `gorm:"foreignKey:TypeID;constraint:OnDelete:SET NULL"`
	BrandID       *int64                 `gorm:"column:brand_id;index"`
	Brand         *taxdomain.Brand       `gorm:"foreignKey:BrandID;constraint:OnDelete:SET NULL"`
	CollectionID  *int64                 `gorm:"column:collection_id;index"`
	Collection    *taxdomain.Collection  `gorm:"foreignKey:CollectionID;constraint:OnDelete:SET NULL"`

	Images         []ProductImage         `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Specifications []ProductSpecification `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"not null;index"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (Product) TableName() string { return "products" }

// Validate checks the row-level invariants shared by admin writes and imports.
func (p *Product) Validate() error {
	switch {
	case p.Reference == "":
		return ErrInvalidReference
	case p.Name == "":
		return ErrInvalidName
	case p.Price.IsNegative():
		return ErrInvalidPrice
	case p.DiscountPrice.Valid && p.DiscountPrice.Decimal.IsNegative():
		return ErrInvalidDiscount
	case p.Quantity < 0:
		return ErrInvalidQuantity
	case !p.Status.Valid():
		return ErrInvalidStatus
	}
	return nil
}

type ProductImage struct {
	ID        int64     `gorm:"primaryKey"`
	ProductID int64     `gorm:"column:product_id;not null;index"`
	Image     string    `gorm:"type:varchar(255);not null"`
	AltText   *string   `gorm:"column:alt_text;type:varchar(255)"`
	IsMain    bool      `gorm:"column:is_main;not null;default:false"`
	SortOrder int       `gorm:"column:sort_order;not null;default:0"`
	CreatedAt time.Time `gorm:"not null"`
}

func (ProductImage) TableName() string { return "product_images" }

type ProductSpecification struct {
	ID        int64  `gorm:"primaryKey"`
	ProductID int64  `gorm:"column:product_id;not null;index"`
	Key       string `gorm:"column:spec_key;type:varchar(150);not null"`
	Value     string `gorm:"column:spec_value;type:text;not null"`
	SortOrder int    `gorm:"column:sort_order;not null;default:0"`
}

func (ProductSpecification) TableName() string { return "product_specifications" }
