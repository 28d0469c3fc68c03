package domain

import "time"

type Category struct {
	ID             int64         `gorm:"primaryKey"`
	Name           string        `gorm:"type:varchar(150);not null"`
	NameKey        string        `gorm:"column:name_key;type:varchar(150);not null;uniqueIndex:ux_categories_name_key"`
	Slug           string        `gorm:"type:varchar(180);not null;uniqueIndex:ux_categories_slug"`
	Image          *string       `gorm:"type:varchar(255)"`
	Description    *string       `gorm:"type:text"`
	SortOrder      int           `gorm:"column:sort_order;not null;default:0"`
	IsActive       bool          `gorm:"not null;default:true"`
	ShowInAdSlider bool          `gorm:"column:show_in_ad_slider;not null;default:false"`
	CollectionID   *int64        `gorm:"column:collection_id;index"`
	Collection     *Collection   `gorm:"foreignKey:CollectionID;constraint:OnDelete:SET NULL"`
	SubCategories  []SubCategory `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time     `gorm:"not null"`
	UpdatedAt      time.Time     `gorm:"not null"`
}

func (Category) TableName() string { return "categories" }

// SubCategory names are unique within their category.
type SubCategory struct {
	ID             int64     `gorm:"primaryKey"`
	CategoryID     int64     `gorm:"column:category_id;not null;uniqueIndex:ux_subcategories_category_name,priority:1"`
	Category       *Category `gorm:"foreignKey:CategoryID"`
	Name           string    `gorm:"type:varchar(150);not null"`
	NameKey        string    `gorm:"column:name_key;type:varchar(150);not null;uniqueIndex:ux_subcategories_category_name,priority:2"`
	Slug           string    `gorm:"type:varchar(180);not null;uniqueIndex:ux_subcategories_slug"`
	Image          *string   `gorm:"type:varchar(255)"`
	Description    *string   `gorm:"type:text"`
	SortOrder      int       `gorm:"column:sort_order;not null;default:0"`
	IsActive       bool      `gorm:"not null;default:true"`
	ShowInAdSlider bool      `gorm:"column:show_in_ad_slider;not null;default:false"`
	IsEssential    bool      `gorm:"column:is_essential;not null;default:false"`
	ShowOnHomepage bool      `gorm:"column:show_on_homepage;not null;default:false"`
	Types          []Type    `gorm:"foreignKey:SubCategoryID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time `gorm:"not null"`
	UpdatedAt      time.Time `gorm:"not null"`
}

func (SubCategory) TableName() string { return "subcategories" }

// Type is a product model label within a subcategory.
type Type struct {
	ID            int64        `gorm:"primaryKey"`
	SubCategoryID int64        `gorm:"column:subcategory_id;not null;uniqueIndex:ux_types_subcategory_name,priority:1"`
	SubCategory   *SubCategory `gorm:"foreignKey:SubCategoryID"`
	BrandID       *int64       `gorm:"column:brand_id;index"`
	Brand         *Brand       `gorm:"foreignKey:BrandID;constraint:OnDelete:SET NULL"`
	Name          string       `gorm:"type:varchar(150);not null"`
	NameKey       string       `gorm:"column:name_key;type:varchar(150);not null;uniqueIndex:ux_types_subcategory_name,priority:2"`
	Slug          string       `gorm:"type:varchar(180);not null;uniqueIndex:ux_types_slug"`
	Description   *string      `gorm:"type:text"`
	SortOrder     int          `gorm:"column:sort_order;not null;default:0"`
	IsActive      bool         `gorm:"not null;default:true"`
	CreatedAt     time.Time    `gorm:"not null"`
	UpdatedAt     time.Time    `gorm:"not null"`
}

func (Type) TableName() string { return "types" }

type Brand struct {
	ID          int64     `gorm:"primaryKey"`
	Name        string    `gorm:"type:varchar(150);not null"`
	NameKey     string    `gorm:"column:name_key;type:varchar(150);not null;uniqueIndex:ux_brands_name_key"`
	Slug        string    `gorm:"type:varchar(180);not null;uniqueIndex:ux_brands_slug"`
	Logo        *string   `gorm:"type:varchar(255)"`
	LogoURL     *string   `gorm:"column:logo_url;type:varchar(500)"`
	Description *string   `gorm:"type:text"`
	SortOrder   int       `gorm:"column:sort_order;not null;default:0"`
	IsActive    bool      `gorm:"not null;default:true"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}

func (Brand) TableName() string { return "brands" }

// LogoRef prefers an uploaded file over an external URL.
func (b *Brand) LogoRef() *string {
	if b.Logo != nil && *b.Logo != "" {
		return b.Logo
	}
	return b.LogoURL
}

type Collection struct {
	ID          int64     `gorm:"primaryKey"`
	Name        string    `gorm:"type:varchar(150);not null"`
	NameKey     string    `gorm:"column:name_key;type:varchar(150);not null;uniqueIndex:ux_collections_name_key"`
	Slug        string    `gorm:"type:varchar(180);not null;uniqueIndex:ux_collections_slug"`
	Image       *string   `gorm:"type:varchar(255)"`
	Description *string   `gorm:"type:text"`
	SortOrder   int       `gorm:"column:sort_order;not null;default:0"`
	IsActive    bool      `gorm:"not null;default:true"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}

func (Collection) TableName() string { return "collections" }
