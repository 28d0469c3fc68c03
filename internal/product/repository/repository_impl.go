package repository

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/smallbiznis/vitrine/internal/product/domain"
	"github.com/smallbiznis/vitrine/pkg/db/option"
	"gorm.io/gorm"
)

const effectivePrice = "(CASE WHEN discount_price IS NOT NULL AND discount_price < price THEN discount_price ELSE price END)"

var orderingFields = map[string]bool{
	"price":       true,
	"name":        true,
	"created_at":  true,
	"views_count": true,
}

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func withRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Category").
		Preload("SubCategory").
		Preload("Type").
		Preload("Brand").
		Preload("Collection").
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC, id ASC")
		})
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, p *domain.Product) error {
	return db.WithContext(ctx).Omit(clauseAssociations...).Create(p).Error
}

func (r *repo) Save(ctx context.Context, db *gorm.DB, p *domain.Product) error {
	if p == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Omit(clauseAssociations...).Save(p).Error
}

var clauseAssociations = []string{"Category", "SubCategory", "Type", "Brand", "Collection", "Images", "Specifications"}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*domain.Product, error) {
	return r.findOne(ctx, withRelations(db).Preload("Specifications", orderSpecs), "id = ?", id)
}

func (r *repo) FindBySlug(ctx context.Context, db *gorm.DB, slug string) (*domain.Product, error) {
	return r.findOne(ctx, withRelations(db).Preload("Specifications", orderSpecs), "slug = ?", slug)
}

func (r *repo) FindByReference(ctx context.Context, db *gorm.DB, reference string) (*domain.Product, error) {
	return r.findOne(ctx, db, "reference = ?", reference)
}

func (r *repo) findOne(ctx context.Context, db *gorm.DB, query string, args ...any) (*domain.Product, error) {
	var p domain.Product
	err := db.WithContext(ctx).Where(query, args...).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func orderSpecs(db *gorm.DB) *gorm.DB {
	return db.Order("sort_order ASC, id ASC")
}

func (r *repo) FindByIDs(ctx context.Context, db *gorm.DB, ids []int64) ([]domain.Product, error) {
	var items []domain.Product
	if len(ids) == 0 {
		return items, nil
	}
	if err := db.WithContext(ctx).Where("id IN ?", ids).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]domain.Product, int64, error) {
	stmt := db.WithContext(ctx).Model(&domain.Product{})
	stmt = matchTaxon(stmt, "category_id", "categories", filter.Category)
	stmt = matchTaxon(stmt, "subcategory_id", "subcategories", filter.SubCategory)
	stmt = matchTaxon(stmt, "type_id", "types", filter.Type)
	stmt = matchTaxon(stmt, "brand_id", "brands", filter.Brand)

	if filter.IsBestseller != nil {
		stmt = stmt.Where("is_bestseller = ?", *filter.IsBestseller)
	}
	if filter.IsNew != nil {
		stmt = stmt.Where("is_new = ?", *filter.IsNew)
	}
	if filter.IsFeatured != nil {
		stmt = stmt.Where("is_featured = ?", *filter.IsFeatured)
	}
	if filter.Status != "" {
		stmt = option.ApplyOperator(option.Condition{Field: "status", Operator: option.EQ, Value: filter.Status}).Apply(stmt)
	}
	if filter.MinPrice != nil {
		stmt = option.ApplyOperator(option.Condition{Field: effectivePrice, Operator: option.GTE, Value: filter.MinPrice.InexactFloat64()}).Apply(stmt)
	}
	if filter.MaxPrice != nil {
		stmt = option.ApplyOperator(option.Condition{Field: effectivePrice, Operator: option.LTE, Value: filter.MaxPrice.InexactFloat64()}).Apply(stmt)
	}
	if search := strings.ToLower(strings.TrimSpace(filter.Search)); search != "" {
		pattern := "%" + search + "%"
		stmt = stmt.Where(
			"LOWER(name) LIKE ? OR LOWER(description) LIKE ? OR LOWER(reference) LIKE ? OR brand_id IN (?)",
			pattern, pattern, pattern,
			db.WithContext(ctx).Table("brands").Select("id").Where("LOWER(name) LIKE ?", pattern),
		)
	}
	stmt = stmt.Session(&gorm.Session{})

	var total int64
	if err := stmt.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sort := option.ParseOrdering(filter.Ordering, orderingFields)
	sort.Default = "created_at DESC"
	query := stmt
	if sort.Field == "price" {
		dir := " ASC"
		if sort.Desc {
			dir = " DESC"
		}
		query = query.Order(effectivePrice + dir)
	} else {
		query = option.WithSortBy(sort).Apply(query)
	}
	query = option.WithOffset(filter.Offset).Apply(query.Order("id DESC"))
	query = option.WithLimit(filter.Limit).Apply(query)

	var items []domain.Product
	if err := withRelations(query).Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// matchTaxon filters column by a taxonomy node given as slug or numeric id.
func matchTaxon(stmt *gorm.DB, column, table, value string) *gorm.DB {
	value = strings.TrimSpace(value)
	if value == "" {
		return stmt
	}
	bySlug := stmt.Session(&gorm.Session{NewDB: true}).Table(table).Select("id").Where("slug = ?", value)
	if id, err := strconv.ParseInt(value, 10, 64); err == nil {
		return stmt.Where(column+" = ? OR "+column+" IN (?)", id, bySlug)
	}
	return stmt.Where(column+" IN (?)", bySlug)
}

func (r *repo) Curated(ctx context.Context, db *gorm.DB, filter domain.CuratedFilter) ([]domain.Product, error) {
	stmt := db.WithContext(ctx).Model(&domain.Product{}).
		Where("status <> ?", domain.StatusDiscontinued)

	switch filter.List {
	case domain.CuratedBestsellers:
		stmt = stmt.Where("is_bestseller = ?", true)
	case domain.CuratedNew:
		stmt = stmt.Where("is_new = ?", true)
	case domain.CuratedFeatured:
		stmt = stmt.Where("is_featured = ?", true)
	case domain.CuratedAdSlider:
		stmt = stmt.Where("show_in_ad_slider = ?", true)
	case domain.CuratedBySubCategory:
		stmt = matchTaxon(stmt, "subcategory_id", "subcategories", filter.SubCategory)
	default:
		return nil, domain.ErrInvalidCuratedList
	}

	var items []domain.Product
	err := withRelations(stmt).
		Order("created_at DESC").
		Order("id DESC").
		Limit(filter.Limit).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) IncrementViews(ctx context.Context, db *gorm.DB, id int64) error {
	return db.WithContext(ctx).
		Model(&domain.Product{}).
		Where("id = ?", id).
		UpdateColumn("views_count", gorm.Expr("views_count + ?", 1)).Error
}

// Delete removes the product with its gallery and specifications. Order
// lines keep their snapshot and lose the product link.
func (r *repo) Delete(ctx context.Context, db *gorm.DB, id int64) error {
	tx := db.WithContext(ctx)
	if err := tx.Where("product_id = ?", id).Delete(&domain.ProductImage{}).Error; err != nil {
		return err
	}
	if err := tx.Where("product_id = ?", id).Delete(&domain.ProductSpecification{}).Error; err != nil {
		return err
	}
	if tx.Migrator().HasTable("order_items") {
		if err := tx.Table("order_items").Where("product_id = ?", id).Update("product_id", nil).Error; err != nil {
			return err
		}
	}
	return tx.Delete(&domain.Product{}, "id = ?", id).Error
}

func (r *repo) SlugExists(ctx context.Context, db *gorm.DB, slug string, excludeID int64) (bool, error) {
	var count int64
	stmt := db.WithContext(ctx).Model(&domain.Product{}).Where("slug = ?", slug)
	if excludeID != 0 {
		stmt = stmt.Where("id <> ?", excludeID)
	}
	if err := stmt.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repo) ListImages(ctx context.Context, db *gorm.DB, productID int64) ([]domain.ProductImage, error) {
	var items []domain.ProductImage
	err := db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("sort_order ASC, id ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) FindImage(ctx context.Context, db *gorm.DB, productID, imageID int64) (*domain.ProductImage, error) {
	var img domain.ProductImage
	err := db.WithContext(ctx).Where("product_id = ? AND id = ?", productID, imageID).First(&img).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &img, nil
}

func (r *repo) CreateImage(ctx context.Context, db *gorm.DB, img *domain.ProductImage) error {
	return db.WithContext(ctx).Create(img).Error
}

func (r *repo) SaveImage(ctx context.Context, db *gorm.DB, img *domain.ProductImage) error {
	return db.WithContext(ctx).Save(img).Error
}

func (r *repo) DeleteImage(ctx context.Context, db *gorm.DB, img *domain.ProductImage) error {
	return db.WithContext(ctx).Delete(img).Error
}

func (r *repo) ClearMainImage(ctx context.Context, db *gorm.DB, productID, keepID int64) error {
	return db.WithContext(ctx).
		Model(&domain.ProductImage{}).
		Where("product_id = ? AND id <> ? AND is_main = ?", productID, keepID, true).
		Update("is_main", false).Error
}

func (r *repo) ListSpecs(ctx context.Context, db *gorm.DB, productID int64) ([]domain.ProductSpecification, error) {
	var items []domain.ProductSpecification
	err := orderSpecs(db.WithContext(ctx).Where("product_id = ?", productID)).Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) ReplaceSpecs(ctx context.Context, db *gorm.DB, productID int64, specs []domain.ProductSpecification) error {
	tx := db.WithContext(ctx)
	if err := tx.Where("product_id = ?", productID).Delete(&domain.ProductSpecification{}).Error; err != nil {
		return err
	}
	if len(specs) == 0 {
		return nil
	}
	return tx.Create(&specs).Error
}
