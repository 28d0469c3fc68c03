package repository

import (
	"context"
	"errors"

	"github.com/smallbiznis/vitrine/internal/taxonomy/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func first[T any](ctx context.Context, db *gorm.DB, query string, args ...any) (*T, error) {
	var out T
	err := db.WithContext(ctx).Where(query, args...).Take(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func orderByRank(db *gorm.DB) *gorm.DB {
	return db.Order("sort_order ASC").Order("name ASC")
}

// ---- categories ----

func (r *repo) CreateCategory(ctx context.Context, db *gorm.DB, c *domain.Category) error {
	return db.WithContext(ctx).Omit("Collection", "SubCategories").Create(c).Error
}

func (r *repo) SaveCategory(ctx context.Context, db *gorm.DB, c *domain.Category) error {
	return db.WithContext(ctx).Omit("Collection", "SubCategories").Save(c).Error
}

func (r *repo) FindCategoryByID(ctx context.Context, db *gorm.DB, id int64) (*domain.Category, error) {
	return first[domain.Category](ctx, db, "id = ?", id)
}

func (r *repo) FindCategoryBySlug(ctx context.Context, db *gorm.DB, slug string) (*domain.Category, error) {
	return first[domain.Category](ctx, db, "slug = ?", slug)
}

func (r *repo) FindCategoryByKey(ctx context.Context, db *gorm.DB, nameKey string) (*domain.Category, error) {
	return first[domain.Category](ctx, db, "name_key = ?", nameKey)
}

func (r *repo) ListCategories(ctx context.Context, db *gorm.DB, activeOnly, withSubCategories bool) ([]domain.Category, error) {
	stmt := orderByRank(db.WithContext(ctx).Model(&domain.Category{}))
	if activeOnly {
		stmt = stmt.Where("is_active = ?", true)
	}
	if withSubCategories {
		stmt = stmt.Preload("SubCategories", func(tx *gorm.DB) *gorm.DB {
			if activeOnly {
				tx = tx.Where("is_active = ?", true)
			}
			return orderByRank(tx)
		})
	}
	var items []domain.Category
	if err := stmt.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// DeleteCategory removes the category with its subcategories and their types.
// Products keep their rows with the affected references cleared.
func (r *repo) DeleteCategory(ctx context.Context, db *gorm.DB, id int64) error {
	tx := db.WithContext(ctx)
	subIDs := tx.Model(&domain.SubCategory{}).Select("id").Where("category_id = ?", id)
	typeIDs := tx.Model(&domain.Type{}).Select("id").Where("subcategory_id IN (?)", subIDs)

	if err := tx.Table("products").Where("type_id IN (?)", typeIDs).Update("type_id", nil).Error; err != nil {
		return err
	}
	if err := tx.Table("products").Where("subcategory_id IN (?)", subIDs).Update("subcategory_id", nil).Error; err != nil {
		return err
	}
	if err := tx.Table("products").Where("category_id = ?", id).Update("category_id", nil).Error; err != nil {
		return err
	}
	if err := tx.Where("subcategory_id IN (?)", subIDs).Delete(&domain.Type{}).Error; err != nil {
		return err
	}
	if err := tx.Where("category_id = ?", id).Delete(&domain.SubCategory{}).Error; err != nil {
		return err
	}
	return tx.Where("id = ?", id).Delete(&domain.Category{}).Error
}

// ---- subcategories ----

func (r *repo) CreateSubCategory(ctx context.Context, db *gorm.DB, s *domain.SubCategory) error {
	return db.WithContext(ctx).Omit("Category", "Types").Create(s).Error
}

func (r *repo) SaveSubCategory(ctx context.Context, db *gorm.DB, s *domain.SubCategory) error {
	return db.WithContext(ctx).Omit("Category", "Types").Save(s).Error
}

func (r *repo) FindSubCategoryByID(ctx context.Context, db *gorm.DB, id int64) (*domain.SubCategory, error) {
	return first[domain.SubCategory](ctx, db.Preload("Category"), "id = ?", id)
}

func (r *repo) FindSubCategoryBySlug(ctx context.Context, db *gorm.DB, slug string) (*domain.SubCategory, error) {
	return first[domain.SubCategory](ctx, db.Preload("Category"), "slug = ?", slug)
}

func (r *repo) FindSubCategoryByKey(ctx context.Context, db *gorm.DB, categoryID int64, nameKey string) (*domain.SubCategory, error) {
	return first[domain.SubCategory](ctx, db, "category_id = ? AND name_key = ?", categoryID, nameKey)
}

func (r *repo) ListSubCategories(ctx context.Context, db *gorm.DB, filter domain.SubCategoryFilter) ([]domain.SubCategory, error) {
	stmt := orderByRank(db.WithContext(ctx).Model(&domain.SubCategory{}))
	if filter.CategoryID != nil {
		stmt = stmt.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.HomepageOnly {
		stmt = stmt.Where("show_on_homepage = ?", true)
	}
	if filter.ActiveOnly {
		stmt = stmt.Where("is_active = ?", true)
	}
	if filter.WithCategory {
		stmt = stmt.Preload("Category")
	}
	var items []domain.SubCategory
	if err := stmt.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) DeleteSubCategory(ctx context.Context, db *gorm.DB, id int64) error {
	tx := db.WithContext(ctx)
	typeIDs := tx.Model(&domain.Type{}).Select("id").Where("subcategory_id = ?", id)

	if err := tx.Table("products").Where("type_id IN (?)", typeIDs).Update("type_id", nil).Error; err != nil {
		return err
	}
	if err := tx.Table("products").Where("subcategory_id = ?", id).Update("subcategory_id", nil).Error; err != nil {
		return err
	}
	if err := tx.Where("subcategory_id = ?", id).Delete(&domain.Type{}).Error; err != nil {
		return err
	}
	return tx.Where("id = ?", id).Delete(&domain.SubCategory{}).Error
}

type inStockCount struct {
	SubCategoryID int64 `gorm:"column:subcategory_id"`
	Total         int64 `gorm:"column:total"`
}

func (r *repo) CountInStock(ctx context.Context, db *gorm.DB, subCategoryIDs []int64) (map[int64]int64, error) {
	counts := make(map[int64]int64, len(subCategoryIDs))
	if len(subCategoryIDs) == 0 {
		return counts, nil
	}
	var rows []inStockCount
	err := db.WithContext(ctx).
		Table("products").
		Select("subcategory_id, COUNT(*) AS total").
		Where("status = ? AND subcategory_id IN ?", "in_stock", subCategoryIDs).
		Group("subcategory_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.SubCategoryID] = row.Total
	}
	return counts, nil
}

// ---- types ----

func (r *repo) CreateType(ctx context.Context, db *gorm.DB, t *domain.Type) error {
	return db.WithContext(ctx).Omit("SubCategory", "Brand").Create(t).Error
}

func (r *repo) SaveType(ctx context.Context, db *gorm.DB, t *domain.Type) error {
	return db.WithContext(ctx).Omit("SubCategory", "Brand").Save(t).Error
}

func (r *repo) FindTypeByID(ctx context.Context, db *gorm.DB, id int64) (*domain.Type, error) {
	return first[domain.Type](ctx, db.Preload("SubCategory"), "id = ?", id)
}

func (r *repo) FindTypeByKey(ctx context.Context, db *gorm.DB, subCategoryID int64, nameKey string) (*domain.Type, error) {
	return first[domain.Type](ctx, db, "subcategory_id = ? AND name_key = ?", subCategoryID, nameKey)
}

func (r *repo) ListTypes(ctx context.Context, db *gorm.DB, subCategoryID *int64, activeOnly bool) ([]domain.Type, error) {
	stmt := orderByRank(db.WithContext(ctx).Model(&domain.Type{})).Preload("SubCategory")
	if subCategoryID != nil {
		stmt = stmt.Where("subcategory_id = ?", *subCategoryID)
	}
	if activeOnly {
		stmt = stmt.Where("is_active = ?", true)
	}
	var items []domain.Type
	if err := stmt.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) DeleteType(ctx context.Context, db *gorm.DB, id int64) error {
	tx := db.WithContext(ctx)
	if err := tx.Table("products").Where("type_id = ?", id).Update("type_id", nil).Error; err != nil {
		return err
	}
	return tx.Where("id = ?", id).Delete(&domain.Type{}).Error
}

// ---- brands ----

func (r *repo) CreateBrand(ctx context.Context, db *gorm.DB, b *domain.Brand) error {
	return db.WithContext(ctx).Create(b).Error
}

func (r *repo) SaveBrand(ctx context.Context, db *gorm.DB, b *domain.Brand) error {
	return db.WithContext(ctx).Save(b).Error
}

func (r *repo) FindBrandByID(ctx context.Context, db *gorm.DB, id int64) (*domain.Brand, error) {
	return first[domain.Brand](ctx, db, "id = ?", id)
}

func (r *repo) FindBrandByKey(ctx context.Context, db *gorm.DB, nameKey string) (*domain.Brand, error) {
	return first[domain.Brand](ctx, db, "name_key = ?", nameKey)
}

func (r *repo) ListBrands(ctx context.Context, db *gorm.DB, activeOnly bool) ([]domain.Brand, error) {
	stmt := orderByRank(db.WithContext(ctx).Model(&domain.Brand{}))
	if activeOnly {
		stmt = stmt.Where("is_active = ?", true)
	}
	var items []domain.Brand
	if err := stmt.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) DeleteBrand(ctx context.Context, db *gorm.DB, id int64) error {
	tx := db.WithContext(ctx)
	if err := tx.Table("products").Where("brand_id = ?", id).Update("brand_id", nil).Error; err != nil {
		return err
	}
	if err := tx.Model(&domain.Type{}).Where("brand_id = ?", id).Update("brand_id", nil).Error; err != nil {
		return err
	}
	return tx.Where("id = ?", id).Delete(&domain.Brand{}).Error
}

// ---- collections ----

func (r *repo) CreateCollection(ctx context.Context, db *gorm.DB, c *domain.Collection) error {
	return db.WithContext(ctx).Create(c).Error
}

func (r *repo) SaveCollection(ctx context.Context, db *gorm.DB, c *domain.Collection) error {
	return db.WithContext(ctx).Save(c).Error
}

func (r *repo) FindCollectionByID(ctx context.Context, db *gorm.DB, id int64) (*domain.Collection, error) {
	return first[domain.Collection](ctx, db, "id = ?", id)
}

func (r *repo) FindCollectionByKey(ctx context.Context, db *gorm.DB, nameKey string) (*domain.Collection, error) {
	return first[domain.Collection](ctx, db, "name_key = ?", nameKey)
}

func (r *repo) ListCollections(ctx context.Context, db *gorm.DB, activeOnly bool) ([]domain.Collection, error) {
	stmt := orderByRank(db.WithContext(ctx).Model(&domain.Collection{}))
	if activeOnly {
		stmt = stmt.Where("is_active = ?", true)
	}
	var items []domain.Collection
	if err := stmt.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) DeleteCollection(ctx context.Context, db *gorm.DB, id int64) error {
	tx := db.WithContext(ctx)
	if err := tx.Table("products").Where("collection_id = ?", id).Update("collection_id", nil).Error; err != nil {
		return err
	}
	if err := tx.Model(&domain.Category{}).Where("collection_id = ?", id).Update("collection_id", nil).Error; err != nil {
		return err
	}
	return tx.Where("id = ?", id).Delete(&domain.Collection{}).Error
}

func (r *repo) SlugExists(ctx context.Context, db *gorm.DB, table, slug string, excludeID int64) (bool, error) {
	stmt := db.WithContext(ctx).Table(table).Where("slug = ?", slug)
	if excludeID != 0 {
		stmt = stmt.Where("id <> ?", excludeID)
	}
	var count int64
	if err := stmt.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
