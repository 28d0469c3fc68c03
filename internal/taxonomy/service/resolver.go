package service

import (
	"context"

	"github.com/smallbiznis/vitrine/internal/taxonomy/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func (s *Service) FindCategory(ctx context.Context, tx *gorm.DB, name string) (*domain.Category, error) {
	return s.repo.FindCategoryByKey(ctx, tx, domain.NormalizeName(name))
}

func (s *Service) FindSubCategory(ctx context.Context, tx *gorm.DB, categoryID int64, name string) (*domain.SubCategory, error) {
	return s.repo.FindSubCategoryByKey(ctx, tx, categoryID, domain.NormalizeName(name))
}

func (s *Service) GetOrCreateCategory(ctx context.Context, tx *gorm.DB, name string) (*domain.Category, bool, error) {
	name, key, err := resolveName(name)
	if err != nil {
		return nil, false, err
	}
	existing, err := s.repo.FindCategoryByKey(ctx, tx, key)
	if err != nil || existing != nil {
		return existing, false, err
	}

	now := s.clock.Now()
	item := &domain.Category{
		ID:        s.genID.Generate().Int64(),
		Name:      name,
		NameKey:   key,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if item.Slug, err = s.resolveSlug(ctx, tx, "categories", nil, name, 0); err != nil {
		return nil, false, err
	}
	if err := s.repo.CreateCategory(ctx, tx, item); err != nil {
		return nil, false, translateDuplicate(err)
	}
	s.log.Info("category created", zap.String("name", name), zap.String("slug", item.Slug))
	return item, true, nil
}

func (s *Service) GetOrCreateSubCategory(ctx context.Context, tx *gorm.DB, categoryID int64, name string) (*domain.SubCategory, bool, error) {
	name, key, err := resolveName(name)
	if err != nil {
		return nil, false, err
	}
	existing, err := s.repo.FindSubCategoryByKey(ctx, tx, categoryID, key)
	if err != nil || existing != nil {
		return existing, false, err
	}

	now := s.clock.Now()
	item := &domain.SubCategory{
		ID:         s.genID.Generate().Int64(),
		CategoryID: categoryID,
		Name:       name,
		NameKey:    key,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if item.Slug, err = s.resolveSlug(ctx, tx, "subcategories", nil, name, 0); err != nil {
		return nil, false, err
	}
	if err := s.repo.CreateSubCategory(ctx, tx, item); err != nil {
		return nil, false, translateDuplicate(err)
	}
	s.log.Info("subcategory created", zap.String("name", name), zap.Int64("category_id", categoryID))
	return item, true, nil
}

func (s *Service) GetOrCreateBrand(ctx context.Context, tx *gorm.DB, name string) (*domain.Brand, bool, error) {
	name, key, err := resolveName(name)
	if err != nil {
		return nil, false, err
	}
	existing, err := s.repo.FindBrandByKey(ctx, tx, key)
	if err != nil || existing != nil {
		return existing, false, err
	}

	now := s.clock.Now()
	item := &domain.Brand{
		ID:        s.genID.Generate().Int64(),
		Name:      name,
		NameKey:   key,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if item.Slug, err = s.resolveSlug(ctx, tx, "brands", nil, name, 0); err != nil {
		return nil, false, err
	}
	if err := s.repo.CreateBrand(ctx, tx, item); err != nil {
		return nil, false, translateDuplicate(err)
	}
	return item, true, nil
}

// GetOrCreateType keeps an existing type's brand untouched; brandID only
// applies when the type is created.
func (s *Service) GetOrCreateType(ctx context.Context, tx *gorm.DB, subCategoryID int64, brandID *int64, name string) (*domain.Type, bool, error) {
	name, key, err := resolveName(name)
	if err != nil {
		return nil, false, err
	}
	existing, err := s.repo.FindTypeByKey(ctx, tx, subCategoryID, key)
	if err != nil || existing != nil {
		return existing, false, err
	}

	now := s.clock.Now()
	item := &domain.Type{
		ID:            s.genID.Generate().Int64(),
		SubCategoryID: subCategoryID,
		BrandID:       brandID,
		Name:          name,
		NameKey:       key,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if item.Slug, err = s.resolveSlug(ctx, tx, "types", nil, name, 0); err != nil {
		return nil, false, err
	}
	if err := s.repo.CreateType(ctx, tx, item); err != nil {
		return nil, false, translateDuplicate(err)
	}
	return item, true, nil
}

func (s *Service) GetOrCreateCollection(ctx context.Context, tx *gorm.DB, name string) (*domain.Collection, bool, error) {
	name, key, err := resolveName(name)
	if err != nil {
		return nil, false, err
	}
	existing, err := s.repo.FindCollectionByKey(ctx, tx, key)
	if err != nil || existing != nil {
		return existing, false, err
	}

	now := s.clock.Now()
	item := &domain.Collection{
		ID:        s.genID.Generate().Int64(),
		Name:      name,
		NameKey:   key,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if item.Slug, err = s.resolveSlug(ctx, tx, "collections", nil, name, 0); err != nil {
		return nil, false, err
	}
	if err := s.repo.CreateCollection(ctx, tx, item); err != nil {
		return nil, false, translateDuplicate(err)
	}
	return item, true, nil
}

func resolveName(raw string) (string, string, error) {
	name, err := requireName(&raw)
	if err != nil {
		return "", "", err
	}
	key := domain.NormalizeName(name)
	if key == "" {
		return "", "", domain.ErrInvalidName
	}
	return name, key, nil
}
