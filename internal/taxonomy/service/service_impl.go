package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/vitrine/internal/clock"
	"github.com/smallbiznis/vitrine/internal/taxonomy/domain"
	"github.com/smallbiznis/vitrine/pkg/db"
	"github.com/smallbiznis/vitrine/pkg/slugger"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const maxNameLength = 150

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return newService(p)
}

func NewResolver(p Params) domain.Resolver {
	return newService(p)
}

func newService(p Params) *Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("taxonomy.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

// ---- categories ----

func (s *Service) ListCategories(ctx context.Context, req domain.CategoryListRequest) ([]domain.CategoryResponse, error) {
	items, err := s.repo.ListCategories(ctx, s.db, req.ActiveOnly, true)
	if err != nil {
		return nil, err
	}
	resp := make([]domain.CategoryResponse, 0, len(items))
	for i := range items {
		resp = append(resp, toCategoryResponse(&items[i]))
	}
	return resp, nil
}

func (s *Service) GetCategory(ctx context.Context, idOrSlug string) (*domain.CategoryResponse, error) {
	item, err := s.lookupCategory(ctx, s.db, idOrSlug)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	subs, err := s.repo.ListSubCategories(ctx, s.db, domain.SubCategoryFilter{CategoryID: &item.ID, ActiveOnly: true})
	if err != nil {
		return nil, err
	}
	item.SubCategories = subs
	resp := toCategoryResponse(item)
	return &resp, nil
}

func (s *Service) CreateCategory(ctx context.Context, req domain.CategoryRequest) (*domain.CategoryResponse, error) {
	name, err := requireName(req.Name)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	item := &domain.Category{
		ID:        s.genID.Generate().Int64(),
		Name:      name,
		NameKey:   domain.NormalizeName(name),
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	applyCategoryFields(item, req)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if existing, err := s.repo.FindCategoryByKey(ctx, tx, item.NameKey); err != nil {
			return err
		} else if existing != nil {
			return domain.ErrDuplicateName
		}
		if err := s.applyCollection(ctx, tx, &item.CollectionID, req.CollectionID); err != nil {
			return err
		}
		if item.Slug, err = s.resolveSlug(ctx, tx, "categories", req.Slug, name, 0); err != nil {
			return err
		}
		return translateDuplicate(s.repo.CreateCategory(ctx, tx, item))
	})
	if err != nil {
		return nil, err
	}
	resp := toCategoryResponse(item)
	return &resp, nil
}

func (s *Service) UpdateCategory(ctx context.Context, id string, req domain.CategoryRequest) (*domain.CategoryResponse, error) {
	categoryID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	var item *domain.Category
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item, err = s.repo.FindCategoryByID(ctx, tx, categoryID)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound
		}
		if req.Name != nil {
			name, err := requireName(req.Name)
			if err != nil {
				return err
			}
			key := domain.NormalizeName(name)
			if existing, err := s.repo.FindCategoryByKey(ctx, tx, key); err != nil {
				return err
			} else if existing != nil && existing.ID != item.ID {
				return domain.ErrDuplicateName
			}
			item.Name, item.NameKey = name, key
		}
		if req.Slug != nil {
			if item.Slug, err = s.resolveSlug(ctx, tx, "categories", req.Slug, item.Name, item.ID); err != nil {
				return err
			}
		}
		if err := s.applyCollection(ctx, tx, &item.CollectionID, req.CollectionID); err != nil {
			return err
		}
		applyCategoryFields(item, req)
		item.UpdatedAt = s.clock.Now()
		return translateDuplicate(s.repo.SaveCategory(ctx, tx, item))
	})
	if err != nil {
		return nil, err
	}
	resp := toCategoryResponse(item)
	return &resp, nil
}

func (s *Service) DeleteCategory(ctx context.Context, id string) error {
	categoryID, err := parseID(id)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item, err := s.repo.FindCategoryByID(ctx, tx, categoryID)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound
		}
		if err := s.repo.DeleteCategory(ctx, tx, categoryID); err != nil {
			return err
		}
		s.log.Info("category deleted", zap.Int64("category_id", categoryID), zap.String("slug", item.Slug))
		return nil
	})
}

func (s *Service) lookupCategory(ctx context.Context, tx *gorm.DB, idOrSlug string) (*domain.Category, error) {
	idOrSlug = strings.TrimSpace(idOrSlug)
	if idOrSlug == "" {
		return nil, nil
	}
	if id, err := strconv.ParseInt(idOrSlug, 10, 64); err == nil {
		item, err := s.repo.FindCategoryByID(ctx, tx, id)
		if err != nil || item != nil {
			return item, err
		}
	}
	return s.repo.FindCategoryBySlug(ctx, tx, idOrSlug)
}

func applyCategoryFields(item *domain.Category, req domain.CategoryRequest) {
	if req.Image != nil {
		item.Image = optionalString(*req.Image)
	}
	if req.Description != nil {
		item.Description = optionalString(*req.Description)
	}
	if req.Order != nil {
		item.SortOrder = *req.Order
	}
	if req.IsActive != nil {
		item.IsActive = *req.IsActive
	}
	if req.ShowInAdSlider != nil {
		item.ShowInAdSlider = *req.ShowInAdSlider
	}
}

// ---- subcategories ----

func (s *Service) ListSubCategories(ctx context.Context, req domain.SubCategoryListRequest) ([]domain.SubCategoryResponse, error) {
	filter := domain.SubCategoryFilter{
		HomepageOnly: req.HomepageOnly,
		ActiveOnly:   req.ActiveOnly,
		WithCategory: true,
	}
	if strings.TrimSpace(req.Category) != "" {
		category, err := s.lookupCategory(ctx, s.db, req.Category)
		if err != nil {
			return nil, err
		}
		if category == nil {
			return []domain.SubCategoryResponse{}, nil
		}
		filter.CategoryID = &category.ID
	}

	items, err := s.repo.ListSubCategories(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	counts, err := s.repo.CountInStock(ctx, s.db, ids)
	if err != nil {
		return nil, err
	}

	resp := make([]domain.SubCategoryResponse, 0, len(items))
	for i := range items {
		r := toSubCategoryResponse(&items[i])
		count := counts[items[i].ID]
		r.ProductCount = &count
		resp = append(resp, r)
	}
	return resp, nil
}

func (s *Service) GetSubCategory(ctx context.Context, idOrSlug string) (*domain.SubCategoryResponse, error) {
	item, err := s.lookupSubCategory(ctx, s.db, idOrSlug)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	counts, err := s.repo.CountInStock(ctx, s.db, []int64{item.ID})
	if err != nil {
		return nil, err
	}
	resp := toSubCategoryResponse(item)
	count := counts[item.ID]
	resp.ProductCount = &count
	return &resp, nil
}

func (s *Service) CreateSubCategory(ctx context.Context, req domain.SubCategoryRequest) (*domain.SubCategoryResponse, error) {
	name, err := requireName(req.Name)
	if err != nil {
		return nil, err
	}
	if req.CategoryID == nil {
		return nil, domain.ErrInvalidCategory
	}
	categoryID, err := parseID(*req.CategoryID)
	if err != nil {
		return nil, domain.ErrInvalidCategory
	}

	now := s.clock.Now()
	item := &domain.SubCategory{
		ID:         s.genID.Generate().Int64(),
		CategoryID: categoryID,
		Name:       name,
		NameKey:    domain.NormalizeName(name),
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	applySubCategoryFields(item, req)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		category, err := s.repo.FindCategoryByID(ctx, tx, categoryID)
		if err != nil {
			return err
		}
		if category == nil {
			return domain.ErrInvalidCategory
		}
		item.Category = category
		if existing, err := s.repo.FindSubCategoryByKey(ctx, tx, categoryID, item.NameKey); err != nil {
			return err
		} else if existing != nil {
			return domain.ErrDuplicateName
		}
		if item.Slug, err = s.resolveSlug(ctx, tx, "subcategories", req.Slug, name, 0); err != nil {
			return err
		}
		return translateDuplicate(s.repo.CreateSubCategory(ctx, tx, item))
	})
	if err != nil {
		return nil, err
	}
	resp := toSubCategoryResponse(item)
	return &resp, nil
}

func (s *Service) UpdateSubCategory(ctx context.Context, id string, req domain.SubCategoryRequest) (*domain.SubCategoryResponse, error) {
	subID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	var item *domain.SubCategory
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item, err = s.repo.FindSubCategoryByID(ctx, tx, subID)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound
		}
		if req.CategoryID != nil {
			categoryID, err := parseID(*req.CategoryID)
			if err != nil {
				return domain.ErrInvalidCategory
			}
			category, err := s.repo.FindCategoryByID(ctx, tx, categoryID)
			if err != nil {
				return err
			}
			if category == nil {
				return domain.ErrInvalidCategory
			}
			item.CategoryID, item.Category = categoryID, category
		}
		if req.Name != nil {
			name, err := requireName(req.Name)
			if err != nil {
				return err
			}
			item.Name, item.NameKey = name, domain.NormalizeName(name)
		}
		if existing, err := s.repo.FindSubCategoryByKey(ctx, tx, item.CategoryID, item.NameKey); err != nil {
			return err
		} else if existing != nil && existing.ID != item.ID {
			return domain.ErrDuplicateName
		}
		if req.Slug != nil {
			if item.Slug, err = s.resolveSlug(ctx, tx, "subcategories", req.Slug, item.Name, item.ID); err != nil {
				return err
			}
		}
		applySubCategoryFields(item, req)
		item.UpdatedAt = s.clock.Now()
		return translateDuplicate(s.repo.SaveSubCategory(ctx, tx, item))
	})
	if err != nil {
		return nil, err
	}
	resp := toSubCategoryResponse(item)
	return &resp, nil
}

func (s *Service) DeleteSubCategory(ctx context.Context, id string) error {
	subID, err := parseID(id)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item, err := s.repo.FindSubCategoryByID(ctx, tx, subID)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound
		}
		return s.repo.DeleteSubCategory(ctx, tx, subID)
	})
}

func (s *Service) lookupSubCategory(ctx context.Context, tx *gorm.DB, idOrSlug string) (*domain.SubCategory, error) {
	idOrSlug = strings.TrimSpace(idOrSlug)
	if idOrSlug == "" {
		return nil, nil
	}
	if id, err := strconv.ParseInt(idOrSlug, 10, 64); err == nil {
		item, err := s.repo.FindSubCategoryByID(ctx, tx, id)
		if err != nil || item != nil {
			return item, err
		}
	}
	return s.repo.FindSubCategoryBySlug(ctx, tx, idOrSlug)
}

func applySubCategoryFields(item *domain.SubCategory, req domain.SubCategoryRequest) {
	if req.Image != nil {
		item.Image = optionalString(*req.Image)
	}
	if req.Description != nil {
		item.Description = optionalString(*req.Description)
	}
	if req.Order != nil {
		item.SortOrder = *req.Order
	}
	if req.IsActive != nil {
		item.IsActive = *req.IsActive
	}
	if req.ShowInAdSlider != nil {
		item.ShowInAdSlider = *req.ShowInAdSlider
	}
	if req.IsEssential != nil {
		item.IsEssential = *req.IsEssential
	}
	if req.ShowOnHomepage != nil {
		item.ShowOnHomepage = *req.ShowOnHomepage
	}
}

// ---- types ----

func (s *Service) ListTypes(ctx context.Context, req domain.TypeListRequest) ([]domain.TypeResponse, error) {
	var subID *int64
	if strings.TrimSpace(req.SubCategory) != "" {
		sub, err := s.lookupSubCategory(ctx, s.db, req.SubCategory)
		if err != nil {
			return nil, err
		}
		if sub == nil {
			return []domain.TypeResponse{}, nil
		}
		subID = &sub.ID
	}
	items, err := s.repo.ListTypes(ctx, s.db, subID, req.ActiveOnly)
	if err != nil {
		return nil, err
	}
	resp := make([]domain.TypeResponse, 0, len(items))
	for i := range items {
		resp = append(resp, toTypeResponse(&items[i]))
	}
	return resp, nil
}

func (s *Service) CreateType(ctx context.Context, req domain.TypeRequest) (*domain.TypeResponse, error) {
	name, err := requireName(req.Name)
	if err != nil {
		return nil, err
	}
	if req.SubCategoryID == nil {
		return nil, domain.ErrInvalidParent
	}
	subID, err := parseID(*req.SubCategoryID)
	if err != nil {
		return nil, domain.ErrInvalidParent
	}

	now := s.clock.Now()
	item := &domain.Type{
		ID:            s.genID.Generate().Int64(),
		SubCategoryID: subID,
		Name:          name,
		NameKey:       domain.NormalizeName(name),
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	applyTypeFields(item, req)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sub, err := s.repo.FindSubCategoryByID(ctx, tx, subID)
		if err != nil {
			return err
		}
		if sub == nil {
			return domain.ErrInvalidParent
		}
		item.SubCategory = sub
		if err := s.applyBrand(ctx, tx, &item.BrandID, req.BrandID); err != nil {
			return err
		}
		if existing, err := s.repo.FindTypeByKey(ctx, tx, subID, item.NameKey); err != nil {
			return err
		} else if existing != nil {
			return domain.ErrDuplicateName
		}
		if item.Slug, err = s.resolveSlug(ctx, tx, "types", req.Slug, name, 0); err != nil {
			return err
		}
		return translateDuplicate(s.repo.CreateType(ctx, tx, item))
	})
	if err != nil {
		return nil, err
	}
	resp := toTypeResponse(item)
	return &resp, nil
}

func (s *Service) UpdateType(ctx context.Context, id string, req domain.TypeRequest) (*domain.TypeResponse, error) {
	typeID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	var item *domain.Type
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item, err = s.repo.FindTypeByID(ctx, tx, typeID)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound
		}
		if req.SubCategoryID != nil {
			subID, err := parseID(*req.SubCategoryID)
			if err != nil {
				return domain.ErrInvalidParent
			}
			sub, err := s.repo.FindSubCategoryByID(ctx, tx, subID)
			if err != nil {
				return err
			}
			if sub == nil {
				return domain.ErrInvalidParent
			}
			item.SubCategoryID, item.SubCategory = subID, sub
		}
		if req.Name != nil {
			name, err := requireName(req.Name)
			if err != nil {
				return err
			}
			item.Name, item.NameKey = name, domain.NormalizeName(name)
		}
		if existing, err := s.repo.FindTypeByKey(ctx, tx, item.SubCategoryID, item.NameKey); err != nil {
			return err
		} else if existing != nil && existing.ID != item.ID {
			return domain.ErrDuplicateName
		}
		if err := s.applyBrand(ctx, tx, &item.BrandID, req.BrandID); err != nil {
			return err
		}
		if req.Slug != nil {
			if item.Slug, err = s.resolveSlug(ctx, tx, "types", req.Slug, item.Name, item.ID); err != nil {
				return err
			}
		}
		applyTypeFields(item, req)
		item.UpdatedAt = s.clock.Now()
		return translateDuplicate(s.repo.SaveType(ctx, tx, item))
	})
	if err != nil {
		return nil, err
	}
	resp := toTypeResponse(item)
	return &resp, nil
}

func (s *Service) DeleteType(ctx context.Context, id string) error {
	typeID, err := parseID(id)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item, err := s.repo.FindTypeByID(ctx, tx, typeID)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound
		}
		return s.repo.DeleteType(ctx, tx, typeID)
	})
}

func applyTypeFields(item *domain.Type, req domain.TypeRequest) {
	if req.Description != nil {
		item.Description = optionalString(*req.Description)
	}
	if req.Order != nil {
		item.SortOrder = *req.Order
	}
	if req.IsActive != nil {
		item.IsActive = *req.IsActive
	}
}

// ---- brands ----

func (s *Service) ListBrands(ctx context.Context, activeOnly bool) ([]domain.BrandResponse, error) {
	items, err := s.repo.ListBrands(ctx, s.db, activeOnly)
	if err != nil {
		return nil, err
	}
	resp := make([]domain.BrandResponse, 0, len(items))
	for i := range items {
		resp = append(resp, toBrandResponse(&items[i]))
	}
	return resp, nil
}

func (s *Service) CreateBrand(ctx context.Context, req domain.BrandRequest) (*domain.BrandResponse, error) {
	name, err := requireName(req.Name)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	item := &domain.Brand{
		ID:        s.genID.Generate().Int64(),
		Name:      name,
		NameKey:   domain.NormalizeName(name),
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	applyBrandFields(item, req)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if existing, err := s.repo.FindBrandByKey(ctx, tx, item.NameKey); err != nil {
			return err
		} else if existing != nil {
			return domain.ErrDuplicateName
		}
		if item.Slug, err = s.resolveSlug(ctx, tx, "brands", req.Slug, name, 0); err != nil {
			return err
		}
		return translateDuplicate(s.repo.CreateBrand(ctx, tx, item))
	})
	if err != nil {
		return nil, err
	}
	resp := toBrandResponse(item)
	return &resp, nil
}

func (s *Service) UpdateBrand(ctx context.Context, id string, req domain.BrandRequest) (*domain.BrandResponse, error) {
	brandID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	var item *domain.Brand
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item, err = s.repo.FindBrandByID(ctx, tx, brandID)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound
		}
		if req.Name != nil {
			name, err := requireName(req.Name)
			if err != nil {
				return err
			}
			key := domain.NormalizeName(name)
			if existing, err := s.repo.FindBrandByKey(ctx, tx, key); err != nil {
				return err
			} else if existing != nil && existing.ID != item.ID {
				return domain.ErrDuplicateName
			}
			item.Name, item.NameKey = name, key
		}
		if req.Slug != nil {
			if item.Slug, err = s.resolveSlug(ctx, tx, "brands", req.Slug, item.Name, item.ID); err != nil {
				return err
			}
		}
		applyBrandFields(item, req)
		item.UpdatedAt = s.clock.Now()
		return translateDuplicate(s.repo.SaveBrand(ctx, tx, item))
	})
	if err != nil {
		return nil, err
	}
	resp := toBrandResponse(item)
	return &resp, nil
}

func (s *Service) DeleteBrand(ctx context.Context, id string) error {
	brandID, err := parseID(id)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item, err := s.repo.FindBrandByID(ctx, tx, brandID)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound
		}
		return s.repo.DeleteBrand(ctx, tx, brandID)
	})
}

func applyBrandFields(item *domain.Brand, req domain.BrandRequest) {
	if req.Logo != nil {
		item.Logo = optionalString(*req.Logo)
	}
	if req.LogoURL != nil {
		item.LogoURL = optionalString(*req.LogoURL)
	}
	if req.Description != nil {
		item.Description = optionalString(*req.Description)
	}
	if req.Order != nil {
		item.SortOrder = *req.Order
	}
	if req.IsActive != nil {
		item.IsActive = *req.IsActive
	}
}

// ---- collections ----

func (s *Service) ListCollections(ctx context.Context, activeOnly bool) ([]domain.CollectionResponse, error) {
	items, err := s.repo.ListCollections(ctx, s.db, activeOnly)
	if err != nil {
		return nil, err
	}
	resp := make([]domain.CollectionResponse, 0, len(items))
	for i := range items {
		resp = append(resp, toCollectionResponse(&items[i]))
	}
	return resp, nil
}

func (s *Service) CreateCollection(ctx context.Context, req domain.CollectionRequest) (*domain.CollectionResponse, error) {
	name, err := requireName(req.Name)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	item := &domain.Collection{
		ID:        s.genID.Generate().Int64(),
		Name:      name,
		NameKey:   domain.NormalizeName(name),
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	applyCollectionFields(item, req)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if existing, err := s.repo.FindCollectionByKey(ctx, tx, item.NameKey); err != nil {
			return err
		} else if existing != nil {
			return domain.ErrDuplicateName
		}
		if item.Slug, err = s.resolveSlug(ctx, tx, "collections", req.Slug, name, 0); err != nil {
			return err
		}
		return translateDuplicate(s.repo.CreateCollection(ctx, tx, item))
	})
	if err != nil {
		return nil, err
	}
	resp := toCollectionResponse(item)
	return &resp, nil
}

func (s *Service) UpdateCollection(ctx context.Context, id string, req domain.CollectionRequest) (*domain.CollectionResponse, error) {
	collectionID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	var item *domain.Collection
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item, err = s.repo.FindCollectionByID(ctx, tx, collectionID)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound
		}
		if req.Name != nil {
			name, err := requireName(req.Name)
			if err != nil {
				return err
			}
			key := domain.NormalizeName(name)
			if existing, err := s.repo.FindCollectionByKey(ctx, tx, key); err != nil {
				return err
			} else if existing != nil && existing.ID != item.ID {
				return domain.ErrDuplicateName
			}
			item.Name, item.NameKey = name, key
		}
		if req.Slug != nil {
			if item.Slug, err = s.resolveSlug(ctx, tx, "collections", req.Slug, item.Name, item.ID); err != nil {
				return err
			}
		}
		applyCollectionFields(item, req)
		item.UpdatedAt = s.clock.Now()
		return translateDuplicate(s.repo.SaveCollection(ctx, tx, item))
	})
	if err != nil {
		return nil, err
	}
	resp := toCollectionResponse(item)
	return &resp, nil
}

func (s *Service) DeleteCollection(ctx context.Context, id string) error {
	collectionID, err := parseID(id)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item, err := s.repo.FindCollectionByID(ctx, tx, collectionID)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound
		}
		return s.repo.DeleteCollection(ctx, tx, collectionID)
	})
}

func applyCollectionFields(item *domain.Collection, req domain.CollectionRequest) {
	if req.Image != nil {
		item.Image = optionalString(*req.Image)
	}
	if req.Description != nil {
		item.Description = optionalString(*req.Description)
	}
	if req.Order != nil {
		item.SortOrder = *req.Order
	}
	if req.IsActive != nil {
		item.IsActive = *req.IsActive
	}
}

// ---- shared helpers ----

// resolveSlug honours an explicit slug (which must be free) or derives a
// unique one from name.
func (s *Service) resolveSlug(ctx context.Context, tx *gorm.DB, table string, requested *string, name string, selfID int64) (string, error) {
	exists := func(candidate string) (bool, error) {
		return s.repo.SlugExists(ctx, tx, table, candidate, selfID)
	}
	if requested != nil && strings.TrimSpace(*requested) != "" {
		explicit := slugger.Make(*requested)
		if explicit == "" {
			return "", domain.ErrInvalidSlug
		}
		taken, err := exists(explicit)
		if err != nil {
			return "", err
		}
		if taken {
			return "", domain.ErrDuplicateSlug
		}
		return explicit, nil
	}
	slug, err := slugger.Unique(slugger.Make(name), exists)
	if err == slugger.ErrEmptySlug {
		return "", domain.ErrInvalidName
	}
	return slug, err
}

func (s *Service) applyCollection(ctx context.Context, tx *gorm.DB, target **int64, raw *string) error {
	if raw == nil {
		return nil
	}
	if strings.TrimSpace(*raw) == "" {
		*target = nil
		return nil
	}
	id, err := parseID(*raw)
	if err != nil {
		return domain.ErrInvalidCollection
	}
	collection, err := s.repo.FindCollectionByID(ctx, tx, id)
	if err != nil {
		return err
	}
	if collection == nil {
		return domain.ErrInvalidCollection
	}
	*target = &id
	return nil
}

func (s *Service) applyBrand(ctx context.Context, tx *gorm.DB, target **int64, raw *string) error {
	if raw == nil {
		return nil
	}
	if strings.TrimSpace(*raw) == "" {
		*target = nil
		return nil
	}
	id, err := parseID(*raw)
	if err != nil {
		return domain.ErrInvalidBrand
	}
	brand, err := s.repo.FindBrandByID(ctx, tx, id)
	if err != nil {
		return err
	}
	if brand == nil {
		return domain.ErrInvalidBrand
	}
	*target = &id
	return nil
}

func requireName(raw *string) (string, error) {
	if raw == nil {
		return "", domain.ErrInvalidName
	}
	name := strings.Join(strings.Fields(*raw), " ")
	if name == "" || len([]rune(name)) > maxNameLength {
		return "", domain.ErrInvalidName
	}
	return name, nil
}

func parseID(raw string) (int64, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || id <= 0 {
		return 0, domain.ErrInvalidID
	}
	return id.Int64(), nil
}

func translateDuplicate(err error) error {
	if db.IsDuplicateKeyErr(err) {
		return domain.ErrDuplicateName
	}
	return err
}

func optionalString(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func formatOptionalID(id *int64) *string {
	if id == nil {
		return nil
	}
	value := formatID(*id)
	return &value
}

func toCategoryResponse(c *domain.Category) domain.CategoryResponse {
	resp := domain.CategoryResponse{
		ID:             formatID(c.ID),
		Name:           c.Name,
		Slug:           c.Slug,
		Image:          c.Image,
		Description:    c.Description,
		Order:          c.SortOrder,
		IsActive:       c.IsActive,
		ShowInAdSlider: c.ShowInAdSlider,
		CollectionID:   formatOptionalID(c.CollectionID),
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
	if c.SubCategories != nil {
		resp.SubCategories = make([]domain.SubCategoryResponse, 0, len(c.SubCategories))
		for i := range c.SubCategories {
			resp.SubCategories = append(resp.SubCategories, toSubCategoryResponse(&c.SubCategories[i]))
		}
	}
	return resp
}

func toSubCategoryResponse(sc *domain.SubCategory) domain.SubCategoryResponse {
	resp := domain.SubCategoryResponse{
		ID:             formatID(sc.ID),
		CategoryID:     formatID(sc.CategoryID),
		Name:           sc.Name,
		Slug:           sc.Slug,
		Image:          sc.Image,
		Description:    sc.Description,
		Order:          sc.SortOrder,
		IsActive:       sc.IsActive,
		ShowInAdSlider: sc.ShowInAdSlider,
		IsEssential:    sc.IsEssential,
		ShowOnHomepage: sc.ShowOnHomepage,
		CreatedAt:      sc.CreatedAt,
		UpdatedAt:      sc.UpdatedAt,
	}
	if sc.Category != nil {
		resp.CategoryName = sc.Category.Name
		resp.CategorySlug = sc.Category.Slug
	}
	return resp
}

func toTypeResponse(t *domain.Type) domain.TypeResponse {
	resp := domain.TypeResponse{
		ID:            formatID(t.ID),
		SubCategoryID: formatID(t.SubCategoryID),
		BrandID:       formatOptionalID(t.BrandID),
		Name:          t.Name,
		Slug:          t.Slug,
		Description:   t.Description,
		Order:         t.SortOrder,
		IsActive:      t.IsActive,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
	if t.SubCategory != nil {
		resp.SubCategorySlug = t.SubCategory.Slug
	}
	return resp
}

func toBrandResponse(b *domain.Brand) domain.BrandResponse {
	return domain.BrandResponse{
		ID:          formatID(b.ID),
		Name:        b.Name,
		Slug:        b.Slug,
		Logo:        b.LogoRef(),
		Description: b.Description,
		Order:       b.SortOrder,
		IsActive:    b.IsActive,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

func toCollectionResponse(c *domain.Collection) domain.CollectionResponse {
	return domain.CollectionResponse{
		ID:          formatID(c.ID),
		Name:        c.Name,
		Slug:        c.Slug,
		Image:       c.Image,
		Description: c.Description,
		Order:       c.SortOrder,
		IsActive:    c.IsActive,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

