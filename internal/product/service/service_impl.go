package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/vitrine/internal/clock"
	"github.com/smallbiznis/vitrine/internal/product/domain"
	taxdomain "github.com/smallbiznis/vitrine/internal/taxonomy/domain"
	"github.com/smallbiznis/vitrine/pkg/db"
	"github.com/smallbiznis/vitrine/pkg/db/pagination"
	"github.com/smallbiznis/vitrine/pkg/slugger"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Repo     domain.Repository
	Taxonomy taxdomain.Repository
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	repo     domain.Repository
	taxonomy taxdomain.Repository
}

func New(p Params) domain.Service {
	return newService(p)
}

func NewStore(p Params) domain.Store {
	return newService(p)
}

func newService(p Params) *Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("product.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		repo:     p.Repo,
		taxonomy: p.Taxonomy,
	}
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) (*domain.ListResponse, error) {
	filter := domain.ListFilter{
		Category:     req.Category,
		SubCategory:  req.SubCategory,
		Type:         req.Type,
		Brand:        req.Brand,
		IsBestseller: req.IsBestseller,
		IsNew:        req.IsNew,
		IsFeatured:   req.IsFeatured,
		MinPrice:     req.MinPrice,
		MaxPrice:     req.MaxPrice,
		Search:       req.Search,
		Ordering:     req.Ordering,
		Offset:       req.Page.Offset(),
		Limit:        req.Page.Limit(),
	}
	if status := strings.TrimSpace(req.Status); status != "" {
		filter.Status = domain.Status(status)
		if !filter.Status.Valid() {
			return nil, domain.ErrInvalidStatus
		}
	}

	items, total, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}
	resp := &domain.ListResponse{
		PageInfo: pagination.BuildPageInfo(req.Page, total),
		Results:  make([]domain.Response, 0, len(items)),
	}
	for i := range items {
		resp.Results = append(resp.Results, toResponse(&items[i]))
	}
	return resp, nil
}

func (s *Service) Curated(ctx context.Context, list domain.CuratedList, req domain.CuratedRequest) ([]domain.Response, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = domain.DefaultCuratedLimit
	}
	if limit > domain.MaxCuratedLimit {
		limit = domain.MaxCuratedLimit
	}
	if list == domain.CuratedBySubCategory && strings.TrimSpace(req.SubCategory) == "" {
		return nil, domain.ErrInvalidSubCategory
	}

	items, err := s.repo.Curated(ctx, s.db, domain.CuratedFilter{
		List:        list,
		SubCategory: req.SubCategory,
		Limit:       limit,
	})
	if err != nil {
		return nil, err
	}
	resp := make([]domain.Response, 0, len(items))
	for i := range items {
		resp = append(resp, toResponse(&items[i]))
	}
	return resp, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Response, error) {
	productID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	item, err := s.repo.FindByID(ctx, s.db, productID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	resp := toResponse(item)
	return &resp, nil
}

func (s *Service) GetBySlug(ctx context.Context, slug string) (*domain.Response, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, domain.ErrNotFound
	}
	item, err := s.repo.FindBySlug(ctx, s.db, slug)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	if err := s.repo.IncrementViews(ctx, s.db, item.ID); err != nil {
		return nil, err
	}
	item.ViewsCount++
	resp := toResponse(item)
	return &resp, nil
}

func (s *Service) Create(ctx context.Context, req domain.Request) (*domain.Response, error) {
	item := &domain.Product{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.apply(ctx, tx, item, req); err != nil {
			return err
		}
		if req.Status == nil {
			item.Status = domain.DefaultStatus(item.Quantity)
		}
		if err := item.Validate(); err != nil {
			return err
		}
		if existing, err := s.repo.FindByReference(ctx, tx, item.Reference); err != nil {
			return err
		} else if existing != nil {
			return domain.ErrDuplicateReference
		}
		if err := s.Insert(ctx, tx, item); err != nil {
			return err
		}
		if item.Characteristics != nil {
			return s.ReplaceSpecs(ctx, tx, item.ID, domain.ParseCharacteristics(*item.Characteristics))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("product created", zap.Int64("product_id", item.ID), zap.String("reference", item.Reference))
	return s.Get(ctx, formatID(item.ID))
}

func (s *Service) Update(ctx context.Context, id string, req domain.Request) (*domain.Response, error) {
	productID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item, err := s.repo.FindByID(ctx, tx, productID)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound
		}
		previousReference := item.Reference
		previousCharacteristics := derefString(item.Characteristics)

		if err := s.apply(ctx, tx, item, req); err != nil {
			return err
		}
		if err := item.Validate(); err != nil {
			return err
		}
		if item.Reference != previousReference {
			if existing, err := s.repo.FindByReference(ctx, tx, item.Reference); err != nil {
				return err
			} else if existing != nil && existing.ID != item.ID {
				return domain.ErrDuplicateReference
			}
		}
		if err := s.Save(ctx, tx, item); err != nil {
			return err
		}
		if current := derefString(item.Characteristics); req.Characteristics != nil && current != previousCharacteristics {
			return s.ReplaceSpecs(ctx, tx, item.ID, domain.ParseCharacteristics(current))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	productID, err := parseID(id)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item, err := s.repo.FindByID(ctx, tx, productID)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound
		}
		if err := s.repo.Delete(ctx, tx, productID); err != nil {
			return err
		}
		s.log.Info("product deleted", zap.Int64("product_id", productID), zap.String("reference", item.Reference))
		return nil
	})
}

// apply copies the non-nil request fields onto item and resolves taxonomy links.
func (s *Service) apply(ctx context.Context, tx *gorm.DB, item *domain.Product, req domain.Request) error {
	if req.Reference != nil {
		item.Reference = strings.TrimSpace(*req.Reference)
	}
	if req.Name != nil {
		item.Name = strings.Join(strings.Fields(*req.Name), " ")
	}
	if req.MetaTitle != nil {
		item.MetaTitle = optionalString(*req.MetaTitle)
	}
	if req.MetaDescription != nil {
		item.MetaDescription = optionalString(*req.MetaDescription)
	}
	if req.Description != nil {
		item.Description = optionalString(*req.Description)
	}
	if req.Characteristics != nil {
		item.Characteristics = optionalString(*req.Characteristics)
	}
	if req.Price != nil {
		item.Price = req.Price.Round(2)
	}
	if req.DiscountPrice != nil {
		item.DiscountPrice = discountOf(*req.DiscountPrice)
	}
	if req.Weight != nil {
		item.Weight = optionalString(*req.Weight)
	}
	if req.Warranty != nil {
		item.Warranty = optionalString(*req.Warranty)
	}
	if req.Quantity != nil {
		item.Quantity = *req.Quantity
	}
	if req.Status != nil {
		item.Status = domain.Status(strings.TrimSpace(*req.Status))
	}
	if req.IsBestseller != nil {
		item.IsBestseller = *req.IsBestseller
	}
	if req.IsFeatured != nil {
		item.IsFeatured = *req.IsFeatured
	}
	if req.IsNew != nil {
		item.IsNew = *req.IsNew
	}
	if req.ShowInAdSlider != nil {
		item.ShowInAdSlider = *req.ShowInAdSlider
	}
	if req.Image != nil {
		item.Image = optionalString(*req.Image)
	}
	return s.applyLinks(ctx, tx, item, req)
}

func (s *Service) applyLinks(ctx context.Context, tx *gorm.DB, item *domain.Product, req domain.Request) error {
	var err error
	if req.CategoryID != nil {
		item.CategoryID, err = resolveLink(*req.CategoryID, domain.ErrInvalidCategory, func(id int64) (bool, error) {
			row, err := s.taxonomy.FindCategoryByID(ctx, tx, id)
			return row != nil, err
		})
		if err != nil {
			return err
		}
	}
	if req.SubCategoryID != nil {
		item.SubCategoryID, err = resolveLink(*req.SubCategoryID, domain.ErrInvalidSubCategory, func(id int64) (bool, error) {
			row, err := s.taxonomy.FindSubCategoryByID(ctx, tx, id)
			return row != nil, err
		})
		if err != nil {
			return err
		}
	}
	if req.TypeID != nil {
		item.TypeID, err = resolveLink(*req.TypeID, domain.ErrInvalidType, func(id int64) (bool, error) {
			row, err := s.taxonomy.FindTypeByID(ctx, tx, id)
			return row != nil, err
		})
		if err != nil {
			return err
		}
	}
	if req.BrandID != nil {
		item.BrandID, err = resolveLink(*req.BrandID, domain.ErrInvalidBrand, func(id int64) (bool, error) {
			row, err := s.taxonomy.FindBrandByID(ctx, tx, id)
			return row != nil, err
		})
		if err != nil {
			return err
		}
	}
	if req.CollectionID != nil {
		item.CollectionID, err = resolveLink(*req.CollectionID, domain.ErrInvalidCollection, func(id int64) (bool, error) {
			row, err := s.taxonomy.FindCollectionByID(ctx, tx, id)
			return row != nil, err
		})
		if err != nil {
			return err
		}
	}
	if req.CategoryID != nil || req.SubCategoryID != nil || req.TypeID != nil {
		return s.checkHierarchy(ctx, tx, item)
	}
	return nil
}

// checkHierarchy fills missing parents from the most specific node and
// rejects links that disagree with each other.
func (s *Service) checkHierarchy(ctx context.Context, tx *gorm.DB, item *domain.Product) error {
	if item.TypeID != nil {
		t, err := s.taxonomy.FindTypeByID(ctx, tx, *item.TypeID)
		if err != nil {
			return err
		}
		if t == nil {
			return domain.ErrInvalidType
		}
		if item.SubCategoryID == nil {
			subID := t.SubCategoryID
			item.SubCategoryID = &subID
		} else if *item.SubCategoryID != t.SubCategoryID {
			return domain.ErrInvalidType
		}
	}
	if item.SubCategoryID != nil {
		sub, err := s.taxonomy.FindSubCategoryByID(ctx, tx, *item.SubCategoryID)
		if err != nil {
			return err
		}
		if sub == nil {
			return domain.ErrInvalidSubCategory
		}
		if item.CategoryID == nil {
			categoryID := sub.CategoryID
			item.CategoryID = &categoryID
		} else if *item.CategoryID != sub.CategoryID {
			return domain.ErrInvalidSubCategory
		}
	}
	return nil
}

func (s *Service) FindByReference(ctx context.Context, tx *gorm.DB, reference string) (*domain.Product, error) {
	return s.repo.FindByReference(ctx, tx, strings.TrimSpace(reference))
}

func (s *Service) Insert(ctx context.Context, tx *gorm.DB, p *domain.Product) error {
	if p.ID == 0 {
		p.ID = s.genID.Generate().Int64()
	}
	if p.Status == "" {
		p.Status = domain.DefaultStatus(p.Quantity)
	}
	if err := p.Validate(); err != nil {
		return err
	}
	slug, err := slugger.Unique(slugger.Make(p.Reference, p.Name), func(candidate string) (bool, error) {
		return s.repo.SlugExists(ctx, tx, candidate, p.ID)
	})
	if err != nil {
		if err == slugger.ErrEmptySlug {
			return domain.ErrInvalidName
		}
		return err
	}
	p.Slug = slug

	now := s.clock.Now()
	p.CreatedAt, p.UpdatedAt = now, now
	if err := s.repo.Create(ctx, tx, p); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.ErrDuplicateReference
		}
		return err
	}
	return nil
}

// Save persists product columns. The slug stays stable across renames.
func (s *Service) Save(ctx context.Context, tx *gorm.DB, p *domain.Product) error {
	if err := p.Validate(); err != nil {
		return err
	}
	p.UpdatedAt = s.clock.Now()
	if err := s.repo.Save(ctx, tx, p); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.ErrDuplicateReference
		}
		return err
	}
	return nil
}

func (s *Service) ReplaceSpecs(ctx context.Context, tx *gorm.DB, productID int64, specs []domain.Spec) error {
	rows := make([]domain.ProductSpecification, 0, len(specs))
	for i, spec := range specs {
		rows = append(rows, domain.ProductSpecification{
			ID:        s.genID.Generate().Int64(),
			ProductID: productID,
			Key:       spec.Key,
			Value:     spec.Value,
			SortOrder: i,
		})
	}
	return s.repo.ReplaceSpecs(ctx, tx, productID, rows)
}

func resolveLink(raw string, invalid error, exists func(id int64) (bool, error)) (*int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, invalid
	}
	ok, err := exists(id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, invalid
	}
	return &id, nil
}

func discountOf(value decimal.Decimal) decimal.NullDecimal {
	if value.IsZero() {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: value.Round(2), Valid: true}
}

func parseID(raw string) (int64, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || id <= 0 {
		return 0, domain.ErrInvalidID
	}
	return id.Int64(), nil
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func optionalString(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}

func derefString(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
