package service

import (
	"context"
	"strings"

	"github.com/smallbiznis/vitrine/internal/product/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AddImage appends to the gallery. The first image of a product becomes
// its main image.
func (s *Service) AddImage(ctx context.Context, productID string, req domain.ImageRequest) (*domain.ImageResponse, error) {
	id, err := parseID(productID)
	if err != nil {
		return nil, err
	}
	if req.Image == nil || strings.TrimSpace(*req.Image) == "" {
		return nil, domain.ErrInvalidImage
	}

	var img *domain.ProductImage
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.requireProduct(ctx, tx, id); err != nil {
			return err
		}
		existing, err := s.repo.ListImages(ctx, tx, id)
		if err != nil {
			return err
		}
		img = &domain.ProductImage{
			ID:        s.genID.Generate().Int64(),
			ProductID: id,
			Image:     strings.TrimSpace(*req.Image),
			IsMain:    len(existing) == 0,
			SortOrder: len(existing),
			CreatedAt: s.clock.Now(),
		}
		applyImageFields(img, req)
		if err := s.repo.CreateImage(ctx, tx, img); err != nil {
			return err
		}
		if img.IsMain {
			return s.repo.ClearMainImage(ctx, tx, id, img.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	resp := toImageResponse(img)
	return &resp, nil
}

func (s *Service) UpdateImage(ctx context.Context, productID, imageID string, req domain.ImageRequest) (*domain.ImageResponse, error) {
	pid, err := parseID(productID)
	if err != nil {
		return nil, err
	}
	iid, err := parseID(imageID)
	if err != nil {
		return nil, err
	}
	if req.Image != nil && strings.TrimSpace(*req.Image) == "" {
		return nil, domain.ErrInvalidImage
	}

	var img *domain.ProductImage
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		img, err = s.repo.FindImage(ctx, tx, pid, iid)
		if err != nil {
			return err
		}
		if img == nil {
			return domain.ErrNotFound
		}
		if req.Image != nil {
			img.Image = strings.TrimSpace(*req.Image)
		}
		applyImageFields(img, req)
		if err := s.repo.SaveImage(ctx, tx, img); err != nil {
			return err
		}
		if img.IsMain {
			return s.repo.ClearMainImage(ctx, tx, pid, img.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	resp := toImageResponse(img)
	return &resp, nil
}

// DeleteImage removes an image and promotes the next one when the main
// image goes away.
func (s *Service) DeleteImage(ctx context.Context, productID, imageID string) error {
	pid, err := parseID(productID)
	if err != nil {
		return err
	}
	iid, err := parseID(imageID)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		img, err := s.repo.FindImage(ctx, tx, pid, iid)
		if err != nil {
			return err
		}
		if img == nil {
			return domain.ErrNotFound
		}
		if err := s.repo.DeleteImage(ctx, tx, img); err != nil {
			return err
		}
		if !img.IsMain {
			return nil
		}
		remaining, err := s.repo.ListImages(ctx, tx, pid)
		if err != nil || len(remaining) == 0 {
			return err
		}
		next := remaining[0]
		next.IsMain = true
		s.log.Debug("main image promoted", zap.Int64("product_id", pid), zap.Int64("image_id", next.ID))
		return s.repo.SaveImage(ctx, tx, &next)
	})
}

func (s *Service) ReplaceSpecifications(ctx context.Context, productID string, specs []domain.SpecRequest) ([]domain.SpecResponse, error) {
	id, err := parseID(productID)
	if err != nil {
		return nil, err
	}
	parsed := make([]domain.Spec, 0, len(specs))
	for _, spec := range specs {
		key, value := strings.TrimSpace(spec.Key), strings.TrimSpace(spec.Value)
		if key == "" || value == "" {
			return nil, domain.ErrInvalidSpec
		}
		parsed = append(parsed, domain.Spec{Key: key, Value: value})
	}
	return s.writeSpecs(ctx, id, func(*domain.Product) []domain.Spec { return parsed })
}

// SpecificationsFromCharacteristics rebuilds the spec table from the
// product's free-text characteristics.
func (s *Service) SpecificationsFromCharacteristics(ctx context.Context, productID string) ([]domain.SpecResponse, error) {
	id, err := parseID(productID)
	if err != nil {
		return nil, err
	}
	return s.writeSpecs(ctx, id, func(p *domain.Product) []domain.Spec {
		return domain.ParseCharacteristics(derefString(p.Characteristics))
	})
}

func (s *Service) writeSpecs(ctx context.Context, productID int64, build func(*domain.Product) []domain.Spec) ([]domain.SpecResponse, error) {
	var rows []domain.ProductSpecification
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item, err := s.repo.FindByID(ctx, tx, productID)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound
		}
		if err := s.ReplaceSpecs(ctx, tx, productID, build(item)); err != nil {
			return err
		}
		rows, err = s.repo.ListSpecs(ctx, tx, productID)
		return err
	})
	if err != nil {
		return nil, err
	}
	resp := make([]domain.SpecResponse, 0, len(rows))
	for _, row := range rows {
		resp = append(resp, toSpecResponse(row))
	}
	return resp, nil
}

func (s *Service) requireProduct(ctx context.Context, tx *gorm.DB, id int64) error {
	item, err := s.repo.FindByID(ctx, tx, id)
	if err != nil {
		return err
	}
	if item == nil {
		return domain.ErrNotFound
	}
	return nil
}

func applyImageFields(img *domain.ProductImage, req domain.ImageRequest) {
	if req.AltText != nil {
		img.AltText = optionalString(*req.AltText)
	}
	if req.IsMain != nil {
		img.IsMain = *req.IsMain
	}
	if req.Order != nil {
		img.SortOrder = *req.Order
	}
}
