package service

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/vitrine/internal/clock"
	"github.com/smallbiznis/vitrine/internal/heroslide/domain"
	"github.com/smallbiznis/vitrine/pkg/db/option"
	"github.com/smallbiznis/vitrine/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var displayOrder = option.QuerySortBy{Default: "sort_order ASC, created_at DESC"}

type Params struct {
	fx.In

	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  repository.Repository[domain.HeroSlide]
}

type Service struct {
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  repository.Repository[domain.HeroSlide]
}

func New(p Params) domain.Service {
	return &Service{
		log:   p.Log.Named("heroslide.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) ListActive(ctx context.Context) ([]domain.Response, error) {
	return s.list(ctx, &domain.HeroSlide{IsActive: true})
}

func (s *Service) List(ctx context.Context) ([]domain.Response, error) {
	return s.list(ctx, &domain.HeroSlide{})
}

func (s *Service) list(ctx context.Context, query *domain.HeroSlide) ([]domain.Response, error) {
	slides, err := s.repo.Find(ctx, query, option.WithSortBy(displayOrder))
	if err != nil {
		return nil, err
	}
	out := make([]domain.Response, 0, len(slides))
	for _, slide := range slides {
		out = append(out, toResponse(slide))
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Response, error) {
	slide, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toResponse(slide)
	return &resp, nil
}

func (s *Service) find(ctx context.Context, id string) (*domain.HeroSlide, error) {
	slideID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || slideID <= 0 {
		return nil, domain.ErrInvalidID
	}
	slide, err := s.repo.FindOne(ctx, &domain.HeroSlide{ID: slideID.Int64()})
	if err != nil {
		return nil, err
	}
	if slide == nil {
		return nil, domain.ErrNotFound
	}
	return slide, nil
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Response, error) {
	now := s.clock.Now()
	slide := &domain.HeroSlide{
		ID:         s.genID.Generate().Int64(),
		Title:      strings.TrimSpace(req.Title),
		Subtitle:   optionalString(req.Subtitle),
		Image:      strings.TrimSpace(req.Image),
		LinkURL:    optionalString(req.LinkURL),
		ButtonText: optionalString(req.ButtonText),
		SortOrder:  req.SortOrder,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if req.IsActive != nil {
		slide.IsActive = *req.IsActive
	}
	if err := validate(slide); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, slide); err != nil {
		return nil, err
	}
	s.log.Info("hero slide created", zap.Int64("slide_id", slide.ID))
	resp := toResponse(slide)
	return &resp, nil
}

func (s *Service) Update(ctx context.Context, id string, req domain.UpdateRequest) (*domain.Response, error) {
	slide, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Title != nil {
		slide.Title = strings.TrimSpace(*req.Title)
	}
	if req.Subtitle != nil {
		slide.Subtitle = optionalString(*req.Subtitle)
	}
	if req.Image != nil {
		slide.Image = strings.TrimSpace(*req.Image)
	}
	if req.LinkURL != nil {
		slide.LinkURL = optionalString(*req.LinkURL)
	}
	if req.ButtonText != nil {
		slide.ButtonText = optionalString(*req.ButtonText)
	}
	if req.SortOrder != nil {
		slide.SortOrder = *req.SortOrder
	}
	if req.IsActive != nil {
		slide.IsActive = *req.IsActive
	}
	if err := validate(slide); err != nil {
		return nil, err
	}
	slide.UpdatedAt = s.clock.Now()
	if err := s.repo.Save(ctx, slide); err != nil {
		return nil, err
	}
	resp := toResponse(slide)
	return &resp, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	slide, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, slide.ID)
}

func validate(slide *domain.HeroSlide) error {
	if slide.Title == "" || len([]rune(slide.Title)) > 200 {
		return domain.ErrInvalidTitle
	}
	if slide.Image == "" {
		return domain.ErrInvalidImage
	}
	if slide.LinkURL != nil {
		// Relative storefront paths and absolute http(s) links only.
		u, err := url.Parse(*slide.LinkURL)
		if err != nil {
			return domain.ErrInvalidLink
		}
		if u.IsAbs() && u.Scheme != "http" && u.Scheme != "https" {
			return domain.ErrInvalidLink
		}
		if !u.IsAbs() && !strings.HasPrefix(*slide.LinkURL, "/") {
			return domain.ErrInvalidLink
		}
	}
	return nil
}

func toResponse(slide *domain.HeroSlide) domain.Response {
	return domain.Response{
		ID:         strconv.FormatInt(slide.ID, 10),
		Title:      slide.Title,
		Subtitle:   slide.Subtitle,
		Image:      slide.Image,
		LinkURL:    slide.LinkURL,
		ButtonText: slide.ButtonText,
		SortOrder:  slide.SortOrder,
		IsActive:   slide.IsActive,
		CreatedAt:  slide.CreatedAt,
		UpdatedAt:  slide.UpdatedAt,
	}
}

func optionalString(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}
