package service

import (
	"context"
	"net/mail"
	"strconv"
	"strings"
	"unicode"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/vitrine/internal/clock"
	"github.com/smallbiznis/vitrine/internal/customer/domain"
	"github.com/smallbiznis/vitrine/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

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
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("customer.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Capture(ctx context.Context, tx *gorm.DB, req domain.CreateCustomerRequest) (*domain.Customer, error) {
	firstName := collapse(req.FirstName)
	lastName := collapse(req.LastName)
	if firstName == "" || lastName == "" || len(firstName) > 100 || len(lastName) > 100 {
		return nil, domain.ErrInvalidName
	}

	phone, err := normalizePhone(req.Phone)
	if err != nil {
		return nil, err
	}

	var email *string
	if value := strings.TrimSpace(req.Email); value != "" {
		addr, err := mail.ParseAddress(value)
		if err != nil || addr.Address != value {
			return nil, domain.ErrInvalidEmail
		}
		email = &value
	}

	address := strings.TrimSpace(req.Address)
	if address == "" {
		return nil, domain.ErrInvalidAddress
	}
	city := collapse(req.City)
	if city == "" {
		return nil, domain.ErrInvalidCity
	}

	customer := &domain.Customer{
		ID:         s.genID.Generate().Int64(),
		FirstName:  firstName,
		LastName:   lastName,
		Email:      email,
		Phone:      phone,
		Address:    address,
		City:       city,
		Region:     optional(req.Region),
		PostalCode: optional(req.PostalCode),
		CreatedAt:  s.clock.Now(),
	}
	if err := s.repo.Insert(ctx, tx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

func (s *Service) List(ctx context.Context, req domain.ListCustomerRequest) (*domain.ListCustomerResponse, error) {
	filter := domain.ListCustomerFilter{
		Search:      strings.TrimSpace(req.Search),
		CreatedFrom: req.CreatedFrom,
		CreatedTo:   req.CreatedTo,
		Offset:      req.Page.Offset(),
		Limit:       req.Page.Limit(),
	}

	items, total, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}

	customers := make([]domain.Response, 0, len(items))
	for i := range items {
		customers = append(customers, ToResponse(&items[i]))
	}
	return &domain.ListCustomerResponse{
		PageInfo:  pagination.BuildPageInfo(req.Page, total),
		Customers: customers,
	}, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*domain.Response, error) {
	customerID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || customerID <= 0 {
		return nil, domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, customerID.Int64())
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	resp := ToResponse(item)
	return &resp, nil
}

func ToResponse(c *domain.Customer) domain.Response {
	return domain.Response{
		ID:         strconv.FormatInt(c.ID, 10),
		FirstName:  c.FirstName,
		LastName:   c.LastName,
		FullName:   c.FullName(),
		Email:      c.Email,
		Phone:      c.Phone,
		Address:    c.Address,
		City:       c.City,
		Region:     c.Region,
		PostalCode: c.PostalCode,
		CreatedAt:  c.CreatedAt,
	}
}

// normalizePhone strips separators and keeps an optional leading "+".
func normalizePhone(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	var b strings.Builder
	for i, r := range raw {
		switch {
		case unicode.IsDigit(r):
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '.' || r == '(' || r == ')':
		default:
			return "", domain.ErrInvalidPhone
		}
	}
	phone := b.String()
	digits := strings.TrimPrefix(phone, "+")
	if len(digits) < 8 || len(digits) > 15 {
		return "", domain.ErrInvalidPhone
	}
	return phone, nil
}

func collapse(value string) string {
	return strings.Join(strings.Fields(value), " ")
}

func optional(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}
