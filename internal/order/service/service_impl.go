package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/vitrine/internal/clock"
	"github.com/smallbiznis/vitrine/internal/config"
	customerdomain "github.com/smallbiznis/vitrine/internal/customer/domain"
	customerservice "github.com/smallbiznis/vitrine/internal/customer/service"
	"github.com/smallbiznis/vitrine/internal/observability/metrics"
	"github.com/smallbiznis/vitrine/internal/order/domain"
	productdomain "github.com/smallbiznis/vitrine/internal/product/domain"
	"github.com/smallbiznis/vitrine/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// OrderNumberPrefix starts every order number.
const OrderNumberPrefix = "ORD-"

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Clock     clock.Clock
	Cfg       config.Config
	Repo      domain.Repository
	Customers customerdomain.Service
	Products  productdomain.Repository
	Metrics   *metrics.Metrics `optional:"true"`
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	clock     clock.Clock
	shipping  config.ShippingConfig
	repo      domain.Repository
	customers customerdomain.Service
	products  productdomain.Repository
	metrics   *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("order.service"),
		genID:     p.GenID,
		clock:     p.Clock,
		shipping:  p.Cfg.Shipping,
		repo:      p.Repo,
		customers: p.Customers,
		products:  p.Products,
		metrics:   p.Metrics,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Response, error) {
	if len(req.Items) == 0 {
		return nil, domain.ErrEmptyItems
	}

	productIDs := make([]int64, 0, len(req.Items))
	for i, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, &domain.ItemError{Index: i, Err: domain.ErrInvalidQuantity}
		}
		id, err := snowflake.ParseString(strings.TrimSpace(item.ProductID))
		if err != nil || id <= 0 {
			return nil, &domain.ItemError{Index: i, Err: domain.ErrInvalidProduct}
		}
		productIDs = append(productIDs, id.Int64())
	}

	method := domain.PaymentCashOnDelivery
	if raw := strings.TrimSpace(req.PaymentMethod); raw != "" {
		method = domain.PaymentMethod(strings.ToLower(raw))
		if !method.Valid() {
			return nil, domain.ErrInvalidPaymentMethod
		}
	}

	var orderID int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		found, err := s.products.FindByIDs(ctx, tx, productIDs)
		if err != nil {
			return err
		}
		byID := make(map[int64]*productdomain.Product, len(found))
		for i := range found {
			byID[found[i].ID] = &found[i]
		}

		customer, err := s.customers.Capture(ctx, tx, req.CreateCustomerRequest)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		order := &domain.Order{
			ID:            s.genID.Generate().Int64(),
			OrderNumber:   s.orderNumber(now),
			CustomerID:    customer.ID,
			Status:        domain.StatusPending,
			PaymentMethod: method,
			Notes:         optionalString(req.Notes),
			CreatedAt:     now,
			UpdatedAt:     now,
		}

		subtotal := decimal.Zero
		for i, item := range req.Items {
			product, ok := byID[productIDs[i]]
			if !ok {
				return &domain.ItemError{Index: i, Err: domain.ErrInvalidProduct}
			}
			unitPrice := product.FinalPrice().Round(2)
			lineTotal := unitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
			subtotal = subtotal.Add(lineTotal)

			productID := product.ID
			order.Items = append(order.Items, domain.OrderItem{
				ID:               s.genID.Generate().Int64(),
				ProductID:        &productID,
				ProductName:      product.Name,
				ProductReference: product.Reference,
				UnitPrice:        unitPrice,
				Quantity:         item.Quantity,
				TotalPrice:       lineTotal,
			})
		}

		order.Subtotal = subtotal
		order.ShippingCost = s.shippingCost(subtotal)
		order.Total = subtotal.Add(order.ShippingCost)

		if err := s.repo.Create(ctx, tx, order); err != nil {
			return err
		}
		orderID = order.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordOrderCreated(ctx)
	order, err := s.repo.FindByID(ctx, s.db, orderID)
	if err != nil {
		return nil, err
	}
	s.log.Info("order created",
		zap.String("order_number", order.OrderNumber),
		zap.Int("items", len(order.Items)),
		zap.String("total", order.Total.StringFixed(2)),
	)
	resp := toResponse(order)
	return &resp, nil
}

// shippingCost applies the flat rate unless the subtotal reaches the
// free-shipping threshold.
func (s *Service) shippingCost(subtotal decimal.Decimal) decimal.Decimal {
	if s.shipping.FreeAbove != nil && subtotal.GreaterThanOrEqual(*s.shipping.FreeAbove) {
		return decimal.Zero
	}
	return s.shipping.FlatRate.Round(2)
}

func (s *Service) orderNumber(now time.Time) string {
	return OrderNumberPrefix + ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String()
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Response, error) {
	order, err := s.lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toResponse(order)
	return &resp, nil
}

func (s *Service) lookup(ctx context.Context, id string) (*domain.Order, error) {
	id = strings.TrimSpace(id)
	var (
		order *domain.Order
		err   error
	)
	if strings.HasPrefix(strings.ToUpper(id), OrderNumberPrefix) {
		order, err = s.repo.FindByNumber(ctx, s.db, strings.ToUpper(id))
	} else {
		var orderID int64
		if orderID, err = parseID(id); err != nil {
			return nil, err
		}
		order, err = s.repo.FindByID(ctx, s.db, orderID)
	}
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	return order, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) (*domain.ListResponse, error) {
	filter := domain.ListFilter{
		Search: strings.TrimSpace(req.Search),
		Offset: req.Page.Offset(),
		Limit:  req.Page.Limit(),
	}
	if status := strings.TrimSpace(req.Status); status != "" {
		filter.Status = domain.Status(strings.ToLower(status))
		if !filter.Status.Valid() {
			return nil, domain.ErrInvalidStatus
		}
	}

	items, total, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}
	results := make([]domain.Response, 0, len(items))
	for i := range items {
		results = append(results, toResponse(&items[i]))
	}
	return &domain.ListResponse{
		PageInfo: pagination.BuildPageInfo(req.Page, total),
		Results:  results,
	}, nil
}

func (s *Service) Confirm(ctx context.Context, id string) (*domain.Response, error) {
	return s.transition(ctx, id, domain.StatusConfirmed, domain.CheckConfirm)
}

func (s *Service) Cancel(ctx context.Context, id string) (*domain.Response, error) {
	return s.transition(ctx, id, domain.StatusCancelled, domain.CheckCancel)
}

func (s *Service) UpdateStatus(ctx context.Context, id string, status string) (*domain.Response, error) {
	target := domain.Status(strings.ToLower(strings.TrimSpace(status)))
	if !target.Valid() {
		return nil, domain.ErrInvalidStatus
	}
	return s.transition(ctx, id, target, func(current domain.Status) error {
		return domain.CheckStatusUpdate(current, target)
	})
}

// transition locks the order row, applies check to its current status and
// writes target. Moving to confirmed stamps confirmed_at once.
func (s *Service) transition(ctx context.Context, id string, target domain.Status, check func(domain.Status) error) (*domain.Response, error) {
	orderID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	var from domain.Status
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := s.repo.FindByIDForUpdate(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrNotFound
		}
		if err := check(order.Status); err != nil {
			return err
		}

		from = order.Status
		if from == target {
			return nil
		}
		now := s.clock.Now()
		if target == domain.StatusConfirmed && order.ConfirmedAt == nil {
			order.ConfirmedAt = &now
		}
		order.Status = target
		order.UpdatedAt = now
		return s.repo.UpdateStatus(ctx, tx, order)
	})
	if err != nil {
		return nil, err
	}

	if from != target {
		s.metrics.RecordOrderTransition(ctx, string(target))
		s.log.Info("order status changed",
			zap.Int64("order_id", orderID),
			zap.String("from", string(from)),
			zap.String("to", string(target)),
		)
	}
	order, err := s.repo.FindByID(ctx, s.db, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	resp := toResponse(order)
	return &resp, nil
}

func toResponse(o *domain.Order) domain.Response {
	resp := domain.Response{
		ID:            strconv.FormatInt(o.ID, 10),
		OrderNumber:   o.OrderNumber,
		Status:        o.Status,
		PaymentMethod: o.PaymentMethod,
		Notes:         o.Notes,
		Items:         make([]domain.ItemResponse, 0, len(o.Items)),
		Subtotal:      o.Subtotal.StringFixed(2),
		ShippingCost:  o.ShippingCost.StringFixed(2),
		Total:         o.Total.StringFixed(2),
		ConfirmedAt:   o.ConfirmedAt,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
	if o.Customer != nil {
		customer := customerservice.ToResponse(o.Customer)
		resp.Customer = &customer
	}
	for _, item := range o.Items {
		var productID *string
		if item.ProductID != nil {
			id := strconv.FormatInt(*item.ProductID, 10)
			productID = &id
		}
		resp.Items = append(resp.Items, domain.ItemResponse{
			ID:               strconv.FormatInt(item.ID, 10),
			ProductID:        productID,
			ProductName:      item.ProductName,
			ProductReference: item.ProductReference,
			UnitPrice:        item.UnitPrice.StringFixed(2),
			Quantity:         item.Quantity,
			TotalPrice:       item.TotalPrice.StringFixed(2),
		})
	}
	return resp
}

func parseID(raw string) (int64, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || id <= 0 {
		return 0, domain.ErrInvalidID
	}
	return id.Int64(), nil
}

func optionalString(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}
