package service

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/vitrine/internal/clock"
	"github.com/smallbiznis/vitrine/internal/config"
	"github.com/smallbiznis/vitrine/internal/delivery/domain"
	orderdomain "github.com/smallbiznis/vitrine/internal/order/domain"
	"github.com/smallbiznis/vitrine/internal/providers/pdf"
	"github.com/smallbiznis/vitrine/pkg/db"
	"github.com/smallbiznis/vitrine/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TrackingPrefix starts every generated tracking number.
const TrackingPrefix = "TRK-"

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	GenID  *snowflake.Node
	Clock  clock.Clock
	Cfg    config.Config
	Repo   domain.Repository
	Orders orderdomain.Repository
	PDF    pdf.Provider
}

type Service struct {
	db     *gorm.DB
	log    *zap.Logger
	genID  *snowflake.Node
	clock  clock.Clock
	strict bool
	repo   domain.Repository
	orders orderdomain.Repository
	pdf    pdf.Provider
}

func New(p Params) domain.Service {
	return &Service{
		db:     p.DB,
		log:    p.Log.Named("delivery.service"),
		genID:  p.GenID,
		clock:  p.Clock,
		strict: p.Cfg.DeliveryStrictTransitions,
		repo:   p.Repo,
		orders: p.Orders,
		pdf:    p.PDF,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Response, error) {
	orderID, err := snowflake.ParseString(strings.TrimSpace(req.OrderID))
	if err != nil || orderID <= 0 {
		return nil, domain.ErrInvalidOrder
	}

	status := domain.StatusPending
	if raw := strings.TrimSpace(req.Status); raw != "" {
		status = domain.Status(strings.ToLower(raw))
		if !status.Valid() {
			return nil, domain.ErrInvalidStatus
		}
	}

	packages := 1
	if req.PackageCount != nil {
		packages = *req.PackageCount
	}
	if packages < 1 {
		return nil, domain.ErrInvalidPackageCount
	}

	id := s.genID.Generate()
	tracking := strings.TrimSpace(req.TrackingNumber)
	if tracking == "" {
		tracking = TrackingPrefix + id.String()
	} else if err := validateTracking(tracking); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	delivery := &domain.Delivery{
		ID:             id.Int64(),
		OrderID:        orderID.Int64(),
		TrackingNumber: tracking,
		Status:         status,
		Carrier:        strings.TrimSpace(req.Carrier),
		PackageCount:   packages,
		Notes:          optionalString(req.Notes),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	stampStatus(delivery, now)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := s.orders.FindByIDForUpdate(ctx, tx, delivery.OrderID)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrInvalidOrder
		}
		existing, err := s.repo.FindByOrderID(ctx, tx, delivery.OrderID)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrDuplicateDelivery
		}
		if err := s.ensureTrackingFree(ctx, tx, tracking, 0); err != nil {
			return err
		}
		if err := s.repo.Insert(ctx, tx, delivery); err != nil {
			if db.IsDuplicateKeyErr(err) {
				return domain.ErrDuplicateDelivery
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("delivery created",
		zap.Int64("delivery_id", delivery.ID),
		zap.Int64("order_id", delivery.OrderID),
		zap.String("tracking_number", delivery.TrackingNumber),
	)
	return s.get(ctx, delivery.ID, false)
}

func (s *Service) ensureTrackingFree(ctx context.Context, tx *gorm.DB, tracking string, selfID int64) error {
	other, err := s.repo.FindByTracking(ctx, tx, tracking)
	if err != nil {
		return err
	}
	if other != nil && other.ID != selfID {
		return domain.ErrDuplicateTracking
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Response, error) {
	deliveryID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	return s.get(ctx, deliveryID, true)
}

func (s *Service) get(ctx context.Context, id int64, withHistory bool) (*domain.Response, error) {
	delivery, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if delivery == nil {
		return nil, domain.ErrNotFound
	}
	if withHistory {
		if delivery.History, err = s.repo.ListHistory(ctx, s.db, delivery.ID); err != nil {
			return nil, err
		}
	}
	resp := toResponse(delivery)
	return &resp, nil
}

func (s *Service) Track(ctx context.Context, trackingNumber string) (*domain.Response, error) {
	trackingNumber = strings.TrimSpace(trackingNumber)
	if trackingNumber == "" {
		return nil, domain.ErrNotFound
	}
	delivery, err := s.repo.FindByTracking(ctx, s.db, trackingNumber)
	if err != nil {
		return nil, err
	}
	if delivery == nil {
		return nil, domain.ErrNotFound
	}
	if delivery.History, err = s.repo.ListHistory(ctx, s.db, delivery.ID); err != nil {
		return nil, err
	}
	resp := toResponse(delivery)
	return &resp, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) (*domain.ListResponse, error) {
	filter := domain.ListFilter{
		Carrier: strings.TrimSpace(req.Carrier),
		Search:  strings.TrimSpace(req.Search),
		Offset:  req.Page.Offset(),
		Limit:   req.Page.Limit(),
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

func (s *Service) Update(ctx context.Context, id string, req domain.UpdateRequest) (*domain.Response, error) {
	deliveryID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		delivery, err := s.repo.FindByIDForUpdate(ctx, tx, deliveryID)
		if err != nil {
			return err
		}
		if delivery == nil {
			return domain.ErrNotFound
		}

		if req.TrackingNumber != nil {
			tracking := strings.TrimSpace(*req.TrackingNumber)
			if err := validateTracking(tracking); err != nil {
				return err
			}
			if err := s.ensureTrackingFree(ctx, tx, tracking, delivery.ID); err != nil {
				return err
			}
			delivery.TrackingNumber = tracking
		}
		if req.Carrier != nil {
			delivery.Carrier = strings.TrimSpace(*req.Carrier)
		}
		if req.PackageCount != nil {
			if *req.PackageCount < 1 {
				return domain.ErrInvalidPackageCount
			}
			delivery.PackageCount = *req.PackageCount
		}
		if req.Notes != nil {
			delivery.Notes = optionalString(*req.Notes)
		}
		delivery.UpdatedAt = s.clock.Now()

		if err := s.repo.Save(ctx, tx, delivery); err != nil {
			if db.IsDuplicateKeyErr(err) {
				return domain.ErrDuplicateTracking
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.get(ctx, deliveryID, false)
}

// UpdateStatus sets the delivery status. Moving to in_transit stamps
// shipped_at and moving to delivered stamps delivered_at, each only once.
// No history entry is written; staff add those explicitly.
func (s *Service) UpdateStatus(ctx context.Context, id string, status string) (*domain.Response, error) {
	deliveryID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	target := domain.Status(strings.ToLower(strings.TrimSpace(status)))
	if !target.Valid() {
		return nil, domain.ErrInvalidStatus
	}

	var from domain.Status
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		delivery, err := s.repo.FindByIDForUpdate(ctx, tx, deliveryID)
		if err != nil {
			return err
		}
		if delivery == nil {
			return domain.ErrNotFound
		}
		if err := domain.CheckTransition(delivery.Status, target, s.strict); err != nil {
			return err
		}

		from = delivery.Status
		if from == target {
			return nil
		}
		now := s.clock.Now()
		delivery.Status = target
		delivery.UpdatedAt = now
		stampStatus(delivery, now)
		return s.repo.Save(ctx, tx, delivery)
	})
	if err != nil {
		return nil, err
	}

	if from != target {
		s.log.Info("delivery status changed",
			zap.Int64("delivery_id", deliveryID),
			zap.String("from", string(from)),
			zap.String("to", string(target)),
		)
	}
	return s.get(ctx, deliveryID, false)
}

func stampStatus(delivery *domain.Delivery, now time.Time) {
	switch delivery.Status {
	case domain.StatusInTransit:
		if delivery.ShippedAt == nil {
			delivery.ShippedAt = &now
		}
	case domain.StatusDelivered:
		if delivery.DeliveredAt == nil {
			delivery.DeliveredAt = &now
		}
	}
}

func (s *Service) Delete(ctx context.Context, id string) error {
	deliveryID, err := parseID(id)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		delivery, err := s.repo.FindByIDForUpdate(ctx, tx, deliveryID)
		if err != nil {
			return err
		}
		if delivery == nil {
			return domain.ErrNotFound
		}
		return s.repo.Delete(ctx, tx, deliveryID)
	})
}

// AddHistory appends a log entry. Without an explicit status the entry
// records the delivery's current one.
func (s *Service) AddHistory(ctx context.Context, id string, req domain.HistoryRequest) (*domain.HistoryResponse, error) {
	deliveryID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	description := strings.TrimSpace(req.Description)
	if description == "" {
		return nil, domain.ErrInvalidDescription
	}

	var entry *domain.History
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		delivery, err := s.repo.FindByIDForUpdate(ctx, tx, deliveryID)
		if err != nil {
			return err
		}
		if delivery == nil {
			return domain.ErrNotFound
		}

		status := delivery.Status
		if raw := strings.TrimSpace(req.Status); raw != "" {
			status = domain.Status(strings.ToLower(raw))
			if !status.Valid() {
				return domain.ErrInvalidStatus
			}
		}
		entry = &domain.History{
			ID:          s.genID.Generate().Int64(),
			DeliveryID:  delivery.ID,
			Status:      status,
			Description: description,
			Location:    optionalString(req.Location),
			CreatedBy:   optionalString(req.CreatedBy),
			CreatedAt:   s.clock.Now(),
		}
		return s.repo.AppendHistory(ctx, tx, entry)
	})
	if err != nil {
		return nil, err
	}
	resp := toHistoryResponse(entry)
	return &resp, nil
}

func (s *Service) ListHistory(ctx context.Context, id string) ([]domain.HistoryResponse, error) {
	deliveryID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	delivery, err := s.repo.FindByID(ctx, s.db, deliveryID)
	if err != nil {
		return nil, err
	}
	if delivery == nil {
		return nil, domain.ErrNotFound
	}
	entries, err := s.repo.ListHistory(ctx, s.db, deliveryID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.HistoryResponse, 0, len(entries))
	for i := range entries {
		out = append(out, toHistoryResponse(&entries[i]))
	}
	return out, nil
}

func (s *Service) Slip(ctx context.Context, id string) (io.Reader, string, error) {
	deliveryID, err := parseID(id)
	if err != nil {
		return nil, "", err
	}
	delivery, err := s.repo.FindByID(ctx, s.db, deliveryID)
	if err != nil {
		return nil, "", err
	}
	if delivery == nil {
		return nil, "", domain.ErrNotFound
	}
	order, err := s.orders.FindByID(ctx, s.db, delivery.OrderID)
	if err != nil {
		return nil, "", err
	}
	if order == nil {
		return nil, "", domain.ErrInvalidOrder
	}

	doc, err := s.pdf.DeliverySlip(ctx, slipData(delivery, order))
	if err != nil {
		return nil, "", err
	}
	return doc, fmt.Sprintf("delivery-%s.pdf", delivery.TrackingNumber), nil
}

func slipData(delivery *domain.Delivery, order *orderdomain.Order) pdf.SlipData {
	data := pdf.SlipData{
		OrderNumber:    order.OrderNumber,
		OrderDate:      order.CreatedAt.Format("2006-01-02"),
		TrackingNumber: delivery.TrackingNumber,
		Carrier:        delivery.Carrier,
		PackageCount:   delivery.PackageCount,
		PaymentMethod:  string(order.PaymentMethod),
		Subtotal:       order.Subtotal.StringFixed(2),
		ShippingCost:   order.ShippingCost.StringFixed(2),
		Total:          order.Total.StringFixed(2),
	}
	if order.Notes != nil {
		data.Notes = *order.Notes
	}
	if c := order.Customer; c != nil {
		data.CustomerName = c.FullName()
		data.CustomerPhone = c.Phone
		data.AddressLines = append(data.AddressLines, c.Address)
		city := c.City
		if c.PostalCode != nil {
			city = *c.PostalCode + " " + city
		}
		if c.Region != nil {
			city += ", " + *c.Region
		}
		data.AddressLines = append(data.AddressLines, city)
	}
	for _, item := range order.Items {
		data.Items = append(data.Items, pdf.SlipItem{
			Reference: item.ProductReference,
			Name:      item.ProductName,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice.StringFixed(2),
			Total:     item.TotalPrice.StringFixed(2),
		})
	}
	return data
}

func toResponse(d *domain.Delivery) domain.Response {
	resp := domain.Response{
		ID:             strconv.FormatInt(d.ID, 10),
		OrderID:        strconv.FormatInt(d.OrderID, 10),
		TrackingNumber: d.TrackingNumber,
		Status:         d.Status,
		Carrier:        d.Carrier,
		PackageCount:   d.PackageCount,
		Notes:          d.Notes,
		ShippedAt:      d.ShippedAt,
		DeliveredAt:    d.DeliveredAt,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
	if d.Order != nil {
		resp.OrderNumber = d.Order.OrderNumber
	}
	for i := range d.History {
		resp.History = append(resp.History, toHistoryResponse(&d.History[i]))
	}
	return resp
}

func toHistoryResponse(h *domain.History) domain.HistoryResponse {
	return domain.HistoryResponse{
		ID:          strconv.FormatInt(h.ID, 10),
		Status:      h.Status,
		Description: h.Description,
		Location:    h.Location,
		CreatedBy:   h.CreatedBy,
		CreatedAt:   h.CreatedAt,
	}
}

func validateTracking(tracking string) error {
	if tracking == "" || len([]rune(tracking)) > 100 {
		return domain.ErrInvalidTrackingNumber
	}
	return nil
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
