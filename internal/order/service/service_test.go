package service

import (
	"context"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/vitrine/internal/clock"
	"github.com/smallbiznis/vitrine/internal/config"
	customerdomain "github.com/smallbiznis/vitrine/internal/customer/domain"
	customerrepository "github.com/smallbiznis/vitrine/internal/customer/repository"
	customerservice "github.com/smallbiznis/vitrine/internal/customer/service"
	"github.com/smallbiznis/vitrine/internal/order/domain"
	"github.com/smallbiznis/vitrine/internal/order/repository"
	productdomain "github.com/smallbiznis/vitrine/internal/product/domain"
	productrepository "github.com/smallbiznis/vitrine/internal/product/repository"
	taxdomain "github.com/smallbiznis/vitrine/internal/taxonomy/domain"
	"github.com/smallbiznis/vitrine/pkg/db"
	"github.com/smallbiznis/vitrine/pkg/db/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	svc   domain.Service
	db    *gorm.DB
	clock *clock.FakeClock
	node  *snowflake.Node
}

func newFixture(t *testing.T, shipping config.ShippingConfig) *fixture {
	t.Helper()

	conn := db.NewTest(t,
		&taxdomain.Collection{}, &taxdomain.Brand{}, &taxdomain.Category{},
		&taxdomain.SubCategory{}, &taxdomain.Type{},
		&productdomain.Product{}, &productdomain.ProductImage{}, &productdomain.ProductSpecification{},
		&customerdomain.Customer{}, &domain.Order{}, &domain.OrderItem{},
	)
	node, err := snowflake.NewNode(5)
	require.NoError(t, err)
	fake := clock.NewFakeClock(time.Date(2026, 6, 10, 14, 0, 0, 0, time.UTC))
	log := zap.NewNop()

	customers := customerservice.New(customerservice.Params{
		DB: conn, Log: log, GenID: node, Clock: fake, Repo: customerrepository.Provide(),
	})
	svc := New(Params{
		DB:        conn,
		Log:       log,
		GenID:     node,
		Clock:     fake,
		Cfg:       config.Config{Shipping: shipping},
		Repo:      repository.Provide(),
		Customers: customers,
		Products:  productrepository.Provide(),
	})
	return &fixture{svc: svc, db: conn, clock: fake, node: node}
}

func (f *fixture) product(t *testing.T, reference, price, discount string) *productdomain.Product {
	t.Helper()
	now := f.clock.Now()
	p := &productdomain.Product{
		ID:        f.node.Generate().Int64(),
		Reference: reference,
		Name:      "Produit " + reference,
		Slug:      strings.ToLower(reference),
		Price:     decimal.RequireFromString(price),
		Quantity:  10,
		Status:    productdomain.StatusInStock,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if discount != "" {
		p.DiscountPrice = decimal.NewNullDecimal(decimal.RequireFromString(discount))
	}
	require.NoError(t, f.db.Create(p).Error)
	return p
}

func (f *fixture) count(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(model).Count(&n).Error)
	return n
}

func checkout(items ...domain.ItemRequest) domain.CreateRequest {
	return domain.CreateRequest{
		CreateCustomerRequest: customerdomain.CreateCustomerRequest{
			FirstName: "Karim",
			LastName:  "Meziane",
			Phone:     "0555 12 34 56",
			Address:   "3 boulevard Zighout Youcef",
			City:      "Constantine",
		},
		Items: items,
	}
}

func item(p *productdomain.Product, quantity int) domain.ItemRequest {
	return domain.ItemRequest{ProductID: strconv.FormatInt(p.ID, 10), Quantity: quantity}
}

func TestCreateOrderTotals(t *testing.T) {
	f := newFixture(t, config.ShippingConfig{})
	p := f.product(t, "CPU-900", "100.00", "")

	resp, err := f.svc.Create(context.Background(), checkout(item(p, 2)))
	require.NoError(t, err)

	assert.Equal(t, domain.StatusPending, resp.Status)
	assert.Equal(t, domain.PaymentCashOnDelivery, resp.PaymentMethod)
	assert.True(t, strings.HasPrefix(resp.OrderNumber, OrderNumberPrefix))
	assert.Equal(t, "200.00", resp.Subtotal)
	assert.Equal(t, "0.00", resp.ShippingCost)
	assert.Equal(t, "200.00", resp.Total)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "100.00", resp.Items[0].UnitPrice)
	assert.Equal(t, "200.00", resp.Items[0].TotalPrice)
	assert.Equal(t, "CPU-900", resp.Items[0].ProductReference)
	require.NotNil(t, resp.Customer)
	assert.Equal(t, "Karim Meziane", resp.Customer.FullName)
	assert.Nil(t, resp.ConfirmedAt)
}

func TestCreateOrderSnapshotsFinalPrice(t *testing.T) {
	f := newFixture(t, config.ShippingConfig{FlatRate: decimal.RequireFromString("400")})
	discounted := f.product(t, "GPU-1", "50000", "45000.50")
	plain := f.product(t, "KB-1", "2500", "3000")

	resp, err := f.svc.Create(context.Background(), checkout(item(discounted, 1), item(plain, 3)))
	require.NoError(t, err)

	assert.Equal(t, "45000.50", resp.Items[0].UnitPrice)
	assert.Equal(t, "2500.00", resp.Items[1].UnitPrice)
	assert.Equal(t, "7500.00", resp.Items[1].TotalPrice)
	assert.Equal(t, "52500.50", resp.Subtotal)
	assert.Equal(t, "400.00", resp.ShippingCost)
	assert.Equal(t, "52900.50", resp.Total)

	require.NoError(t, f.db.Model(&productdomain.Product{}).Where("id = ?", plain.ID).
		Update("price", decimal.RequireFromString("9999")).Error)

	again, err := f.svc.Get(context.Background(), resp.ID)
	require.NoError(t, err)
	assert.Equal(t, "2500.00", again.Items[1].UnitPrice)
	assert.Equal(t, resp.Total, again.Total)
}

func TestCreateOrderFreeShippingThreshold(t *testing.T) {
	threshold := decimal.RequireFromString("10000")
	f := newFixture(t, config.ShippingConfig{FlatRate: decimal.RequireFromString("600"), FreeAbove: &threshold})
	cheap := f.product(t, "USB-1", "1500", "")
	expensive := f.product(t, "SSD-1", "12000", "")

	resp, err := f.svc.Create(context.Background(), checkout(item(cheap, 1)))
	require.NoError(t, err)
	assert.Equal(t, "600.00", resp.ShippingCost)
	assert.Equal(t, "2100.00", resp.Total)

	resp, err = f.svc.Create(context.Background(), checkout(item(expensive, 1)))
	require.NoError(t, err)
	assert.Equal(t, "0.00", resp.ShippingCost)
	assert.Equal(t, "12000.00", resp.Total)
}

func TestCreateOrderRejectsAndWritesNothing(t *testing.T) {
	f := newFixture(t, config.ShippingConfig{})
	p := f.product(t, "CPU-900", "100", "")
	ctx := context.Background()

	_, err := f.svc.Create(ctx, checkout())
	assert.ErrorIs(t, err, domain.ErrEmptyItems)

	_, err = f.svc.Create(ctx, checkout(item(p, 0)))
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, err = f.svc.Create(ctx, checkout(domain.ItemRequest{ProductID: "abc", Quantity: 1}))
	assert.ErrorIs(t, err, domain.ErrInvalidProduct)

	req := checkout(item(p, 1), domain.ItemRequest{ProductID: "123456", Quantity: 1})
	_, err = f.svc.Create(ctx, req)
	require.ErrorIs(t, err, domain.ErrInvalidProduct)
	var itemErr *domain.ItemError
	require.ErrorAs(t, err, &itemErr)
	assert.Equal(t, 1, itemErr.Index)

	req = checkout(item(p, 1))
	req.PaymentMethod = "bitcoin"
	_, err = f.svc.Create(ctx, req)
	assert.ErrorIs(t, err, domain.ErrInvalidPaymentMethod)

	req = checkout(item(p, 1))
	req.Phone = ""
	_, err = f.svc.Create(ctx, req)
	assert.ErrorIs(t, err, customerdomain.ErrInvalidPhone)

	assert.Equal(t, int64(0), f.count(t, &customerdomain.Customer{}))
	assert.Equal(t, int64(0), f.count(t, &domain.Order{}))
	assert.Equal(t, int64(0), f.count(t, &domain.OrderItem{}))
}

func TestConfirmAndCancel(t *testing.T) {
	f := newFixture(t, config.ShippingConfig{})
	p := f.product(t, "CPU-900", "100", "")
	ctx := context.Background()

	created, err := f.svc.Create(ctx, checkout(item(p, 1)))
	require.NoError(t, err)

	f.clock.Advance(time.Hour)
	confirmed, err := f.svc.Confirm(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, confirmed.Status)
	require.NotNil(t, confirmed.ConfirmedAt)
	assert.True(t, confirmed.ConfirmedAt.Equal(f.clock.Now()))

	_, err = f.svc.Confirm(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	cancelled, err := f.svc.Cancel(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, cancelled.Status)

	_, err = f.svc.Cancel(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = f.svc.Confirm(ctx, "42")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.svc.Cancel(ctx, "x")
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}

func TestConfirmShippedOrderLeavesStatus(t *testing.T) {
	f := newFixture(t, config.ShippingConfig{})
	p := f.product(t, "CPU-900", "100", "")
	ctx := context.Background()

	created, err := f.svc.Create(ctx, checkout(item(p, 1)))
	require.NoError(t, err)
	_, err = f.svc.UpdateStatus(ctx, created.ID, "shipped")
	require.NoError(t, err)

	_, err = f.svc.Confirm(ctx, created.ID)
	var te *domain.TransitionError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, domain.StatusShipped, te.From)

	_, err = f.svc.Cancel(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	got, err := f.svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusShipped, got.Status)
	assert.Nil(t, got.ConfirmedAt)
}

func TestUpdateStatus(t *testing.T) {
	f := newFixture(t, config.ShippingConfig{})
	p := f.product(t, "CPU-900", "100", "")
	ctx := context.Background()

	created, err := f.svc.Create(ctx, checkout(item(p, 1)))
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(ctx, created.ID, "lost")
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)

	resp, err := f.svc.UpdateStatus(ctx, created.ID, " Confirmed ")
	require.NoError(t, err)
	require.NotNil(t, resp.ConfirmedAt)
	stamped := *resp.ConfirmedAt

	f.clock.Advance(time.Hour)
	for _, status := range []string{"preparing", "ready", "confirmed", "delivered"} {
		resp, err = f.svc.UpdateStatus(ctx, created.ID, status)
		require.NoError(t, err, status)
	}
	assert.Equal(t, domain.StatusDelivered, resp.Status)
	assert.True(t, resp.ConfirmedAt.Equal(stamped))

	_, err = f.svc.UpdateStatus(ctx, created.ID, "shipped")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestGetByNumberAndList(t *testing.T) {
	f := newFixture(t, config.ShippingConfig{})
	p := f.product(t, "CPU-900", "100", "")
	ctx := context.Background()

	first, err := f.svc.Create(ctx, checkout(item(p, 1)))
	require.NoError(t, err)
	f.clock.Advance(time.Minute)
	other := checkout(item(p, 2))
	other.LastName = "Ait Ali"
	second, err := f.svc.Create(ctx, other)
	require.NoError(t, err)
	_, err = f.svc.Confirm(ctx, second.ID)
	require.NoError(t, err)

	byNumber, err := f.svc.Get(ctx, strings.ToLower(first.OrderNumber))
	require.NoError(t, err)
	assert.Equal(t, first.ID, byNumber.ID)

	all, err := f.svc.List(ctx, domain.ListRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), all.TotalCount)
	assert.Equal(t, second.ID, all.Results[0].ID)

	confirmed, err := f.svc.List(ctx, domain.ListRequest{Status: "confirmed"})
	require.NoError(t, err)
	require.Len(t, confirmed.Results, 1)
	assert.Equal(t, second.ID, confirmed.Results[0].ID)

	searched, err := f.svc.List(ctx, domain.ListRequest{Search: "ait", Page: pagination.Pagination{PageSize: 5}})
	require.NoError(t, err)
	require.Len(t, searched.Results, 1)
	assert.Equal(t, second.ID, searched.Results[0].ID)

	_, err = f.svc.List(ctx, domain.ListRequest{Status: "lost"})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestDeletedProductKeepsOrderSnapshot(t *testing.T) {
	f := newFixture(t, config.ShippingConfig{})
	p := f.product(t, "CPU-900", "100", "")
	ctx := context.Background()

	created, err := f.svc.Create(ctx, checkout(item(p, 1)))
	require.NoError(t, err)

	require.NoError(t, productrepository.Provide().Delete(ctx, f.db, p.ID))

	got, err := f.svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Nil(t, got.Items[0].ProductID)
	assert.Equal(t, "CPU-900", got.Items[0].ProductReference)
	assert.Equal(t, "100.00", got.Total)
}
