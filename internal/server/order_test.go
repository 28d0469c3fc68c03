package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
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
	orderdomain "github.com/smallbiznis/vitrine/internal/order/domain"
	orderrepository "github.com/smallbiznis/vitrine/internal/order/repository"
	orderservice "github.com/smallbiznis/vitrine/internal/order/service"
	productdomain "github.com/smallbiznis/vitrine/internal/product/domain"
	productrepository "github.com/smallbiznis/vitrine/internal/product/repository"
	taxdomain "github.com/smallbiznis/vitrine/internal/taxonomy/domain"
	"github.com/smallbiznis/vitrine/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newCheckoutServer(t *testing.T) (*testServer, *gorm.DB, *snowflake.Node) {
	t.Helper()

	conn := db.NewTest(t,
		&taxdomain.Collection{}, &taxdomain.Brand{}, &taxdomain.Category{},
		&taxdomain.SubCategory{}, &taxdomain.Type{},
		&productdomain.Product{}, &productdomain.ProductImage{}, &productdomain.ProductSpecification{},
		&customerdomain.Customer{}, &orderdomain.Order{}, &orderdomain.OrderItem{},
	)
	node, err := snowflake.NewNode(7)
	require.NoError(t, err)
	fake := clock.NewFakeClock(time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC))
	log := zap.NewNop()

	customers := customerservice.New(customerservice.Params{
		DB: conn, Log: log, GenID: node, Clock: fake, Repo: customerrepository.Provide(),
	})
	orders := orderservice.New(orderservice.Params{
		DB:        conn,
		Log:       log,
		GenID:     node,
		Clock:     fake,
		Cfg:       config.Config{Shipping: config.ShippingConfig{}},
		Repo:      orderrepository.Provide(),
		Customers: customers,
		Products:  productrepository.Provide(),
	})

	ts := newTestServer(t, func(p *ServerParams) { p.OrderSvc = orders })
	return ts, conn, node
}

func TestCreateOrderEndToEnd(t *testing.T) {
	ts, conn, node := newCheckoutServer(t)

	now := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	product := &productdomain.Product{
		ID:            node.Generate().Int64(),
		Reference:     "SSD-1TB",
		Name:          "SSD 1 To",
		Slug:          "ssd-1-to",
		Price:         decimal.RequireFromString("12500.00"),
		DiscountPrice: decimal.NewNullDecimal(decimal.RequireFromString("11000.00")),
		Quantity:      5,
		Status:        productdomain.StatusInStock,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	require.NoError(t, conn.Create(product).Error)

	body := fmt.Sprintf(`{
		"first_name":"Amel","last_name":"Bensalem","phone":"0550 11 22 33",
		"address":"12 rue Didouche Mourad","city":"Alger",
		"items":[{"product_id":%d,"quantity":2}]
	}`, product.ID)
	req := httptest.NewRequest(http.MethodPost, "/api/orders/create/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := ts.do(req, "")

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp struct {
		Data orderdomain.Response `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.True(t, strings.HasPrefix(resp.Data.OrderNumber, orderservice.OrderNumberPrefix))
	assert.Equal(t, orderdomain.StatusPending, resp.Data.Status)
	assert.Equal(t, "22000.00", resp.Data.Subtotal)
	assert.Equal(t, "22000.00", resp.Data.Total)
	require.Len(t, resp.Data.Items, 1)
	assert.Equal(t, "SSD-1TB", resp.Data.Items[0].ProductReference)
	assert.Equal(t, "11000.00", resp.Data.Items[0].UnitPrice)

	var orders, customers int64
	require.NoError(t, conn.Model(&orderdomain.Order{}).Count(&orders).Error)
	require.NoError(t, conn.Model(&customerdomain.Customer{}).Count(&customers).Error)
	assert.Equal(t, int64(1), orders)
	assert.Equal(t, int64(1), customers)
}

func TestCreateOrderUnknownProductIndex(t *testing.T) {
	ts, conn, _ := newCheckoutServer(t)

	body := `{"first_name":"Amel","last_name":"B","phone":"0550000000","address":"1 rue","city":"Alger",
		"items":[{"product_id":999,"quantity":1}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/orders/create/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := ts.do(req, "")

	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	payload := decodeError(t, rec)
	require.Len(t, payload.Errors, 1)
	assert.Equal(t, "items[0].product_id", payload.Errors[0].Field)

	var orders int64
	require.NoError(t, conn.Model(&orderdomain.Order{}).Count(&orders).Error)
	assert.Zero(t, orders)
}
