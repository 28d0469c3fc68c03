package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	authdomain "github.com/smallbiznis/vitrine/internal/auth/domain"
	"github.com/smallbiznis/vitrine/internal/auth/session"
	"github.com/smallbiznis/vitrine/internal/authorization"
	importdomain "github.com/smallbiznis/vitrine/internal/catalogimport/domain"
	"github.com/smallbiznis/vitrine/internal/config"
	deliverydomain "github.com/smallbiznis/vitrine/internal/delivery/domain"
	"github.com/smallbiznis/vitrine/internal/observability"
	obsmetrics "github.com/smallbiznis/vitrine/internal/observability/metrics"
	orderdomain "github.com/smallbiznis/vitrine/internal/order/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	adminToken = "admin-token"
	staffToken = "staff-token"
)

type fakeAuthService struct {
	authdomain.Service
	loginCalls int
}

func (f *fakeAuthService) Authenticate(ctx context.Context, rawToken string) (*authdomain.Principal, error) {
	switch rawToken {
	case adminToken:
		return &authdomain.Principal{SessionID: 1, User: authdomain.UserResponse{ID: "10", Username: "admin", Role: authdomain.RoleAdmin, IsActive: true}}, nil
	case staffToken:
		return &authdomain.Principal{SessionID: 2, User: authdomain.UserResponse{ID: "20", Username: "clerk", Role: authdomain.RoleStaff, IsActive: true}}, nil
	}
	return nil, authdomain.ErrInvalidSession
}

func (f *fakeAuthService) Login(ctx context.Context, req authdomain.LoginRequest) (*authdomain.LoginResult, error) {
	f.loginCalls++
	if req.Password != "correct horse" {
		return nil, authdomain.ErrInvalidCredentials
	}
	return &authdomain.LoginResult{
		User:      authdomain.UserResponse{ID: "10", Username: req.Login, Role: authdomain.RoleAdmin, IsActive: true},
		RawToken:  adminToken,
		ExpiresAt: time.Now().Add(time.Hour),
	}, nil
}

type fakeOrderService struct {
	orderdomain.Service
	confirmed []string
}

func (f *fakeOrderService) Create(ctx context.Context, req orderdomain.CreateRequest) (*orderdomain.Response, error) {
	if len(req.Items) == 0 {
		return nil, orderdomain.ErrEmptyItems
	}
	if req.Items[0].Quantity <= 0 {
		return nil, &orderdomain.ItemError{Index: 0, Err: orderdomain.ErrInvalidQuantity}
	}
	return &orderdomain.Response{ID: "1", OrderNumber: "ORD-1", Status: orderdomain.StatusPending}, nil
}

func (f *fakeOrderService) Confirm(ctx context.Context, id string) (*orderdomain.Response, error) {
	f.confirmed = append(f.confirmed, id)
	return nil, &orderdomain.TransitionError{From: orderdomain.StatusShipped, To: orderdomain.StatusConfirmed}
}

type fakeDeliveryService struct {
	deliverydomain.Service
}

func (f *fakeDeliveryService) Slip(ctx context.Context, id string) (io.Reader, string, error) {
	if id != "42" {
		return nil, "", deliverydomain.ErrNotFound
	}
	return strings.NewReader("%PDF-1.4 slip"), "slip-TRK-42.pdf", nil
}

type fakeImportService struct {
	importdomain.Service
	opts    importdomain.Options
	sheet   string
	content string
}

func (f *fakeImportService) Import(ctx context.Context, req importdomain.ImportRequest) (*importdomain.Report, error) {
	f.opts = req.Options
	f.sheet = req.Sheet
	body, err := io.ReadAll(req.Content)
	if err != nil {
		return nil, err
	}
	f.content = string(body)
	report := importdomain.NewReport(req.Source, req.Mode, req.DryRun, "test")
	report.TotalRows = 1
	report.Created = 1
	return report, nil
}

type testServer struct {
	engine    *gin.Engine
	auth      *fakeAuthService
	orders    *fakeOrderService
	imports   *fakeImportService
	mediaRoot string
}

func newTestServer(t *testing.T, overrides ...func(*ServerParams)) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	httpMetrics, err := obsmetrics.NewHTTPMetrics(prometheus.NewRegistry())
	require.NoError(t, err)
	enforcer, err := authorization.NewMemoryEnforcer()
	require.NoError(t, err)
	node, err := snowflake.NewNode(3)
	require.NoError(t, err)

	cfg := config.Config{
		Media: config.MediaConfig{
			Root:           t.TempDir(),
			URLPrefix:      "/media",
			MaxUploadBytes: 1 << 20,
		},
		Import: config.ImportConfig{DefaultMode: "strict"},
	}
	log := zap.NewNop()

	ts := &testServer{
		auth:      &fakeAuthService{},
		orders:    &fakeOrderService{},
		imports:   &fakeImportService{},
		mediaRoot: cfg.Media.Root,
	}
	ts.engine = NewEngine(observability.Config{Environment: "test"}, cfg, httpMetrics)
	params := ServerParams{
		Gin:         ts.engine,
		Cfg:         cfg,
		Log:         log,
		GenID:       node,
		Authsvc:     ts.auth,
		Sessions:    session.NewManager(cfg),
		AuthzSvc:    authorization.NewService(authorization.Params{Log: log, Enforcer: enforcer}),
		OrderSvc:    ts.orders,
		DeliverySvc: &fakeDeliveryService{},
		ImportSvc:   ts.imports,
	}
	for _, override := range overrides {
		override(&params)
	}
	NewServer(params)
	return ts
}

func (ts *testServer) do(req *http.Request, token string) *httptest.ResponseRecorder {
	if token != "" {
		req.AddCookie(&http.Cookie{Name: session.DefaultCookieName, Value: token})
	}
	rec := httptest.NewRecorder()
	ts.engine.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorPayload {
	t.Helper()
	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error
}

func TestAdminRoutesRequireSession(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(httptest.NewRequest(http.MethodGet, "/admin/me", nil), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "unauthorized", decodeError(t, rec).Type)

	rec = ts.do(httptest.NewRequest(http.MethodGet, "/admin/me", nil), "expired")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.do(httptest.NewRequest(http.MethodGet, "/admin/me", nil), staffToken)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"username":"clerk"`)
}

func TestStaffCannotManageUsers(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(httptest.NewRequest(http.MethodGet, "/admin/users", nil), staffToken)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "forbidden", decodeError(t, rec).Type)
}

func TestLoginSetsSessionCookie(t *testing.T) {
	ts := newTestServer(t)

	body := `{"username":"admin","password":"correct horse"}`
	req := httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := ts.do(req, "")

	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, session.DefaultCookieName, cookies[0].Name)
	assert.Equal(t, adminToken, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)

	req = httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(`{"username":"admin","password":"nope"}`))
	req.Header.Set("Content-Type", "application/json")
	rec = ts.do(req, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, 2, ts.auth.loginCalls)
}

func TestCreateOrderRejectsEmptyItems(t *testing.T) {
	ts := newTestServer(t)

	body := `{"first_name":"Amel","last_name":"B","phone":"0550000000","address":"1 rue","city":"Alger","items":[]}`
	req := httptest.NewRequest(http.MethodPost, "/api/orders/create/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := ts.do(req, "")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	payload := decodeError(t, rec)
	assert.Equal(t, "validation_error", payload.Type)
	require.Len(t, payload.Errors, 1)
	assert.Equal(t, "items", payload.Errors[0].Field)
	assert.Equal(t, "empty_items", payload.Errors[0].Code)
}

func TestCreateOrderReportsItemIndex(t *testing.T) {
	ts := newTestServer(t)

	body := `{"items":[{"product_id":"1","quantity":0}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/orders/create/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := ts.do(req, "")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	payload := decodeError(t, rec)
	require.Len(t, payload.Errors, 1)
	assert.Equal(t, "items[0].quantity", payload.Errors[0].Field)
}

func TestOrderTransitionConflict(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(httptest.NewRequest(http.MethodPost, "/api/orders/7/confirm/", nil), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, ts.orders.confirmed)

	rec = ts.do(httptest.NewRequest(http.MethodPost, "/api/orders/7/confirm/", nil), staffToken)
	require.Equal(t, http.StatusConflict, rec.Code)
	payload := decodeError(t, rec)
	assert.Equal(t, "invalid_transition", payload.Type)
	assert.Equal(t, map[string]string{"from": "shipped", "to": "confirmed"}, payload.Details)
	assert.Equal(t, []string{"7"}, ts.orders.confirmed)
}

func TestDeliverySlipServesPDF(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(httptest.NewRequest(http.MethodGet, "/admin/deliveries/42/slip.pdf", nil), staffToken)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "slip-TRK-42.pdf")
	assert.True(t, strings.HasPrefix(rec.Body.String(), "%PDF"))

	rec = ts.do(httptest.NewRequest(http.MethodGet, "/api/deliveries/99/slip.pdf", nil), staffToken)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func multipartRequest(t *testing.T, target string, fields map[string]string, fileField, filename string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	part, err := w.CreateFormFile(fileField, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 64)...)

func TestUploadMediaStoresImage(t *testing.T) {
	ts := newTestServer(t)

	req := multipartRequest(t, "/admin/media", map[string]string{"folder": "products"}, "file", "photo.png", pngBytes)
	rec := ts.do(req, staffToken)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var body struct {
		Data mediaResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "image/png", body.Data.ContentType)
	assert.True(t, strings.HasPrefix(body.Data.URL, "/media/products/"))
	assert.True(t, strings.HasSuffix(body.Data.URL, ".png"))

	stored := filepath.Join(ts.mediaRoot, "products", filepath.Base(body.Data.URL))
	data, err := os.ReadFile(stored)
	require.NoError(t, err)
	assert.Equal(t, pngBytes, data)
}

func TestUploadMediaRejectsNonImage(t *testing.T) {
	ts := newTestServer(t)

	req := multipartRequest(t, "/admin/media", nil, "file", "notes.png", []byte("just some text"))
	rec := ts.do(req, staffToken)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	payload := decodeError(t, rec)
	require.Len(t, payload.Errors, 1)
	assert.Equal(t, "file", payload.Errors[0].Field)

	req = multipartRequest(t, "/admin/media", map[string]string{"folder": "../etc"}, "file", "photo.png", pngBytes)
	rec = ts.do(req, staffToken)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestImportCatalogPassesOptions(t *testing.T) {
	ts := newTestServer(t)

	csv := "reference,name,category,subcategory,price,quantity\nCPU-900,Test CPU,Composants,Processeurs,1000,5\n"
	req := multipartRequest(t, "/admin/imports", map[string]string{
		"mode":    "permissive",
		"dry_run": "true",
		"sheet":   "Produits",
	}, "file", "catalog.csv", []byte(csv))
	rec := ts.do(req, staffToken)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Equal(t, importdomain.Options{
		Source:    "catalog.csv",
		Mode:      importdomain.ModePermissive,
		DryRun:    true,
		StartedBy: "clerk",
	}, ts.imports.opts)
	assert.Equal(t, "Produits", ts.imports.sheet)
	assert.Equal(t, csv, ts.imports.content)
	assert.Contains(t, rec.Body.String(), `"created":1`)
}

func TestImportCatalogDefaultsAndRejectsMode(t *testing.T) {
	ts := newTestServer(t)

	req := multipartRequest(t, "/admin/imports", nil, "file", "catalog.csv", []byte("reference\n"))
	rec := ts.do(req, staffToken)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, importdomain.ModeStrict, ts.imports.opts.Mode)
	assert.False(t, ts.imports.opts.DryRun)

	req = multipartRequest(t, "/admin/imports", map[string]string{"mode": "yolo"}, "file", "catalog.csv", []byte("reference\n"))
	rec = ts.do(req, staffToken)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_import_mode", decodeError(t, rec).Errors[0].Code)
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(httptest.NewRequest(http.MethodGet, "/health", nil), "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
