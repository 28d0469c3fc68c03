package logger

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	obscontext "github.com/smallbiznis/vitrine/internal/observability/context"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
)

func TestWithContextAddsCorrelationFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	base := zap.New(core)

	ctx := obscontext.WithRequestID(context.Background(), "req-1")
	ctx = obscontext.WithActor(ctx, "user", "42")
	WithContext(ctx, base).Info("hello")

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		fields := entries[0].ContextMap()
		assert.Equal(t, "req-1", fields["request_id"])
		assert.Equal(t, "user", fields["actor_type"])
		assert.Equal(t, "42", fields["actor_id"])
		assert.NotContains(t, fields, "trace_id")
	}
}

func TestOperationFromSQL(t *testing.T) {
	assert.Equal(t, "SELECT", operationFromSQL("select * from products"))
	assert.Equal(t, "UPDATE", operationFromSQL("WITH x AS (SELECT 1) UPDATE orders SET status = 'confirmed'"))
	assert.Equal(t, "INSERT", operationFromSQL("INSERT INTO products (name, price) VALUES ('a', 1)"))
	assert.Equal(t, "UNKNOWN", operationFromSQL(""))
}

func TestAccessLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, accessLevel("/health", http.StatusOK, ""))
	assert.Equal(t, zapcore.ErrorLevel, accessLevel("/api/orders/create/", http.StatusInternalServerError, "internal_error"))
	assert.Equal(t, zapcore.DebugLevel, accessLevel("/api/products/", http.StatusBadRequest, "validation_error"))
	assert.Equal(t, zapcore.InfoLevel, accessLevel("/api/orders/create/", http.StatusBadRequest, "validation_error"))
	assert.Equal(t, zapcore.WarnLevel, accessLevel("/admin/login", http.StatusTooManyRequests, "too_many_requests"))
	assert.Equal(t, zapcore.InfoLevel, accessLevel("/api/products/", http.StatusOK, ""))
}

func TestGinMiddlewareLogsExtraFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	restore := zap.ReplaceGlobals(zap.New(core))
	defer restore()

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(GinMiddleware(MiddlewareConfig{}))
	r.POST("/admin/imports/", func(c *gin.Context) {
		AddField(c, "import_run_id", "77")
		AddField(c, "ignored", " ")
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/admin/imports/", nil)
	req.Header.Set("X-Request-Id", "req-9")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, "req-9", rec.Header().Get("X-Request-Id"))
	entries := logs.FilterMessage("http_request").All()
	if assert.Len(t, entries, 1) {
		fields := entries[0].ContextMap()
		assert.Equal(t, "77", fields["import_run_id"])
		assert.Equal(t, "req-9", fields["request_id"])
		assert.Equal(t, "/admin/imports/", fields["route"])
		assert.NotContains(t, fields, "ignored")
	}
}

func TestGormTraceSkipsExpectedErrors(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	restore := zap.ReplaceGlobals(zap.New(core))
	defer restore()

	l := NewGormLogger(GormLoggerConfigFor("info"))
	query := func() (string, int64) { return "SELECT * FROM products WHERE slug = ?", 0 }

	l.Trace(context.Background(), time.Now(), query, gorm.ErrRecordNotFound)
	assert.Zero(t, logs.Len())

	l.Trace(context.Background(), time.Now(), query, errors.New("connection reset"))
	entries := logs.FilterMessage("gorm.query").All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
		assert.Equal(t, "SELECT", entries[0].ContextMap()["operation"])
	}
}
