package logger

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	obscontext "github.com/smallbiznis/vitrine/internal/observability/context"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	headerRequestID = "X-Request-Id"
	keyRequestID    = "request_id"
	keyExtraFields  = "log_fields"
)

// MiddlewareConfig controls request logging behavior.
type MiddlewareConfig struct {
	Debug           bool
	ErrorClassifier func(err error) (string, string)
}

// AddField attaches a string field to the access log line of the current request.
func AddField(c *gin.Context, key, value string) {
	if value = strings.TrimSpace(value); value == "" {
		return
	}
	var fields []zap.Field
	if v, ok := c.Get(keyExtraFields); ok {
		fields, _ = v.([]zap.Field)
	}
	c.Set(keyExtraFields, append(fields, zap.String(key, value)))
}

// GinMiddleware writes one "http_request" line per request, tagged with the
// request id that is also echoed back in X-Request-Id.
func GinMiddleware(cfg MiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := requestIDFor(c)
		c.Set(keyRequestID, requestID)
		c.Header(headerRequestID, requestID)
		c.Request = c.Request.WithContext(obscontext.WithRequestID(c.Request.Context(), requestID))

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.Int64("bytes_in", max(c.Request.ContentLength, 0)),
			zap.Int("bytes_out", max(c.Writer.Size(), 0)),
		}
		if v, ok := c.Get(keyExtraFields); ok {
			extra, _ := v.([]zap.Field)
			fields = append(fields, extra...)
		}

		errorType := ""
		if last := c.Errors.Last(); last != nil && cfg.ErrorClassifier != nil {
			var errorCode string
			errorType, errorCode = cfg.ErrorClassifier(last.Err)
			fields = append(fields, zap.String("error_type", errorType), zap.String("error_code", errorCode))
			if cfg.Debug && status >= http.StatusInternalServerError {
				fields = append(fields, zap.NamedError("cause", last.Err))
			}
		}

		if ce := FromContext(c.Request.Context()).Check(accessLevel(route, status, errorType), "http_request"); ce != nil {
			ce.Write(fields...)
		}
	}
}

func requestIDFor(c *gin.Context) string {
	if id := strings.TrimSpace(c.GetHeader(headerRequestID)); id != "" && len(id) <= 128 {
		return id
	}
	return uuid.NewString()
}

// accessLevel keeps health checks, scrapes and shopper filter typos out of
// the info stream.
func accessLevel(route string, status int, errorType string) zapcore.Level {
	switch {
	case route == "/health" || route == "/metrics":
		return zapcore.DebugLevel
	case status >= http.StatusInternalServerError:
		return zapcore.ErrorLevel
	case errorType == "validation_error" && isCatalogBrowse(route):
		return zapcore.DebugLevel
	case status == http.StatusUnauthorized || status == http.StatusForbidden || status == http.StatusTooManyRequests:
		return zapcore.WarnLevel
	}
	return zapcore.InfoLevel
}

func isCatalogBrowse(route string) bool {
	return strings.HasPrefix(route, "/api/products") || strings.HasPrefix(route, "/api/types")
}
