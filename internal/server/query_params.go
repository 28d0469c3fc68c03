package server

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/vitrine/pkg/db/pagination"
)

func parseOptionalBool(c *gin.Context, key string) (*bool, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, newValidationError(key, "invalid_"+key, "must be true or false")
	}
	return &value, nil
}

func parseOptionalDecimal(c *gin.Context, key string) (*decimal.Decimal, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, newValidationError(key, "invalid_"+key, "must be a number")
	}
	return &value, nil
}

// parseOptionalTime accepts RFC 3339 timestamps and plain dates.
func parseOptionalTime(c *gin.Context, key string) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	if value, err := time.Parse(time.RFC3339, raw); err == nil {
		return &value, nil
	}
	value, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return nil, newValidationError(key, "invalid_"+key, "must be a date or RFC 3339 timestamp")
	}
	return &value, nil
}

func bindPagination(c *gin.Context) (pagination.Pagination, error) {
	var page pagination.Pagination
	if err := c.ShouldBindQuery(&page); err != nil {
		return pagination.Pagination{}, invalidRequestError()
	}
	return page, nil
}

// pathKey returns the :id or :slug path parameter, whichever the route names.
func pathKey(c *gin.Context) string {
	if id := c.Param("id"); id != "" {
		return id
	}
	return c.Param("slug")
}

// activeOnly hides inactive rows on the public API; the admin API sees
// everything unless it asks with ?is_active=true.
func activeOnly(c *gin.Context, public bool) (bool, error) {
	if public {
		return true, nil
	}
	value, err := parseOptionalBool(c, "is_active")
	if err != nil {
		return false, err
	}
	return value != nil && *value, nil
}
