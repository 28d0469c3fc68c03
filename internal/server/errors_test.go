package server

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	authdomain "github.com/smallbiznis/vitrine/internal/auth/domain"
	"github.com/smallbiznis/vitrine/internal/authorization"
	importdomain "github.com/smallbiznis/vitrine/internal/catalogimport/domain"
	customerdomain "github.com/smallbiznis/vitrine/internal/customer/domain"
	deliverydomain "github.com/smallbiznis/vitrine/internal/delivery/domain"
	productdomain "github.com/smallbiznis/vitrine/internal/product/domain"
	taxdomain "github.com/smallbiznis/vitrine/internal/taxonomy/domain"
	"github.com/stretchr/testify/assert"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		typ    string
		field  string
	}{
		{"customer name", customerdomain.ErrInvalidName, http.StatusBadRequest, "validation_error", "first_name"},
		{"product price", productdomain.ErrInvalidPrice, http.StatusBadRequest, "validation_error", "price"},
		{"missing columns", fmt.Errorf("%w: price", importdomain.ErrMissingColumns), http.StatusBadRequest, "validation_error", "file"},
		{"weak password", authdomain.ErrWeakPassword, http.StatusBadRequest, "validation_error", "password"},
		{"product not found", productdomain.ErrNotFound, http.StatusNotFound, "not_found", ""},
		{"user not found", authdomain.ErrUserNotFound, http.StatusNotFound, "not_found", ""},
		{"duplicate slug", taxdomain.ErrDuplicateSlug, http.StatusConflict, "conflict", ""},
		{"last admin", authdomain.ErrLastAdmin, http.StatusConflict, "conflict", ""},
		{"import running", ErrImportInProgress, http.StatusConflict, "conflict", ""},
		{"delivery transition", &deliverydomain.TransitionError{From: deliverydomain.StatusDelivered, To: deliverydomain.StatusPending}, http.StatusConflict, "invalid_transition", ""},
		{"expired session", authdomain.ErrSessionExpired, http.StatusUnauthorized, "unauthorized", ""},
		{"forbidden", authorization.ErrForbidden, http.StatusForbidden, "forbidden", ""},
		{"throttled", ErrTooManyRequests, http.StatusTooManyRequests, "too_many_requests", ""},
		{"too large", ErrFileTooLarge, http.StatusRequestEntityTooLarge, "file_too_large", ""},
		{"unknown", errors.New("connection refused"), http.StatusInternalServerError, "internal_error", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, payload := mapError(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.typ, payload.Type)
			if tt.field != "" {
				if assert.Len(t, payload.Errors, 1) {
					assert.Equal(t, tt.field, payload.Errors[0].Field)
				}
			}
		})
	}
}

func TestMapErrorKeepsWrappedMessage(t *testing.T) {
	_, payload := mapError(fmt.Errorf("%w: price, quantity", importdomain.ErrMissingColumns))
	assert.Equal(t, "missing_import_columns", payload.Errors[0].Code)
	assert.Equal(t, "missing_import_columns: price, quantity", payload.Errors[0].Message)
}

func TestClassifyErrorForLog(t *testing.T) {
	typ, code := classifyErrorForLog(productdomain.ErrInvalidName)
	assert.Equal(t, "validation_error", typ)
	assert.Equal(t, "invalid_name", code)

	typ, code = classifyErrorForLog(errors.New("boom"))
	assert.Equal(t, "internal_error", typ)
	assert.Equal(t, "internal_error", code)
}
