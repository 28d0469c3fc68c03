package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	authdomain "github.com/smallbiznis/vitrine/internal/auth/domain"
	"github.com/smallbiznis/vitrine/internal/authorization"
	importdomain "github.com/smallbiznis/vitrine/internal/catalogimport/domain"
	customerdomain "github.com/smallbiznis/vitrine/internal/customer/domain"
	deliverydomain "github.com/smallbiznis/vitrine/internal/delivery/domain"
	herodomain "github.com/smallbiznis/vitrine/internal/heroslide/domain"
	orderdomain "github.com/smallbiznis/vitrine/internal/order/domain"
	productdomain "github.com/smallbiznis/vitrine/internal/product/domain"
	"github.com/smallbiznis/vitrine/internal/providers/pdf"
	taxdomain "github.com/smallbiznis/vitrine/internal/taxonomy/domain"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized     = errors.New("unauthorized")
	ErrForbidden        = errors.New("forbidden")
	ErrConflict         = errors.New("conflict")
	ErrInternal         = errors.New("internal_error")
	ErrNotFound         = errors.New("not_found")
	ErrInvalidRequest   = errors.New("invalid_request")
	ErrTooManyRequests  = errors.New("too_many_requests")
	ErrImportInProgress = errors.New("import_in_progress")
	ErrInvalidFile      = errors.New("invalid_file")
	ErrFileTooLarge     = errors.New("file_too_large")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if vErr, ok := validationErrorFor(err); ok {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  []ValidationError{vErr},
		}
	}

	if details, ok := transitionDetails(err); ok {
		return http.StatusConflict, errorPayload{
			Type:    "invalid_transition",
			Message: err.Error(),
			Details: details,
		}
	}

	switch {
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, authdomain.ErrInvalidCredentials),
		errors.Is(err, authdomain.ErrInvalidSession),
		errors.Is(err, authdomain.ErrSessionExpired),
		errors.Is(err, authdomain.ErrSessionRevoked):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, ErrForbidden),
		errors.Is(err, authorization.ErrForbidden):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case errors.Is(err, ErrTooManyRequests):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "too_many_requests",
			Message: "too many requests",
		}
	case errors.Is(err, ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, errorPayload{
			Type:    "file_too_large",
			Message: "file too large",
		}
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: conflictMessage(err),
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

// classifyErrorForLog feeds the request logger the same type the client sees.
func classifyErrorForLog(err error) (string, string) {
	status, payload := mapError(err)
	code := payload.Type
	if len(payload.Errors) > 0 {
		code = payload.Errors[0].Code
	}
	if status >= http.StatusInternalServerError {
		return "internal_error", "internal_error"
	}
	return payload.Type, code
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

// validationSentinels lists every domain error that means the caller sent
// bad input.
var validationSentinels = []error{
	ErrInvalidRequest,
	ErrInvalidFile,

	taxdomain.ErrInvalidID,
	taxdomain.ErrInvalidName,
	taxdomain.ErrInvalidSlug,
	taxdomain.ErrInvalidCategory,
	taxdomain.ErrInvalidParent,
	taxdomain.ErrInvalidBrand,
	taxdomain.ErrInvalidCollection,

	productdomain.ErrInvalidID,
	productdomain.ErrInvalidReference,
	productdomain.ErrInvalidName,
	productdomain.ErrInvalidPrice,
	productdomain.ErrInvalidDiscount,
	productdomain.ErrInvalidQuantity,
	productdomain.ErrInvalidStatus,
	productdomain.ErrInvalidCategory,
	productdomain.ErrInvalidSubCategory,
	productdomain.ErrInvalidType,
	productdomain.ErrInvalidBrand,
	productdomain.ErrInvalidCollection,
	productdomain.ErrInvalidImage,
	productdomain.ErrInvalidSpec,
	productdomain.ErrInvalidCuratedList,

	customerdomain.ErrInvalidName,
	customerdomain.ErrInvalidEmail,
	customerdomain.ErrInvalidPhone,
	customerdomain.ErrInvalidAddress,
	customerdomain.ErrInvalidCity,
	customerdomain.ErrInvalidID,

	orderdomain.ErrInvalidID,
	orderdomain.ErrEmptyItems,
	orderdomain.ErrInvalidQuantity,
	orderdomain.ErrInvalidProduct,
	orderdomain.ErrInvalidStatus,
	orderdomain.ErrInvalidPaymentMethod,

	deliverydomain.ErrInvalidID,
	deliverydomain.ErrInvalidOrder,
	deliverydomain.ErrInvalidStatus,
	deliverydomain.ErrInvalidTrackingNumber,
	deliverydomain.ErrInvalidPackageCount,
	deliverydomain.ErrInvalidDescription,
	pdf.ErrMissingTracking,

	herodomain.ErrInvalidID,
	herodomain.ErrInvalidTitle,
	herodomain.ErrInvalidImage,
	herodomain.ErrInvalidLink,

	importdomain.ErrInvalidMode,
	importdomain.ErrUnsupportedFormat,
	importdomain.ErrEmptySource,
	importdomain.ErrMissingColumns,
	importdomain.ErrInvalidID,

	authdomain.ErrInvalidUsername,
	authdomain.ErrInvalidEmail,
	authdomain.ErrWeakPassword,
	authdomain.ErrInvalidRole,
	authdomain.ErrInvalidID,
}

func validationErrorFor(err error) (ValidationError, bool) {
	for _, target := range validationSentinels {
		if !errors.Is(err, target) {
			continue
		}
		code := target.Error()
		vErr := ValidationError{
			Field:   validationErrorField(code),
			Code:    code,
			Message: validationErrorMessage(code, err),
		}
		var itemErr *orderdomain.ItemError
		if errors.As(err, &itemErr) {
			vErr.Field = fmt.Sprintf("items[%d].%s", itemErr.Index, vErr.Field)
		}
		return vErr, true
	}
	return ValidationError{}, false
}

func transitionDetails(err error) (map[string]string, bool) {
	var orderErr *orderdomain.TransitionError
	if errors.As(err, &orderErr) {
		return map[string]string{
			"from": string(orderErr.From),
			"to":   string(orderErr.To),
		}, true
	}
	var deliveryErr *deliverydomain.TransitionError
	if errors.As(err, &deliveryErr) {
		return map[string]string{
			"from": string(deliveryErr.From),
			"to":   string(deliveryErr.To),
		}, true
	}
	return nil, false
}

var conflictSentinels = []error{
	ErrConflict,
	ErrImportInProgress,
	taxdomain.ErrDuplicateName,
	taxdomain.ErrDuplicateSlug,
	productdomain.ErrDuplicateReference,
	deliverydomain.ErrDuplicateDelivery,
	deliverydomain.ErrDuplicateTracking,
	authdomain.ErrUserExists,
	authdomain.ErrLastAdmin,
}

func isConflictError(err error) bool {
	for _, target := range conflictSentinels {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func conflictMessage(err error) string {
	for _, target := range conflictSentinels {
		if errors.Is(err, target) {
			return strings.ReplaceAll(target.Error(), "_", " ")
		}
	}
	return "conflict"
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, taxdomain.ErrNotFound),
		errors.Is(err, productdomain.ErrNotFound),
		errors.Is(err, customerdomain.ErrNotFound),
		errors.Is(err, orderdomain.ErrNotFound),
		errors.Is(err, deliverydomain.ErrNotFound),
		errors.Is(err, herodomain.ErrNotFound),
		errors.Is(err, importdomain.ErrNotFound),
		errors.Is(err, authdomain.ErrUserNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func validationErrorField(code string) string {
	switch code {
	case "invalid_request":
		return "request"
	case "empty_items":
		return "items"
	case "invalid_product":
		return "product_id"
	case "invalid_customer_name":
		return "first_name"
	case "missing_tracking_number":
		return "tracking_number"
	case "weak_password":
		return "password"
	case "invalid_import_mode":
		return "mode"
	case "unsupported_import_format", "empty_import_source", "missing_import_columns", "invalid_file":
		return "file"
	case "invalid_discount_price":
		return "discount_price"
	}
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}

func validationErrorMessage(code string, err error) string {
	if msg := err.Error(); msg != code {
		return msg
	}
	switch code {
	case "invalid_request":
		return "invalid request"
	case "empty_items":
		return "at least one item is required"
	default:
		return "invalid value"
	}
}
