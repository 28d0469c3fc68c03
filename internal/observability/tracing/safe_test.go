package tracing

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/attribute"
)

func TestSafeAttributesDropsSensitiveKeys(t *testing.T) {
	attrs := SafeAttributes(
		attribute.String("http.route", "/api/orders/create/"),
		attribute.String("customer.email", "a@b.c"),
		attribute.String("session_token", "x"),
	)
	assert.Len(t, attrs, 1)
	assert.Equal(t, attribute.Key("http.route"), attrs[0].Key)
}

func TestSafeErrorKeepsLeadingMessage(t *testing.T) {
	err := fmt.Errorf("insert order: %w", errors.New("duplicate key value"))
	assert.EqualError(t, SafeError(err), "insert order")
	assert.Nil(t, SafeError(nil))
}
