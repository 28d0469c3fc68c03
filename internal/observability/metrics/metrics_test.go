package metrics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric/noop"
)

func TestFilterAttributesDropsForbiddenLabels(t *testing.T) {
	attrs := FilterAttributes(
		attribute.String("status", "confirmed"),
		attribute.String("customer_phone", "0555"),
		attribute.String("outcome", "created"),
	)
	require.Len(t, attrs, 2)
	assert.Equal(t, attribute.Key("status"), attrs[0].Key)
	assert.Equal(t, attribute.Key("outcome"), attrs[1].Key)
}

func TestRecordersTolerateNilAndNoop(t *testing.T) {
	var nilMetrics *Metrics
	assert.NotPanics(t, func() {
		nilMetrics.RecordOrderCreated(context.Background())
		nilMetrics.RecordImportRows(context.Background(), "created", "strict", 3)
	})

	m, err := New(Config{ServiceName: "vitrine-test"}, noop.NewMeterProvider())
	require.NoError(t, err)
	assert.NotPanics(t, func() {
		m.RecordOrderCreated(context.Background())
		m.RecordOrderTransition(context.Background(), "confirmed")
		m.RecordImportRows(context.Background(), "updated", "permissive", 2)
		m.RecordLoginThrottled(context.Background())
	})
}
