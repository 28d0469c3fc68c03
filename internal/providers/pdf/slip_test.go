package pdf

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeliverySlipRendersPDF(t *testing.T) {
	p := New("Vitrine")

	r, err := p.DeliverySlip(context.Background(), SlipData{
		OrderNumber:    "ORD-01J0000000000000000000000",
		OrderDate:      "2026-06-10",
		TrackingNumber: "TRK-1790000000000000",
		Carrier:        "Yalidine",
		PackageCount:   2,
		PaymentMethod:  "cash_on_delivery",
		CustomerName:   "Karim Meziane",
		CustomerPhone:  "0555123456",
		AddressLines:   []string{"3 boulevard Zighout Youcef", "Constantine"},
		Items: []SlipItem{
			{Reference: "CPU-900", Name: "Test CPU", Quantity: 2, UnitPrice: "100.00", Total: "200.00"},
		},
		Subtotal:     "200.00",
		ShippingCost: "0.00",
		Total:        "200.00",
		Notes:        "Appeler avant livraison",
	})
	require.NoError(t, err)

	body, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(body[:4]))
}

func TestDeliverySlipRequiresTracking(t *testing.T) {
	_, err := New("Vitrine").DeliverySlip(context.Background(), SlipData{OrderNumber: "ORD-1"})
	assert.ErrorIs(t, err, ErrMissingTracking)
}
