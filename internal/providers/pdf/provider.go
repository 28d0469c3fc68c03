package pdf

import (
	"context"
	"io"
)

// Provider renders printable documents for the back office.
type Provider interface {
	DeliverySlip(ctx context.Context, data SlipData) (io.Reader, error)
}

type MarotoProvider struct {
	storeName string
}

func New(storeName string) *MarotoProvider {
	return &MarotoProvider{storeName: storeName}
}
