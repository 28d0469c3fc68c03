package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

var ErrMissingTracking = errors.New("missing_tracking_number")

type SlipData struct {
	OrderNumber    string
	OrderDate      string
	TrackingNumber string
	Carrier        string
	PackageCount   int
	PaymentMethod  string

	CustomerName  string
	CustomerPhone string
	AddressLines  []string
	Notes         string

	Items []SlipItem

	Subtotal     string
	ShippingCost string
	Total        string
}

type SlipItem struct {
	Reference string
	Name      string
	Quantity  int
	UnitPrice string
	Total     string
}

// DeliverySlip renders the packing slip glued on a parcel: recipient,
// tracking barcode and the order lines.
func (p *MarotoProvider) DeliverySlip(ctx context.Context, slip SlipData) (io.Reader, error) {
	if slip.TrackingNumber == "" {
		return nil, ErrMissingTracking
	}

	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} / {total}",
			Place:   props.RightBottom,
		}).
		Build()
	m := maroto.New(cfg)

	m.AddRow(12,
		text.NewCol(8, p.storeName, props.Text{Size: 16, Style: fontstyle.Bold}),
		text.NewCol(4, "Bon de livraison", props.Text{Size: 12, Style: fontstyle.Bold, Align: align.Right}),
	)
	m.AddRow(20,
		code.NewBarCol(8, slip.TrackingNumber, props.Barcode{Percent: 90}),
		col.New(4).Add(
			text.New("Suivi: "+slip.TrackingNumber, props.Text{Size: 9, Align: align.Right}),
			text.New("Transporteur: "+slip.Carrier, props.Text{Size: 9, Top: 5, Align: align.Right}),
			text.New(fmt.Sprintf("Colis: %d", slip.PackageCount), props.Text{Size: 9, Top: 10, Align: align.Right}),
		),
	)

	recipient := col.New(6).Add(
		text.New("Destinataire", props.Text{Style: fontstyle.Bold}),
		text.New(slip.CustomerName, props.Text{Top: 5}),
		text.New(slip.CustomerPhone, props.Text{Top: 10}),
	)
	for i, addressLine := range slip.AddressLines {
		recipient.Add(text.New(addressLine, props.Text{Top: float64(15 + 5*i)}))
	}
	m.AddRow(float64(20+5*len(slip.AddressLines)),
		recipient,
		col.New(6).Add(
			text.New("Commande "+slip.OrderNumber, props.Text{Style: fontstyle.Bold, Align: align.Right}),
			text.New(slip.OrderDate, props.Text{Top: 5, Align: align.Right}),
			text.New("Paiement: "+slip.PaymentMethod, props.Text{Top: 10, Align: align.Right}),
		),
	)

	m.AddRow(8,
		text.NewCol(2, "Réf.", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(5, "Article", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(1, "Qté", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Prix unitaire", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Total", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)
	m.AddRow(2, line.NewCol(12))

	for _, item := range slip.Items {
		m.AddRow(8,
			text.NewCol(2, item.Reference, props.Text{Size: 9}),
			text.NewCol(5, item.Name, props.Text{Size: 9}),
			text.NewCol(1, fmt.Sprintf("%d", item.Quantity), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, item.UnitPrice, props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, item.Total, props.Text{Size: 9, Align: align.Right}),
		)
	}

	m.AddRow(2, line.NewCol(12))
	for _, total := range []struct {
		label, value string
		style        fontstyle.Type
	}{
		{"Sous-total", slip.Subtotal, fontstyle.Normal},
		{"Livraison", slip.ShippingCost, fontstyle.Normal},
		{"Total", slip.Total, fontstyle.Bold},
	} {
		m.AddRow(7,
			col.New(8),
			text.NewCol(2, total.label, props.Text{Size: 9, Style: total.style}),
			text.NewCol(2, total.value, props.Text{Size: 9, Style: total.style, Align: align.Right}),
		)
	}

	if slip.Notes != "" {
		m.AddRow(15, text.NewCol(12, "Note: "+slip.Notes, props.Text{Size: 9, Top: 5}))
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(doc.GetBytes()), nil
}
