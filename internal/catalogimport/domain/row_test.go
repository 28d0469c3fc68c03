package domain

import (
	"testing"

	productdomain "github.com/smallbiznis/vitrine/internal/product/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validCells() map[string]string {
	return map[string]string{
		ColReference:   "CPU-900",
		ColName:        "  Test   CPU ",
		ColCategory:    "Composants",
		ColSubCategory: "Processeurs",
		ColPrice:       "1000",
		ColQuantity:    "5",
		ColDescription: "x",
	}
}

func TestCanonicalHeader(t *testing.T) {
	cases := map[string]string{
		"Référence":        ColReference,
		"REF":              ColReference,
		"Désignation":      ColName,
		"Catégorie":        ColCategory,
		"Sous-catégorie":   ColSubCategory,
		"Sous catégorie":   ColSubCategory,
		"Prix":             ColPrice,
		"Quantité":         ColQuantity,
		"Prix promo":       ColDiscountPrice,
		"Caractéristiques": ColCharacteristics,
		"Statut":           ColStatus,
		"Couleur":          "couleur",
	}
	for header, want := range cases {
		assert.Equal(t, want, CanonicalHeader(header), header)
	}
}

func TestParseRowValid(t *testing.T) {
	cells := validCells()
	cells[ColDiscountPrice] = "850,00 DA"
	cells[ColIsNew] = "oui"
	cells[ColStatus] = "Précommande"
	cells[ColBrand] = "nan"

	result := ParseRow(RawRow{Number: 2, Cells: cells})
	require.True(t, result.OK())
	require.Nil(t, result.Rejection)

	rec := result.Record
	assert.Equal(t, 2, rec.Row)
	assert.Equal(t, "CPU-900", rec.Reference)
	assert.Equal(t, "Test CPU", rec.Name)
	assert.Equal(t, "1000", rec.Price.String())
	assert.Equal(t, 5, rec.Quantity)
	assert.True(t, rec.DiscountPrice.Valid)
	assert.Equal(t, "850", rec.DiscountPrice.Decimal.String())
	require.NotNil(t, rec.IsNew)
	assert.True(t, *rec.IsNew)
	assert.Nil(t, rec.IsBestseller)
	assert.Equal(t, productdomain.StatusPreorder, rec.Status)
	assert.Empty(t, rec.Brand)
}

func TestParseRowRejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(map[string]string)
		reason string
	}{
		{"missing reference", func(c map[string]string) { delete(c, ColReference) }, "missing reference"},
		{"placeholder name", func(c map[string]string) { c[ColName] = "N/A" }, "missing name"},
		{"missing category", func(c map[string]string) { c[ColCategory] = "  " }, "missing category"},
		{"missing subcategory", func(c map[string]string) { c[ColSubCategory] = "" }, "missing subcategory"},
		{"missing price", func(c map[string]string) { c[ColPrice] = "nan" }, "missing price"},
		{"invalid price", func(c map[string]string) { c[ColPrice] = "abc" }, `invalid price "abc"`},
		{"negative price", func(c map[string]string) { c[ColPrice] = "-3" }, `invalid price "-3"`},
		{"fractional quantity", func(c map[string]string) { c[ColQuantity] = "2.5" }, `invalid quantity "2.5"`},
		{"invalid flag", func(c map[string]string) { c[ColIsFeatured] = "peut-être" }, `invalid is_featured "peut-être"`},
		{"invalid status", func(c map[string]string) { c[ColStatus] = "perdu" }, `invalid status "perdu"`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cells := validCells()
			tc.mutate(cells)

			result := ParseRow(RawRow{Number: 7, Cells: cells})
			require.False(t, result.OK())
			require.NotNil(t, result.Rejection)
			assert.Equal(t, 7, result.Rejection.Row)
			assert.Equal(t, tc.reason, result.Rejection.Reason)
		})
	}
}

func TestParseRowZeroDiscountIsIgnored(t *testing.T) {
	cells := validCells()
	cells[ColDiscountPrice] = "0"

	result := ParseRow(RawRow{Number: 2, Cells: cells})
	require.True(t, result.OK())
	assert.False(t, result.Record.DiscountPrice.Valid)
}

func TestRawRowBlank(t *testing.T) {
	assert.True(t, RawRow{Cells: map[string]string{ColName: " ", ColPrice: "NaN"}}.Blank())
	assert.False(t, RawRow{Cells: map[string]string{ColName: "Clavier"}}.Blank())
}
