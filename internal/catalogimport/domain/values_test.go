package domain

import (
	"testing"

	productdomain "github.com/smallbiznis/vitrine/internal/product/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrice(t *testing.T) {
	cases := map[string]string{
		"1000":      "1000",
		"1000.50":   "1000.5",
		"1 000,50":  "1000.5",
		"1,000.50":  "1000.5",
		"1.000,50":  "1000.5",
		"12 500 DA": "12500",
		"12500 DZD": "12500",
		"€ 49,99":   "49.99",
		"1.234.567": "1234567",
		"19.999":    "19999",
		"12.500 DA": "12500",
		"1,000":     "1000",
		"2.000":     "2000",
		"0.500":     "0.5",
		"1250.750":  "1250.75",
		"19,99":     "19.99",
		"12.5":      "12.5",
		"1 250,5":   "1250.5",
	}
	for input, want := range cases {
		got, err := ParsePrice(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got.String(), input)
	}

	for _, input := range []string{"", "DA", "abc", "-10", "1,2,3.4.5"} {
		_, err := ParsePrice(input)
		assert.Error(t, err, input)
	}
}

func TestParseQuantity(t *testing.T) {
	for input, want := range map[string]int{"5": 5, "5.0": 5, "0": 0, "1 200": 1200} {
		got, err := ParseQuantity(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}
	for _, input := range []string{"", "-1", "2.5", "beaucoup", "99999999999"} {
		_, err := ParseQuantity(input)
		assert.Error(t, err, input)
	}
}

func TestParseBool(t *testing.T) {
	for _, input := range []string{"1", "Oui", "TRUE", "x", "Vrai"} {
		v, err := ParseBool(input)
		require.NoError(t, err, input)
		assert.True(t, v, input)
	}
	for _, input := range []string{"0", "non", "False", "N"} {
		v, err := ParseBool(input)
		require.NoError(t, err, input)
		assert.False(t, v, input)
	}
	_, err := ParseBool("maybe")
	assert.Error(t, err)
}

func TestParseStatus(t *testing.T) {
	cases := map[string]productdomain.Status{
		"in_stock":         productdomain.StatusInStock,
		"En stock":         productdomain.StatusInStock,
		"Rupture de stock": productdomain.StatusOutOfStock,
		"épuisé":           productdomain.StatusOutOfStock,
		"Précommande":      productdomain.StatusPreorder,
		"Fin de série":     productdomain.StatusDiscontinued,
	}
	for input, want := range cases {
		got, err := ParseStatus(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}
	_, err := ParseStatus("sold")
	assert.Error(t, err)
}

func TestSynonymTable(t *testing.T) {
	assert.Equal(t, "Alimentations", DefaultSynonyms.Canonical("alimentation"))
	assert.Equal(t, "Alimentations", DefaultSynonyms.Canonical("  ALIMENTATION "))
	assert.Equal(t, "Processeurs", DefaultSynonyms.Canonical("Processeur"))
	assert.Equal(t, "Cartes mères", DefaultSynonyms.Canonical("CARTE MÈRE"))
	assert.Equal(t, "Claviers gaming", DefaultSynonyms.Canonical(" Claviers   gaming "))

	custom := NewSynonymTable("test.1", map[string]string{"ssd": "Stockage"})
	assert.Equal(t, "test.1", custom.Version)
	assert.Equal(t, 1, custom.Len())
	assert.Equal(t, "Stockage", custom.Canonical("SSD"))
}

func TestParseMode(t *testing.T) {
	mode, err := ParseMode(" Permissive ")
	require.NoError(t, err)
	assert.Equal(t, ModePermissive, mode)

	_, err = ParseMode("lenient")
	assert.ErrorIs(t, err, ErrInvalidMode)
}
