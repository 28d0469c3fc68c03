package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func discount(v string) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: decimal.RequireFromString(v), Valid: true}
}

func TestFinalPrice(t *testing.T) {
	tests := []struct {
		name     string
		price    string
		discount decimal.NullDecimal
		want     string
		active   bool
		percent  int64
	}{
		{name: "no discount", price: "1000", want: "1000"},
		{name: "active discount", price: "1000", discount: discount("750"), want: "750", active: true, percent: 25},
		{name: "discount equal to price", price: "1000", discount: discount("1000"), want: "1000"},
		{name: "discount above price", price: "1000", discount: discount("1200"), want: "1000"},
		{name: "rounds half to even", price: "200", discount: discount("175"), want: "175", active: true, percent: 12},
		{name: "rounds to nearest", price: "300", discount: discount("199.99"), want: "199.99", active: true, percent: 33},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Product{Price: decimal.RequireFromString(tt.price), DiscountPrice: tt.discount}
			assert.True(t, decimal.RequireFromString(tt.want).Equal(p.FinalPrice()), p.FinalPrice().String())
			assert.Equal(t, tt.percent, p.DiscountPercentage())
			assert.Equal(t, tt.active, p.HasDiscount())
		})
	}
}

func TestDiscountPercentageZeroPrice(t *testing.T) {
	p := &Product{Price: decimal.Zero, DiscountPrice: discount("0")}
	assert.False(t, p.HasDiscount())
	assert.Equal(t, int64(0), p.DiscountPercentage())
}

func TestMainImage(t *testing.T) {
	legacy := "legacy.jpg"

	p := &Product{Image: &legacy}
	assert.Equal(t, "legacy.jpg", p.MainImage())

	p.Images = []ProductImage{
		{Image: "b.jpg", SortOrder: 2},
		{Image: "a.jpg", SortOrder: 1},
	}
	assert.Equal(t, "a.jpg", p.MainImage())

	p.Images = append(p.Images, ProductImage{Image: "main.jpg", SortOrder: 5, IsMain: true})
	assert.Equal(t, "main.jpg", p.MainImage())
}

func TestValidate(t *testing.T) {
	valid := func() *Product {
		return &Product{Reference: "CPU-900", Name: "Test CPU", Price: decimal.NewFromInt(1000), Status: StatusInStock}
	}
	assert.NoError(t, valid().Validate())

	p := valid()
	p.Reference = ""
	assert.ErrorIs(t, p.Validate(), ErrInvalidReference)

	p = valid()
	p.Price = decimal.NewFromInt(-1)
	assert.ErrorIs(t, p.Validate(), ErrInvalidPrice)

	p = valid()
	p.DiscountPrice = discount("-5")
	assert.ErrorIs(t, p.Validate(), ErrInvalidDiscount)

	p = valid()
	p.Quantity = -1
	assert.ErrorIs(t, p.Validate(), ErrInvalidQuantity)

	p = valid()
	p.Status = "sold"
	assert.ErrorIs(t, p.Validate(), ErrInvalidStatus)
}

func TestDefaultStatus(t *testing.T) {
	assert.Equal(t, StatusOutOfStock, DefaultStatus(0))
	assert.Equal(t, StatusInStock, DefaultStatus(5))
}
