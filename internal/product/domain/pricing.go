package domain

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// HasDiscount reports whether the discount price is set and below the list price.
func (p *Product) HasDiscount() bool {
	return p.DiscountPrice.Valid && p.DiscountPrice.Decimal.LessThan(p.Price)
}

func (p *Product) FinalPrice() decimal.Decimal {
	if p.HasDiscount() {
		return p.DiscountPrice.Decimal
	}
	return p.Price
}

// DiscountPercentage is derived at read time and rounds half to even.
func (p *Product) DiscountPercentage() int64 {
	if !p.HasDiscount() || !p.Price.IsPositive() {
		return 0
	}
	return p.Price.Sub(p.DiscountPrice.Decimal).
		Div(p.Price).
		Mul(hundred).
		RoundBank(0).
		IntPart()
}

// MainImage resolves the display image: the first image flagged main, else
// the lowest-ordered image, else the legacy single image.
func (p *Product) MainImage() string {
	var fallback *ProductImage
	for i := range p.Images {
		img := &p.Images[i]
		if img.IsMain {
			return img.Image
		}
		if fallback == nil || img.SortOrder < fallback.SortOrder {
			fallback = img
		}
	}
	if fallback != nil {
		return fallback.Image
	}
	if p.Image != nil {
		return *p.Image
	}
	return ""
}
