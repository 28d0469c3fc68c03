package service

import (
	"github.com/smallbiznis/vitrine/internal/product/domain"
)

func toResponse(p *domain.Product) domain.Response {
	resp := domain.Response{
		ID:                 formatID(p.ID),
		Reference:          p.Reference,
		Name:               p.Name,
		Slug:               p.Slug,
		MetaTitle:          p.MetaTitle,
		MetaDescription:    p.MetaDescription,
		Description:        p.Description,
		Characteristics:    p.Characteristics,
		Price:              p.Price.StringFixed(2),
		FinalPrice:         p.FinalPrice().StringFixed(2),
		HasDiscount:        p.HasDiscount(),
		DiscountPercentage: p.DiscountPercentage(),
		Weight:             p.Weight,
		Warranty:           p.Warranty,
		Quantity:           p.Quantity,
		Status:             p.Status,
		IsBestseller:       p.IsBestseller,
		IsFeatured:         p.IsFeatured,
		IsNew:              p.IsNew,
		ShowInAdSlider:     p.ShowInAdSlider,
		ViewsCount:         p.ViewsCount,
		MainImage:          p.MainImage(),
		Images:             make([]domain.ImageResponse, 0, len(p.Images)),
		Specifications:     make([]domain.SpecResponse, 0, len(p.Specifications)),
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	}
	if p.DiscountPrice.Valid {
		discount := p.DiscountPrice.Decimal.StringFixed(2)
		resp.DiscountPrice = &discount
	}
	if p.Category != nil {
		resp.Category = &domain.TaxonRef{ID: formatID(p.Category.ID), Name: p.Category.Name, Slug: p.Category.Slug}
	}
	if p.SubCategory != nil {
		resp.SubCategory = &domain.TaxonRef{ID: formatID(p.SubCategory.ID), Name: p.SubCategory.Name, Slug: p.SubCategory.Slug}
	}
	if p.Type != nil {
		resp.Type = &domain.TaxonRef{ID: formatID(p.Type.ID), Name: p.Type.Name, Slug: p.Type.Slug}
	}
	if p.Brand != nil {
		resp.Brand = &domain.TaxonRef{ID: formatID(p.Brand.ID), Name: p.Brand.Name, Slug: p.Brand.Slug}
	}
	if p.Collection != nil {
		resp.Collection = &domain.TaxonRef{ID: formatID(p.Collection.ID), Name: p.Collection.Name, Slug: p.Collection.Slug}
	}
	for i := range p.Images {
		resp.Images = append(resp.Images, toImageResponse(&p.Images[i]))
	}
	for _, spec := range p.Specifications {
		resp.Specifications = append(resp.Specifications, toSpecResponse(spec))
	}
	return resp
}

func toImageResponse(img *domain.ProductImage) domain.ImageResponse {
	return domain.ImageResponse{
		ID:      formatID(img.ID),
		Image:   img.Image,
		AltText: img.AltText,
		IsMain:  img.IsMain,
		Order:   img.SortOrder,
	}
}

func toSpecResponse(spec domain.ProductSpecification) domain.SpecResponse {
	return domain.SpecResponse{Key: spec.Key, Value: spec.Value, Order: spec.SortOrder}
}
