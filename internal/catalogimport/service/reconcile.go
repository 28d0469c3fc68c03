package service

import (
	"context"
	"strings"

	"github.com/smallbiznis/vitrine/internal/catalogimport/domain"
	productdomain "github.com/smallbiznis/vitrine/internal/product/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type reconciler struct {
	*Service
	mode   domain.Mode
	report *domain.Report
	// seen keeps created-name lists free of repeats across rows.
	seen map[string]bool
}

// created collects taxonomy names created while one row runs. They reach
// the report only when the row itself succeeds.
type created struct {
	kind string
	name string
}

func (r *reconciler) row(ctx context.Context, db *gorm.DB, raw domain.RawRow) error {
	result := domain.ParseRow(raw)
	if !result.OK() {
		r.skip(result.Rejection.Row, result.Rejection.Reference, result.Rejection.Reason)
		return nil
	}
	rec := result.Record

	var (
		names   []created
		updated bool
	)
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		names, updated, err = r.upsert(ctx, tx, rec)
		return err
	})
	if err != nil {
		reason, ok := reasonOf(err)
		if !ok {
			return err
		}
		r.skip(rec.Row, rec.Reference, reason)
		return nil
	}

	for _, n := range names {
		r.noteCreated(n)
	}
	if updated {
		r.report.Updated++
	} else {
		r.report.Created++
	}
	return nil
}

func (r *reconciler) skip(row int, reference, reason string) {
	r.report.Reject(row, reference, reason)
	r.log.Debug("import row skipped",
		zap.Int("row", row),
		zap.String("reference", reference),
		zap.String("reason", reason),
	)
}

func (r *reconciler) noteCreated(n created) {
	key := n.kind + "\x00" + strings.ToLower(n.name)
	if r.seen[key] {
		return
	}
	r.seen[key] = true

	switch n.kind {
	case "category":
		r.report.CreatedCategories = append(r.report.CreatedCategories, n.name)
	case "subcategory":
		r.report.CreatedSubCategories = append(r.report.CreatedSubCategories, n.name)
	case "brand":
		r.report.CreatedBrands = append(r.report.CreatedBrands, n.name)
	case "type":
		r.report.CreatedTypes = append(r.report.CreatedTypes, n.name)
	case "collection":
		r.report.CreatedCollections = append(r.report.CreatedCollections, n.name)
	}
}

// links holds the taxonomy ids resolved for one record.
type links struct {
	category    int64
	subCategory int64
	brand       *int64
	typeID      *int64
	collection  *int64
}

func (r *reconciler) resolve(ctx context.Context, tx *gorm.DB, rec *domain.Record) (links, []created, error) {
	var (
		out   links
		names []created
	)

	categoryName := r.synonyms.Canonical(rec.Category)
	subCategoryName := r.synonyms.Canonical(rec.SubCategory)

	if r.mode == domain.ModePermissive {
		category, isNew, err := r.resolver.GetOrCreateCategory(ctx, tx, categoryName)
		if err != nil {
			return out, nil, err
		}
		if isNew {
			names = append(names, created{"category", category.Name})
		}
		sub, isNew, err := r.resolver.GetOrCreateSubCategory(ctx, tx, category.ID, subCategoryName)
		if err != nil {
			return out, nil, err
		}
		if isNew {
			names = append(names, created{"subcategory", sub.Name})
		}
		out.category, out.subCategory = category.ID, sub.ID
	} else {
		category, err := r.resolver.FindCategory(ctx, tx, categoryName)
		if err != nil {
			return out, nil, err
		}
		if category == nil {
			return out, nil, rowErrorf("unknown category %q", rec.Category)
		}
		sub, err := r.resolver.FindSubCategory(ctx, tx, category.ID, subCategoryName)
		if err != nil {
			return out, nil, err
		}
		if sub == nil {
			return out, nil, rowErrorf("unknown subcategory %q in category %q", rec.SubCategory, category.Name)
		}
		out.category, out.subCategory = category.ID, sub.ID
	}

	if rec.Brand != "" {
		brand, isNew, err := r.resolver.GetOrCreateBrand(ctx, tx, rec.Brand)
		if err != nil {
			return out, nil, err
		}
		if isNew {
			names = append(names, created{"brand", brand.Name})
		}
		out.brand = &brand.ID
	}
	if rec.Type != "" {
		typ, isNew, err := r.resolver.GetOrCreateType(ctx, tx, out.subCategory, out.brand, rec.Type)
		if err != nil {
			return out, nil, err
		}
		if isNew {
			names = append(names, created{"type", typ.Name})
		}
		out.typeID = &typ.ID
	}
	if rec.Collection != "" {
		collection, isNew, err := r.resolver.GetOrCreateCollection(ctx, tx, rec.Collection)
		if err != nil {
			return out, nil, err
		}
		if isNew {
			names = append(names, created{"collection", collection.Name})
		}
		out.collection = &collection.ID
	}
	return out, names, nil
}

// upsert creates the product for rec.Reference or updates the existing one.
// It reports whether an existing product was updated.
func (r *reconciler) upsert(ctx context.Context, tx *gorm.DB, rec *domain.Record) ([]created, bool, error) {
	ids, names, err := r.resolve(ctx, tx, rec)
	if err != nil {
		return nil, false, err
	}

	existing, err := r.products.FindByReference(ctx, tx, rec.Reference)
	if err != nil {
		return nil, false, err
	}

	p := existing
	if p == nil {
		p = &productdomain.Product{Reference: rec.Reference}
	}
	applyRecord(p, rec, ids)

	if existing == nil {
		err = r.products.Insert(ctx, tx, p)
	} else {
		err = r.products.Save(ctx, tx, p)
	}
	if err != nil {
		return nil, false, err
	}

	if rec.Characteristics != "" {
		specs := productdomain.ParseCharacteristics(rec.Characteristics)
		if err := r.products.ReplaceSpecs(ctx, tx, p.ID, specs); err != nil {
			return nil, false, err
		}
	}
	return names, existing != nil, nil
}

// applyRecord copies the row onto p. Optional columns left empty in the
// source keep the product's current value.
func applyRecord(p *productdomain.Product, rec *domain.Record, ids links) {
	p.Name = rec.Name
	p.Price = rec.Price
	p.Quantity = rec.Quantity
	p.CategoryID = &ids.category
	p.SubCategoryID = &ids.subCategory

	if rec.Description != "" {
		p.Description = stringPtr(rec.Description)
	}
	if ids.brand != nil {
		p.BrandID = ids.brand
	}
	if ids.typeID != nil {
		p.TypeID = ids.typeID
	}
	if ids.collection != nil {
		p.CollectionID = ids.collection
	}
	if rec.DiscountPrice.Valid {
		p.DiscountPrice = rec.DiscountPrice
	}
	if rec.Weight != "" {
		p.Weight = stringPtr(rec.Weight)
	}
	if rec.Warranty != "" {
		p.Warranty = stringPtr(rec.Warranty)
	}
	if rec.MetaTitle != "" {
		p.MetaTitle = stringPtr(rec.MetaTitle)
	}
	if rec.MetaDescription != "" {
		p.MetaDescription = stringPtr(rec.MetaDescription)
	}
	if rec.Characteristics != "" {
		p.Characteristics = stringPtr(rec.Characteristics)
	}
	if rec.Image != "" {
		p.Image = stringPtr(rec.Image)
	}
	if rec.IsBestseller != nil {
		p.IsBestseller = *rec.IsBestseller
	}
	if rec.IsFeatured != nil {
		p.IsFeatured = *rec.IsFeatured
	}
	if rec.IsNew != nil {
		p.IsNew = *rec.IsNew
	}
	if rec.ShowInAdSlider != nil {
		p.ShowInAdSlider = *rec.ShowInAdSlider
	}
	if rec.Status != "" {
		p.Status = rec.Status
	}
}

func stringPtr(value string) *string {
	return &value
}
