package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/vitrine/internal/clock"
	"github.com/smallbiznis/vitrine/internal/product/domain"
	"github.com/smallbiznis/vitrine/internal/product/repository"
	taxdomain "github.com/smallbiznis/vitrine/internal/taxonomy/domain"
	taxrepository "github.com/smallbiznis/vitrine/internal/taxonomy/repository"
	"github.com/smallbiznis/vitrine/pkg/db"
	"github.com/smallbiznis/vitrine/pkg/db/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	svc   *Service
	db    *gorm.DB
	clock *clock.FakeClock
	node  *snowflake.Node

	category    taxdomain.Category
	subcategory taxdomain.SubCategory
	other       taxdomain.SubCategory
	brand       taxdomain.Brand
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	conn := db.NewTest(t,
		&taxdomain.Collection{}, &taxdomain.Brand{}, &taxdomain.Category{},
		&taxdomain.SubCategory{}, &taxdomain.Type{},
		&domain.Product{}, &domain.ProductImage{}, &domain.ProductSpecification{},
	)
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	fake := clock.NewFakeClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))

	f := &fixture{
		svc: newService(Params{
			DB:       conn,
			Log:      zap.NewNop(),
			GenID:    node,
			Clock:    fake,
			Repo:     repository.Provide(),
			Taxonomy: taxrepository.Provide(),
		}),
		db:    conn,
		clock: fake,
		node:  node,
	}

	now := fake.Now()
	f.category = taxdomain.Category{ID: node.Generate().Int64(), Name: "Composants", NameKey: "COMPOSANTS", Slug: "composants", IsActive: true, CreatedAt: now, UpdatedAt: now}
	f.subcategory = taxdomain.SubCategory{ID: node.Generate().Int64(), CategoryID: f.category.ID, Name: "Processeurs", NameKey: "PROCESSEURS", Slug: "processeurs", IsActive: true, CreatedAt: now, UpdatedAt: now}
	otherCategory := taxdomain.Category{ID: node.Generate().Int64(), Name: "Périphériques", NameKey: "PERIPHERIQUES", Slug: "peripheriques", IsActive: true, CreatedAt: now, UpdatedAt: now}
	f.other = taxdomain.SubCategory{ID: node.Generate().Int64(), CategoryID: otherCategory.ID, Name: "Claviers", NameKey: "CLAVIERS", Slug: "claviers", IsActive: true, CreatedAt: now, UpdatedAt: now}
	f.brand = taxdomain.Brand{ID: node.Generate().Int64(), Name: "Ryzen Labs", NameKey: "RYZEN LABS", Slug: "ryzen-labs", IsActive: true, CreatedAt: now, UpdatedAt: now}

	require.NoError(t, conn.Create(&f.category).Error)
	require.NoError(t, conn.Create(&otherCategory).Error)
	require.NoError(t, conn.Create(&f.subcategory).Error)
	require.NoError(t, conn.Create(&f.other).Error)
	require.NoError(t, conn.Create(&f.brand).Error)
	return f
}

func strPtr(v string) *string { return &v }
func intPtr(v int) *int       { return &v }
func boolPtr(v bool) *bool    { return &v }

func decPtr(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func idOf(id int64) *string { return strPtr(formatID(id)) }

func (f *fixture) create(t *testing.T, req domain.Request) *domain.Response {
	t.Helper()
	f.clock.Advance(time.Minute)
	resp, err := f.svc.Create(context.Background(), req)
	require.NoError(t, err)
	return resp
}

func TestCreateProduct(t *testing.T) {
	f := newFixture(t)

	resp := f.create(t, domain.Request{
		Reference:     strPtr("CPU-900"),
		Name:          strPtr("Test CPU"),
		Price:         decPtr("1000"),
		Quantity:      intPtr(5),
		Description:   strPtr("x"),
		SubCategoryID: idOf(f.subcategory.ID),
	})

	assert.Equal(t, "cpu-900-test-cpu", resp.Slug)
	assert.Equal(t, domain.StatusInStock, resp.Status)
	assert.Equal(t, "1000.00", resp.Price)
	assert.Equal(t, "1000.00", resp.FinalPrice)
	assert.Nil(t, resp.DiscountPrice)
	require.NotNil(t, resp.Category)
	assert.Equal(t, "composants", resp.Category.Slug)
	require.NotNil(t, resp.SubCategory)
	assert.Equal(t, "processeurs", resp.SubCategory.Slug)
}

func TestCreateProductDefaults(t *testing.T) {
	f := newFixture(t)

	resp := f.create(t, domain.Request{
		Reference:     strPtr("KB-1"),
		Name:          strPtr("Clavier"),
		Price:         decPtr("2500"),
		DiscountPrice: decPtr("2000"),
		Quantity:      intPtr(0),
	})
	assert.Equal(t, domain.StatusOutOfStock, resp.Status)
	assert.Equal(t, "2000.00", resp.FinalPrice)
	assert.Equal(t, int64(20), resp.DiscountPercentage)
	assert.True(t, resp.HasDiscount)
}

func TestCreateProductSlugCollision(t *testing.T) {
	f := newFixture(t)

	first := f.create(t, domain.Request{Reference: strPtr("CPU-900"), Name: strPtr("Test CPU"), Price: decPtr("10")})
	second := f.create(t, domain.Request{Reference: strPtr("CPU-900-TEST"), Name: strPtr("CPU"), Price: decPtr("10")})
	third := f.create(t, domain.Request{Reference: strPtr("cpu-900"), Name: strPtr("test cpu "), Price: decPtr("10")})

	assert.Equal(t, "cpu-900-test-cpu", first.Slug)
	assert.Equal(t, "cpu-900-test-cpu-1", second.Slug)
	assert.Equal(t, "cpu-900-test-cpu-2", third.Slug)
}

func TestCreateProductValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.create(t, domain.Request{Reference: strPtr("CPU-900"), Name: strPtr("Test CPU"), Price: decPtr("10")})

	tests := []struct {
		name string
		req  domain.Request
		err  error
	}{
		{"missing reference", domain.Request{Name: strPtr("A"), Price: decPtr("1")}, domain.ErrInvalidReference},
		{"missing name", domain.Request{Reference: strPtr("A-1"), Price: decPtr("1")}, domain.ErrInvalidName},
		{"negative price", domain.Request{Reference: strPtr("A-1"), Name: strPtr("A"), Price: decPtr("-1")}, domain.ErrInvalidPrice},
		{"negative discount", domain.Request{Reference: strPtr("A-1"), Name: strPtr("A"), Price: decPtr("1"), DiscountPrice: decPtr("-1")}, domain.ErrInvalidDiscount},
		{"negative quantity", domain.Request{Reference: strPtr("A-1"), Name: strPtr("A"), Price: decPtr("1"), Quantity: intPtr(-2)}, domain.ErrInvalidQuantity},
		{"unknown status", domain.Request{Reference: strPtr("A-1"), Name: strPtr("A"), Price: decPtr("1"), Status: strPtr("sold")}, domain.ErrInvalidStatus},
		{"duplicate reference", domain.Request{Reference: strPtr("CPU-900"), Name: strPtr("Other"), Price: decPtr("1")}, domain.ErrDuplicateReference},
		{"unknown category", domain.Request{Reference: strPtr("A-1"), Name: strPtr("A"), Price: decPtr("1"), CategoryID: strPtr("42")}, domain.ErrInvalidCategory},
		{"subcategory outside category", domain.Request{Reference: strPtr("A-1"), Name: strPtr("A"), Price: decPtr("1"), CategoryID: idOf(f.category.ID), SubCategoryID: idOf(f.other.ID)}, domain.ErrInvalidSubCategory},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Create(ctx, tt.req)
			assert.ErrorIs(t, err, tt.err)
		})
	}

	var count int64
	require.NoError(t, f.db.Model(&domain.Product{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestUpdateProductKeepsSlug(t *testing.T) {
	f := newFixture(t)
	created := f.create(t, domain.Request{Reference: strPtr("CPU-900"), Name: strPtr("Test CPU"), Price: decPtr("1000")})

	updated, err := f.svc.Update(context.Background(), created.ID, domain.Request{
		Name:          strPtr("Renamed CPU"),
		Price:         decPtr("900"),
		DiscountPrice: decPtr("850"),
		BrandID:       idOf(f.brand.ID),
	})
	require.NoError(t, err)
	assert.Equal(t, created.Slug, updated.Slug)
	assert.Equal(t, "Renamed CPU", updated.Name)
	assert.Equal(t, "850.00", updated.FinalPrice)
	require.NotNil(t, updated.Brand)
	assert.Equal(t, "Ryzen Labs", updated.Brand.Name)

	cleared, err := f.svc.Update(context.Background(), created.ID, domain.Request{DiscountPrice: decPtr("0"), BrandID: strPtr("")})
	require.NoError(t, err)
	assert.Nil(t, cleared.DiscountPrice)
	assert.Nil(t, cleared.Brand)
	assert.Equal(t, "900.00", cleared.FinalPrice)
}

func TestGetBySlugCountsViews(t *testing.T) {
	f := newFixture(t)
	created := f.create(t, domain.Request{Reference: strPtr("CPU-900"), Name: strPtr("Test CPU"), Price: decPtr("1000")})

	for i := 1; i <= 2; i++ {
		resp, err := f.svc.GetBySlug(context.Background(), created.Slug)
		require.NoError(t, err)
		assert.Equal(t, int64(i), resp.ViewsCount)
	}

	_, err := f.svc.GetBySlug(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListProducts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.create(t, domain.Request{Reference: strPtr("ref-a"), Name: strPtr("Alpha"), Price: decPtr("100"), SubCategoryID: idOf(f.subcategory.ID), IsNew: boolPtr(true)})
	f.create(t, domain.Request{Reference: strPtr("ref-b"), Name: strPtr("Bravo"), Price: decPtr("500"), DiscountPrice: decPtr("50"), SubCategoryID: idOf(f.subcategory.ID), BrandID: idOf(f.brand.ID)})
	f.create(t, domain.Request{Reference: strPtr("ref-c"), Name: strPtr("Charlie"), Price: decPtr("300"), SubCategoryID: idOf(f.other.ID), Description: strPtr("Mechanical keyboard")})

	all, err := f.svc.List(ctx, domain.ListRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), all.TotalCount)
	assert.Equal(t, []string{"Charlie", "Bravo", "Alpha"}, names(all.Results))

	byCategory, err := f.svc.List(ctx, domain.ListRequest{Category: "composants", Ordering: "name"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Alpha", "Bravo"}, names(byCategory.Results))

	byID, err := f.svc.List(ctx, domain.ListRequest{SubCategory: formatID(f.other.ID)})
	require.NoError(t, err)
	assert.Equal(t, []string{"Charlie"}, names(byID.Results))

	byPrice, err := f.svc.List(ctx, domain.ListRequest{Ordering: "-price"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Charlie", "Alpha", "Bravo"}, names(byPrice.Results))

	cheap, err := f.svc.List(ctx, domain.ListRequest{MaxPrice: decPtr("100")})
	require.NoError(t, err)
	assert.Equal(t, []string{"Bravo", "Alpha"}, names(cheap.Results))

	byBrand, err := f.svc.List(ctx, domain.ListRequest{Search: "ryzen"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Bravo"}, names(byBrand.Results))

	byText, err := f.svc.List(ctx, domain.ListRequest{Search: "KEYBOARD"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Charlie"}, names(byText.Results))

	isNew, err := f.svc.List(ctx, domain.ListRequest{IsNew: boolPtr(true)})
	require.NoError(t, err)
	assert.Equal(t, []string{"Alpha"}, names(isNew.Results))

	invalidOrdering, err := f.svc.List(ctx, domain.ListRequest{Ordering: "drop table"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Charlie", "Bravo", "Alpha"}, names(invalidOrdering.Results))

	page, err := f.svc.List(ctx, domain.ListRequest{Page: pagination.Pagination{Page: 2, PageSize: 2}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Alpha"}, names(page.Results))
	assert.False(t, page.HasMore)
	assert.Equal(t, int64(3), page.TotalCount)

	_, err = f.svc.List(ctx, domain.ListRequest{Status: "sold"})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestCuratedLists(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.create(t, domain.Request{Reference: strPtr("b-1"), Name: strPtr("Best one"), Price: decPtr("1"), IsBestseller: boolPtr(true), SubCategoryID: idOf(f.subcategory.ID)})
	f.create(t, domain.Request{Reference: strPtr("b-2"), Name: strPtr("Best gone"), Price: decPtr("1"), IsBestseller: boolPtr(true), Status: strPtr("discontinued")})
	f.create(t, domain.Request{Reference: strPtr("b-3"), Name: strPtr("Best two"), Price: decPtr("1"), IsBestseller: boolPtr(true), ShowInAdSlider: boolPtr(true)})

	best, err := f.svc.Curated(ctx, domain.CuratedBestsellers, domain.CuratedRequest{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Best two", "Best one"}, names(best))

	limited, err := f.svc.Curated(ctx, domain.CuratedBestsellers, domain.CuratedRequest{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	slider, err := f.svc.Curated(ctx, domain.CuratedAdSlider, domain.CuratedRequest{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Best two"}, names(slider))

	bySub, err := f.svc.Curated(ctx, domain.CuratedBySubCategory, domain.CuratedRequest{SubCategory: "processeurs"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Best one"}, names(bySub))

	_, err = f.svc.Curated(ctx, domain.CuratedBySubCategory, domain.CuratedRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidSubCategory)

	_, err = f.svc.Curated(ctx, domain.CuratedList("popular"), domain.CuratedRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidCuratedList)
}

func TestGalleryKeepsSingleMainImage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.create(t, domain.Request{Reference: strPtr("CPU-900"), Name: strPtr("Test CPU"), Price: decPtr("1")})

	first, err := f.svc.AddImage(ctx, p.ID, domain.ImageRequest{Image: strPtr("/media/products/a.jpg")})
	require.NoError(t, err)
	assert.True(t, first.IsMain)

	second, err := f.svc.AddImage(ctx, p.ID, domain.ImageRequest{Image: strPtr("/media/products/b.jpg")})
	require.NoError(t, err)
	assert.False(t, second.IsMain)

	_, err = f.svc.UpdateImage(ctx, p.ID, second.ID, domain.ImageRequest{IsMain: boolPtr(true)})
	require.NoError(t, err)

	got, err := f.svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "/media/products/b.jpg", got.MainImage)
	mains := 0
	for _, img := range got.Images {
		if img.IsMain {
			mains++
		}
	}
	assert.Equal(t, 1, mains)

	require.NoError(t, f.svc.DeleteImage(ctx, p.ID, second.ID))
	got, err = f.svc.Get(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, got.Images, 1)
	assert.True(t, got.Images[0].IsMain)
	assert.Equal(t, "/media/products/a.jpg", got.MainImage)

	_, err = f.svc.AddImage(ctx, p.ID, domain.ImageRequest{Image: strPtr(" ")})
	assert.ErrorIs(t, err, domain.ErrInvalidImage)
}

func TestSpecifications(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p := f.create(t, domain.Request{
		Reference:       strPtr("CPU-900"),
		Name:            strPtr("Test CPU"),
		Price:           decPtr("1"),
		Characteristics: strPtr("- Socket: AM5\n- Cores: 8"),
	})
	require.Len(t, p.Specifications, 2)
	assert.Equal(t, "Socket", p.Specifications[0].Key)
	assert.Equal(t, "8", p.Specifications[1].Value)

	specs, err := f.svc.ReplaceSpecifications(ctx, p.ID, []domain.SpecRequest{{Key: "TDP", Value: "105 W"}})
	require.NoError(t, err)
	assert.Equal(t, []domain.SpecResponse{{Key: "TDP", Value: "105 W", Order: 0}}, specs)

	specs, err = f.svc.SpecificationsFromCharacteristics(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, specs, 2)

	_, err = f.svc.ReplaceSpecifications(ctx, p.ID, []domain.SpecRequest{{Key: "", Value: "x"}})
	assert.ErrorIs(t, err, domain.ErrInvalidSpec)
}

func TestDeleteProduct(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.create(t, domain.Request{Reference: strPtr("CPU-900"), Name: strPtr("Test CPU"), Price: decPtr("1"), Characteristics: strPtr("A: b")})
	_, err := f.svc.AddImage(ctx, p.ID, domain.ImageRequest{Image: strPtr("a.jpg")})
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, p.ID))

	_, err = f.svc.Get(ctx, p.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	var images, specs int64
	require.NoError(t, f.db.Model(&domain.ProductImage{}).Count(&images).Error)
	require.NoError(t, f.db.Model(&domain.ProductSpecification{}).Count(&specs).Error)
	assert.Zero(t, images)
	assert.Zero(t, specs)

	assert.ErrorIs(t, f.svc.Delete(ctx, p.ID), domain.ErrNotFound)
	assert.ErrorIs(t, f.svc.Delete(ctx, "abc"), domain.ErrInvalidID)
}

func names(items []domain.Response) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.Name)
	}
	return out
}
