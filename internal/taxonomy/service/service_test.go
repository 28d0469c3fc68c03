package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/vitrine/internal/clock"
	productdomain "github.com/smallbiznis/vitrine/internal/product/domain"
	"github.com/smallbiznis/vitrine/internal/taxonomy/domain"
	"github.com/smallbiznis/vitrine/internal/taxonomy/repository"
	"github.com/smallbiznis/vitrine/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (*Service, *gorm.DB, *snowflake.Node) {
	t.Helper()

	conn := db.NewTest(t,
		&domain.Collection{}, &domain.Brand{}, &domain.Category{},
		&domain.SubCategory{}, &domain.Type{},
		&productdomain.Product{},
	)
	node, err := snowflake.NewNode(2)
	require.NoError(t, err)

	svc := newService(Params{
		DB:    conn,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clock.NewFakeClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)),
		Repo:  repository.Provide(),
	})
	return svc, conn, node
}

func strPtr(v string) *string { return &v }
func boolPtr(v bool) *bool    { return &v }
func intPtr(v int) *int       { return &v }

func insertProduct(t *testing.T, conn *gorm.DB, node *snowflake.Node, p productdomain.Product) productdomain.Product {
	t.Helper()
	p.ID = node.Generate().Int64()
	p.Slug = p.Reference
	p.Name = p.Reference
	p.Price = decimal.NewFromInt(10)
	if p.Status == "" {
		p.Status = productdomain.StatusInStock
	}
	p.CreatedAt = time.Now().UTC()
	p.UpdatedAt = p.CreatedAt
	require.NoError(t, conn.Create(&p).Error)
	return p
}

func TestCreateCategory(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateCategory(ctx, domain.CategoryRequest{Name: strPtr("  Cartes   mères "), Order: intPtr(3)})
	require.NoError(t, err)
	assert.Equal(t, "Cartes mères", created.Name)
	assert.Equal(t, "cartes-meres", created.Slug)
	assert.Equal(t, 3, created.Order)
	assert.True(t, created.IsActive)

	_, err = svc.CreateCategory(ctx, domain.CategoryRequest{Name: strPtr("CARTES MERES")})
	assert.ErrorIs(t, err, domain.ErrDuplicateName)

	_, err = svc.CreateCategory(ctx, domain.CategoryRequest{Name: strPtr("Boards"), Slug: strPtr("Cartes Meres")})
	assert.ErrorIs(t, err, domain.ErrDuplicateSlug)

	_, err = svc.CreateCategory(ctx, domain.CategoryRequest{Name: strPtr("   ")})
	assert.ErrorIs(t, err, domain.ErrInvalidName)

	_, err = svc.CreateCategory(ctx, domain.CategoryRequest{Name: strPtr("Boards"), CollectionID: strPtr("99")})
	assert.ErrorIs(t, err, domain.ErrInvalidCollection)
}

func TestSubCategoryNamesAreUniquePerCategory(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	composants, err := svc.CreateCategory(ctx, domain.CategoryRequest{Name: strPtr("Composants")})
	require.NoError(t, err)
	gaming, err := svc.CreateCategory(ctx, domain.CategoryRequest{Name: strPtr("Gaming")})
	require.NoError(t, err)

	first, err := svc.CreateSubCategory(ctx, domain.SubCategoryRequest{CategoryID: &composants.ID, Name: strPtr("Processeurs")})
	require.NoError(t, err)
	assert.Equal(t, "processeurs", first.Slug)
	assert.Equal(t, "Composants", first.CategoryName)

	_, err = svc.CreateSubCategory(ctx, domain.SubCategoryRequest{CategoryID: &composants.ID, Name: strPtr("processeurs")})
	assert.ErrorIs(t, err, domain.ErrDuplicateName)

	second, err := svc.CreateSubCategory(ctx, domain.SubCategoryRequest{CategoryID: &gaming.ID, Name: strPtr("Processeurs")})
	require.NoError(t, err)
	assert.Equal(t, "processeurs-1", second.Slug)

	_, err = svc.CreateSubCategory(ctx, domain.SubCategoryRequest{CategoryID: strPtr("123"), Name: strPtr("Orphan")})
	assert.ErrorIs(t, err, domain.ErrInvalidCategory)

	_, err = svc.UpdateSubCategory(ctx, second.ID, domain.SubCategoryRequest{CategoryID: &composants.ID})
	assert.ErrorIs(t, err, domain.ErrDuplicateName)
}

func TestListSubCategoriesCountsInStockProducts(t *testing.T) {
	svc, conn, node := newTestService(t)
	ctx := context.Background()

	category, err := svc.CreateCategory(ctx, domain.CategoryRequest{Name: strPtr("Composants")})
	require.NoError(t, err)
	cpu, err := svc.CreateSubCategory(ctx, domain.SubCategoryRequest{CategoryID: &category.ID, Name: strPtr("Processeurs"), ShowOnHomepage: boolPtr(true)})
	require.NoError(t, err)
	_, err = svc.CreateSubCategory(ctx, domain.SubCategoryRequest{CategoryID: &category.ID, Name: strPtr("Boitiers")})
	require.NoError(t, err)

	cpuID, err := parseID(cpu.ID)
	require.NoError(t, err)
	insertProduct(t, conn, node, productdomain.Product{Reference: "p1", SubCategoryID: &cpuID})
	insertProduct(t, conn, node, productdomain.Product{Reference: "p2", SubCategoryID: &cpuID})
	insertProduct(t, conn, node, productdomain.Product{Reference: "p3", SubCategoryID: &cpuID, Status: productdomain.StatusOutOfStock})

	all, err := svc.ListSubCategories(ctx, domain.SubCategoryListRequest{Category: "composants"})
	require.NoError(t, err)
	require.Len(t, all, 2)
	counts := map[string]int64{}
	for _, sc := range all {
		require.NotNil(t, sc.ProductCount)
		counts[sc.Slug] = *sc.ProductCount
	}
	assert.Equal(t, map[string]int64{"processeurs": 2, "boitiers": 0}, counts)

	homepage, err := svc.ListSubCategories(ctx, domain.SubCategoryListRequest{HomepageOnly: true})
	require.NoError(t, err)
	require.Len(t, homepage, 1)
	assert.Equal(t, "processeurs", homepage[0].Slug)

	unknown, err := svc.ListSubCategories(ctx, domain.SubCategoryListRequest{Category: "missing"})
	require.NoError(t, err)
	assert.Empty(t, unknown)
}

func TestGetCategoryNestsActiveSubCategories(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	category, err := svc.CreateCategory(ctx, domain.CategoryRequest{Name: strPtr("Composants")})
	require.NoError(t, err)
	_, err = svc.CreateSubCategory(ctx, domain.SubCategoryRequest{CategoryID: &category.ID, Name: strPtr("Processeurs"), Order: intPtr(2)})
	require.NoError(t, err)
	_, err = svc.CreateSubCategory(ctx, domain.SubCategoryRequest{CategoryID: &category.ID, Name: strPtr("Alimentations"), Order: intPtr(1)})
	require.NoError(t, err)
	_, err = svc.CreateSubCategory(ctx, domain.SubCategoryRequest{CategoryID: &category.ID, Name: strPtr("Archives"), IsActive: boolPtr(false)})
	require.NoError(t, err)

	got, err := svc.GetCategory(ctx, "composants")
	require.NoError(t, err)
	require.Len(t, got.SubCategories, 2)
	assert.Equal(t, "Alimentations", got.SubCategories[0].Name)
	assert.Equal(t, "Processeurs", got.SubCategories[1].Name)

	byID, err := svc.GetCategory(ctx, category.ID)
	require.NoError(t, err)
	assert.Equal(t, "composants", byID.Slug)

	_, err = svc.GetCategory(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteCategoryCascadesAndKeepsProducts(t *testing.T) {
	svc, conn, node := newTestService(t)
	ctx := context.Background()

	category, err := svc.CreateCategory(ctx, domain.CategoryRequest{Name: strPtr("Composants")})
	require.NoError(t, err)
	sub, err := svc.CreateSubCategory(ctx, domain.SubCategoryRequest{CategoryID: &category.ID, Name: strPtr("Processeurs")})
	require.NoError(t, err)
	typ, err := svc.CreateType(ctx, domain.TypeRequest{SubCategoryID: &sub.ID, Name: strPtr("AM5")})
	require.NoError(t, err)

	categoryID, _ := parseID(category.ID)
	subID, _ := parseID(sub.ID)
	typeID, _ := parseID(typ.ID)
	p := insertProduct(t, conn, node, productdomain.Product{Reference: "p1", CategoryID: &categoryID, SubCategoryID: &subID, TypeID: &typeID})

	require.NoError(t, svc.DeleteCategory(ctx, category.ID))

	var subs, types int64
	require.NoError(t, conn.Model(&domain.SubCategory{}).Count(&subs).Error)
	require.NoError(t, conn.Model(&domain.Type{}).Count(&types).Error)
	assert.Zero(t, subs)
	assert.Zero(t, types)

	var kept productdomain.Product
	require.NoError(t, conn.First(&kept, "id = ?", p.ID).Error)
	assert.Nil(t, kept.CategoryID)
	assert.Nil(t, kept.SubCategoryID)
	assert.Nil(t, kept.TypeID)

	assert.ErrorIs(t, svc.DeleteCategory(ctx, category.ID), domain.ErrNotFound)
}

func TestDeleteBrandClearsReferences(t *testing.T) {
	svc, conn, node := newTestService(t)
	ctx := context.Background()

	brand, err := svc.CreateBrand(ctx, domain.BrandRequest{Name: strPtr("AMD"), LogoURL: strPtr("https://cdn.example.com/amd.png")})
	require.NoError(t, err)
	require.NotNil(t, brand.Logo)
	assert.Equal(t, "https://cdn.example.com/amd.png", *brand.Logo)

	category, err := svc.CreateCategory(ctx, domain.CategoryRequest{Name: strPtr("Composants")})
	require.NoError(t, err)
	sub, err := svc.CreateSubCategory(ctx, domain.SubCategoryRequest{CategoryID: &category.ID, Name: strPtr("Processeurs")})
	require.NoError(t, err)
	typ, err := svc.CreateType(ctx, domain.TypeRequest{SubCategoryID: &sub.ID, BrandID: &brand.ID, Name: strPtr("Ryzen 9")})
	require.NoError(t, err)
	require.NotNil(t, typ.BrandID)

	brandID, _ := parseID(brand.ID)
	p := insertProduct(t, conn, node, productdomain.Product{Reference: "p1", BrandID: &brandID})

	require.NoError(t, svc.DeleteBrand(ctx, brand.ID))

	var kept productdomain.Product
	require.NoError(t, conn.First(&kept, "id = ?", p.ID).Error)
	assert.Nil(t, kept.BrandID)

	types, err := svc.ListTypes(ctx, domain.TypeListRequest{SubCategory: "processeurs"})
	require.NoError(t, err)
	require.Len(t, types, 1)
	assert.Nil(t, types[0].BrandID)
	assert.Equal(t, "processeurs", types[0].SubCategorySlug)
}

func TestCreateTypeValidation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateType(ctx, domain.TypeRequest{Name: strPtr("AM5")})
	assert.ErrorIs(t, err, domain.ErrInvalidParent)

	category, err := svc.CreateCategory(ctx, domain.CategoryRequest{Name: strPtr("Composants")})
	require.NoError(t, err)
	sub, err := svc.CreateSubCategory(ctx, domain.SubCategoryRequest{CategoryID: &category.ID, Name: strPtr("Processeurs")})
	require.NoError(t, err)

	_, err = svc.CreateType(ctx, domain.TypeRequest{SubCategoryID: &sub.ID, BrandID: strPtr("777"), Name: strPtr("AM5")})
	assert.ErrorIs(t, err, domain.ErrInvalidBrand)

	_, err = svc.UpdateType(ctx, "not-an-id", domain.TypeRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}

func TestResolverGetOrCreate(t *testing.T) {
	svc, conn, _ := newTestService(t)
	ctx := context.Background()

	existing, err := svc.CreateCategory(ctx, domain.CategoryRequest{Name: strPtr("Alimentations")})
	require.NoError(t, err)

	err = conn.Transaction(func(tx *gorm.DB) error {
		found, err := svc.FindCategory(ctx, tx, " alimentations ")
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, existing.Slug, found.Slug)

		missing, err := svc.FindCategory(ctx, tx, "Réseau")
		require.NoError(t, err)
		assert.Nil(t, missing)

		category, created, err := svc.GetOrCreateCategory(ctx, tx, "Réseau")
		require.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, "reseau", category.Slug)

		again, created, err := svc.GetOrCreateCategory(ctx, tx, "RESEAU")
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, category.ID, again.ID)

		sub, created, err := svc.GetOrCreateSubCategory(ctx, tx, category.ID, "Switchs")
		require.NoError(t, err)
		assert.True(t, created)

		brand, created, err := svc.GetOrCreateBrand(ctx, tx, "TP-Link")
		require.NoError(t, err)
		assert.True(t, created)

		typ, created, err := svc.GetOrCreateType(ctx, tx, sub.ID, &brand.ID, "Gigabit")
		require.NoError(t, err)
		assert.True(t, created)
		require.NotNil(t, typ.BrandID)
		assert.Equal(t, brand.ID, *typ.BrandID)

		_, created, err = svc.GetOrCreateType(ctx, tx, sub.ID, nil, "gigabit")
		require.NoError(t, err)
		assert.False(t, created)

		collection, created, err := svc.GetOrCreateCollection(ctx, tx, "Soldes d'été")
		require.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, "soldes-d-ete", collection.Slug)

		_, _, err = svc.GetOrCreateBrand(ctx, tx, "  ")
		assert.ErrorIs(t, err, domain.ErrInvalidName)
		return nil
	})
	require.NoError(t, err)
}
