package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/vitrine/internal/clock"
	"github.com/smallbiznis/vitrine/internal/heroslide/domain"
	"github.com/smallbiznis/vitrine/pkg/db"
	"github.com/smallbiznis/vitrine/pkg/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) (domain.Service, *clock.FakeClock) {
	t.Helper()
	conn := db.NewTest(t, &domain.HeroSlide{})
	node, err := snowflake.NewNode(2)
	require.NoError(t, err)
	fake := clock.NewFakeClock(time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC))
	return New(Params{
		Log:   zap.NewNop(),
		GenID: node,
		Clock: fake,
		Repo:  repository.ProvideStore[domain.HeroSlide](conn),
	}), fake
}

func TestActiveSlidesInDisplayOrder(t *testing.T) {
	svc, fake := newTestService(t)
	ctx := context.Background()
	hidden := false

	_, err := svc.Create(ctx, domain.CreateRequest{Title: "Soldes", Image: "/media/hero/soldes.jpg", SortOrder: 2})
	require.NoError(t, err)
	fake.Advance(time.Minute)
	_, err = svc.Create(ctx, domain.CreateRequest{Title: "Rentrée", Image: "/media/hero/rentree.jpg", SortOrder: 1, LinkURL: "/categories/pc-portables/"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, domain.CreateRequest{Title: "Brouillon", Image: "/media/hero/draft.jpg", IsActive: &hidden})
	require.NoError(t, err)

	active, err := svc.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "Rentrée", active[0].Title)
	assert.Equal(t, "Soldes", active[1].Title)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, "Brouillon", all[0].Title)
}

func TestCreateValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreateRequest{Title: " ", Image: "/a.jpg"})
	assert.ErrorIs(t, err, domain.ErrInvalidTitle)
	_, err = svc.Create(ctx, domain.CreateRequest{Title: "A"})
	assert.ErrorIs(t, err, domain.ErrInvalidImage)
	_, err = svc.Create(ctx, domain.CreateRequest{Title: "A", Image: "/a.jpg", LinkURL: "javascript:alert(1)"})
	assert.ErrorIs(t, err, domain.ErrInvalidLink)
	_, err = svc.Create(ctx, domain.CreateRequest{Title: "A", Image: "/a.jpg", LinkURL: "promo"})
	assert.ErrorIs(t, err, domain.ErrInvalidLink)
	_, err = svc.Create(ctx, domain.CreateRequest{Title: "A", Image: "/a.jpg", LinkURL: "https://example.com/promo"})
	assert.NoError(t, err)
}

func TestUpdateAndDelete(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	created, err := svc.Create(ctx, domain.CreateRequest{Title: "Soldes", Image: "/a.jpg"})
	require.NoError(t, err)

	off, title := false, "Grandes soldes"
	updated, err := svc.Update(ctx, created.ID, domain.UpdateRequest{Title: &title, IsActive: &off})
	require.NoError(t, err)
	assert.Equal(t, "Grandes soldes", updated.Title)
	assert.False(t, updated.IsActive)

	active, err := svc.ListActive(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)

	require.NoError(t, svc.Delete(ctx, created.ID))
	_, err = svc.Get(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = svc.Get(ctx, "x")
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}
