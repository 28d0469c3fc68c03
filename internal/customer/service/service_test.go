package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/vitrine/internal/clock"
	"github.com/smallbiznis/vitrine/internal/customer/domain"
	"github.com/smallbiznis/vitrine/internal/customer/repository"
	"github.com/smallbiznis/vitrine/pkg/db"
	"github.com/smallbiznis/vitrine/pkg/db/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (*Service, *gorm.DB, *clock.FakeClock) {
	t.Helper()
	conn := db.NewTest(t, &domain.Customer{})
	node, err := snowflake.NewNode(4)
	require.NoError(t, err)
	fake := clock.NewFakeClock(time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC))
	svc := New(Params{DB: conn, Log: zap.NewNop(), GenID: node, Clock: fake, Repo: repository.Provide()}).(*Service)
	return svc, conn, fake
}

func validRequest() domain.CreateCustomerRequest {
	return domain.CreateCustomerRequest{
		FirstName: " Amina ",
		LastName:  "Benali",
		Email:     "amina@example.com",
		Phone:     "+213 (0)5-55 12 34 56",
		Address:   "12 rue Didouche Mourad",
		City:      "Alger",
	}
}

func TestCapture(t *testing.T) {
	svc, conn, _ := newTestService(t)

	customer, err := svc.Capture(context.Background(), conn, validRequest())
	require.NoError(t, err)
	assert.Equal(t, "Amina", customer.FirstName)
	assert.Equal(t, "Amina Benali", customer.FullName())
	assert.Equal(t, "+2130555123456", customer.Phone)
	require.NotNil(t, customer.Email)
	assert.Nil(t, customer.Region)

	got, err := svc.GetByID(context.Background(), formatID(customer.ID))
	require.NoError(t, err)
	assert.Equal(t, "Alger", got.City)
}

func TestCaptureValidation(t *testing.T) {
	svc, conn, _ := newTestService(t)

	cases := []struct {
		name   string
		mutate func(*domain.CreateCustomerRequest)
		want   error
	}{
		{"missing first name", func(r *domain.CreateCustomerRequest) { r.FirstName = "  " }, domain.ErrInvalidName},
		{"bad email", func(r *domain.CreateCustomerRequest) { r.Email = "amina-at-example" }, domain.ErrInvalidEmail},
		{"letters in phone", func(r *domain.CreateCustomerRequest) { r.Phone = "05 55 AB" }, domain.ErrInvalidPhone},
		{"short phone", func(r *domain.CreateCustomerRequest) { r.Phone = "12345" }, domain.ErrInvalidPhone},
		{"missing address", func(r *domain.CreateCustomerRequest) { r.Address = "" }, domain.ErrInvalidAddress},
		{"missing city", func(r *domain.CreateCustomerRequest) { r.City = "" }, domain.ErrInvalidCity},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validRequest()
			tc.mutate(&req)
			_, err := svc.Capture(context.Background(), conn, req)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	req := validRequest()
	req.Email = ""
	customer, err := svc.Capture(context.Background(), conn, req)
	require.NoError(t, err)
	assert.Nil(t, customer.Email)
}

func TestListSearchesAndPaginates(t *testing.T) {
	svc, conn, fake := newTestService(t)
	ctx := context.Background()

	for _, name := range []string{"Benali", "Haddad", "Benyahia"} {
		req := validRequest()
		req.LastName = name
		fake.Advance(time.Minute)
		_, err := svc.Capture(ctx, conn, req)
		require.NoError(t, err)
	}

	resp, err := svc.List(ctx, domain.ListCustomerRequest{Search: "BEN", Page: pagination.Pagination{PageSize: 1}})
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.TotalCount)
	assert.True(t, resp.HasMore)
	require.Len(t, resp.Customers, 1)
	assert.Equal(t, "Benyahia", resp.Customers[0].LastName)

	_, err = svc.GetByID(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrInvalidID)
	_, err = svc.GetByID(ctx, "99")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func formatID(id int64) string {
	return snowflake.ID(id).String()
}
