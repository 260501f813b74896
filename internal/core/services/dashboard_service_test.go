package services

import (
	"context"
	"testing"

	"bloodbank-api/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDashboardService_StaffView(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()
	inventory := newTestInventory(store, nil)
	donors := NewDonorService(store.Donors, zap.NewNop())
	requests := NewHospitalRequestService(store.Requests, &recordingNotifier{}, zap.NewNop())

	seedLot(store, domain.APositive, 12, farExpiry)
	seedLot(store, domain.ONegative, 3, fixedNow.AddDate(0, 0, 2))
	for i := 0; i < 7; i++ {
		_, err := inventory.Allocate(ctx, &AllocateInput{BloodType: "A+", Units: 1, Source: "a", Destination: "b"})
		require.NoError(t, err)
	}

	d, err := donors.Create(ctx, &CreateDonorInput{Name: "D", Email: "d@example.com", Phone: "1", BloodType: "A+"})
	require.NoError(t, err)
	_, err = donors.Create(ctx, &CreateDonorInput{Name: "E", Email: "e@example.com", Phone: "2", BloodType: "B+"})
	require.NoError(t, err)
	_, err = donors.RecordDonation(ctx, d.ID)
	require.NoError(t, err)

	req, err := requests.Create(ctx, validRequest())
	require.NoError(t, err)
	_, err = requests.Approve(ctx, req.ID)
	require.NoError(t, err)
	_, err = requests.Create(ctx, validRequest())
	require.NoError(t, err)

	svc := NewDashboardService(inventory, store.Donors, store.Requests, store.Transactions)
	svc.now = clock

	view, err := svc.ForUser(ctx, domain.RoleAdmin, "admin@example.com")
	require.NoError(t, err)
	require.NotNil(t, view.Staff)
	assert.Nil(t, view.Donor)

	staff := view.Staff
	assert.Equal(t, 8, staff.Stats.TotalUnits)
	assert.Equal(t, 3, staff.Stats.ExpiringUnits)
	assert.ElementsMatch(t, []domain.BloodType{domain.APositive, domain.ONegative}, staff.Stats.CriticalTypes)
	assert.Equal(t, DonorCounts{Total: 2, Eligible: 1, Ineligible: 1}, staff.Donors)
	assert.Equal(t, RequestCounts{Total: 2, Pending: 1, Approved: 1}, staff.Requests)
	assert.Len(t, staff.RecentTransactions, recentTransactionLimit)
	assert.Equal(t, fixedNow, staff.GeneratedAt)
}

func TestDashboardService_DonorView(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()
	inventory := newTestInventory(store, nil)
	donors := NewDonorService(store.Donors, zap.NewNop())
	donors.now = clock

	seedLot(store, domain.BPositive, 20, farExpiry)
	d, err := donors.Create(ctx, &CreateDonorInput{Name: "D", Email: "d@example.com", Phone: "1", BloodType: "B+"})
	require.NoError(t, err)
	_, err = donors.RecordDonation(ctx, d.ID)
	require.NoError(t, err)

	svc := NewDashboardService(inventory, store.Donors, store.Requests, store.Transactions)

	view, err := svc.ForUser(ctx, domain.RoleDonor, "d@example.com")
	require.NoError(t, err)
	require.NotNil(t, view.Donor)
	assert.Nil(t, view.Staff)
	assert.False(t, view.Donor.Eligible)
	require.NotNil(t, view.Donor.LastDonation)
	assert.Equal(t, domain.DateOnly(fixedNow), *view.Donor.LastDonation)
	require.Len(t, view.Donor.Distribution, 1)
	assert.Equal(t, 20, view.Donor.Distribution[0].Value)

	// a donor account without a donor record still gets stock levels
	unknown, err := svc.DonorView(ctx, "stranger@example.com")
	require.NoError(t, err)
	assert.Nil(t, unknown.Donor)
	assert.Len(t, unknown.Distribution, 1)
}
