package stock

import (
	"testing"
	"time"

	"bloodbank-api/internal/core/domain"

	"github.com/stretchr/testify/assert"
)

func TestComputeStats_FarFromExpiry(t *testing.T) {
	ref := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	lots := []domain.BloodLot{
		lot("1", domain.APositive, 45),
		lot("2", domain.BPositive, 38),
		lot("3", domain.ABPositive, 12),
	}

	stats := ComputeStats(lots, ref)

	assert.Equal(t, 95, stats.TotalUnits)
	assert.Empty(t, stats.CriticalTypes)
	assert.NotNil(t, stats.CriticalTypes)
	assert.Equal(t, 0, stats.ExpiringUnits)
	assert.Equal(t, []TypeCount{
		{Name: domain.APositive, Value: 45},
		{Name: domain.BPositive, Value: 38},
		{Name: domain.ABPositive, Value: 12},
	}, stats.Distribution)
}

func TestComputeStats_CriticalAggregatesAcrossLots(t *testing.T) {
	ref := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	lots := []domain.BloodLot{
		lot("1", domain.ONegative, 4),
		lot("2", domain.APositive, 9),
		lot("3", domain.ONegative, 5),
		lot("4", domain.BNegative, 10),
		lot("5", domain.ABNegative, 3),
	}

	stats := ComputeStats(lots, ref)

	assert.Equal(t, []domain.BloodType{domain.ONegative, domain.APositive, domain.ABNegative}, stats.CriticalTypes)
	assert.Equal(t, domain.ONegative, stats.Distribution[0].Name)
	assert.Equal(t, 9, stats.Distribution[0].Value)
}

func TestComputeStats_ExpiringIncludesExpired(t *testing.T) {
	ref := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	expired := lot("expired", domain.APositive, 2)
	expired.ExpiryDate = time.Date(2024, 4, 20, 0, 0, 0, 0, time.UTC)
	edge := lot("edge", domain.APositive, 3)
	edge.ExpiryDate = time.Date(2024, 5, 8, 0, 0, 0, 0, time.UTC) // ceil(6.58) = 7
	outside := lot("outside", domain.APositive, 50)
	outside.ExpiryDate = time.Date(2024, 5, 9, 0, 0, 0, 0, time.UTC) // 8 days

	stats := ComputeStats([]domain.BloodLot{expired, edge, outside}, ref)

	assert.Equal(t, 5, stats.ExpiringUnits)
	assert.Equal(t, 55, stats.TotalUnits)
}

func TestComputeStats_NoStatusFiltering(t *testing.T) {
	reserved := lot("r", domain.APositive, 20)
	reserved.Status = domain.LotReserved

	stats := ComputeStats([]domain.BloodLot{reserved}, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, 20, stats.TotalUnits)
}

func TestComputeStats_Empty(t *testing.T) {
	stats := ComputeStats(nil, time.Now())
	assert.Zero(t, stats.TotalUnits)
	assert.Empty(t, stats.Distribution)
	assert.NotNil(t, stats.Distribution)
}

func TestClassify(t *testing.T) {
	ref := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	l := lot("1", domain.OPositive, 3)
	l.ExpiryDate = time.Date(2024, 5, 4, 0, 0, 0, 0, time.UTC)

	v := Classify(l, ref)
	assert.Equal(t, 3, v.DaysUntilExpiry)
	assert.True(t, v.NearExpiry)
	assert.True(t, v.LowUnits)
	assert.Equal(t, "1", v.ID)
}
