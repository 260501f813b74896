package stock

import (
	"time"

	"bloodbank-api/internal/core/domain"
)

// TypeCount is one slice of the blood type distribution chart
type TypeCount struct {
	Name  domain.BloodType `json:"name"`
	Value int              `json:"value"`
}

// Stats summarises an inventory list
type Stats struct {
	TotalUnits    int                `json:"total_units"`
	CriticalTypes []domain.BloodType `json:"critical_types"`
	ExpiringUnits int                `json:"expiring_units"`
	Distribution  []TypeCount        `json:"distribution"`
}

// ComputeStats folds lots into totals. It does not filter by status;
// callers pass the available lots when that is what they want.
func ComputeStats(lots []domain.BloodLot, ref time.Time) Stats {
	stats := Stats{
		CriticalTypes: []domain.BloodType{},
		Distribution:  []TypeCount{},
	}

	index := make(map[domain.BloodType]int)
	for _, lot := range lots {
		stats.TotalUnits += lot.Units

		if IsNearExpiry(DaysUntilExpiry(lot.ExpiryDate, ref)) {
			stats.ExpiringUnits += lot.Units
		}

		i, ok := index[lot.BloodType]
		if !ok {
			i = len(stats.Distribution)
			index[lot.BloodType] = i
			stats.Distribution = append(stats.Distribution, TypeCount{Name: lot.BloodType})
		}
		stats.Distribution[i].Value += lot.Units
	}

	for _, tc := range stats.Distribution {
		if IsCriticalStock(tc.Value) {
			stats.CriticalTypes = append(stats.CriticalTypes, tc.Name)
		}
	}

	return stats
}

// LotView is a lot plus its per-lot classification
type LotView struct {
	domain.BloodLot
	DaysUntilExpiry int  `json:"days_until_expiry"`
	NearExpiry      bool `json:"near_expiry"`
	LowUnits        bool `json:"low_units"`
}

// Classify annotates a lot with expiry and unit warnings relative to ref
func Classify(lot domain.BloodLot, ref time.Time) LotView {
	days := DaysUntilExpiry(lot.ExpiryDate, ref)
	return LotView{
		BloodLot:        lot,
		DaysUntilExpiry: days,
		NearExpiry:      IsNearExpiry(days),
		LowUnits:        IsLowUnitsInLot(lot.Units),
	}
}
