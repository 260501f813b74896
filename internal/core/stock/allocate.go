package stock

import (
	"bloodbank-api/internal/core/domain"
)

// Allocation is the outcome of a successful Allocate call
type Allocation struct {
	// Lots is the new active collection: depleted lots removed, order preserved
	Lots []domain.BloodLot
	// Updated holds partially consumed lots with their new unit counts
	Updated []domain.BloodLot
	// Depleted holds fully consumed lots (Units 0, status depleted)
	Depleted []domain.BloodLot
	// Allocated always equals the requested units
	Allocated int
	// AvailableBefore is the matching available total before allocation
	AvailableBefore int
}

// AvailableUnits sums units of available lots of the blood type. Component is not distinguished.
func AvailableUnits(lots []domain.BloodLot, bloodType domain.BloodType) int {
	total := 0
	for _, lot := range lots {
		if matches(lot, bloodType) {
			total += lot.Units
		}
	}
	return total
}

// Allocate depletes available lots of bloodType in list order until units are covered.
// Lots are consumed first-listed first, not by expiry or donation date.
// On failure the input is left untouched and an *domain.InsufficientStockError is returned.
func Allocate(lots []domain.BloodLot, bloodType domain.BloodType, units int) (*Allocation, error) {
	if units <= 0 {
		return nil, domain.NewValidationError("units", "must be a positive integer")
	}

	available := AvailableUnits(lots, bloodType)
	if available < units {
		return nil, &domain.InsufficientStockError{
			BloodType: bloodType,
			Requested: units,
			Available: available,
		}
	}

	result := &Allocation{
		Lots:            make([]domain.BloodLot, 0, len(lots)),
		Allocated:       units,
		AvailableBefore: available,
	}

	remaining := units
	for _, lot := range lots {
		if remaining == 0 || !matches(lot, bloodType) {
			result.Lots = append(result.Lots, lot)
			continue
		}

		if lot.Units <= remaining {
			remaining -= lot.Units
			lot.Units = 0
			lot.Status = domain.LotDepleted
			result.Depleted = append(result.Depleted, lot)
			continue
		}

		lot.Units -= remaining
		remaining = 0
		result.Updated = append(result.Updated, lot)
		result.Lots = append(result.Lots, lot)
	}

	return result, nil
}

func matches(lot domain.BloodLot, bloodType domain.BloodType) bool {
	return lot.BloodType == bloodType && lot.Status == domain.LotAvailable
}
