// Package stock holds the inventory rules: expiry and criticality
// classification, list-order allocation of outgoing units and the
// dashboard stats fold. Everything here is pure and works on plain slices.
package stock

import (
	"math"
	"time"
)

const (
	// ShelfLifeDays is the default shelf life applied when no expiry date is supplied
	ShelfLifeDays = 42

	// NearExpiryDays is the inclusive threshold for near-expiry lots
	NearExpiryDays = 7

	// CriticalStockThreshold: a blood type with fewer total units is critical
	CriticalStockThreshold = 10

	// LowLotUnitsThreshold: a single lot with fewer units gets a unit-level warning
	LowLotUnitsThreshold = 5
)

// DaysUntilExpiry returns ceil((expiry - ref) / 1 day). Negative when already expired.
func DaysUntilExpiry(expiry, ref time.Time) int {
	return int(math.Ceil(expiry.Sub(ref).Hours() / 24))
}

// IsNearExpiry has no lower bound: expired lots are near-expiry too.
func IsNearExpiry(daysUntilExpiry int) bool {
	return daysUntilExpiry <= NearExpiryDays
}

// IsCriticalStock takes the total available units of one blood type across all lots.
func IsCriticalStock(totalUnitsForType int) bool {
	return totalUnitsForType < CriticalStockThreshold
}

// IsLowUnitsInLot is the per-lot warning, not to be confused with IsCriticalStock.
func IsLowUnitsInLot(units int) bool {
	return units < LowLotUnitsThreshold
}

// ExpiryFromDonation derives the expiry date from the donation date
func ExpiryFromDonation(donation time.Time) time.Time {
	return donation.AddDate(0, 0, ShelfLifeDays)
}
