package services

import "math"

const (
	// StandardPrice is the base price of the review QR unlock, in grosz (199 zł).
	StandardPrice int64 = 19900
	// UpgradePrice is the fixed price of the logo upgrade, in grosz (20 zł).
	UpgradePrice int64 = 2000
)

// FinalPrice applies a percentage discount to a base price in minor currency
// units, rounding to the nearest unit. A discount of 100 yields 0.
func FinalPrice(base int64, discountPercent int) int64 {
	if discountPercent <= 0 {
		return base
	}
	if discountPercent > 100 {
		discountPercent = 100
	}
	return int64(math.Round(float64(base) * (1 - float64(discountPercent)/100)))
}
