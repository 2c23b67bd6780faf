// Package units holds the conversion factor and business thresholds shared by
// every derived figure shown on the dashboard.
package units

import "time"

const (
	// OilDensity is the CPO density in kg per liter.
	OilDensity = 0.91
	// OilExtractionRate is the assumed share of FFB weight recovered as oil.
	OilExtractionRate = 0.20
	// OwnHarvestCostPerKg is the notional FFB cost (₦/kg) of non-purchased fruit.
	OwnHarvestCostPerKg = 50.0
	// MinProfitMarkup is the minimum markup applied over production cost.
	MinProfitMarkup = 0.15

	// DefaultShelfLifeDays applies when a storage record carries no shelf life.
	DefaultShelfLifeDays = 30
	// NearExpiryDays bounds the near-expiry window: 0 < days <= NearExpiryDays.
	NearExpiryDays = 10
	// HighPriorityDays and MediumPriorityDays are the sell-priority day bands.
	HighPriorityDays   = 5
	MediumPriorityDays = 10

	// LowStockThresholdKg triggers the low stock alert.
	LowStockThresholdKg = 50.0
)

// MillingAlertAge is how long harvested FFB may wait before milling.
const MillingAlertAge = 24 * time.Hour

// KgToLiters converts a CPO mass to its volume.
func KgToLiters(kg float64) float64 {
	return kg / OilDensity
}

// LitersToKg converts a CPO volume to its mass.
func LitersToKg(liters float64) float64 {
	return liters * OilDensity
}
