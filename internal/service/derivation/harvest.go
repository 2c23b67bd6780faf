package derivation

import (
	"time"

	"github.com/mamadbah2/palmoil/internal/domain/models"
	"github.com/mamadbah2/palmoil/internal/domain/units"
)

// TotalWeight is the FFB weight in kg.
func TotalWeight(h models.Harvest) float64 {
	if h.TotalWeight != nil {
		return *h.TotalWeight
	}
	return float64(h.NumBunches) * h.WeightPerBunch
}

// ExpectedOilYield is the CPO mass expected at the standard extraction rate.
func ExpectedOilYield(h models.Harvest) float64 {
	if h.ExpectedOilYield != nil {
		return *h.ExpectedOilYield
	}
	return TotalWeight(h) * units.OilExtractionRate
}

// ExpectedOilYieldLiters is ExpectedOilYield as a volume.
func ExpectedOilYieldLiters(h models.Harvest) float64 {
	if h.ExpectedOilYieldLiters != nil {
		return *h.ExpectedOilYieldLiters
	}
	return units.KgToLiters(ExpectedOilYield(h))
}

// FFBCost is the purchase price of bought fruit, or the notional cost of own fruit.
func FFBCost(h models.Harvest) float64 {
	if h.FFBCost != nil {
		return *h.FFBCost
	}
	if h.IsPurchased && h.PurchasePrice != nil && *h.PurchasePrice > 0 {
		return *h.PurchasePrice
	}
	return TotalWeight(h) * units.OwnHarvestCostPerKg
}

// HarvestCostPerKg is the FFB cost per kg of fruit, zero for an empty harvest.
func HarvestCostPerKg(h models.Harvest) float64 {
	if h.CostPerKg != nil {
		return *h.CostPerKg
	}
	weight := TotalWeight(h)
	if weight <= 0 {
		return 0
	}
	return FFBCost(h) / weight
}

// NeedsMillingAlert reports fruit that has waited longer than units.MillingAlertAge.
func NeedsMillingAlert(h models.Harvest, now time.Time) bool {
	if h.NeedsMillingAlert != nil {
		return *h.NeedsMillingAlert
	}
	if h.HarvestDate.IsZero() {
		return false
	}
	return now.UTC().Sub(h.HarvestDate.Time) > units.MillingAlertAge
}

// AvailableHarvests returns the harvests no milling record references yet, in input order.
func AvailableHarvests(harvests []models.Harvest, millings []models.Milling) []models.Harvest {
	milled := make(map[int64]struct{}, len(millings))
	for _, m := range millings {
		milled[m.HarvestID] = struct{}{}
	}

	available := make([]models.Harvest, 0, len(harvests))
	for _, h := range harvests {
		if _, ok := milled[h.ID]; ok {
			continue
		}
		available = append(available, h)
	}
	return available
}

// IsMilled reports whether any milling record references the harvest.
func IsMilled(harvestID int64, millings []models.Milling) bool {
	for _, m := range millings {
		if m.HarvestID == harvestID {
			return true
		}
	}
	return false
}
