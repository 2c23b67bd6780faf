package derivation

import (
	"github.com/mamadbah2/palmoil/internal/domain/models"
	"github.com/mamadbah2/palmoil/internal/domain/units"
)

// Efficiency compares the actual oil yield of a batch against the expected one.
type Efficiency struct {
	Percent  float64 `json:"percent"`
	Actual   float64 `json:"actual"`
	Expected float64 `json:"expected"`
	Success  bool    `json:"success"`
}

// OilYieldLiters is the batch oil yield as a volume.
func OilYieldLiters(m models.Milling) float64 {
	if m.OilYieldLiters != nil {
		return *m.OilYieldLiters
	}
	return units.KgToLiters(m.OilYield)
}

// TotalCost is the FFB cost plus milling and transport. Without a server value
// it needs the milled harvest.
func TotalCost(m models.Milling, h *models.Harvest) (float64, bool) {
	if m.TotalCost != nil {
		return *m.TotalCost, true
	}
	return computeTotalCost(m, h)
}

func computeTotalCost(m models.Milling, h *models.Harvest) (float64, bool) {
	if h == nil || h.ID != m.HarvestID {
		return 0, false
	}
	return m.MillingCost + m.TransportCost + FFBCost(*h), true
}

// CostPerKg is the production cost per kg of oil. A zero-yield batch has none.
func CostPerKg(m models.Milling, h *models.Harvest) (float64, bool) {
	if m.OilYield <= 0 {
		return 0, false
	}
	if m.CostPerKg != nil {
		return *m.CostPerKg, true
	}
	return computeCostPerKg(m, h)
}

func computeCostPerKg(m models.Milling, h *models.Harvest) (float64, bool) {
	if m.OilYield <= 0 {
		return 0, false
	}
	total, ok := TotalCost(m, h)
	if !ok {
		return 0, false
	}
	return total / m.OilYield, true
}

// CostPerLiter is CostPerKg scaled by the oil density.
func CostPerLiter(m models.Milling, h *models.Harvest) (float64, bool) {
	if m.OilYield <= 0 {
		return 0, false
	}
	if m.CostPerLiter != nil {
		return *m.CostPerLiter, true
	}
	perKg, ok := CostPerKg(m, h)
	if !ok {
		return 0, false
	}
	return perKg * units.OilDensity, true
}

// ExtractionEfficiency is the actual yield as a percentage of the expected yield.
func ExtractionEfficiency(m models.Milling, h models.Harvest) (Efficiency, bool) {
	expected := ExpectedOilYield(h)
	if expected <= 0 {
		return Efficiency{}, false
	}
	return Efficiency{
		Percent:  m.OilYield / expected * 100,
		Actual:   m.OilYield,
		Expected: expected,
		Success:  m.OilYield >= expected,
	}, true
}

// MinRecommendedPrice is the break-even price plus the minimum markup.
func MinRecommendedPrice(m models.Milling, h *models.Harvest) (float64, bool) {
	perKg, ok := CostPerKg(m, h)
	if !ok {
		return 0, false
	}
	return perKg * (1 + units.MinProfitMarkup), true
}

// BatchProfitAt is the profit of selling the whole batch at pricePerKg.
func BatchProfitAt(m models.Milling, h *models.Harvest, pricePerKg float64) (float64, bool) {
	perKg, ok := CostPerKg(m, h)
	if !ok {
		return 0, false
	}
	return (pricePerKg - perKg) * m.OilYield, true
}
