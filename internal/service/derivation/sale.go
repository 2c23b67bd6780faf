package derivation

import (
	"github.com/mamadbah2/palmoil/internal/domain/models"
	"github.com/mamadbah2/palmoil/internal/domain/units"
)

// Profit breaks down the margin of one sale. Losses are negative.
type Profit struct {
	Revenue       float64 `json:"revenue"`
	Cost          float64 `json:"cost"`
	Profit        float64 `json:"profit"`
	CostPerKg     float64 `json:"cost_per_kg"`
	MarginPercent float64 `json:"margin_percent"`
}

// TotalRevenue is quantity sold times price per kg.
func TotalRevenue(s models.Sale) float64 {
	if s.TotalRevenue != nil {
		return *s.TotalRevenue
	}
	return s.QuantitySold * s.PricePerKg
}

// QuantitySoldLiters is the sold quantity as a volume.
func QuantitySoldLiters(s models.Sale) float64 {
	if s.QuantitySoldLiters != nil {
		return *s.QuantitySoldLiters
	}
	return units.KgToLiters(s.QuantitySold)
}

// IsPaymentPending reports an unpaid sale.
func IsPaymentPending(s models.Sale) bool {
	if s.IsPaymentPending != nil {
		return *s.IsPaymentPending
	}
	return s.PaymentStatus.IsPending()
}

// SaleProfit prices the sold kg at the batch production cost. It needs the
// sale's container and that container's milling batch; the harvest is only
// needed when the batch carries no server-computed cost.
func SaleProfit(sale models.Sale, storage *models.Storage, milling *models.Milling, harvest *models.Harvest) (Profit, bool) {
	if storage == nil || storage.ID != sale.StorageID {
		return Profit{}, false
	}
	if milling == nil || milling.ID != storage.MillingID {
		return Profit{}, false
	}
	if harvest != nil && harvest.ID != milling.HarvestID {
		harvest = nil
	}

	perKg, ok := CostPerKg(*milling, harvest)
	if !ok {
		return Profit{}, false
	}

	revenue := TotalRevenue(sale)
	cost := perKg * sale.QuantitySold
	profit := revenue - cost

	var margin float64
	if revenue != 0 {
		margin = profit / revenue * 100
	}

	return Profit{
		Revenue:       revenue,
		Cost:          cost,
		Profit:        profit,
		CostPerKg:     perKg,
		MarginPercent: margin,
	}, true
}
