package derivation

import (
	"math"

	"github.com/mamadbah2/palmoil/internal/domain/models"
)

const driftTolerance = 0.01

// Drift is a server value that disagrees with the local formula.
type Drift struct {
	Field  string  `json:"field"`
	Server float64 `json:"server"`
	Client float64 `json:"client"`
}

func compare(out []Drift, field string, server *float64, client float64, ok bool) []Drift {
	if server == nil || !ok {
		return out
	}
	if math.Abs(*server-client) > driftTolerance {
		out = append(out, Drift{Field: field, Server: *server, Client: client})
	}
	return out
}

// MillingDrift lists server-computed milling costs that differ from the local formulas.
func MillingDrift(m models.Milling, h *models.Harvest) []Drift {
	var out []Drift
	total, ok := computeTotalCost(m, h)
	out = compare(out, "total_cost", m.TotalCost, total, ok)

	local := m
	local.CostPerKg, local.CostPerLiter = nil, nil
	perKg, ok := computeCostPerKg(local, h)
	out = compare(out, "cost_per_kg", m.CostPerKg, perKg, ok)

	perLiter, ok := CostPerLiter(local, h)
	out = compare(out, "cost_per_liter", m.CostPerLiter, perLiter, ok)
	return out
}

// StorageDrift lists server-computed container figures that differ from the local formulas.
func StorageDrift(s models.Storage, today models.Date) []Drift {
	var out []Drift
	out = compare(out, "remaining_quantity", s.RemainingQuantity, s.Quantity-s.TotalSold, true)
	if s.DaysUntilExpiry != nil {
		server := float64(*s.DaysUntilExpiry)
		local := s
		local.DaysUntilExpiry, local.ExpiryDate = nil, nil
		out = compare(out, "days_until_expiry", &server, float64(DaysUntilExpiry(local, today)), true)
	}
	return out
}

// SummaryDrift lists KPI totals that differ between the backend and a local recomputation.
func SummaryDrift(server, local models.DashboardSummary) []Drift {
	var out []Drift
	out = compare(out, "total_ffb_harvested", &server.TotalFFBHarvested, local.TotalFFBHarvested, true)
	out = compare(out, "total_oil_produced", &server.TotalOilProduced, local.TotalOilProduced, true)
	out = compare(out, "total_milling_cost", &server.TotalMillingCost, local.TotalMillingCost, true)
	out = compare(out, "total_revenue", &server.TotalRevenue, local.TotalRevenue, true)
	out = compare(out, "total_storage", &server.TotalStorage, local.TotalStorage, true)
	out = compare(out, "total_pending_amount", &server.TotalPendingAmount, local.TotalPendingAmount, true)
	return out
}

// TrendDrift lists per-day cost and revenue that differ between the backend
// series and a local recomputation. A day missing on one side counts as zero there.
func TrendDrift(server, local []models.ProfitTrend) []Drift {
	byDay := make(map[string]models.ProfitTrend, len(local))
	for _, t := range local {
		byDay[t.Date] = t
	}

	var out []Drift
	seen := make(map[string]bool, len(server))
	for _, st := range server {
		seen[st.Date] = true
		lt := byDay[st.Date]
		out = compare(out, "cost@"+st.Date, &st.Cost, lt.Cost, true)
		out = compare(out, "revenue@"+st.Date, &st.Revenue, lt.Revenue, true)
	}
	for _, lt := range local {
		if seen[lt.Date] {
			continue
		}
		var zero float64
		out = compare(out, "cost@"+lt.Date, &zero, lt.Cost, true)
		out = compare(out, "revenue@"+lt.Date, &zero, lt.Revenue, true)
	}
	return out
}

// AvailableStorageDrift compares the backend's available total with the local one.
func AvailableStorageDrift(server models.AvailableStorage, localTotal float64) []Drift {
	return compare(nil, "total_quantity", &server.TotalQuantity, localTotal, true)
}
