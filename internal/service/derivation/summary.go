package derivation

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/palmoil/internal/domain/models"
)

// Summarize recomputes the headline KPIs from the loaded collections. Stock
// counts only unsold containers.
func Summarize(harvests []models.Harvest, millings []models.Milling, storages []models.Storage, sales []models.Sale, today models.Date) models.DashboardSummary {
	byID := harvestIndex(harvests)

	var ffb, oil, cost, revenue, stock, pending decimal.Decimal
	for _, h := range harvests {
		ffb = ffb.Add(decimal.NewFromFloat(TotalWeight(h)))
	}
	for _, m := range millings {
		oil = oil.Add(decimal.NewFromFloat(m.OilYield))
		if total, ok := TotalCost(m, byID[m.HarvestID]); ok {
			cost = cost.Add(decimal.NewFromFloat(total))
		}
	}
	for _, s := range storages {
		status := StorageStatus(s, today)
		if status.Sold {
			continue
		}
		stock = stock.Add(decimal.NewFromFloat(status.Remaining))
	}

	pendingCount := 0
	for _, s := range sales {
		r := decimal.NewFromFloat(TotalRevenue(s))
		revenue = revenue.Add(r)
		if IsPaymentPending(s) {
			pendingCount++
			pending = pending.Add(r)
		}
	}

	var average decimal.Decimal
	if len(millings) > 0 {
		average = oil.Div(decimal.NewFromInt(int64(len(millings))))
	}

	return models.DashboardSummary{
		TotalFFBHarvested:    ffb.InexactFloat64(),
		TotalOilProduced:     oil.InexactFloat64(),
		TotalMillingCost:     cost.InexactFloat64(),
		TotalRevenue:         revenue.InexactFloat64(),
		TotalProfit:          revenue.Sub(cost).InexactFloat64(),
		TotalStorage:         stock.InexactFloat64(),
		PendingPaymentsCount: pendingCount,
		TotalPendingAmount:   pending.InexactFloat64(),
		AverageOilYield:      average.InexactFloat64(),
	}
}

// ProfitTrends groups milling cost and sale revenue by calendar day, oldest first.
func ProfitTrends(harvests []models.Harvest, millings []models.Milling, sales []models.Sale) []models.ProfitTrend {
	byID := harvestIndex(harvests)

	type bucket struct{ cost, revenue decimal.Decimal }
	days := make(map[string]*bucket)
	get := func(day string) *bucket {
		b, ok := days[day]
		if !ok {
			b = &bucket{}
			days[day] = b
		}
		return b
	}

	for _, m := range millings {
		total, ok := TotalCost(m, byID[m.HarvestID])
		if !ok {
			continue
		}
		b := get(m.MillingDate.String())
		b.cost = b.cost.Add(decimal.NewFromFloat(total))
	}
	for _, s := range sales {
		b := get(s.SaleDate.String())
		b.revenue = b.revenue.Add(decimal.NewFromFloat(TotalRevenue(s)))
	}

	trends := make([]models.ProfitTrend, 0, len(days))
	for day, b := range days {
		trends = append(trends, models.ProfitTrend{
			Date:    day,
			Cost:    b.cost.InexactFloat64(),
			Revenue: b.revenue.InexactFloat64(),
			Profit:  b.revenue.Sub(b.cost).InexactFloat64(),
		})
	}
	sort.Slice(trends, func(i, j int) bool { return trends[i].Date < trends[j].Date })
	return trends
}

func harvestIndex(harvests []models.Harvest) map[int64]*models.Harvest {
	byID := make(map[int64]*models.Harvest, len(harvests))
	for i := range harvests {
		byID[harvests[i].ID] = &harvests[i]
	}
	return byID
}
