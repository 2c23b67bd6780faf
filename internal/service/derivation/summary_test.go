package derivation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/palmoil/internal/domain/models"
)

func TestSummarize(t *testing.T) {
	m, h := scenarioMilling()
	m.MillingDate = models.NewDate(2025, 1, 1)
	storages := []models.Storage{
		{ID: 5, MillingID: 3, Quantity: 32, TotalSold: 20, StorageDate: models.NewDate(2025, 1, 1), MaxShelfLifeDays: 30},
		{ID: 6, MillingID: 4, Quantity: 10, TotalSold: 10, StorageDate: models.NewDate(2025, 1, 1), MaxShelfLifeDays: 30},
	}
	sales := []models.Sale{
		{ID: 1, StorageID: 5, QuantitySold: 20, PricePerKg: 1000, PaymentStatus: models.PaymentPending, SaleDate: models.NewDate(2025, 1, 3)},
		{ID: 2, StorageID: 6, QuantitySold: 10, PricePerKg: 3000, PaymentStatus: models.PaymentPaid, SaleDate: models.NewDate(2025, 1, 3)},
	}

	summary := Summarize([]models.Harvest{h}, []models.Milling{m}, storages, sales, models.NewDate(2025, 1, 5))
	assert.Equal(t, 250.0, summary.TotalFFBHarvested)
	assert.Equal(t, 32.0, summary.TotalOilProduced)
	assert.Equal(t, 67000.0, summary.TotalMillingCost)
	assert.Equal(t, 50000.0, summary.TotalRevenue)
	assert.Equal(t, -17000.0, summary.TotalProfit)
	assert.Equal(t, 12.0, summary.TotalStorage)
	assert.Equal(t, 1, summary.PendingPaymentsCount)
	assert.Equal(t, 20000.0, summary.TotalPendingAmount)
	assert.Equal(t, 32.0, summary.AverageOilYield)
	assert.Empty(t, SummaryDrift(summary, summary))
}

func TestProfitTrends(t *testing.T) {
	m, h := scenarioMilling()
	m.MillingDate = models.NewDate(2025, 1, 2)
	sales := []models.Sale{
		{QuantitySold: 20, PricePerKg: 1000, SaleDate: models.NewDate(2025, 1, 4)},
		{QuantitySold: 10, PricePerKg: 1500, SaleDate: models.NewDate(2025, 1, 2)},
	}

	trends := ProfitTrends([]models.Harvest{h}, []models.Milling{m}, sales)
	require.Len(t, trends, 2)
	assert.Equal(t, models.ProfitTrend{Date: "2025-01-02", Cost: 67000, Revenue: 15000, Profit: -52000}, trends[0])
	assert.Equal(t, models.ProfitTrend{Date: "2025-01-04", Cost: 0, Revenue: 20000, Profit: 20000}, trends[1])
}

func TestMillingDrift(t *testing.T) {
	m, h := scenarioMilling()
	assert.Empty(t, MillingDrift(m, &h))

	m.TotalCost = f64(67000)
	m.CostPerKg = f64(531.25)
	drift := MillingDrift(m, &h)
	require.Len(t, drift, 1)
	assert.Equal(t, "cost_per_kg", drift[0].Field)
	assert.InDelta(t, 2093.75, drift[0].Client, 1e-9)
}

func TestStorageDrift(t *testing.T) {
	s := models.Storage{Quantity: 100, TotalSold: 30, StorageDate: models.NewDate(2025, 1, 1), MaxShelfLifeDays: 30}
	s.RemainingQuantity = f64(70)
	s.DaysUntilExpiry = intp(25)
	assert.Empty(t, StorageDrift(s, models.NewDate(2025, 1, 6)))

	s.RemainingQuantity = f64(100)
	drift := StorageDrift(s, models.NewDate(2025, 1, 6))
	require.Len(t, drift, 1)
	assert.Equal(t, "remaining_quantity", drift[0].Field)
}

func TestTrendDrift(t *testing.T) {
	local := []models.ProfitTrend{
		{Date: "2025-01-02", Cost: 67000, Revenue: 15000},
		{Date: "2025-01-04", Revenue: 20000},
	}
	assert.Empty(t, TrendDrift(local, local))

	server := []models.ProfitTrend{
		{Date: "2025-01-02", Cost: 17000, Revenue: 15000},
		{Date: "2025-01-03", Revenue: 500},
	}
	drift := TrendDrift(server, local)
	require.Len(t, drift, 3)
	assert.Equal(t, Drift{Field: "cost@2025-01-02", Server: 17000, Client: 67000}, drift[0])
	assert.Equal(t, Drift{Field: "revenue@2025-01-03", Server: 500, Client: 0}, drift[1])
	assert.Equal(t, Drift{Field: "revenue@2025-01-04", Server: 0, Client: 20000}, drift[2])
}

func TestAvailableStorageDrift(t *testing.T) {
	assert.Empty(t, AvailableStorageDrift(models.AvailableStorage{TotalQuantity: 67}, 67))

	drift := AvailableStorageDrift(models.AvailableStorage{TotalQuantity: 55}, 67)
	require.Len(t, drift, 1)
	assert.Equal(t, "total_quantity", drift[0].Field)
}
