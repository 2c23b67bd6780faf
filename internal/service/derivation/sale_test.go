package derivation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/palmoil/internal/domain/models"
)

func TestSaleProfitLossScenario(t *testing.T) {
	s := models.Storage{ID: 5, MillingID: 3, Quantity: 32}
	m := models.Milling{ID: 3, HarvestID: 7, OilYield: 32, CostPerKg: f64(2093.75)}
	sale := models.Sale{ID: 1, StorageID: 5, QuantitySold: 20, PricePerKg: 1000}

	profit, ok := SaleProfit(sale, &s, &m, nil)
	require.True(t, ok)
	assert.Equal(t, 20000.0, profit.Revenue)
	assert.InDelta(t, 41875.0, profit.Cost, 1e-9)
	assert.InDelta(t, -21875.0, profit.Profit, 1e-9)
	assert.InDelta(t, -109.375, profit.MarginPercent, 1e-9)
}

func TestSaleProfitUnavailableWithoutChain(t *testing.T) {
	s := models.Storage{ID: 5, MillingID: 3}
	m := models.Milling{ID: 3, OilYield: 32, CostPerKg: f64(2093.75)}
	sale := models.Sale{StorageID: 5, QuantitySold: 20, PricePerKg: 1000}

	_, ok := SaleProfit(sale, nil, &m, nil)
	assert.False(t, ok)
	_, ok = SaleProfit(sale, &s, nil, nil)
	assert.False(t, ok)

	other := models.Milling{ID: 4, OilYield: 32, CostPerKg: f64(1)}
	_, ok = SaleProfit(sale, &s, &other, nil)
	assert.False(t, ok)

	m.CostPerKg = nil
	_, ok = SaleProfit(sale, &s, &m, nil)
	assert.False(t, ok)
}

func TestSaleRevenueAndPayment(t *testing.T) {
	sale := models.Sale{QuantitySold: 20, PricePerKg: 1000, PaymentStatus: "pending"}
	assert.Equal(t, 20000.0, TotalRevenue(sale))
	assert.True(t, IsPaymentPending(sale))
	assert.InDelta(t, 20/0.91, QuantitySoldLiters(sale), 1e-9)

	sale.PaymentStatus = models.PaymentPaid
	assert.False(t, IsPaymentPending(sale))
}
