package dashboard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/mamadbah2/palmoil/internal/domain/models"
	"github.com/mamadbah2/palmoil/internal/service/derivation"
	"github.com/mamadbah2/palmoil/internal/service/traceability"
	"github.com/mamadbah2/palmoil/pkg/clients/backend"
)

type fakeGateway struct {
	mu sync.Mutex

	harvests []models.Harvest
	millings []models.Milling
	storages []models.Storage
	sales    []models.Sale
	summary  models.DashboardSummary
	trends   []models.ProfitTrend
	alerts   models.AlertList

	available     *models.AvailableStorage
	storageAlerts models.StorageAlerts

	listErr map[string]error

	createdMillings []models.CreateMillingRequest
	createdSales    []models.CreateSaleRequest
	payments        map[int64]models.UpdatePaymentRequest
}

func (f *fakeGateway) fail(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listErr[name]
}

func (f *fakeGateway) ListHarvests(context.Context) ([]models.Harvest, error) {
	if err := f.fail("harvests"); err != nil {
		return nil, err
	}
	return f.harvests, nil
}

func (f *fakeGateway) GetHarvest(_ context.Context, id int64) (*models.Harvest, error) {
	for _, h := range f.harvests {
		if h.ID == id {
			found := h
			return &found, nil
		}
	}
	return nil, &backend.Error{Kind: backend.KindNotFound, StatusCode: 404, Message: "Harvest not found"}
}

func (f *fakeGateway) CreateHarvest(_ context.Context, req models.CreateHarvestRequest) (*models.Harvest, error) {
	return &models.Harvest{ID: 50, HarvestDate: req.HarvestDate, Plantation: req.Plantation, NumBunches: req.NumBunches, WeightPerBunch: req.WeightPerBunch}, nil
}

func (f *fakeGateway) ListMilling(context.Context) ([]models.Milling, error) {
	if err := f.fail("milling"); err != nil {
		return nil, err
	}
	return f.millings, nil
}

func (f *fakeGateway) GetMilling(_ context.Context, id int64) (*models.Milling, error) {
	for _, m := range f.millings {
		if m.ID == id {
			found := m
			return &found, nil
		}
	}
	return nil, &backend.Error{Kind: backend.KindNotFound, StatusCode: 404, Message: "Milling record not found"}
}

func (f *fakeGateway) ListAvailableStorage(context.Context) (*models.AvailableStorage, error) {
	if err := f.fail("available"); err != nil {
		return nil, err
	}
	if f.available != nil {
		return f.available, nil
	}
	inventory, total := derivation.AvailableStorage(f.storages, models.DateOf(fixedNow))
	return &models.AvailableStorage{Inventory: inventory, TotalQuantity: total}, nil
}

func (f *fakeGateway) StorageAlerts(context.Context) (*models.StorageAlerts, error) {
	if err := f.fail("storage_alerts"); err != nil {
		return nil, err
	}
	alerts := f.storageAlerts
	return &alerts, nil
}

func (f *fakeGateway) CreateMilling(_ context.Context, req models.CreateMillingRequest) (*models.CreateMillingResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createdMillings = append(f.createdMillings, req)
	return &models.CreateMillingResponse{
		Milling: models.Milling{ID: 60, HarvestID: req.HarvestID, OilYield: req.OilYield},
		Storage: models.Storage{ID: 160, ContainerID: "CPO060", MillingID: 60, Quantity: req.OilYield},
	}, nil
}

func (f *fakeGateway) ListStorage(context.Context) ([]models.Storage, error) {
	if err := f.fail("storage"); err != nil {
		return nil, err
	}
	return f.storages, nil
}

func (f *fakeGateway) GetStorage(_ context.Context, id int64) (*models.Storage, error) {
	for _, s := range f.storages {
		if s.ID == id {
			found := s
			return &found, nil
		}
	}
	return nil, &backend.Error{Kind: backend.KindNotFound, StatusCode: 404}
}

func (f *fakeGateway) ListSales(context.Context) ([]models.Sale, error) {
	if err := f.fail("sales"); err != nil {
		return nil, err
	}
	return f.sales, nil
}

func (f *fakeGateway) GetSale(_ context.Context, id int64) (*models.Sale, error) {
	for _, s := range f.sales {
		if s.ID == id {
			found := s
			return &found, nil
		}
	}
	return nil, &backend.Error{Kind: backend.KindNotFound, StatusCode: 404}
}

func (f *fakeGateway) CreateSale(_ context.Context, req models.CreateSaleRequest) (*models.CreateSaleResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createdSales = append(f.createdSales, req)
	return &models.CreateSaleResponse{
		Sale:             models.Sale{ID: 70, StorageID: req.StorageID, QuantitySold: req.QuantitySold, PricePerKg: req.PricePerKg},
		StorageRemaining: 12,
	}, nil
}

func (f *fakeGateway) UpdatePayment(_ context.Context, id int64, req models.UpdatePaymentRequest) (*models.Sale, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.payments == nil {
		f.payments = map[int64]models.UpdatePaymentRequest{}
	}
	f.payments[id] = req
	date := req.PaymentDate
	return &models.Sale{ID: id, PaymentStatus: models.PaymentPaid, PaymentDate: &date}, nil
}

func (f *fakeGateway) DashboardSummary(context.Context) (*models.DashboardSummary, error) {
	if err := f.fail("summary"); err != nil {
		return nil, err
	}
	summary := f.summary
	return &summary, nil
}

func (f *fakeGateway) ProfitTrends(context.Context) ([]models.ProfitTrend, error) {
	return f.trends, nil
}

func (f *fakeGateway) Alerts(context.Context) (*models.AlertList, error) {
	if err := f.fail("alerts"); err != nil {
		return nil, err
	}
	list := models.AlertList{Alerts: append([]models.Alert(nil), f.alerts.Alerts...), TotalCount: f.alerts.TotalCount}
	return &list, nil
}

func (f *fakeGateway) DownloadReport(_ context.Context, format backend.ReportFormat, reportType string) (*backend.Report, error) {
	return &backend.Report{Filename: reportType + "." + string(format), Data: []byte("report")}, nil
}

var fixedNow = time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)

// One traceable batch: 250 kg own FFB (₦12,500) + ₦17,000 milling and transport
// yields 32 kg, so the batch costs ₦921.875 per kg.
func newFixture() *fakeGateway {
	return &fakeGateway{
		harvests: []models.Harvest{
			{ID: 1, HarvestDate: models.NewDate(2024, time.March, 1), Plantation: "Owerri", NumBunches: 10, WeightPerBunch: 25, Ripeness: models.RipenessRipe},
			{ID: 2, HarvestDate: models.NewDate(2024, time.March, 8), Plantation: "Aba", NumBunches: 4, WeightPerBunch: 20, Ripeness: models.RipenessRipe},
		},
		millings: []models.Milling{
			{ID: 10, HarvestID: 1, MillingCost: 15000, TransportCost: 2000, OilYield: 32},
		},
		storages: []models.Storage{
			{ID: 100, ContainerID: "CPO010", MillingID: 10, Quantity: 32, TotalSold: 20, StorageDate: models.NewDate(2024, time.March, 1), MaxShelfLifeDays: 30},
			{ID: 101, ContainerID: "CPO011", MillingID: 11, Quantity: 40, StorageDate: models.NewDate(2024, time.February, 5), MaxShelfLifeDays: 30},
			{ID: 102, ContainerID: "CPO012", MillingID: 12, Quantity: 15, StorageDate: models.NewDate(2024, time.February, 15), MaxShelfLifeDays: 30},
		},
		sales: []models.Sale{
			{ID: 1000, StorageID: 100, QuantitySold: 20, PricePerKg: 1000, PaymentStatus: models.PaymentPending, SaleDate: models.NewDate(2024, time.March, 5)},
			{ID: 1001, StorageID: 404, QuantitySold: 5, PricePerKg: 1200, PaymentStatus: models.PaymentPaid, SaleDate: models.NewDate(2024, time.March, 6)},
		},
	}
}

func newTestService(gw Gateway) *Service {
	svc := NewService(gw, time.UTC, nil)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func newObservedService(gw Gateway) (*Service, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	svc := NewService(gw, time.UTC, zap.New(core))
	svc.now = func() time.Time { return fixedNow }
	return svc, logs
}

func TestHarvestView(t *testing.T) {
	svc := newTestService(newFixture())

	view, err := svc.HarvestView(context.Background())
	require.NoError(t, err)
	require.Len(t, view.Rows, 2)

	milled := view.Rows[0]
	assert.True(t, milled.Milled)
	assert.False(t, milled.MillingAlert)
	assert.InDelta(t, 250, milled.Weight, 1e-9)
	assert.InDelta(t, 12500, milled.Cost, 1e-9)
	assert.InDelta(t, 50, milled.ExpectedYield, 1e-9)

	waiting := view.Rows[1]
	assert.False(t, waiting.Milled)
	assert.True(t, waiting.MillingAlert)

	assert.InDelta(t, 330, view.TotalWeight, 1e-9)
	assert.Equal(t, 1, view.AwaitingMill)
	assert.Equal(t, 1, view.MillingAlerts)
}

func TestMillingView(t *testing.T) {
	svc := newTestService(newFixture())

	view, err := svc.MillingView(context.Background())
	require.NoError(t, err)
	require.Len(t, view.Rows, 1)

	row := view.Rows[0]
	require.NotNil(t, row.Harvest)
	require.NotNil(t, row.BatchCost)
	require.NotNil(t, row.UnitCostKg)
	require.NotNil(t, row.UnitCostLiter)
	require.NotNil(t, row.Efficiency)
	assert.InDelta(t, 29500, *row.BatchCost, 1e-9)
	assert.InDelta(t, 921.875, *row.UnitCostKg, 1e-9)
	assert.InDelta(t, 921.875*0.91, *row.UnitCostLiter, 1e-9)
	assert.InDelta(t, 64, row.Efficiency.Percent, 1e-9)
	assert.False(t, row.Efficiency.Success)

	require.Len(t, view.AvailableHarvests, 1)
	assert.Equal(t, int64(2), view.AvailableHarvests[0].ID)
}

func TestStorageView(t *testing.T) {
	svc := newTestService(newFixture())

	view, err := svc.StorageView(context.Background())
	require.NoError(t, err)
	require.Len(t, view.Rows, 3)

	fresh := view.Rows[0]
	assert.Equal(t, 21, fresh.Status.DaysUntilExpiry)
	assert.Equal(t, derivation.PriorityLow, fresh.Recommendation.Priority)
	assert.InDelta(t, 12, fresh.Status.Remaining, 1e-9)
	require.NotNil(t, fresh.MinPrice)
	assert.InDelta(t, 921.875*1.15, *fresh.MinPrice, 1e-9)
	require.NotNil(t, fresh.Outlook)
	assert.Empty(t, fresh.Missing)

	expired := view.Rows[1]
	assert.True(t, expired.Status.Expired)
	assert.False(t, expired.Status.NearExpiry)
	assert.Equal(t, derivation.PriorityUrgent, expired.Recommendation.Priority)
	assert.Nil(t, expired.MinPrice)
	assert.Nil(t, expired.Outlook)
	assert.Equal(t, []traceability.Link{traceability.LinkMilling, traceability.LinkHarvest}, expired.Missing)

	near := view.Rows[2]
	assert.Equal(t, 6, near.Status.DaysUntilExpiry)
	assert.True(t, near.Status.NearExpiry)
	assert.Equal(t, derivation.PriorityMedium, near.Recommendation.Priority)

	assert.InDelta(t, 67, view.TotalRemaining, 1e-9)
	assert.Equal(t, 1, view.NearExpiry)
	assert.Equal(t, 1, view.Expired)
	assert.False(t, view.LowStock)
}

func TestStorageDetail(t *testing.T) {
	svc := newTestService(newFixture())

	detail, err := svc.StorageDetail(context.Background(), 100)
	require.NoError(t, err)
	assert.Equal(t, "CPO010", detail.ContainerID)
	require.Len(t, detail.Sales, 1)
	assert.Equal(t, int64(1000), detail.Sales[0].ID)

	_, err = svc.StorageDetail(context.Background(), 999)
	assert.ErrorIs(t, err, backend.ErrNotFound)
}

func TestSalesView(t *testing.T) {
	svc := newTestService(newFixture())

	view, err := svc.SalesView(context.Background())
	require.NoError(t, err)
	require.Len(t, view.Rows, 2)

	traced := view.Rows[0]
	require.NotNil(t, traced.Profit)
	assert.InDelta(t, 20000, traced.Revenue, 1e-9)
	assert.InDelta(t, 18437.5, traced.Profit.Cost, 1e-9)
	assert.InDelta(t, 1562.5, traced.Profit.Profit, 1e-9)
	assert.Equal(t, "CPO010", traced.ContainerID)
	assert.True(t, traced.PaymentPending)

	orphan := view.Rows[1]
	assert.Nil(t, orphan.Profit)
	assert.Len(t, orphan.Missing, 3)
	assert.InDelta(t, 6000, orphan.Revenue, 1e-9)

	assert.InDelta(t, 26000, view.TotalRevenue, 1e-9)
	assert.InDelta(t, 1562.5, view.TotalProfit, 1e-9)
	assert.Equal(t, 1, view.PendingCount)
	assert.InDelta(t, 20000, view.PendingAmount, 1e-9)
	assert.True(t, traced.Traceable)
	assert.False(t, orphan.Traceable)

	require.Len(t, view.AvailableContainers, 3)
	assert.InDelta(t, 67, view.AvailableTotal, 1e-9)

	first := view.AvailableContainers[0]
	assert.Equal(t, int64(100), first.StorageID)
	assert.InDelta(t, 12, first.Remaining, 1e-9)
	require.NotNil(t, first.MinPrice)
	assert.InDelta(t, 1060.15625, *first.MinPrice, 1e-9)

	expired := view.AvailableContainers[1]
	assert.Equal(t, "CPO011", expired.ContainerID)
	assert.True(t, expired.Expired)
	assert.Nil(t, expired.MinPrice)
}

func TestSalesViewResolvesAvailableByContainer(t *testing.T) {
	gw := newFixture()
	// The available listing may omit ids and provenance.
	gw.available = &models.AvailableStorage{
		Inventory:     []models.Storage{{ContainerID: "CPO010", Quantity: 32, TotalSold: 20}},
		TotalQuantity: 12,
	}
	svc, logs := newObservedService(gw)

	view, err := svc.SalesView(context.Background())
	require.NoError(t, err)
	require.Len(t, view.AvailableContainers, 1)

	entry := view.AvailableContainers[0]
	assert.Equal(t, int64(100), entry.StorageID)
	assert.Equal(t, 21, entry.DaysUntilExpiry)
	require.NotNil(t, entry.MinPrice)
	assert.InDelta(t, 12, view.AvailableTotal, 1e-9)

	// The local total still counts all three containers.
	drift := logs.FilterField(zap.String("record", "available_storage"))
	require.Equal(t, 1, drift.Len())
	assert.Equal(t, zapcore.WarnLevel, drift.All()[0].Level)
}

func TestSalesViewFailsWithoutAvailableStorage(t *testing.T) {
	gw := newFixture()
	gw.listErr = map[string]error{"available": &backend.Error{Kind: backend.KindServer, StatusCode: 500}}
	svc := newTestService(gw)

	view, err := svc.SalesView(context.Background())
	assert.Nil(t, view)
	assert.ErrorIs(t, err, backend.ErrServer)
}

func TestMillingDetail(t *testing.T) {
	svc := newTestService(newFixture())

	detail, err := svc.MillingDetail(context.Background(), 10, 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultGuidePrice, detail.GuidePrice)
	require.NotNil(t, detail.GuideProfit)
	assert.InDelta(t, 2500, *detail.GuideProfit, 1e-9)
	require.NotNil(t, detail.UnitCostKg)
	assert.InDelta(t, 921.875, *detail.UnitCostKg, 1e-9)
	require.NotNil(t, detail.Storage)
	assert.Equal(t, "CPO010", detail.Storage.ContainerID)
	assert.Equal(t, "Owerri", detail.Harvest.Plantation)

	detail, err = svc.MillingDetail(context.Background(), 10, 1200)
	require.NoError(t, err)
	assert.InDelta(t, 8900, *detail.GuideProfit, 1e-9)
}

func TestMillingDetailWithoutHarvest(t *testing.T) {
	gw := newFixture()
	gw.millings = append(gw.millings, models.Milling{ID: 11, HarvestID: 77, MillingCost: 1000, OilYield: 10})
	svc := newTestService(gw)

	detail, err := svc.MillingDetail(context.Background(), 11, 1000)
	require.NoError(t, err)
	assert.Nil(t, detail.Harvest)
	assert.Nil(t, detail.GuideProfit)
	require.NotNil(t, detail.Storage)
	assert.Equal(t, "CPO011", detail.Storage.ContainerID)

	_, err = svc.MillingDetail(context.Background(), 99, 1000)
	assert.ErrorIs(t, err, backend.ErrNotFound)
}

func TestSaleDetail(t *testing.T) {
	svc := newTestService(newFixture())

	detail, err := svc.SaleDetail(context.Background(), 1000)
	require.NoError(t, err)
	assert.True(t, detail.Chain.Complete())
	assert.Equal(t, "Owerri", detail.Chain.Harvest.Plantation)

	_, err = svc.SaleDetail(context.Background(), 5)
	assert.ErrorIs(t, err, backend.ErrNotFound)
}

func TestViewFailsWhenAnyFetchFails(t *testing.T) {
	gw := newFixture()
	gw.listErr = map[string]error{"sales": &backend.Error{Kind: backend.KindServer, StatusCode: 500}}
	svc := newTestService(gw)

	view, err := svc.SalesView(context.Background())
	assert.Nil(t, view)
	assert.ErrorIs(t, err, backend.ErrServer)

	_, err = svc.Summary(context.Background())
	assert.ErrorIs(t, err, backend.ErrServer)

	// Views that do not need sales are unaffected.
	_, err = svc.StorageView(context.Background())
	assert.NoError(t, err)
}

func TestSummaryPrefersServerValues(t *testing.T) {
	gw := newFixture()
	gw.summary = models.DashboardSummary{TotalFFBHarvested: 999, TotalRevenue: 26000}
	svc := newTestService(gw)

	summary, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 999, summary.TotalFFBHarvested, 1e-9)
}

func TestProfitTrendsLogsDrift(t *testing.T) {
	gw := newFixture()
	gw.trends = derivation.ProfitTrends(gw.harvests, gw.millings, gw.sales)
	svc, logs := newObservedService(gw)

	trends, err := svc.ProfitTrends(context.Background())
	require.NoError(t, err)
	assert.Equal(t, gw.trends, trends)
	assert.Zero(t, logs.FilterField(zap.String("record", "profit_trends")).Len())

	gw.trends = append([]models.ProfitTrend(nil), gw.trends...)
	gw.trends[len(gw.trends)-1].Revenue += 500
	trends, err = svc.ProfitTrends(context.Background())
	require.NoError(t, err)
	assert.Equal(t, gw.trends, trends)

	drift := logs.FilterField(zap.String("record", "profit_trends")).All()
	require.Len(t, drift, 1)
	assert.Equal(t, zapcore.WarnLevel, drift[0].Level)
}

func TestMillingDriftLoggedAtDebug(t *testing.T) {
	gw := newFixture()
	// The backend leaves the FFB cost out of cost_per_kg.
	perKg := 17000.0 / 32
	gw.millings[0].CostPerKg = &perKg
	svc, logs := newObservedService(gw)

	view, err := svc.MillingView(context.Background())
	require.NoError(t, err)
	require.Len(t, view.Rows, 1)

	drift := logs.FilterField(zap.String("record", "milling")).All()
	require.NotEmpty(t, drift)
	for _, entry := range drift {
		assert.Equal(t, zapcore.DebugLevel, entry.Level)
	}
	assert.Zero(t, logs.FilterLevelExact(zapcore.WarnLevel).Len())
}

func TestAlertsSortedBySeverity(t *testing.T) {
	gw := newFixture()
	gw.alerts = models.AlertList{Alerts: []models.Alert{
		{Type: models.AlertPayment, Severity: models.SeverityLow, Message: "pending"},
		{Type: models.AlertStorage, Severity: models.SeverityCritical, Message: "expired"},
		{Type: models.AlertMilling, Severity: models.SeverityHigh, Message: "mill now"},
	}}
	svc := newTestService(gw)

	list, err := svc.Alerts(context.Background())
	require.NoError(t, err)
	require.Len(t, list.Alerts, 3)
	assert.Equal(t, models.SeverityCritical, list.Alerts[0].Severity)
	assert.Equal(t, models.SeverityHigh, list.Alerts[1].Severity)
	assert.Equal(t, models.SeverityLow, list.Alerts[2].Severity)
	assert.Equal(t, 3, list.TotalCount)
}

func TestRecordMillingRefusesMilledHarvest(t *testing.T) {
	gw := newFixture()
	svc := newTestService(gw)

	req, err := models.NewMilling(models.NewDate(2024, time.March, 10), "Mill A", 1, 1000, 500, 10)
	require.NoError(t, err)

	_, err = svc.RecordMilling(context.Background(), req)
	assert.ErrorIs(t, err, ErrAlreadyMilled)
	assert.Empty(t, gw.createdMillings)

	req.HarvestID = 2
	resp, err := svc.RecordMilling(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "CPO060", resp.Storage.ContainerID)
	assert.Len(t, gw.createdMillings, 1)
}

func TestRecordMillingUnknownHarvest(t *testing.T) {
	gw := newFixture()
	svc := newTestService(gw)

	req, err := models.NewMilling(models.NewDate(2024, time.March, 10), "Mill A", 77, 1000, 500, 10)
	require.NoError(t, err)

	_, err = svc.RecordMilling(context.Background(), req)
	assert.ErrorIs(t, err, backend.ErrNotFound)
	assert.Empty(t, gw.createdMillings)
}

func TestRecordSalePreCheck(t *testing.T) {
	gw := newFixture()
	svc := newTestService(gw)

	req, err := models.NewSale(models.NewDate(2024, time.March, 10), "Buyer", 100, 13, 1100, models.PaymentPending, nil)
	require.NoError(t, err)

	_, err = svc.RecordSale(context.Background(), req)
	assert.ErrorIs(t, err, derivation.ErrInsufficientStock)
	assert.Empty(t, gw.createdSales)

	req.QuantitySold = 12
	resp, err := svc.RecordSale(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, int64(70), resp.Sale.ID)
	assert.Len(t, gw.createdSales, 1)
}

func TestRecordSaleEmptyContainer(t *testing.T) {
	gw := newFixture()
	gw.storages[0].TotalSold = 32
	svc := newTestService(gw)

	req, err := models.NewSale(models.NewDate(2024, time.March, 10), "Buyer", 100, 1, 1100, models.PaymentPaid, nil)
	require.NoError(t, err)

	_, err = svc.RecordSale(context.Background(), req)
	assert.ErrorIs(t, err, derivation.ErrContainerEmpty)
}

func TestMarkPaid(t *testing.T) {
	gw := newFixture()
	svc := newTestService(gw)

	sale, err := svc.MarkPaid(context.Background(), 1000, models.Date{})
	require.NoError(t, err)
	assert.True(t, sale.PaymentStatus.IsPaid())
	assert.Equal(t, "2024-03-10", gw.payments[1000].PaymentDate.String())

	_, err = svc.MarkPaid(context.Background(), 1001, models.NewDate(2024, time.March, 11))
	assert.ErrorIs(t, err, ErrAlreadyPaid)
	assert.NotContains(t, gw.payments, int64(1001))
}

func TestDigest(t *testing.T) {
	gw := newFixture()
	gw.summary = models.DashboardSummary{
		TotalFFBHarvested:    330,
		TotalOilProduced:     32,
		TotalRevenue:         26000,
		TotalProfit:          1562.5,
		TotalStorage:         67,
		PendingPaymentsCount: 1,
		TotalPendingAmount:   20000,
	}
	gw.storageAlerts = models.StorageAlerts{
		NearExpiry:  []models.Storage{gw.storages[2]},
		Expired:     []models.Storage{gw.storages[1]},
		TotalAlerts: 2,
	}
	gw.alerts = models.AlertList{Alerts: []models.Alert{
		{Type: models.AlertMilling, Severity: models.SeverityHigh, Message: "Harvest from Aba needs milling"},
		{Type: models.AlertStorage, Severity: models.SeverityCritical, Message: "Container CPO011 has expired"},
	}}
	svc := newTestService(gw)

	digest, err := svc.Digest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, digest.Critical)
	assert.Equal(t, fixedNow, digest.GeneratedAt)
	assert.Contains(t, digest.Text, "Palm oil digest 2024-03-10")
	assert.Contains(t, digest.Text, "Revenue: ₦26,000.00 | Profit: ₦1,562.50")
	assert.Contains(t, digest.Text, "Pending payments: 1 (₦20,000.00)")
	assert.Contains(t, digest.Text, "Oil produced: 32.00 kg (35.16 L)")
	assert.Contains(t, digest.Text, "Extraction rate: 9.7%")
	assert.Contains(t, digest.Text, "Containers: 1 near expiry, 1 expired")
	assert.Equal(t, 1, digest.NearExpiry)
	assert.Equal(t, 1, digest.Expired)
	assert.Contains(t, digest.Text, "- [CRITICAL] Container CPO011 has expired\n- [HIGH] Harvest from Aba needs milling")
}

func TestDigestWithoutAlerts(t *testing.T) {
	svc := newTestService(newFixture())

	digest, err := svc.Digest(context.Background())
	require.NoError(t, err)
	assert.Zero(t, digest.Critical)
	assert.Contains(t, digest.Text, "No open alerts.")
}

func TestDigestPropagatesErrors(t *testing.T) {
	gw := newFixture()
	gw.listErr = map[string]error{"alerts": errors.New("boom")}
	svc := newTestService(gw)

	_, err := svc.Digest(context.Background())
	assert.Error(t, err)

	gw.listErr = map[string]error{"storage_alerts": errors.New("boom")}
	_, err = svc.Digest(context.Background())
	assert.Error(t, err)
}

func TestReportPassThrough(t *testing.T) {
	svc := newTestService(newFixture())

	report, err := svc.Report(context.Background(), backend.ReportPDF, "sales")
	require.NoError(t, err)
	assert.Equal(t, "sales.pdf", report.Filename)
}
