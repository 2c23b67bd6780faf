package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/mamadbah2/palmoil/internal/domain/models"
	"github.com/mamadbah2/palmoil/internal/domain/units"
	"github.com/mamadbah2/palmoil/internal/service/derivation"
	"github.com/mamadbah2/palmoil/internal/service/traceability"
	"github.com/mamadbah2/palmoil/pkg/clients/backend"
	"github.com/mamadbah2/palmoil/pkg/money"
)

// DefaultGuidePrice is the selling price the milling profitability guide quotes
// when none is given, in naira per kg.
const DefaultGuidePrice = 1000.0

// Optional figures are nil when the records needed to compute them are missing.

// HarvestRow is a harvest with its derived totals.
type HarvestRow struct {
	models.Harvest
	Weight         float64 `json:"weight"`
	ExpectedYield  float64 `json:"expected_yield"`
	ExpectedYieldL float64 `json:"expected_yield_liters"`
	Cost           float64 `json:"cost"`
	UnitCost       float64 `json:"unit_cost"`
	MillingAlert   bool    `json:"milling_alert"`
	Milled         bool    `json:"milled"`
}

// HarvestView is the harvest page.
type HarvestView struct {
	Rows          []HarvestRow `json:"rows"`
	TotalWeight   float64      `json:"total_weight"`
	AwaitingMill  int          `json:"awaiting_milling"`
	MillingAlerts int          `json:"milling_alerts"`
}

// MillingRow is a milling batch with its efficiency and unit costs.
type MillingRow struct {
	models.Milling
	Harvest       *models.Harvest        `json:"harvest,omitempty"`
	YieldLiters   float64                `json:"yield_liters"`
	BatchCost     *float64               `json:"batch_cost"`
	UnitCostKg    *float64               `json:"unit_cost_kg"`
	UnitCostLiter *float64               `json:"unit_cost_liter"`
	MinPrice      *float64               `json:"min_price"`
	Efficiency    *derivation.Efficiency `json:"efficiency"`
}

// MillingView is the milling page, with the harvests still waiting for a mill.
type MillingView struct {
	Rows              []MillingRow     `json:"rows"`
	AvailableHarvests []models.Harvest `json:"available_harvests"`
}

// MillingDetail is one batch with its container and a profitability guide.
type MillingDetail struct {
	MillingRow
	Storage    *models.Storage `json:"storage,omitempty"`
	GuidePrice float64         `json:"guide_price"`
	// GuideProfit is the batch profit at GuidePrice; nil without a cost per kg.
	GuideProfit *float64 `json:"guide_profit"`
}

// StorageRow is a container with its status, sell priority and provenance.
type StorageRow struct {
	models.Storage
	Status         derivation.Status             `json:"status"`
	Recommendation derivation.SellRecommendation `json:"recommendation"`
	MinPrice       *float64                      `json:"min_price"`
	Outlook        *derivation.Outlook           `json:"outlook"`
	Milling        *models.Milling               `json:"milling,omitempty"`
	Harvest        *models.Harvest               `json:"harvest,omitempty"`
	Missing        []traceability.Link           `json:"missing_links,omitempty"`
}

// StorageView is the storage page.
type StorageView struct {
	Rows                 []StorageRow `json:"rows"`
	TotalRemaining       float64      `json:"total_remaining"`
	TotalRemainingLiters float64      `json:"total_remaining_liters"`
	NearExpiry           int          `json:"near_expiry"`
	Expired              int          `json:"expired"`
	LowStock             bool         `json:"low_stock"`
}

// StorageDetail is one container with the sales drawn from it.
type StorageDetail struct {
	StorageRow
	Sales []models.Sale `json:"sales"`
}

// SaleRow is a sale with its revenue and, when traceable, its profit.
type SaleRow struct {
	models.Sale
	Revenue        float64             `json:"revenue"`
	QuantityLiters float64             `json:"quantity_liters"`
	PaymentPending bool                `json:"payment_pending"`
	Profit         *derivation.Profit  `json:"profit"`
	ContainerID    string              `json:"container_id,omitempty"`
	Traceable      bool                `json:"traceable"`
	Missing        []traceability.Link `json:"missing_links,omitempty"`
}

// AvailableContainer is a container the sale form can draw from.
type AvailableContainer struct {
	StorageID       int64    `json:"storage_id"`
	ContainerID     string   `json:"container_id"`
	Remaining       float64  `json:"remaining"`
	RemainingLiters float64  `json:"remaining_liters"`
	DaysUntilExpiry int      `json:"days_until_expiry"`
	Expired         bool     `json:"expired"`
	MinPrice        *float64 `json:"min_price"`
}

// SalesView is the sales page, with the containers a new sale can draw from.
type SalesView struct {
	Rows                []SaleRow            `json:"rows"`
	TotalRevenue        float64              `json:"total_revenue"`
	TotalProfit         float64              `json:"total_profit"`
	PendingCount        int                  `json:"pending_count"`
	PendingAmount       float64              `json:"pending_amount"`
	AvailableContainers []AvailableContainer `json:"available_containers"`
	AvailableTotal      float64              `json:"available_total"`
}

// SaleDetail is one sale with its full provenance chain.
type SaleDetail struct {
	SaleRow
	Chain traceability.Chain `json:"chain"`
}

func optional(v float64, ok bool) *float64 {
	if !ok {
		return nil
	}
	return &v
}

// HarvestView lists harvests with weights, costs and milling alerts.
func (s *Service) HarvestView(ctx context.Context) (*HarvestView, error) {
	snap, err := s.load(ctx, withHarvests|withMillings)
	if err != nil {
		return nil, err
	}

	now := s.now()
	view := &HarvestView{Rows: make([]HarvestRow, 0, len(snap.harvests))}
	for _, h := range snap.harvests {
		milled := derivation.IsMilled(h.ID, snap.millings)
		row := HarvestRow{
			Harvest:        h,
			Weight:         derivation.TotalWeight(h),
			ExpectedYield:  derivation.ExpectedOilYield(h),
			ExpectedYieldL: derivation.ExpectedOilYieldLiters(h),
			Cost:           derivation.FFBCost(h),
			UnitCost:       derivation.HarvestCostPerKg(h),
			MillingAlert:   !milled && derivation.NeedsMillingAlert(h, now),
			Milled:         milled,
		}
		view.Rows = append(view.Rows, row)
		view.TotalWeight += row.Weight
		if !milled {
			view.AwaitingMill++
		}
		if row.MillingAlert {
			view.MillingAlerts++
		}
	}
	return view, nil
}

// MillingView lists batches with efficiency and costs, plus the unmilled harvests.
func (s *Service) MillingView(ctx context.Context) (*MillingView, error) {
	snap, err := s.load(ctx, withHarvests|withMillings)
	if err != nil {
		return nil, err
	}

	idx := traceability.NewIndex(snap.harvests, snap.millings, nil)
	view := &MillingView{
		Rows:              make([]MillingRow, 0, len(snap.millings)),
		AvailableHarvests: derivation.AvailableHarvests(snap.harvests, snap.millings),
	}
	for _, m := range snap.millings {
		view.Rows = append(view.Rows, s.millingRow(m, idx.HarvestFor(m)))
	}
	return view, nil
}

func (s *Service) millingRow(m models.Milling, h *models.Harvest) MillingRow {
	row := MillingRow{
		Milling:       m,
		Harvest:       h,
		YieldLiters:   derivation.OilYieldLiters(m),
		BatchCost:     optional(derivation.TotalCost(m, h)),
		UnitCostKg:    optional(derivation.CostPerKg(m, h)),
		UnitCostLiter: optional(derivation.CostPerLiter(m, h)),
		MinPrice:      optional(derivation.MinRecommendedPrice(m, h)),
	}
	if h != nil {
		if eff, ok := derivation.ExtractionEfficiency(m, *h); ok {
			row.Efficiency = &eff
		}
	}
	s.logDrift(zapcore.DebugLevel, "milling", m.ID, derivation.MillingDrift(m, h))
	return row
}

// MillingDetail returns one batch with its container and the profit of selling
// it all at pricePerKg. A non-positive price falls back to DefaultGuidePrice.
func (s *Service) MillingDetail(ctx context.Context, id int64, pricePerKg float64) (*MillingDetail, error) {
	if pricePerKg <= 0 {
		pricePerKg = DefaultGuidePrice
	}

	m, err := s.gateway.GetMilling(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load milling %d: %w", id, err)
	}

	var harvest *models.Harvest
	var storages []models.Storage
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		h, err := s.gateway.GetHarvest(gctx, m.HarvestID)
		switch {
		case errors.Is(err, backend.ErrNotFound):
			return nil
		case err != nil:
			return fmt.Errorf("load harvest %d: %w", m.HarvestID, err)
		}
		harvest = h
		return nil
	})
	g.Go(func() error {
		var err error
		storages, err = s.gateway.ListStorage(gctx)
		if err != nil {
			return fmt.Errorf("load storage: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	detail := &MillingDetail{
		MillingRow:  s.millingRow(*m, harvest),
		GuidePrice:  pricePerKg,
		GuideProfit: optional(derivation.BatchProfitAt(*m, harvest, pricePerKg)),
	}
	for i := range storages {
		if storages[i].MillingID == m.ID {
			detail.Storage = &storages[i]
			break
		}
	}
	return detail, nil
}

// StorageView lists containers with expiry status and sell priority.
func (s *Service) StorageView(ctx context.Context) (*StorageView, error) {
	snap, err := s.load(ctx, withHarvests|withMillings|withStorages)
	if err != nil {
		return nil, err
	}

	today := s.today()
	idx := traceability.NewIndex(snap.harvests, snap.millings, snap.storages)
	view := &StorageView{Rows: make([]StorageRow, 0, len(snap.storages))}
	for _, st := range snap.storages {
		row := s.storageRow(st, idx, today)
		view.Rows = append(view.Rows, row)
		if !row.Status.Sold && row.Status.Remaining > 0 {
			view.TotalRemaining += row.Status.Remaining
			view.TotalRemainingLiters += row.Status.RemainingLiters
		}
		if row.Status.NearExpiry {
			view.NearExpiry++
		}
		if row.Status.Expired {
			view.Expired++
		}
	}
	view.LowStock = view.TotalRemaining < units.LowStockThresholdKg
	return view, nil
}

func (s *Service) storageRow(st models.Storage, idx *traceability.Index, today models.Date) StorageRow {
	chain := idx.ResolveStorage(st)
	row := StorageRow{
		Storage:        st,
		Status:         derivation.StorageStatus(st, today),
		Recommendation: derivation.SellPriority(st, today),
		Milling:        chain.Milling,
		Harvest:        chain.Harvest,
	}
	// The storage itself is always present in its own chain.
	for _, link := range chain.Missing() {
		if link != traceability.LinkStorage {
			row.Missing = append(row.Missing, link)
		}
	}
	if chain.Milling != nil {
		row.MinPrice = optional(derivation.MinRecommendedPrice(*chain.Milling, chain.Harvest))
		if outlook, ok := derivation.RemainingStockOutlook(st, *chain.Milling, chain.Harvest); ok {
			row.Outlook = &outlook
		}
	}
	s.logDrift(zapcore.DebugLevel, "storage", st.ID, derivation.StorageDrift(st, today))
	return row
}

// StorageDetail returns one container with its provenance and sales.
func (s *Service) StorageDetail(ctx context.Context, id int64) (*StorageDetail, error) {
	snap, err := s.load(ctx, withEverything)
	if err != nil {
		return nil, err
	}

	idx := traceability.NewIndex(snap.harvests, snap.millings, snap.storages)
	st, ok := idx.Storage(id)
	if !ok {
		return nil, fmt.Errorf("storage %d: %w", id, backend.ErrNotFound)
	}

	detail := &StorageDetail{StorageRow: s.storageRow(*st, idx, s.today()), Sales: []models.Sale{}}
	for _, sale := range snap.sales {
		if sale.StorageID == id {
			detail.Sales = append(detail.Sales, sale)
		}
	}
	return detail, nil
}

// SalesView lists sales with revenue, payment state and traceable profit.
func (s *Service) SalesView(ctx context.Context) (*SalesView, error) {
	snap, err := s.load(ctx, withEverything|withAvailable)
	if err != nil {
		return nil, err
	}

	idx := traceability.NewIndex(snap.harvests, snap.millings, snap.storages)
	view := &SalesView{Rows: make([]SaleRow, 0, len(snap.sales))}
	var revenues, profits, pending []float64
	for _, sale := range snap.sales {
		row := saleRow(idx.ResolveChain(sale))
		view.Rows = append(view.Rows, row)
		revenues = append(revenues, row.Revenue)
		if row.Profit != nil {
			profits = append(profits, row.Profit.Profit)
		}
		if row.PaymentPending {
			view.PendingCount++
			pending = append(pending, row.Revenue)
		}
	}
	view.TotalRevenue = money.Sum(revenues...)
	view.TotalProfit = money.Sum(profits...)
	view.PendingAmount = money.Sum(pending...)

	view.AvailableContainers = s.availableContainers(snap, idx)
	view.AvailableTotal = snap.available.TotalQuantity
	return view, nil
}

// availableContainers lists the backend's available inventory. Each entry is
// matched to its full /storage record by container id so it prices like the
// storage rows.
func (s *Service) availableContainers(snap *snapshot, idx *traceability.Index) []AvailableContainer {
	today := s.today()
	_, localTotal := derivation.AvailableStorage(snap.storages, today)
	s.logDrift(zapcore.WarnLevel, "available_storage", 0, derivation.AvailableStorageDrift(*snap.available, localTotal))

	out := make([]AvailableContainer, 0, len(snap.available.Inventory))
	for _, item := range snap.available.Inventory {
		st := item
		if full, ok := idx.StorageByContainer(item.ContainerID); ok {
			st = *full
		}
		status := derivation.StorageStatus(st, today)
		entry := AvailableContainer{
			StorageID:       st.ID,
			ContainerID:     st.ContainerID,
			Remaining:       status.Remaining,
			RemainingLiters: status.RemainingLiters,
			DaysUntilExpiry: status.DaysUntilExpiry,
			Expired:         status.Expired,
		}
		if chain := idx.ResolveStorage(st); chain.Milling != nil {
			entry.MinPrice = optional(derivation.MinRecommendedPrice(*chain.Milling, chain.Harvest))
		}
		out = append(out, entry)
	}
	return out
}

func saleRow(chain traceability.Chain) SaleRow {
	sale := *chain.Sale
	row := SaleRow{
		Sale:           sale,
		Revenue:        derivation.TotalRevenue(sale),
		QuantityLiters: derivation.QuantitySoldLiters(sale),
		PaymentPending: derivation.IsPaymentPending(sale),
		Traceable:      chain.Complete(),
		Missing:        chain.Missing(),
	}
	if chain.Storage != nil {
		row.ContainerID = chain.Storage.ContainerID
	}
	if profit, ok := chain.Profit(); ok {
		row.Profit = &profit
	}
	return row
}

// SaleDetail returns one sale traced back to its harvest.
func (s *Service) SaleDetail(ctx context.Context, id int64) (*SaleDetail, error) {
	snap, err := s.load(ctx, withEverything)
	if err != nil {
		return nil, err
	}

	var sale *models.Sale
	for i := range snap.sales {
		if snap.sales[i].ID == id {
			sale = &snap.sales[i]
			break
		}
	}
	if sale == nil {
		return nil, fmt.Errorf("sale %d: %w", id, backend.ErrNotFound)
	}

	chain := traceability.NewIndex(snap.harvests, snap.millings, snap.storages).ResolveChain(*sale)
	return &SaleDetail{SaleRow: saleRow(chain), Chain: chain}, nil
}

func sortAlerts(alerts []models.Alert) {
	sort.SliceStable(alerts, func(i, j int) bool {
		return alerts[i].Severity.Rank() < alerts[j].Severity.Rank()
	})
}
