// Package dashboard assembles the operator views from backend collections.
// Each view loads everything it needs before deriving anything, so a failed
// fetch never yields a partially computed view.
package dashboard

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/mamadbah2/palmoil/internal/domain/models"
	"github.com/mamadbah2/palmoil/internal/service/derivation"
	"github.com/mamadbah2/palmoil/pkg/clients/backend"
)

// Gateway is the part of the backend the dashboard reads and writes.
type Gateway interface {
	ListHarvests(ctx context.Context) ([]models.Harvest, error)
	GetHarvest(ctx context.Context, id int64) (*models.Harvest, error)
	CreateHarvest(ctx context.Context, req models.CreateHarvestRequest) (*models.Harvest, error)
	ListMilling(ctx context.Context) ([]models.Milling, error)
	GetMilling(ctx context.Context, id int64) (*models.Milling, error)
	CreateMilling(ctx context.Context, req models.CreateMillingRequest) (*models.CreateMillingResponse, error)
	ListStorage(ctx context.Context) ([]models.Storage, error)
	ListAvailableStorage(ctx context.Context) (*models.AvailableStorage, error)
	StorageAlerts(ctx context.Context) (*models.StorageAlerts, error)
	GetStorage(ctx context.Context, id int64) (*models.Storage, error)
	ListSales(ctx context.Context) ([]models.Sale, error)
	GetSale(ctx context.Context, id int64) (*models.Sale, error)
	CreateSale(ctx context.Context, req models.CreateSaleRequest) (*models.CreateSaleResponse, error)
	UpdatePayment(ctx context.Context, id int64, req models.UpdatePaymentRequest) (*models.Sale, error)
	DashboardSummary(ctx context.Context) (*models.DashboardSummary, error)
	ProfitTrends(ctx context.Context) ([]models.ProfitTrend, error)
	Alerts(ctx context.Context) (*models.AlertList, error)
	DownloadReport(ctx context.Context, format backend.ReportFormat, reportType string) (*backend.Report, error)
}

// Service builds views and submits mutations.
type Service struct {
	gateway  Gateway
	location *time.Location
	logger   *zap.Logger
	now      func() time.Time
}

// NewService wires a dashboard service. Days are counted in loc; nil means UTC.
func NewService(gateway Gateway, loc *time.Location, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Service{gateway: gateway, location: loc, logger: logger, now: time.Now}
}

func (s *Service) today() models.Date {
	return models.DateOf(s.now().In(s.location))
}

type collection uint8

const (
	withHarvests collection = 1 << iota
	withMillings
	withStorages
	withSales
	withAvailable

	withEverything = withHarvests | withMillings | withStorages | withSales
)

type snapshot struct {
	harvests  []models.Harvest
	millings  []models.Milling
	storages  []models.Storage
	sales     []models.Sale
	available *models.AvailableStorage
}

// load fetches the requested collections concurrently and waits for all of them.
func (s *Service) load(ctx context.Context, want collection) (*snapshot, error) {
	snap := &snapshot{}
	g, gctx := errgroup.WithContext(ctx)

	if want&withHarvests != 0 {
		g.Go(func() error {
			harvests, err := s.gateway.ListHarvests(gctx)
			if err != nil {
				return fmt.Errorf("load harvests: %w", err)
			}
			snap.harvests = harvests
			return nil
		})
	}
	if want&withMillings != 0 {
		g.Go(func() error {
			millings, err := s.gateway.ListMilling(gctx)
			if err != nil {
				return fmt.Errorf("load milling records: %w", err)
			}
			snap.millings = millings
			return nil
		})
	}
	if want&withStorages != 0 {
		g.Go(func() error {
			storages, err := s.gateway.ListStorage(gctx)
			if err != nil {
				return fmt.Errorf("load storage: %w", err)
			}
			snap.storages = storages
			return nil
		})
	}
	if want&withSales != 0 {
		g.Go(func() error {
			sales, err := s.gateway.ListSales(gctx)
			if err != nil {
				return fmt.Errorf("load sales: %w", err)
			}
			snap.sales = sales
			return nil
		})
	}

	if want&withAvailable != 0 {
		g.Go(func() error {
			available, err := s.gateway.ListAvailableStorage(gctx)
			if err != nil {
				return fmt.Errorf("load available storage: %w", err)
			}
			snap.available = available
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snap, nil
}

// logDrift records server values that disagree with the local formulas.
// Per-record drift is logged at debug: the backend's milling cost_per_kg leaves
// out the FFB cost, so every batch differs there.
func (s *Service) logDrift(level zapcore.Level, record string, id int64, drifts []derivation.Drift) {
	for _, d := range drifts {
		if ce := s.logger.Check(level, "server value differs from local formula"); ce != nil {
			ce.Write(
				zap.String("record", record),
				zap.Int64("id", id),
				zap.String("field", d.Field),
				zap.Float64("server", d.Server),
				zap.Float64("local", d.Client))
		}
	}
}

// Summary returns the server KPIs and logs any disagreement with a local recomputation.
func (s *Service) Summary(ctx context.Context) (*models.DashboardSummary, error) {
	var summary *models.DashboardSummary
	var snap *snapshot

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		summary, err = s.gateway.DashboardSummary(gctx)
		if err != nil {
			return fmt.Errorf("load dashboard summary: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		snap, err = s.load(gctx, withEverything)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	local := derivation.Summarize(snap.harvests, snap.millings, snap.storages, snap.sales, s.today())
	s.logDrift(zapcore.WarnLevel, "dashboard_summary", 0, derivation.SummaryDrift(*summary, local))
	return summary, nil
}

// ProfitTrends returns the server series for the profit chart and logs any
// day that disagrees with a local recomputation.
func (s *Service) ProfitTrends(ctx context.Context) ([]models.ProfitTrend, error) {
	var trends []models.ProfitTrend
	var snap *snapshot

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		trends, err = s.gateway.ProfitTrends(gctx)
		if err != nil {
			return fmt.Errorf("load profit trends: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		snap, err = s.load(gctx, withHarvests|withMillings|withSales)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	local := derivation.ProfitTrends(snap.harvests, snap.millings, snap.sales)
	s.logDrift(zapcore.WarnLevel, "profit_trends", 0, derivation.TrendDrift(trends, local))
	return trends, nil
}

// Alerts returns the operational alerts, most severe first.
func (s *Service) Alerts(ctx context.Context) (*models.AlertList, error) {
	list, err := s.gateway.Alerts(ctx)
	if err != nil {
		return nil, fmt.Errorf("load alerts: %w", err)
	}
	sortAlerts(list.Alerts)
	if list.TotalCount < len(list.Alerts) {
		list.TotalCount = len(list.Alerts)
	}
	return list, nil
}

// Report passes a generated report file through untouched.
func (s *Service) Report(ctx context.Context, format backend.ReportFormat, reportType string) (*backend.Report, error) {
	report, err := s.gateway.DownloadReport(ctx, format, reportType)
	if err != nil {
		return nil, fmt.Errorf("download %s report: %w", format, err)
	}
	return report, nil
}
