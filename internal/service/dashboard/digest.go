package dashboard

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/mamadbah2/palmoil/internal/domain/models"
	"github.com/mamadbah2/palmoil/internal/domain/units"
	"github.com/mamadbah2/palmoil/pkg/money"
)

const maxDigestAlerts = 10

// Digest snapshots the KPIs and open alerts into an operator message.
func (s *Service) Digest(ctx context.Context) (*models.Digest, error) {
	var summary *models.DashboardSummary
	var alerts *models.AlertList
	var storage *models.StorageAlerts

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
		alerts, err = s.gateway.Alerts(gctx)
		if err != nil {
			return fmt.Errorf("load alerts: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		storage, err = s.gateway.StorageAlerts(gctx)
		if err != nil {
			return fmt.Errorf("load storage alerts: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sortAlerts(alerts.Alerts)
	digest := &models.Digest{
		GeneratedAt: s.now().In(s.location),
		Summary:     *summary,
		Alerts:      alerts.Alerts,
		NearExpiry:  len(storage.NearExpiry),
		Expired:     len(storage.Expired),
	}
	for _, a := range alerts.Alerts {
		if a.Severity == models.SeverityCritical {
			digest.Critical++
		}
	}
	digest.Text = renderDigest(digest)
	return digest, nil
}

func renderDigest(d *models.Digest) string {
	var b strings.Builder
	sum := d.Summary

	fmt.Fprintf(&b, "Palm oil digest %s\n", d.GeneratedAt.Format("2006-01-02"))
	fmt.Fprintf(&b, "FFB harvested: %s\n", money.Kg(sum.TotalFFBHarvested))
	fmt.Fprintf(&b, "Oil produced: %s (%s)\n", money.Kg(sum.TotalOilProduced), money.Liters(units.KgToLiters(sum.TotalOilProduced)))
	if sum.TotalFFBHarvested > 0 {
		fmt.Fprintf(&b, "Extraction rate: %s\n", money.Percent(sum.TotalOilProduced/sum.TotalFFBHarvested*100))
	}
	fmt.Fprintf(&b, "In storage: %s\n", money.Kg(sum.TotalStorage))
	fmt.Fprintf(&b, "Containers: %d near expiry, %d expired\n", d.NearExpiry, d.Expired)
	fmt.Fprintf(&b, "Revenue: %s | Profit: %s\n", money.Naira(sum.TotalRevenue), money.Naira(sum.TotalProfit))
	fmt.Fprintf(&b, "Pending payments: %d (%s)\n", sum.PendingPaymentsCount, money.Naira(sum.TotalPendingAmount))

	if len(d.Alerts) == 0 {
		b.WriteString("No open alerts.")
		return b.String()
	}

	fmt.Fprintf(&b, "Alerts: %d (%d critical)\n", len(d.Alerts), d.Critical)
	for i, a := range d.Alerts {
		if i == maxDigestAlerts {
			fmt.Fprintf(&b, "...and %d more\n", len(d.Alerts)-maxDigestAlerts)
			break
		}
		fmt.Fprintf(&b, "- [%s] %s\n", strings.ToUpper(string(a.Severity)), a.Message)
	}
	return strings.TrimRight(b.String(), "\n")
}
