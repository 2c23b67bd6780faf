package dashboard

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mamadbah2/palmoil/internal/domain/models"
	"github.com/mamadbah2/palmoil/internal/service/derivation"
)

var (
	// ErrAlreadyMilled indicates the harvest is already referenced by a milling record.
	ErrAlreadyMilled = errors.New("harvest already milled")
	// ErrAlreadyPaid indicates the sale is no longer pending.
	ErrAlreadyPaid = errors.New("sale already paid")
)

// RecordHarvest submits a harvest or FFB purchase.
func (s *Service) RecordHarvest(ctx context.Context, req models.CreateHarvestRequest) (*models.Harvest, error) {
	harvest, err := s.gateway.CreateHarvest(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("record harvest: %w", err)
	}
	s.logger.Info("harvest recorded",
		zap.Int64("harvest_id", harvest.ID),
		zap.String("plantation", harvest.Plantation),
		zap.Float64("weight_kg", derivation.TotalWeight(*harvest)))
	return harvest, nil
}

// RecordMilling submits a milling batch for a harvest that has not been milled yet.
func (s *Service) RecordMilling(ctx context.Context, req models.CreateMillingRequest) (*models.CreateMillingResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var millings []models.Milling
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if _, err := s.gateway.GetHarvest(gctx, req.HarvestID); err != nil {
			return fmt.Errorf("load harvest %d: %w", req.HarvestID, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		millings, err = s.gateway.ListMilling(gctx)
		if err != nil {
			return fmt.Errorf("load milling records: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if derivation.IsMilled(req.HarvestID, millings) {
		return nil, fmt.Errorf("harvest %d: %w", req.HarvestID, ErrAlreadyMilled)
	}

	resp, err := s.gateway.CreateMilling(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("record milling: %w", err)
	}
	s.logger.Info("milling recorded",
		zap.Int64("milling_id", resp.Milling.ID),
		zap.Int64("harvest_id", resp.Milling.HarvestID),
		zap.String("container_id", resp.Storage.ContainerID),
		zap.Float64("oil_yield_kg", resp.Milling.OilYield))
	return resp, nil
}

// RecordSale checks the container locally, then submits the sale. The backend
// still decides on the available quantity.
func (s *Service) RecordSale(ctx context.Context, req models.CreateSaleRequest) (*models.CreateSaleResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	storage, err := s.gateway.GetStorage(ctx, req.StorageID)
	if err != nil {
		return nil, fmt.Errorf("load storage %d: %w", req.StorageID, err)
	}
	if err := derivation.CheckSaleQuantity(*storage, req.QuantitySold); err != nil {
		return nil, err
	}
	if status := derivation.StorageStatus(*storage, s.today()); status.Expired {
		s.logger.Warn("selling from expired container",
			zap.Int64("storage_id", storage.ID),
			zap.String("container_id", storage.ContainerID))
	}

	resp, err := s.gateway.CreateSale(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("record sale: %w", err)
	}
	s.logger.Info("sale recorded",
		zap.Int64("sale_id", resp.Sale.ID),
		zap.String("container_id", storage.ContainerID),
		zap.Float64("quantity_kg", resp.Sale.QuantitySold),
		zap.Float64("storage_remaining_kg", resp.StorageRemaining),
		zap.Bool("container_fully_sold", resp.ContainerFullySold))
	return resp, nil
}

// MarkPaid settles a pending sale. A zero paidOn means today.
func (s *Service) MarkPaid(ctx context.Context, saleID int64, paidOn models.Date) (*models.Sale, error) {
	sale, err := s.gateway.GetSale(ctx, saleID)
	if err != nil {
		return nil, fmt.Errorf("load sale %d: %w", saleID, err)
	}
	if !derivation.IsPaymentPending(*sale) {
		return nil, fmt.Errorf("sale %d: %w", saleID, ErrAlreadyPaid)
	}
	if paidOn.IsZero() {
		paidOn = s.today()
	}

	updated, err := s.gateway.UpdatePayment(ctx, saleID, models.NewMarkPaid(paidOn))
	if err != nil {
		return nil, fmt.Errorf("mark sale %d paid: %w", saleID, err)
	}
	s.logger.Info("sale marked paid", zap.Int64("sale_id", saleID), zap.String("payment_date", paidOn.String()))
	return updated, nil
}
