package finance

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/agrocampo/internal/domain/models"
)

// SaleInput is the caller's description of a sale, including the explicit
// harvest draws that satisfy it. Draws are user-directed: there is no
// oldest-first or any other automatic allocation policy.
type SaleInput struct {
	CropID      string
	Date        time.Time
	Quantity    float64
	UnitPrice   float64
	Allocations []models.SaleAllocation
}

// HarvestAvailable derives a harvest's remaining sellable quantity: its
// harvested quantity minus every draw already recorded against it.
func (s *Service) HarvestAvailable(ctx context.Context, harvest models.Harvest) (decimal.Decimal, error) {
	sales, err := s.store.ListSalesByCrop(ctx, harvest.CropID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("list sales for crop %s: %w", harvest.CropID, err)
	}

	available := decimal.NewFromFloat(harvest.Quantity)
	for _, sale := range sales {
		for _, alloc := range sale.Allocations {
			if alloc.HarvestID == harvest.ID {
				available = available.Sub(decimal.NewFromFloat(alloc.Quantity))
			}
		}
	}

	return available, nil
}

// RecordSale validates and persists a sale drawn from the selected harvests.
// Each draw is checked independently against its own harvest's available
// quantity; capacity is never borrowed from another harvest. Validation runs
// to completion before the sale is written, under per-harvest locks, so a
// rejected draw commits nothing.
func (s *Service) RecordSale(ctx context.Context, input SaleInput) (models.Sale, error) {
	qty := decimal.NewFromFloat(input.Quantity)
	if !qty.IsPositive() {
		return models.Sale{}, fmt.Errorf("%w: sale quantity must be positive", models.ErrInvalidQuantity)
	}
	if input.UnitPrice < 0 {
		return models.Sale{}, fmt.Errorf("%w: unit price must not be negative", models.ErrInvalidQuantity)
	}
	if len(input.Allocations) == 0 {
		return models.Sale{}, fmt.Errorf("%w: a sale requires at least one harvest draw", models.ErrInvalidQuantity)
	}

	if _, err := s.store.GetCrop(ctx, input.CropID); err != nil {
		return models.Sale{}, fmt.Errorf("load crop %s: %w", input.CropID, err)
	}

	harvestIDs := make([]string, 0, len(input.Allocations))
	allocated := decimal.Zero
	for _, alloc := range input.Allocations {
		if !decimal.NewFromFloat(alloc.Quantity).IsPositive() {
			return models.Sale{}, fmt.Errorf("%w: draw on harvest %s must be positive", models.ErrInvalidQuantity, alloc.HarvestID)
		}
		harvestIDs = append(harvestIDs, alloc.HarvestID)
		allocated = allocated.Add(decimal.NewFromFloat(alloc.Quantity))
	}
	if !allocated.Equal(qty) {
		return models.Sale{}, fmt.Errorf("%w: draws total %s but sale quantity is %s",
			models.ErrInvalidQuantity, allocated.String(), qty.String())
	}

	unlock := s.lockHarvests(harvestIDs)
	defer unlock()

	for _, alloc := range input.Allocations {
		harvest, err := s.store.GetHarvest(ctx, alloc.HarvestID)
		if err != nil {
			return models.Sale{}, fmt.Errorf("load harvest %s: %w", alloc.HarvestID, err)
		}
		if harvest.CropID != input.CropID {
			return models.Sale{}, fmt.Errorf("%w: harvest %s belongs to another crop", models.ErrNotFound, alloc.HarvestID)
		}
		if harvest.Closed {
			return models.Sale{}, fmt.Errorf("harvest %s: %w", alloc.HarvestID, models.ErrHarvestClosed)
		}

		available, err := s.HarvestAvailable(ctx, harvest)
		if err != nil {
			return models.Sale{}, err
		}
		if decimal.NewFromFloat(alloc.Quantity).GreaterThan(available) {
			return models.Sale{}, fmt.Errorf("%w: harvest %s has %s available, draw requested %v",
				models.ErrOverAllocation, alloc.HarvestID, available.String(), alloc.Quantity)
		}
	}

	sale := models.Sale{
		ID:          uuid.NewString(),
		CropID:      input.CropID,
		Date:        input.Date,
		Quantity:    input.Quantity,
		UnitPrice:   input.UnitPrice,
		Allocations: input.Allocations,
	}

	if err := s.store.InsertSale(ctx, sale); err != nil {
		return models.Sale{}, fmt.Errorf("insert sale: %w", err)
	}

	s.logger.Info("sale recorded",
		zap.String("sale_id", sale.ID),
		zap.String("crop_id", sale.CropID),
		zap.Float64("quantity", sale.Quantity),
		zap.Int("harvests", len(sale.Allocations)))

	return sale, nil
}

// CompletionEligible reports whether a transitory crop can be completed:
// it must have at least one harvest and no open harvest with sellable
// quantity left. Completion itself is never automatic.
func (s *Service) CompletionEligible(ctx context.Context, cropID string) (bool, error) {
	crop, err := s.store.GetCrop(ctx, cropID)
	if err != nil {
		return false, fmt.Errorf("load crop %s: %w", cropID, err)
	}
	if crop.Perennial || crop.Completed {
		return false, nil
	}

	harvests, err := s.store.ListHarvestsByCrop(ctx, cropID)
	if err != nil {
		return false, fmt.Errorf("list harvests for crop %s: %w", cropID, err)
	}
	if len(harvests) == 0 {
		return false, nil
	}

	for _, harvest := range harvests {
		if harvest.Closed {
			continue
		}
		available, err := s.HarvestAvailable(ctx, harvest)
		if err != nil {
			return false, err
		}
		if available.IsPositive() {
			return false, nil
		}
	}

	return true, nil
}

// CompleteCrop marks an eligible transitory crop as completed. This is the
// explicit, separate action required by the domain; nothing completes a crop
// as a side effect of a sale.
func (s *Service) CompleteCrop(ctx context.Context, cropID string) (models.Crop, error) {
	eligible, err := s.CompletionEligible(ctx, cropID)
	if err != nil {
		return models.Crop{}, err
	}
	if !eligible {
		return models.Crop{}, fmt.Errorf("crop %s: %w", cropID, models.ErrNotEligible)
	}

	crop, err := s.store.GetCrop(ctx, cropID)
	if err != nil {
		return models.Crop{}, fmt.Errorf("load crop %s: %w", cropID, err)
	}
	crop.Completed = true
	if err := s.store.UpdateCrop(ctx, crop); err != nil {
		return models.Crop{}, fmt.Errorf("update crop %s: %w", cropID, err)
	}

	s.logger.Info("crop completed", zap.String("crop_id", cropID))
	return crop, nil
}
