package export

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	repo "github.com/mamadbah2/agrocampo/internal/repository"
	sheetsrepo "github.com/mamadbah2/agrocampo/internal/repository/sheets"
	"github.com/mamadbah2/agrocampo/internal/service/finance"
)

const (
	dateLayout        = "2006-01-02"
	financeWriteRange = "Finance!A:I"
)

// Service appends crop financial snapshots to the finance reporting
// spreadsheet. Snapshots are computed fresh for each export; the sheet is a
// report surface, never a source of truth.
type Service struct {
	sheets  sheetsrepo.Repository
	store   repo.Store
	finance *finance.Service
	logger  *zap.Logger
}

// NewService wires a new export service instance.
func NewService(sheets sheetsrepo.Repository, store repo.Store, financeSvc *finance.Service, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{sheets: sheets, store: store, finance: financeSvc, logger: logger}
}

// ExportSnapshots writes one row per crop with its financial snapshot as of
// the provided date.
func (s *Service) ExportSnapshots(ctx context.Context, asOf time.Time) error {
	crops, err := s.store.ListCrops(ctx)
	if err != nil {
		return fmt.Errorf("list crops: %w", err)
	}

	var exported int
	for _, crop := range crops {
		snapshot, err := s.finance.Snapshot(ctx, crop.ID, asOf)
		if err != nil {
			s.logger.Error("skip crop with failed snapshot", zap.String("crop_id", crop.ID), zap.Error(err))
			continue
		}

		row := []interface{}{
			asOf.Format(dateLayout),
			crop.ID,
			crop.Name,
			snapshot.Mode.String(),
			snapshot.ProductionCost,
			snapshot.Revenue,
			snapshot.Profit,
			snapshot.Margin,
			snapshot.QuantityHarvested,
		}
		if err := s.sheets.WriteRow(ctx, financeWriteRange, row); err != nil {
			return fmt.Errorf("export snapshot for crop %s: %w", crop.ID, err)
		}
		exported++
	}

	s.logger.Info("financial snapshots exported", zap.Int("crops", exported))
	return nil
}
