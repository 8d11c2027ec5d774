package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/agrocampo/internal/config"
	"github.com/mamadbah2/agrocampo/internal/service/export"
	"github.com/mamadbah2/agrocampo/internal/service/inventory"
)

// Scheduler manages scheduled tasks: the daily ledger consistency audit and
// the daily financial snapshot export.
type Scheduler struct {
	cron         *cron.Cron
	inventorySvc *inventory.Service
	exportSvc    *export.Service
	cfg          config.AuditConfig
	logger       *zap.Logger
}

// NewScheduler creates a new scheduler instance. exportSvc may be nil when
// Sheets export is not configured.
func NewScheduler(cfg config.AuditConfig, inventorySvc *inventory.Service, exportSvc *export.Service, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	location, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Warn("invalid timezone, falling back to local", zap.String("timezone", cfg.Timezone), zap.Error(err))
		location = time.Local
	}

	return &Scheduler{
		cron:         cron.New(cron.WithLocation(location)),
		inventorySvc: inventorySvc,
		exportSvc:    exportSvc,
		cfg:          cfg,
		logger:       logger,
	}
}

// Start registers the jobs and starts the scheduler.
func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler")

	if _, err := s.cron.AddFunc(s.cfg.CronSchedule, s.runLedgerAudit); err != nil {
		s.logger.Error("failed to schedule ledger audit", zap.Error(err))
	}

	if s.exportSvc != nil {
		if _, err := s.cron.AddFunc(s.cfg.ExportCronSchedule, s.runSnapshotExport); err != nil {
			s.logger.Error("failed to schedule snapshot export", zap.Error(err))
		}
	}

	s.cron.Start()
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	s.cron.Stop()
}

func (s *Scheduler) runLedgerAudit() {
	s.logger.Info("running ledger audit")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := s.inventorySvc.AuditLedger(ctx, s.cfg.LowStockThreshold); err != nil {
		s.logger.Error("ledger audit failed", zap.Error(err))
	}
}

func (s *Scheduler) runSnapshotExport() {
	s.logger.Info("running snapshot export")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := s.exportSvc.ExportSnapshots(ctx, time.Now().UTC()); err != nil {
		s.logger.Error("snapshot export failed", zap.Error(err))
	}
}
