package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/ymgn/stockkeeper/internal/config"
	"github.com/ymgn/stockkeeper/internal/domain/models"
	"github.com/ymgn/stockkeeper/internal/service/reporting"
	"github.com/ymgn/stockkeeper/internal/service/whatsapp"
)

// Scheduler manages the daily ledger snapshot job.
type Scheduler struct {
	cron         *cron.Cron
	reportingSvc *reporting.Service
	messagingSvc whatsapp.MessagingService
	cfg          config.Config
	logger       *zap.Logger
}

// NewScheduler creates a new scheduler instance running in the configured
// timezone.
func NewScheduler(cfg config.Config, reportingSvc *reporting.Service, messagingSvc whatsapp.MessagingService, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc, err := time.LoadLocation(cfg.Snapshot.Timezone)
	if err != nil {
		logger.Warn("invalid timezone, falling back to local", zap.String("timezone", cfg.Snapshot.Timezone), zap.Error(err))
		loc = time.Local
	}

	return &Scheduler{
		cron:         cron.New(cron.WithLocation(loc)),
		reportingSvc: reportingSvc,
		messagingSvc: messagingSvc,
		cfg:          cfg,
		logger:       logger,
	}
}

// Start registers the snapshot job and starts the cron loop.
func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler", zap.String("schedule", s.cfg.Snapshot.CronSchedule))

	_, err := s.cron.AddFunc(s.cfg.Snapshot.CronSchedule, s.runDailySnapshot)
	if err != nil {
		s.logger.Error("failed to schedule daily snapshot", zap.Error(err))
	}

	s.cron.Start()
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	s.cron.Stop()
}

// runDailySnapshot exports the ledger to the spreadsheet, sends the sales
// summary to the operator and refreshes the stock board.
func (s *Scheduler) runDailySnapshot() {
	s.logger.Info("running daily ledger snapshot")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := s.reportingSvc.ExportSnapshot(ctx); err != nil {
		s.logger.Error("failed to export ledger snapshot", zap.Error(err))
	}

	summary, err := s.reportingSvc.SalesSummary(ctx)
	if err != nil {
		s.logger.Error("failed to build sales summary", zap.Error(err))
		return
	}

	req := models.OutboundMessageRequest{
		To:      s.cfg.WhatsApp.OperatorID,
		Message: summary,
	}
	if err := s.messagingSvc.SendOutbound(ctx, req); err != nil {
		s.logger.Error("failed to send sales summary", zap.Error(err))
	}

	if err := s.messagingSvc.PublishBoard(ctx); err != nil {
		s.logger.Error("failed to refresh stock board", zap.Error(err))
	}
}
