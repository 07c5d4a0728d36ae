package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/farmstock/internal/config"
	"github.com/mamadbah2/farmstock/internal/domain/models"
	"github.com/mamadbah2/farmstock/internal/service/forecasting"
	"github.com/mamadbah2/farmstock/internal/service/whatsapp"
)

const jobTimeout = 2 * time.Minute

// Scheduler runs the reorder forecast on a cron schedule and alerts the manager.
type Scheduler struct {
	cron       *cron.Cron
	schedule   string
	managerID  string
	forecaster forecasting.Forecaster
	messaging  whatsapp.MessagingService
	logger     *zap.Logger
}

// NewScheduler creates a scheduler running in the configured timezone.
func NewScheduler(cfg config.ForecastConfig, managerID string, forecaster forecasting.Forecaster, messaging whatsapp.MessagingService, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %s: %w", cfg.Timezone, err)
	}

	return &Scheduler{
		cron:       cron.New(cron.WithLocation(loc)),
		schedule:   cfg.CronSchedule,
		managerID:  managerID,
		forecaster: forecaster,
		messaging:  messaging,
		logger:     logger,
	}, nil
}

// Start registers the forecast job and starts the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.runForecastAlert); err != nil {
		return fmt.Errorf("schedule forecast alert %q: %w", s.schedule, err)
	}

	s.logger.Info("starting scheduler", zap.String("schedule", s.schedule))
	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) runForecastAlert() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if err := s.forecastAlert(ctx); err != nil {
		s.logger.Error("forecast alert failed", zap.Error(err))
	}
}

// forecastAlert messages the manager only when something needs reordering.
func (s *Scheduler) forecastAlert(ctx context.Context) error {
	run, err := s.forecaster.Run(ctx, s.forecaster.DefaultHorizon())
	if err != nil {
		return fmt.Errorf("run forecast: %w", err)
	}

	if len(run.Suggestions) == 0 {
		s.logger.Info("no reorder needed, alert skipped")
		return nil
	}

	req := models.OutboundMessageRequest{
		To:      s.managerID,
		Message: forecasting.FormatAlert(run),
	}
	if err := s.messaging.SendOutbound(ctx, req); err != nil {
		return fmt.Errorf("send forecast alert: %w", err)
	}

	s.logger.Info("forecast alert sent", zap.Int("suggestions", run.Summary.Total))
	return nil
}
