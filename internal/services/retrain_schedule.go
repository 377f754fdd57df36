package services

import (
	"context"
	"errors"
	"fmt"
	"time"
	"waste-collection-service/internal/domain"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// RetrainSchedule runs the Retrainer on a five-field cron expression.
type RetrainSchedule struct {
	cron      *cron.Cron
	retrainer *Retrainer
	timeout   time.Duration
	logger    *zap.Logger
}

func NewRetrainSchedule(expr string, retrainer *Retrainer, timeout time.Duration, logger *zap.Logger) (*RetrainSchedule, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	if _, err := parser.Parse(expr); err != nil {
		return nil, fmt.Errorf("%w: retrain schedule %q: %w", domain.ErrValidation, expr, err)
	}

	s := &RetrainSchedule{
		cron:      cron.New(cron.WithParser(parser), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		retrainer: retrainer,
		timeout:   timeout,
		logger:    logger,
	}
	if _, err := s.cron.AddFunc(expr, s.run); err != nil {
		return nil, fmt.Errorf("retrain schedule: %w", err)
	}
	return s, nil
}

func (s *RetrainSchedule) Start() { s.cron.Start() }

// Stop prevents new runs and waits for a running retrain to finish or ctx to expire.
func (s *RetrainSchedule) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}

func (s *RetrainSchedule) run() {
	ctx := context.Background()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	_, err := s.retrainer.Retrain(ctx, TriggerSchedule)
	switch {
	case errors.Is(err, domain.ErrInsufficientData):
		s.logger.Info("scheduled retrain skipped", zap.Error(err))
	case err != nil:
		s.logger.Error("scheduled retrain failed", zap.Error(err))
	}
}
