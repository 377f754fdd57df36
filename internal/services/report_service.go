package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"waste-collection-service/internal/domain"
	"waste-collection-service/internal/ml"
	"waste-collection-service/internal/platform/obs"
	"waste-collection-service/internal/ports"

	"go.uber.org/zap"
)

// OverwriteAccuracy is the accuracy a verified report needs before its
// estimate replaces the container's fill level.
const OverwriteAccuracy = 0.8

const maxNotesLength = 1000

type SubmitReportRequest struct {
	UserID        int64
	ContainerID   int64
	EstimatedFill float64
	HasPhoto      bool
	Notes         string
}

type SubmitReportResult struct {
	ReportID         int64
	Outcome          domain.ReportOutcome
	Accuracy         float64
	TrustScore       float64
	TrustDelta       float64
	TotalReports     int
	AccurateReports  int
	ContainerUpdated bool
	ModelUpdated     bool
}

// ReportService ingests citizen fill reports.
type ReportService struct {
	reports   ports.ReportStore
	retrainer *Retrainer
	events    ports.EventPublisher
	logger    *zap.Logger
	now       func() time.Time
}

func NewReportService(
	reports ports.ReportStore,
	retrainer *Retrainer,
	events ports.EventPublisher,
	logger *zap.Logger,
) *ReportService {
	return &ReportService{
		reports:   reports,
		retrainer: retrainer,
		events:    events,
		logger:    logger,
		now:       time.Now,
	}
}

func (r SubmitReportRequest) validate() error {
	if r.UserID <= 0 {
		return fmt.Errorf("%w: user id must be positive", domain.ErrValidation)
	}
	if r.ContainerID <= 0 {
		return fmt.Errorf("%w: container id must be positive", domain.ErrValidation)
	}
	if err := domain.ValidateFillLevel(r.EstimatedFill); err != nil {
		return fmt.Errorf("estimated fill: %w", err)
	}
	if len(r.Notes) > maxNotesLength {
		return fmt.Errorf("%w: notes longer than %d bytes", domain.ErrValidation, maxNotesLength)
	}
	return nil
}

// Submit scores a report and applies it in one transaction: the report row,
// the reporter's trust, the optional fill overwrite and the retrain counter.
// A retrain, if due, runs after commit and never fails the submission.
func (s *ReportService) Submit(ctx context.Context, req SubmitReportRequest) (_ *SubmitReportResult, err error) {
	defer obs.Time(ctx, s.logger, "reports.Submit")(&err)

	if err := req.validate(); err != nil {
		return nil, err
	}

	submittedAt := s.now().UTC()
	var (
		report   *domain.CitizenReport
		user     *domain.User
		update   domain.TrustUpdate
		counted  bool
		verified int
	)

	err = s.reports.WithReportTx(ctx, func(tx ports.ReportTx) error {
		var err error
		user, err = tx.LockUser(ctx, req.UserID)
		if err != nil {
			return err
		}
		container, err := tx.LockContainer(ctx, req.ContainerID)
		if err != nil {
			return err
		}

		actual := container.FillLevel
		update = EvaluateReport(req.EstimatedFill, actual, req.HasPhoto, user.TrustScore)

		report = &domain.CitizenReport{
			UserID:        req.UserID,
			ContainerID:   req.ContainerID,
			EstimatedFill: req.EstimatedFill,
			Accuracy:      update.Accuracy,
			Diff:          update.Diff,
			Outcome:       update.Outcome,
			ActualFull:    actual >= ml.FullThreshold,
			HasPhoto:      req.HasPhoto,
			Notes:         strings.TrimSpace(req.Notes),
			SubmittedAt:   submittedAt,
		}
		if _, err := tx.InsertReport(ctx, report); err != nil {
			return err
		}

		user.ApplyTrust(update)
		if err := tx.UpdateUserTrust(ctx, user); err != nil {
			return err
		}

		if update.Outcome != domain.OutcomeVerified || update.Accuracy < OverwriteAccuracy {
			return nil
		}
		if err := container.SetFillLevel(req.EstimatedFill, submittedAt); err != nil {
			return err
		}
		if err := tx.UpdateContainerFill(ctx, container); err != nil {
			return err
		}
		verified, err = tx.IncrementVerified(ctx)
		if err != nil {
			return err
		}
		counted = true
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("submit report: %w", err)
	}

	obs.ReportOutcomes.WithLabelValues(string(update.Outcome)).Inc()

	result := &SubmitReportResult{
		ReportID:         report.ReportID,
		Outcome:          update.Outcome,
		Accuracy:         update.Accuracy,
		TrustScore:       user.TrustScore,
		TrustDelta:       update.Delta,
		TotalReports:     user.TotalReports,
		AccurateReports:  user.AccurateReports,
		ContainerUpdated: counted,
	}

	if counted && s.retrainer != nil && verified >= s.retrainer.Threshold() {
		result.ModelUpdated = s.triggerRetrain(ctx)
	}

	s.logger.Info("report submitted",
		zap.String("req_id", obs.RequestID(ctx)),
		zap.Int64("report_id", report.ReportID),
		zap.Int64("user_id", report.UserID),
		zap.Int64("container_id", report.ContainerID),
		zap.String("outcome", string(update.Outcome)),
		zap.Float64("accuracy", update.Accuracy),
		zap.Float64("trust", user.TrustScore),
		zap.Bool("container_updated", counted),
	)

	publish(ctx, s.events, s.logger, ports.TopicReportSubmitted,
		strconv.FormatInt(report.ReportID, 10), newReportSubmittedEvent(report, user.TrustScore, counted))

	return result, nil
}

// triggerRetrain absorbs retrain failures; the counter is left in place so
// the next qualifying report tries again.
func (s *ReportService) triggerRetrain(ctx context.Context) bool {
	updated, err := s.retrainer.MaybeRetrain(ctx)
	switch {
	case errors.Is(err, domain.ErrInsufficientData):
		s.logger.Info("retrain skipped", zap.String("req_id", obs.RequestID(ctx)), zap.Error(err))
	case err != nil:
		s.logger.Error("retrain failed", zap.String("req_id", obs.RequestID(ctx)), zap.Error(err))
	}
	return updated
}
