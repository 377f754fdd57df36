package services

import (
	"context"
	"time"
	"waste-collection-service/internal/domain"
	"waste-collection-service/internal/platform/obs"
	"waste-collection-service/internal/ports"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ReportSubmittedEvent struct {
	EventID          string    `json:"event_id"`
	ReportID         int64     `json:"report_id"`
	UserID           int64     `json:"user_id"`
	ContainerID      int64     `json:"container_id"`
	Outcome          string    `json:"outcome"`
	Accuracy         float64   `json:"accuracy"`
	TrustScore       float64   `json:"trust_score"`
	ContainerUpdated bool      `json:"container_updated"`
	SubmittedAt      time.Time `json:"submitted_at"`
}

type ModelRetrainedEvent struct {
	EventID       string    `json:"event_id"`
	Version       int       `json:"version"`
	Trigger       string    `json:"trigger"`
	SampleCount   int       `json:"sample_count"`
	TrainAccuracy float64   `json:"train_accuracy"`
	TestAccuracy  float64   `json:"test_accuracy"`
	TrainedAt     time.Time `json:"trained_at"`
}

func newReportSubmittedEvent(r *domain.CitizenReport, trust float64, updated bool) ReportSubmittedEvent {
	return ReportSubmittedEvent{
		EventID:          uuid.NewString(),
		ReportID:         r.ReportID,
		UserID:           r.UserID,
		ContainerID:      r.ContainerID,
		Outcome:          string(r.Outcome),
		Accuracy:         r.Accuracy,
		TrustScore:       trust,
		ContainerUpdated: updated,
		SubmittedAt:      r.SubmittedAt,
	}
}

func newModelRetrainedEvent(s *domain.ModelSnapshot, trigger string) ModelRetrainedEvent {
	return ModelRetrainedEvent{
		EventID:       uuid.NewString(),
		Version:       s.Version,
		Trigger:       trigger,
		SampleCount:   s.SampleCount,
		TrainAccuracy: s.TrainAccuracy,
		TestAccuracy:  s.TestAccuracy,
		TrainedAt:     s.TrainedAt,
	}
}

// publish delivers an event best effort. Failures are logged, never returned.
func publish(ctx context.Context, pub ports.EventPublisher, logger *zap.Logger, topic, key string, payload any) {
	if pub == nil {
		return
	}
	if err := pub.Publish(ctx, topic, key, payload); err != nil {
		logger.Warn("event publish failed",
			zap.String("req_id", obs.RequestID(ctx)),
			zap.String("topic", topic),
			zap.String("key", key),
			zap.Error(err),
		)
	}
}
