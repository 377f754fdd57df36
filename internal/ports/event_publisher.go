package ports

import "context"

const (
	TopicReportSubmitted = "report.submitted"
	TopicModelRetrained  = "model.retrained"
)

// Outbound domain events. Delivery is best effort.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, key string, payload any) error
	Close() error
}
