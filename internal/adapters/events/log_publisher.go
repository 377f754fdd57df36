package events

import (
	"context"

	"go.uber.org/zap"
)

// LogPublisher stands in when no broker is configured: events are logged
// at debug level and dropped.
type LogPublisher struct {
	logger *zap.Logger
}

func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(_ context.Context, topic, key string, payload any) error {
	p.logger.Debug("event", zap.String("topic", topic), zap.String("key", key), zap.Any("payload", payload))
	return nil
}

func (p *LogPublisher) Close() error { return nil }
