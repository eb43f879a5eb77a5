// Package events implements the notification outbox: notifications are
// queued without blocking the caller and delivered in the background, either
// through a Kafka topic or through an in-process queue.
package events

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gartstein/clubhire/internal/hiring/models"
	"go.uber.org/zap"
)

// Dispatcher delivers a single notification, e.g. by email.
type Dispatcher interface {
	Send(ctx context.Context, n models.Notification) error
}

// DeliveryAttempts is how many times a notification is tried before it is
// given up on.
const DeliveryAttempts = 3

var newBackOff = func() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxElapsedTime = 30 * time.Second
	return b
}

// deliver sends n through dispatcher, retrying with exponential backoff. The
// final error is logged and returned.
func deliver(ctx context.Context, dispatcher Dispatcher, n models.Notification, logger *zap.Logger) error {
	attempt := 0
	op := func() error {
		attempt++
		return dispatcher.Send(ctx, n)
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(newBackOff(), DeliveryAttempts-1), ctx)
	err := backoff.RetryNotify(op, policy, func(err error, wait time.Duration) {
		logger.Warn("Notification delivery failed, retrying",
			zap.Error(err),
			zap.String("kind", string(n.Kind)),
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
		)
	})
	if err != nil {
		logger.Error("Notification dropped after retries",
			zap.Error(err),
			zap.String("kind", string(n.Kind)),
			zap.String("recipient", n.Recipient),
			zap.Int("attempts", attempt),
		)
	}
	return err
}
