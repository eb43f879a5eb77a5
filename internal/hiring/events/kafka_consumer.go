package events

import (
	"context"
	"encoding/json"

	"github.com/gartstein/clubhire/internal/hiring/models"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type KafkaReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer reads queued notifications from Kafka and hands them to a
// Dispatcher.
type Consumer struct {
	reader     KafkaReader
	dispatcher Dispatcher
	logger     *zap.Logger
	done       chan struct{}
}

func NewConsumer(brokers []string, groupID, topic string, dispatcher Dispatcher, logger *zap.Logger) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers: brokers,
			GroupID: groupID,
			Topic:   topic,
			Dialer:  kafka.DefaultDialer,
		}),
		dispatcher: dispatcher,
		logger:     logger.Named("kafka_consumer"),
		done:       make(chan struct{}),
	}
}

// Start consumes until ctx is cancelled.
func (c *Consumer) Start(ctx context.Context) {
	go func() {
		defer close(c.done)
		for {
			msg, err := c.reader.FetchMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				c.logger.Error("Failed to fetch message", zap.Error(err))
				continue
			}
			c.handle(ctx, msg)
		}
	}()
}

func (c *Consumer) handle(ctx context.Context, msg kafka.Message) {
	var n models.Notification
	if err := json.Unmarshal(msg.Value, &n); err != nil {
		c.logger.Error("Failed to parse notification",
			zap.Error(err),
			zap.ByteString("value", msg.Value),
		)
		c.commit(ctx, msg, "")
		return
	}

	// Delivery is best effort: deliver logs a final failure and the offset
	// is committed either way, so a failed notification is dropped.
	_ = deliver(ctx, c.dispatcher, n, c.logger)
	c.commit(ctx, msg, n.Kind)
}

func (c *Consumer) commit(ctx context.Context, msg kafka.Message, kind models.NotificationKind) {
	if err := c.reader.CommitMessages(ctx, msg); err != nil {
		c.logger.Error("Failed to commit message",
			zap.Error(err),
			zap.String("kind", string(kind)),
		)
	}
}

// Close closes the underlying reader, which also ends a running consume loop.
func (c *Consumer) Close() {
	if err := c.reader.Close(); err != nil {
		c.logger.Error("Failed to close Kafka reader", zap.Error(err))
	}
}

// Done is closed once the consume loop has exited.
func (c *Consumer) Done() <-chan struct{} {
	return c.done
}
