package events

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/gartstein/clubhire/internal/hiring/models"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

var jsonMarshal = json.Marshal

type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer is the Kafka-backed outbox. Notifications are buffered and
// written by a background loop; the Consumer on the other side delivers
// them. Close flushes the buffer before closing the writer.
type Producer struct {
	writer    KafkaWriter
	events    chan models.Notification
	logger    *zap.Logger
	closeChan chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

func NewProducer(brokers []string, logger *zap.Logger, topic string) (*Producer, error) {
	// Create topic if it doesn't exist
	conn, err := kafka.Dial("tcp", brokers[0])
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	err = conn.CreateTopics(kafka.TopicConfig{
		Topic:             topic,
		NumPartitions:     3,
		ReplicationFactor: 1,
	})
	if err != nil {
		logger.Warn("failed to create topic (may already exist)", zap.Error(err))
	}
	p := &Producer{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Balancer: &kafka.Hash{},
			Topic:    topic,
		},
		events:    make(chan models.Notification, 1000),
		logger:    logger.Named("kafka_producer"),
		closeChan: make(chan struct{}),
	}

	p.start()
	return p, nil
}

func (p *Producer) start() {
	p.wg.Add(1)
	go p.eventLoop()
}

// Produce buffers n without blocking. Notifications arriving after Close,
// or while the buffer is full, are dropped with a warning.
func (p *Producer) Produce(n models.Notification) {
	select {
	case <-p.closeChan:
		p.logger.Warn("Kafka producer closed, dropping notification",
			zap.String("kind", string(n.Kind)),
		)
		return
	default:
	}
	select {
	case p.events <- n:
	default:
		p.logger.Warn("Kafka producer queue full, dropping notification",
			zap.String("kind", string(n.Kind)),
			zap.String("recipient", n.Recipient),
		)
	}
}

func (p *Producer) eventLoop() {
	defer p.wg.Done()
	for {
		select {
		case n := <-p.events:
			p.sendEvent(context.Background(), n)
		case <-p.closeChan:
			p.flush()
			return
		}
	}
}

// flush writes out whatever is still buffered after Close.
func (p *Producer) flush() {
	for {
		select {
		case n := <-p.events:
			p.sendEvent(context.Background(), n)
		default:
			return
		}
	}
}

func (p *Producer) sendEvent(ctx context.Context, n models.Notification) {
	value, err := jsonMarshal(n)
	if err != nil {
		p.logger.Error("Failed to serialize notification",
			zap.Error(err),
			zap.String("kind", string(n.Kind)),
		)
		return
	}
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(n.Recipient),
		Value: value,
	})
	if err != nil {
		p.logger.Error("Failed to produce notification",
			zap.Error(err),
			zap.String("kind", string(n.Kind)),
			zap.String("recipient", n.Recipient),
		)
	}
}

// Close stops intake, waits for the buffered notifications to be written
// and closes the writer. It is safe to call more than once.
func (p *Producer) Close() {
	p.closeOnce.Do(func() {
		close(p.closeChan)
		p.wg.Wait()
		if err := p.writer.Close(); err != nil {
			p.logger.Error("Failed to close Kafka writer", zap.Error(err))
		}
	})
}
