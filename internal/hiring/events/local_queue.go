package events

import (
	"context"
	"sync"

	"github.com/gartstein/clubhire/internal/hiring/models"
	"go.uber.org/zap"
)

// LocalQueue is the in-process outbox used when no broker is configured.
type LocalQueue struct {
	dispatcher Dispatcher
	events     chan models.Notification
	logger     *zap.Logger
	closeChan  chan struct{}
	wg         sync.WaitGroup
	closeOnce  sync.Once
}

// NewLocalQueue starts a queue with the given buffer size drained by a single
// background worker.
func NewLocalQueue(dispatcher Dispatcher, size int, logger *zap.Logger) *LocalQueue {
	if size <= 0 {
		size = 1000
	}
	q := &LocalQueue{
		dispatcher: dispatcher,
		events:     make(chan models.Notification, size),
		logger:     logger.Named("local_queue"),
		closeChan:  make(chan struct{}),
	}
	q.wg.Add(1)
	go q.eventLoop()
	return q
}

// Produce enqueues n. It never blocks: a full or closed queue drops the
// notification with a warning.
func (q *LocalQueue) Produce(n models.Notification) {
	select {
	case <-q.closeChan:
		q.logger.Warn("Notification queue closed, dropping notification",
			zap.String("kind", string(n.Kind)),
		)
		return
	default:
	}
	select {
	case q.events <- n:
	default:
		q.logger.Warn("Notification queue full, dropping notification",
			zap.String("kind", string(n.Kind)),
			zap.String("recipient", n.Recipient),
		)
	}
}

func (q *LocalQueue) eventLoop() {
	defer q.wg.Done()
	for {
		select {
		case n := <-q.events:
			_ = deliver(context.Background(), q.dispatcher, n, q.logger)
		case <-q.closeChan:
			q.drain()
			return
		}
	}
}

// drain delivers whatever is still buffered once the queue is closed.
func (q *LocalQueue) drain() {
	for {
		select {
		case n := <-q.events:
			_ = deliver(context.Background(), q.dispatcher, n, q.logger)
		default:
			return
		}
	}
}

// Close stops accepting notifications and waits for the buffered ones.
func (q *LocalQueue) Close() {
	q.closeOnce.Do(func() {
		close(q.closeChan)
	})
	q.wg.Wait()
}
