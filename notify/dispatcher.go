package notify

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/istore/storefront/domain"
	"github.com/istore/storefront/metrics"
)

// DispatcherConfig sizes the queue and worker pool.
type DispatcherConfig struct {
	QueueSize   int
	Workers     int
	SendTimeout time.Duration
}

// DefaultDispatcherConfig returns the settings used by the serve command.
func DefaultDispatcherConfig() DispatcherConfig {
	return DispatcherConfig{QueueSize: 256, Workers: 2, SendTimeout: 10 * time.Second}
}

type job struct {
	kind     string
	purchase domain.Purchase
	removal  domain.ProductRemoval
}

// Dispatcher implements domain.Notifier and domain.RemovalNotifier with a
// bounded queue drained by worker goroutines. When the queue is full the
// notification is dropped and logged; the caller is never blocked.
type Dispatcher struct {
	sink    Sink
	logger  *zap.Logger
	metrics *metrics.Metrics
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	queue  chan job
	wg     sync.WaitGroup
}

var (
	_ domain.Notifier        = (*Dispatcher)(nil)
	_ domain.RemovalNotifier = (*Dispatcher)(nil)
)

// NewDispatcher starts cfg.Workers workers delivering to sink. m may be nil.
func NewDispatcher(sink Sink, logger *zap.Logger, m *metrics.Metrics, cfg DispatcherConfig) *Dispatcher {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultDispatcherConfig().QueueSize
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = DefaultDispatcherConfig().SendTimeout
	}
	d := &Dispatcher{
		sink:    sink,
		logger:  logger,
		metrics: m,
		timeout: cfg.SendTimeout,
		queue:   make(chan job, cfg.QueueSize),
	}
	for i := 0; i < cfg.Workers; i++ {
		d.wg.Add(1)
		go d.work()
	}
	return d
}

// NotifyPurchase queues a purchase confirmation.
func (d *Dispatcher) NotifyPurchase(_ context.Context, purchase domain.Purchase) {
	d.enqueue(job{kind: KindPurchaseConfirmed, purchase: purchase}, zap.String("ticket_code", purchase.Ticket.Code))
}

// NotifyProductRemoved queues a product removal notice.
func (d *Dispatcher) NotifyProductRemoved(_ context.Context, removal domain.ProductRemoval) {
	d.enqueue(job{kind: KindProductRemoved, removal: removal}, zap.String("product_id", removal.Product.ID))
}

func (d *Dispatcher) enqueue(j job, field zap.Field) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.drop(j, field, "dispatcher closed")
		return
	}
	select {
	case d.queue <- j:
	default:
		d.drop(j, field, "queue full")
	}
}

func (d *Dispatcher) drop(j job, field zap.Field, why string) {
	d.logger.Warn("notification dropped", zap.String("kind", j.kind), zap.String("reason", why), field)
	if d.metrics != nil {
		d.metrics.NotificationsDropped.Inc()
	}
}

func (d *Dispatcher) work() {
	defer d.wg.Done()
	for j := range d.queue {
		d.deliver(j)
	}
}

func (d *Dispatcher) deliver(j job) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	var err error
	switch j.kind {
	case KindPurchaseConfirmed:
		err = d.sink.PurchaseConfirmed(ctx, j.purchase)
	case KindProductRemoved:
		err = d.sink.ProductRemoved(ctx, j.removal)
	}

	result := "ok"
	if err != nil {
		result = "error"
		d.logger.Error("notification failed", zap.String("kind", j.kind), zap.Error(err))
	}
	if d.metrics != nil {
		d.metrics.NotificationsSent.WithLabelValues(j.kind, result).Inc()
	}
}

// Close stops accepting notifications and waits for queued ones to be
// delivered or for ctx to expire.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
