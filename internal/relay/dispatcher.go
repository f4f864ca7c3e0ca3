package relay

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"didvault/internal/domain"
	"didvault/internal/metrics"
	"didvault/internal/platform/retry"
)

var (
	// ErrQueueFull is returned by Enqueue when the backlog is at capacity.
	ErrQueueFull = errors.New("relay queue full")
	// ErrStopped is returned by Enqueue after Run has returned.
	ErrStopped = errors.New("relay dispatcher stopped")
)

// DispatcherConfig sizes the worker pool and its queue.
type DispatcherConfig struct {
	Workers   int
	QueueSize int
	Retry     retry.Policy
}

type job struct {
	id     string
	did    domain.DID
	target string
}

// Dispatcher delivers relay requests in the background. Delivery is
// at-most-once: a job that exhausts its retries, or that does not fit in the
// queue, is dropped and counted.
type Dispatcher struct {
	sink    domain.RelaySink
	cfg     DispatcherConfig
	log     *zap.Logger
	metrics *metrics.Metrics

	jobs chan job

	mu      sync.RWMutex
	stopped bool
}

// NewDispatcher returns a dispatcher in front of sink. Call Run to start the
// workers.
func NewDispatcher(sink domain.RelaySink, cfg DispatcherConfig, log *zap.Logger, m *metrics.Metrics) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{
		sink:    sink,
		cfg:     cfg,
		log:     log.With(zap.String("component", "relay-dispatcher")),
		metrics: m,
		jobs:    make(chan job, cfg.QueueSize),
	}
}

// Enqueue schedules id for propagation to target without blocking.
func (d *Dispatcher) Enqueue(id domain.DID, target string) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.stopped {
		return ErrStopped
	}
	j := job{id: uuid.NewString(), did: id, target: target}
	select {
	case d.jobs <- j:
		d.log.Debug("relay job queued", zap.String("job", j.id), zap.String("did", id.String()))
		return nil
	default:
		d.metrics.ObserveRelay(metrics.RelayDropped)
		d.log.Warn("relay queue full, dropping job", zap.String("did", id.String()), zap.String("target", target))
		return ErrQueueFull
	}
}

// Run processes jobs until ctx is cancelled. Jobs still queued at that point
// are dropped.
func (d *Dispatcher) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	for i := 0; i < d.cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.worker(ctx)
		}()
	}
	<-ctx.Done()
	wg.Wait()

	d.mu.Lock()
	d.stopped = true
	d.mu.Unlock()

	dropped := len(d.jobs)
	for len(d.jobs) > 0 {
		<-d.jobs
		d.metrics.ObserveRelay(metrics.RelayDropped)
	}
	if dropped > 0 {
		d.log.Warn("relay dispatcher stopped with pending jobs", zap.Int("dropped", dropped))
	}
	return nil
}

func (d *Dispatcher) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-d.jobs:
			d.deliver(ctx, j)
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, j job) {
	start := time.Now()
	err := d.cfg.Retry.Do(ctx, func(ctx context.Context) error {
		return d.sink.SyncIdentity(ctx, j.did, j.target)
	}, func(err error, wait time.Duration) {
		d.log.Debug("relay attempt failed, retrying",
			zap.String("job", j.id), zap.Duration("backoff", wait), zap.Error(err))
	})
	if err != nil {
		d.metrics.ObserveRelay(metrics.RelayFailed)
		d.log.Warn("relay job failed",
			zap.String("job", j.id),
			zap.String("did", j.did.String()),
			zap.String("target", j.target),
			zap.Error(err))
		return
	}
	d.metrics.ObserveRelay(metrics.RelayOK)
	d.log.Info("relay job delivered",
		zap.String("job", j.id),
		zap.String("did", j.did.String()),
		zap.Duration("took", time.Since(start)))
}

var _ domain.RelayQueue = (*Dispatcher)(nil)
