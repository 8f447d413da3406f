package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/gkats/catalog-api/internal/metrics"
	"github.com/gkats/catalog-api/internal/core/domain"
	"github.com/gkats/catalog-api/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	insertTimeout  = 5 * time.Second
	drainTimeout   = 10 * time.Second
)

// AuditDispatcher persists authentication events off the request path. Events
// are sharded by email so each account's trail is written in order.
type AuditDispatcher struct {
	workers []chan domain.AuthEvent
	repo    ports.AuditRepository
	log     zerolog.Logger
	wg      sync.WaitGroup
}

// NewAuditDispatcher creates a dispatcher with numWorkers workers, each with a
// buffer of the given size. Non-positive values fall back to the defaults.
func NewAuditDispatcher(numWorkers, buffer int, repo ports.AuditRepository, log zerolog.Logger) *AuditDispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	if buffer <= 0 {
		buffer = channelBuffer
	}
	d := &AuditDispatcher{
		workers: make([]chan domain.AuthEvent, numWorkers),
		repo:    repo,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.AuthEvent, buffer)
	}
	return d
}

// Start launches the workers. When ctx is cancelled each worker writes what
// is still buffered, for at most drainTimeout, and returns; Wait blocks until
// all of them have returned.
func (d *AuditDispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

func (d *AuditDispatcher) Wait() {
	d.wg.Wait()
}

// Record queues event without blocking. When the target worker is full the
// event is dropped and counted.
func (d *AuditDispatcher) Record(event domain.AuthEvent) {
	idx := d.shardIndex(event.Email)
	select {
	case d.workers[idx] <- event:
		metrics.AuditQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		metrics.AuditDroppedTotal.Inc()
		d.log.Warn().
			Str("kind", string(event.Kind)).
			Str("email", event.Email).
			Int("worker_id", idx).
			Msg("audit queue full, event dropped")
	}
}

func (d *AuditDispatcher) shardIndex(email string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(email))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *AuditDispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.AuthEvent) {
	defer d.wg.Done()
	depth := metrics.AuditQueueDepth.WithLabelValues(strconv.Itoa(id))
	for {
		select {
		case <-ctx.Done():
			d.drain(ctx, id, ch)
			depth.Set(0)
			return
		case event := <-ch:
			depth.Set(float64(len(ch)))
			d.persist(ctx, id, event)
		}
	}
}

// drain writes the events left in ch after shutdown began. Whatever is still
// buffered when drainTimeout elapses is dropped and counted.
func (d *AuditDispatcher) drain(ctx context.Context, id int, ch <-chan domain.AuthEvent) {
	deadline := time.Now().Add(drainTimeout)
	for time.Now().Before(deadline) {
		select {
		case event := <-ch:
			d.persist(ctx, id, event)
		default:
			return
		}
	}

	if n := len(ch); n > 0 {
		metrics.AuditDroppedTotal.Add(float64(n))
		d.log.Warn().Int("worker_id", id).Int("dropped", n).Msg("audit drain timed out, events dropped")
	}
}

// persist bounds each insert by insertTimeout only, so inserts made while
// draining are not cut short by the cancelled worker context.
func (d *AuditDispatcher) persist(ctx context.Context, id int, event domain.AuthEvent) {
	insertCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), insertTimeout)
	defer cancel()

	if err := d.repo.InsertEvent(insertCtx, event); err != nil {
		d.log.Error().Err(err).
			Str("event_id", event.ID).
			Str("kind", string(event.Kind)).
			Int("worker_id", id).
			Msg("audit event insert failed")
	}
}
