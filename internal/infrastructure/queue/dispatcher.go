package queue

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/projectforge/projectforge-api/internal/core/domain"
	"github.com/projectforge/projectforge-api/internal/core/ports"
)

// Observer receives per-entry outcomes and per-worker queue depth.
type Observer interface {
	EntryStored()
	EntryFailed()
	EntryDropped()
	QueueDepth(worker, depth int)
}

type noopObserver struct{}

func (noopObserver) EntryStored()        {}
func (noopObserver) EntryFailed()        {}
func (noopObserver) EntryDropped()       {}
func (noopObserver) QueueDepth(int, int) {}

const (
	defaultWorkers = 4
	channelBuffer  = 256
	persistTimeout = 5 * time.Second
)

// Dispatcher persists audit entries on a fixed set of workers, sharded by
// entity id so entries for one entity are stored in the order recorded.
type Dispatcher struct {
	workers []chan domain.AuditEntry
	repo    ports.AuditRepository
	log     zerolog.Logger
	obs     Observer

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, repo ports.AuditRepository, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.AuditEntry, numWorkers),
		repo:    repo,
		log:     log,
		obs:     noopObserver{},
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.AuditEntry, channelBuffer)
	}
	return d
}

// WithObserver reports entry outcomes and queue depth to o.
func (d *Dispatcher) WithObserver(o Observer) *Dispatcher {
	if o != nil {
		d.obs = o
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled
// or after Shutdown has drained their channel.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Record hands entry to the worker owning its entity. It never blocks: when
// the worker's buffer is full or the dispatcher is shut down the entry is
// dropped and counted.
func (d *Dispatcher) Record(entry domain.AuditEntry) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.obs.EntryDropped()
		return
	}

	idx := d.shardIndex(entry.EntityID)
	select {
	case d.workers[idx] <- entry:
		d.obs.QueueDepth(idx, len(d.workers[idx]))
	default:
		d.obs.EntryDropped()
		d.log.Warn().Str("entity_id", entry.EntityID).Int("worker_id", idx).Msg("audit queue full, entry dropped")
	}
}

// Shutdown stops accepting entries and waits for queued ones to be stored.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		for _, ch := range d.workers {
			close(ch)
		}
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

// shardIndex maps an entity id deterministically to a worker index.
func (d *Dispatcher) shardIndex(entityID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(entityID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.AuditEntry) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case entry, ok := <-ch:
			if !ok {
				return
			}
			d.obs.QueueDepth(id, len(ch))
			d.persist(ctx, id, entry)
		}
	}
}

func (d *Dispatcher) persist(ctx context.Context, id int, entry domain.AuditEntry) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()

	if err := d.repo.Insert(ctx, &entry); err != nil {
		d.obs.EntryFailed()
		d.log.Error().Err(err).
			Str("entity_type", entry.EntityType).
			Str("entity_id", entry.EntityID).
			Int("worker_id", id).
			Msg("audit entry persistence failed")
		return
	}
	d.obs.EntryStored()
}
