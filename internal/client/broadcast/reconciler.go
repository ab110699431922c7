package broadcast

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/mcpanel/internal/client/store"
	"github.com/dmitrijs2005/mcpanel/internal/logging"
)

// Target merges a payload into every slot holding id and reports whether
// any did.
type Target interface {
	ApplyBroadcast(id string, payload []byte) (bool, error)
}

type storeTarget[T store.Identifiable] struct {
	s *store.Store[T]
}

func (t storeTarget[T]) ApplyBroadcast(id string, payload []byte) (bool, error) {
	return t.s.Merge(id, payload)
}

// StoreTarget adapts a resource store.
func StoreTarget[T store.Identifiable](s *store.Store[T]) Target {
	return storeTarget[T]{s: s}
}

const DefaultQueueSize = 64

type Reconciler struct {
	log   logging.Logger
	queue chan Update

	mu      sync.RWMutex
	targets map[string]Target
}

func NewReconciler(queueSize int, log logging.Logger) *Reconciler {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	if log == nil {
		log = logging.Discard()
	}
	return &Reconciler{
		log:     log.With("component", "broadcast"),
		queue:   make(chan Update, queueSize),
		targets: make(map[string]Target),
	}
}

// Register routes updates of entityType ("server", "backup", ...) to t.
func (r *Reconciler) Register(entityType string, t Target) {
	r.mu.Lock()
	r.targets[entityType] = t
	r.mu.Unlock()
}

// Apply merges u right away. Updates of unknown types or for unseen ids
// report false.
func (r *Reconciler) Apply(ctx context.Context, u Update) (bool, error) {
	r.mu.RLock()
	t, ok := r.targets[u.Type]
	r.mu.RUnlock()
	if !ok {
		r.log.Debug(ctx, "no target for update", "type", u.Type, "id", u.ID)
		return false, nil
	}

	applied, err := t.ApplyBroadcast(u.ID, u.Payload)
	if err != nil {
		return false, fmt.Errorf("apply %s %s: %w", u.Type, u.ID, err)
	}
	if !applied {
		r.log.Debug(ctx, "update for unseen entity dropped", "type", u.Type, "id", u.ID)
	}
	return applied, nil
}

// Enqueue hands u to the Run loop, blocking while the queue is full.
func (r *Reconciler) Enqueue(ctx context.Context, u Update) error {
	select {
	case r.queue <- u:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run applies queued updates until ctx ends.
func (r *Reconciler) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case u := <-r.queue:
			if _, err := r.Apply(ctx, u); err != nil {
				r.log.Warn(ctx, "broadcast update rejected", "error", err)
			}
		}
	}
}
