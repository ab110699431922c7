// Package jobs signals that a background job on the backend has probably
// finished.
//
// The backend accepts some operations (backup creation, restore) right away
// and completes them later without telling the client. The Notifier covers
// that gap with a timer: NotifyLater publishes the key once after a delay,
// and subscribers refresh whatever the key names. A signal is a hint, not a
// completion report; nothing is retried.
package jobs

import (
	"context"
	"sync"
	"time"

	evbus "github.com/asaskevich/EventBus"

	"github.com/dmitrijs2005/mcpanel/internal/logging"
)

// TopicBackupUpdated carries the id of a server whose backups may have changed.
const TopicBackupUpdated = "backup-updated"

type Notifier struct {
	bus   evbus.Bus
	topic string
	log   logging.Logger

	mu      sync.Mutex
	timers  map[*time.Timer]struct{}
	subs    map[int]func(string)
	nextSub int
	closed  bool
}

// New returns a Notifier publishing on topic. A nil bus gets a private one.
func New(bus evbus.Bus, topic string, log logging.Logger) (*Notifier, error) {
	if bus == nil {
		bus = evbus.New()
	}
	if log == nil {
		log = logging.Discard()
	}
	n := &Notifier{
		bus:    bus,
		topic:  topic,
		log:    log.With("component", "jobs", "topic", topic),
		timers: make(map[*time.Timer]struct{}),
		subs:   make(map[int]func(string)),
	}
	if err := bus.Subscribe(topic, n.dispatch); err != nil {
		return nil, err
	}
	return n, nil
}

// NotifyLater publishes key once, delay from now. Calls after Close are
// ignored.
func (n *Notifier) NotifyLater(key string, delay time.Duration) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return
	}

	var t *time.Timer
	t = time.AfterFunc(delay, func() {
		n.mu.Lock()
		delete(n.timers, t)
		closed := n.closed
		n.mu.Unlock()

		if !closed {
			n.bus.Publish(n.topic, key)
		}
	})
	n.timers[t] = struct{}{}
}

// OnNotify subscribes fn to published keys.
func (n *Notifier) OnNotify(fn func(key string)) (cancel func()) {
	n.mu.Lock()
	id := n.nextSub
	n.nextSub++
	n.subs[id] = fn
	n.mu.Unlock()

	return func() {
		n.mu.Lock()
		delete(n.subs, id)
		n.mu.Unlock()
	}
}

func (n *Notifier) dispatch(key string) {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return
	}
	fns := make([]func(string), 0, len(n.subs))
	for _, fn := range n.subs {
		fns = append(fns, fn)
	}
	n.mu.Unlock()

	n.log.Debug(context.Background(), "job signal", "key", key, "subscribers", len(fns))
	for _, fn := range fns {
		fn(key)
	}
}

// Pending reports how many signals are still scheduled.
func (n *Notifier) Pending() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.timers)
}

// Close drops pending signals and stops delivering to subscribers. The bus
// handler stays registered: EventBus matches handlers by code pointer, so
// unsubscribing one Notifier could detach another on a shared bus.
func (n *Notifier) Close() error {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return nil
	}
	n.closed = true
	for t := range n.timers {
		t.Stop()
	}
	n.timers = make(map[*time.Timer]struct{})
	n.mu.Unlock()
	return nil
}
