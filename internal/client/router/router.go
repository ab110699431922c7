// Package router tracks the route the client shows and guards every
// transition.
//
// Before each navigation, the first one included, the guard gives a stored
// credential the chance to load its user. Afterwards an anonymous client may
// only see the public routes; anything else lands on the login route.
package router

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/mcpanel/internal/client/models"
	"github.com/dmitrijs2005/mcpanel/internal/logging"
)

// Session is what the guard needs from the session manager.
type Session interface {
	User() *models.User
	HasCredential(ctx context.Context) bool
	FetchUser(ctx context.Context)
	IsAuthenticated(ctx context.Context) bool
}

type Router struct {
	session Session
	log     logging.Logger

	mu      sync.RWMutex
	current string

	obsMu   sync.Mutex
	obs     map[int]func(from, to string)
	nextObs int
}

func New(session Session, log logging.Logger) *Router {
	if log == nil {
		log = logging.Discard()
	}
	return &Router{
		session: session,
		log:     log.With("component", "router"),
		obs:     make(map[int]func(from, to string)),
	}
}

// Current returns the route the client is on ("" before Start).
func (r *Router) Current() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

// Start performs the initial navigation.
func (r *Router) Start(ctx context.Context, initial string) string {
	if initial == "" {
		initial = Dashboard
	}
	return r.Navigate(ctx, initial)
}

// Navigate runs the guard and moves to to, or to the login route when the
// guard refuses. It returns the route landed on.
func (r *Router) Navigate(ctx context.Context, to string) string {
	landed := r.guard(ctx, to)
	if landed != to {
		r.log.Debug(ctx, "navigation redirected", "to", to, "landed", landed)
	}
	r.land(landed)
	return landed
}

// Redirect moves to route without waiting on the session. The session
// manager calls it on logout, so it must not call back into the session.
func (r *Router) Redirect(ctx context.Context, route string) {
	r.land(route)
}

func (r *Router) guard(ctx context.Context, to string) string {
	if r.session.User() == nil && r.session.HasCredential(ctx) {
		r.session.FetchUser(ctx)
	}
	if !r.session.IsAuthenticated(ctx) && !IsPublic(to) {
		return Login
	}
	return to
}

func (r *Router) land(route string) {
	r.mu.Lock()
	from := r.current
	r.current = route
	r.mu.Unlock()

	r.obsMu.Lock()
	fns := make([]func(string, string), 0, len(r.obs))
	for _, fn := range r.obs {
		fns = append(fns, fn)
	}
	r.obsMu.Unlock()

	for _, fn := range fns {
		fn(from, route)
	}
}

// Observe registers fn for route changes.
func (r *Router) Observe(fn func(from, to string)) (cancel func()) {
	r.obsMu.Lock()
	id := r.nextObs
	r.nextObs++
	r.obs[id] = fn
	r.obsMu.Unlock()

	return func() {
		r.obsMu.Lock()
		delete(r.obs, id)
		r.obsMu.Unlock()
	}
}
