package services

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/mcpanel/internal/client/client"
	"github.com/dmitrijs2005/mcpanel/internal/client/credentials"
	"github.com/stretchr/testify/require"
)

const apiPrefix = "/api/v1"

/*************
 * Fake backend
 *************/

type call struct {
	Method string
	Path   string
	Query  string
	Auth   string
	Type   string
	Body   []byte
}

type backend struct {
	mu     sync.Mutex
	routes map[string]http.HandlerFunc
	calls  []call
	srv    *httptest.Server
}

func newBackend(t *testing.T) *backend {
	t.Helper()
	b := &backend{routes: make(map[string]http.HandlerFunc)}
	b.srv = httptest.NewServer(http.HandlerFunc(b.serve))
	t.Cleanup(b.srv.Close)
	return b
}

func (b *backend) serve(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, apiPrefix)
	body, _ := io.ReadAll(r.Body)
	r.Body = io.NopCloser(strings.NewReader(string(body)))

	b.mu.Lock()
	b.calls = append(b.calls, call{
		Method: r.Method,
		Path:   path,
		Query:  r.URL.RawQuery,
		Auth:   r.Header.Get("Authorization"),
		Type:   r.Header.Get("Content-Type"),
		Body:   body,
	})
	h, ok := b.routes[r.Method+" "+path]
	b.mu.Unlock()

	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"error":"no route"}`)
		return
	}
	h(w, r)
}

// on answers method+path with a fixed status and body.
func (b *backend) on(method, path string, status int, body string) {
	b.handle(method, path, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	})
}

func (b *backend) handle(method, path string, h http.HandlerFunc) {
	b.mu.Lock()
	b.routes[method+" "+path] = h
	b.mu.Unlock()
}

func (b *backend) count(method, path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, c := range b.calls {
		if c.Method == method && c.Path == path {
			n++
		}
	}
	return n
}

func (b *backend) last(method, path string) (call, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := len(b.calls) - 1; i >= 0; i-- {
		if b.calls[i].Method == method && b.calls[i].Path == path {
			return b.calls[i], true
		}
	}
	return call{}, false
}

func (b *backend) total() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.calls)
}

/*************
 * Fakes
 *************/

type fakeNavigator struct {
	mu        sync.Mutex
	redirects []string
}

func (f *fakeNavigator) Redirect(ctx context.Context, route string) {
	f.mu.Lock()
	f.redirects = append(f.redirects, route)
	f.mu.Unlock()
}

func (f *fakeNavigator) got() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.redirects...)
}

type notifyCall struct {
	Key   string
	Delay time.Duration
}

type fakeNotifier struct {
	mu    sync.Mutex
	calls []notifyCall
	subs  []func(string)
}

func (f *fakeNotifier) NotifyLater(key string, delay time.Duration) {
	f.mu.Lock()
	f.calls = append(f.calls, notifyCall{key, delay})
	f.mu.Unlock()
}

func (f *fakeNotifier) OnNotify(fn func(string)) func() {
	f.mu.Lock()
	f.subs = append(f.subs, fn)
	f.mu.Unlock()
	return func() {}
}

func (f *fakeNotifier) fire(key string) {
	f.mu.Lock()
	subs := append([]func(string){}, f.subs...)
	f.mu.Unlock()
	for _, fn := range subs {
		fn(key)
	}
}

/*************
 * Harness
 *************/

type harness struct {
	backend *backend
	api     *client.Client
	creds   credentials.Store
	session AuthService
	nav     *fakeNavigator
}

// newHarness wires a real pipeline, an in-memory credential store and a
// session whose Logout is the pipeline's 401 handler.
func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		backend: newBackend(t),
		creds:   credentials.NewMemory(time.Hour),
		nav:     &fakeNavigator{},
	}

	api, err := client.New(client.Options{BaseURL: h.backend.srv.URL + apiPrefix}, h.creds,
		func(ctx context.Context) { h.session.Logout(ctx) })
	require.NoError(t, err)
	h.api = api

	h.session = NewAuthService(api, h.creds, nil)
	h.session.SetNavigator(h.nav)
	return h
}

// signIn stores a credential and loads a user through the backend.
func (h *harness) signIn(t *testing.T) {
	t.Helper()
	h.backend.on(http.MethodPost, "/login", http.StatusOK,
		`{"token":"tok123","user":{"id":"u1","username":"a","email":"a@b.com","createdAt":"2024-01-01"}}`)
	require.NoError(t, h.session.Login(context.Background(), "a@b.com", "x"))
}
