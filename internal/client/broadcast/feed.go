package broadcast

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dmitrijs2005/mcpanel/internal/client/credentials"
	"github.com/dmitrijs2005/mcpanel/internal/common"
	"github.com/dmitrijs2005/mcpanel/internal/logging"
)

var (
	errNoCredential = errors.New("no credential for broadcast channel")
	errDisconnected = errors.New("broadcast channel disconnected")
)

// CredentialReader is the part of the credential store the feed needs.
type CredentialReader interface {
	Get(ctx context.Context) (*credentials.Credential, error)
}

// Sink receives decoded updates. Reconciler.Enqueue fits.
type Sink func(ctx context.Context, u Update) error

// Feed keeps a websocket to the broadcast channel open and forwards every
// frame to a Sink.
type Feed struct {
	url       string
	creds     CredentialReader
	sink      Sink
	reconnect time.Duration
	dialer    *websocket.Dialer
	log       logging.Logger

	mu   sync.Mutex
	conn *websocket.Conn
	// gen counts Disconnect calls; a session opened under an older value
	// is dropped.
	gen uint64
}

func NewFeed(url string, creds CredentialReader, sink Sink, reconnect time.Duration, log logging.Logger) *Feed {
	if reconnect <= 0 {
		reconnect = 3 * time.Second
	}
	if log == nil {
		log = logging.Discard()
	}
	return &Feed{
		url:       url,
		creds:     creds,
		sink:      sink,
		reconnect: reconnect,
		dialer:    &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		log:       log.With("component", "feed"),
	}
}

// Run connects and reconnects until ctx ends.
func (f *Feed) Run(ctx context.Context) error {
	for {
		err := f.session(ctx)
		if ctx.Err() != nil {
			return nil
		}
		switch {
		case errors.Is(err, errNoCredential):
			f.log.Debug(ctx, "waiting for a session before connecting")
		case errors.Is(err, errDisconnected):
			f.log.Info(ctx, "broadcast channel closed on sign-out")
		default:
			f.log.Warn(ctx, "broadcast channel lost", "error", err, "retry_in", f.reconnect)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(f.reconnect):
		}
	}
}

// Disconnect drops the open connection and any dial in flight. Run dials
// again after the reconnect delay, and only once a credential is stored.
func (f *Feed) Disconnect() {
	f.mu.Lock()
	f.gen++
	conn := f.conn
	f.conn = nil
	f.mu.Unlock()

	if conn != nil {
		_ = conn.Close()
	}
}

func (f *Feed) generation() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.gen
}

// attach records conn as the open connection unless Disconnect ran since
// gen was read.
func (f *Feed) attach(conn *websocket.Conn, gen uint64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.gen != gen {
		return false
	}
	f.conn = conn
	return true
}

func (f *Feed) detach(conn *websocket.Conn) {
	f.mu.Lock()
	if f.conn == conn {
		f.conn = nil
	}
	f.mu.Unlock()
}

func (f *Feed) session(ctx context.Context) error {
	gen := f.generation()

	cred, err := f.creds.Get(ctx)
	if err != nil {
		return fmt.Errorf("read credential: %w", err)
	}
	if cred == nil {
		return errNoCredential
	}

	header := http.Header{}
	header.Set(common.AuthorizationHeaderName, common.BearerPrefix+cred.Token)

	conn, resp, err := f.dialer.DialContext(ctx, f.url, header)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("dial %s: status %d: %w", f.url, resp.StatusCode, err)
		}
		return fmt.Errorf("dial %s: %w", f.url, err)
	}
	defer conn.Close()
	if !f.attach(conn, gen) {
		return errDisconnected
	}
	defer f.detach(conn)
	f.log.Info(ctx, "broadcast channel connected")

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			if f.generation() != gen {
				return errDisconnected
			}
			return fmt.Errorf("read: %w", err)
		}

		u, err := DecodeUpdate(frame)
		if err != nil {
			f.log.Warn(ctx, "skipping frame", "error", err)
			continue
		}
		if err := f.sink(ctx, u); err != nil {
			return err
		}
	}
}
