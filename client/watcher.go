package client

import (
	"context"
	"math/rand"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/Priyansh-9021/Bike-Rental-System/internal/core/domain"
)

const (
	initialBackoff = 500 * time.Millisecond
	maxBackoff     = 30 * time.Second
	// After this many consecutive failed dials the watcher reports a
	// transient degradation to the application (it keeps retrying).
	degradedThreshold = 5
)

// WatcherOptions configures a Watcher.
type WatcherOptions struct {
	// OnUpdate fires after a snapshot newer than the cached state was
	// applied. Optional.
	OnUpdate func(snap domain.Snapshot)
	// OnDegraded fires once per outage when reconnection has failed
	// degradedThreshold times in a row. Optional.
	OnDegraded func(err error)
	Logger     zerolog.Logger
}

// Watcher consumes the push channel into a ViewCache. On transport failure
// it reconnects with bounded exponential backoff and refetches a fresh
// snapshot over the REST read path before resuming push consumption, closing
// any gap accumulated while disconnected.
type Watcher struct {
	client *Client
	cache  *ViewCache
	opts   WatcherOptions
	log    zerolog.Logger
}

func NewWatcher(c *Client, cache *ViewCache, opts WatcherOptions) *Watcher {
	return &Watcher{client: c, cache: cache, opts: opts, log: opts.Logger}
}

// Run blocks until ctx is cancelled, keeping the cache synchronized.
func (w *Watcher) Run(ctx context.Context) {
	backoff := initialBackoff
	failures := 0

	for {
		if ctx.Err() != nil {
			return
		}

		delivered, err := w.session(ctx)
		if ctx.Err() != nil {
			return
		}

		// A session that survived long enough to deliver a snapshot resets
		// the ladder.
		if delivered {
			backoff = initialBackoff
			failures = 0
		}

		failures++
		if failures == degradedThreshold && w.opts.OnDegraded != nil {
			w.opts.OnDegraded(err)
		}
		w.log.Warn().Err(err).Dur("retry_in", backoff).Msg("push channel lost, reconnecting")

		select {
		case <-ctx.Done():
			return
		case <-time.After(jitter(backoff)):
		}

		if backoff *= 2; backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}

// session runs one connect-refetch-consume cycle. It reports whether at
// least one snapshot was applied, and the transport error that ended it.
func (w *Watcher) session(ctx context.Context) (bool, error) {
	wsURL, err := pushURL(w.client.baseURL, w.client.Token())
	if err != nil {
		return false, err
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return false, err
	}
	defer conn.Close()

	// Reconcile over the read path before consuming pushes, so state changed
	// while disconnected is visible even if the first push is delayed.
	bikes, err := w.client.Bikes(ctx)
	if err != nil {
		return false, err
	}
	w.cache.Reset(bikes)

	// Close the socket on cancellation to unblock ReadJSON.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	delivered := false
	for {
		var snap domain.Snapshot
		if err := conn.ReadJSON(&snap); err != nil {
			return delivered, err
		}
		if !w.cache.Apply(snap) {
			w.log.Debug().Uint64("version", snap.Version).Msg("stale snapshot discarded")
			continue
		}
		delivered = true
		if w.opts.OnUpdate != nil {
			w.opts.OnUpdate(snap)
		}
	}
}

// pushURL derives the websocket endpoint from the REST base URL.
func pushURL(baseURL, token string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	switch {
	case u.Scheme == "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/ws"
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// jitter spreads reconnect attempts over ±25% of the backoff interval so a
// restarted server is not hit by every client at once.
func jitter(d time.Duration) time.Duration {
	delta := time.Duration(rand.Int63n(int64(d) / 2))
	return d - d/4 + delta
}
