package syncer

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gigtrack/gig/internal/remote"
)

// Watcher probes the remote service on an interval and notifies subscribers
// when reachability is regained. Listeners are notified after the watcher's
// own state has been updated.
type Watcher struct {
	svc      remote.Service
	interval time.Duration

	mu        sync.Mutex
	online    bool
	listeners []func(online bool)
}

// NewWatcher creates a connectivity watcher. A non-positive interval defaults
// to 30 seconds.
func NewWatcher(svc remote.Service, interval time.Duration) *Watcher {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Watcher{svc: svc, interval: interval}
}

// Subscribe registers a connectivity listener and returns an unregister func.
func (w *Watcher) Subscribe(fn func(online bool)) func() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.listeners = append(w.listeners, fn)
	idx := len(w.listeners) - 1
	return func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		if idx < len(w.listeners) {
			w.listeners[idx] = nil
		}
	}
}

// Run probes until ctx is cancelled. The first probe happens immediately.
func (w *Watcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.probe(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.probe(ctx)
		}
	}
}

func (w *Watcher) probe(ctx context.Context) {
	probeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	online := w.svc.Ping(probeCtx) == nil

	w.mu.Lock()
	changed := online != w.online
	w.online = online
	listeners := make([]func(online bool), len(w.listeners))
	copy(listeners, w.listeners)
	w.mu.Unlock()

	if !changed {
		return
	}
	slog.Debug("connectivity changed", "online", online)
	for _, fn := range listeners {
		if fn != nil {
			fn(online)
		}
	}
}
