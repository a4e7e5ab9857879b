// Package loader fetches JSON documents and memoizes them by URL for the
// lifetime of the process.
package loader

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/singleflight"
)

type Loader struct {
	fetcher Fetcher
	logger  *slog.Logger

	mu    sync.Mutex
	cache map[string]json.RawMessage
	group singleflight.Group

	hits   prometheus.Counter
	misses prometheus.Counter
	errs   *prometheus.CounterVec
}

type Option func(*Loader)

func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) { l.logger = logger }
}

// WithRegisterer registers the loader's counters. Without it the counters
// are still kept but not exported.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(l *Loader) {
		reg.MustRegister(l.hits, l.misses, l.errs)
	}
}

func New(fetcher Fetcher, opts ...Option) *Loader {
	l := &Loader{
		fetcher: fetcher,
		logger:  slog.Default(),
		cache:   make(map[string]json.RawMessage),
		hits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "devshelf",
			Subsystem: "loader",
			Name:      "hits_total",
			Help:      "Loads served without a fetch of their own (cache or a shared in-flight fetch).",
		}),
		misses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "devshelf",
			Subsystem: "loader",
			Name:      "misses_total",
			Help:      "Loads that went to the fetcher.",
		}),
		errs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "devshelf",
			Subsystem: "loader",
			Name:      "errors_total",
			Help:      "Failed loads by error kind.",
		}, []string{"kind"}),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load returns the document at rawURL, fetching it at most once. Concurrent
// callers for the same URL share a single in-flight fetch. Failures are not
// cached.
//
// The shared fetch is detached from the caller's cancellation: a caller that
// gives up gets ctx.Err() wrapped in a NetworkError, and the others keep
// waiting. The fetcher's own timeout bounds the fetch.
func (l *Loader) Load(ctx context.Context, rawURL string) (json.RawMessage, error) {
	if doc, ok := l.cached(rawURL); ok {
		l.hits.Inc()
		return doc, nil
	}

	// ran and fetched are only written by this caller's flight, and only
	// read after its result has been received.
	var ran, fetched bool
	ch := l.group.DoChan(rawURL, func() (interface{}, error) {
		ran = true
		// A caller that raced the previous flight may find it already stored.
		if doc, ok := l.cached(rawURL); ok {
			return doc, nil
		}
		fetched = true
		l.misses.Inc()
		l.logger.Debug("fetching document", "url", rawURL)

		body, err := l.fetcher.Fetch(context.WithoutCancel(ctx), rawURL)
		if err != nil {
			return nil, err
		}
		var doc json.RawMessage
		if err := json.Unmarshal(body, &doc); err != nil {
			return nil, &ParseError{URL: rawURL, Err: err}
		}

		l.mu.Lock()
		l.cache[rawURL] = doc
		l.mu.Unlock()
		return doc, nil
	})

	select {
	case <-ctx.Done():
		l.logger.Debug("load abandoned", "url", rawURL, "error", ctx.Err())
		return nil, &NetworkError{URL: rawURL, Err: ctx.Err()}
	case res := <-ch:
		if res.Err != nil {
			if ran {
				l.errs.WithLabelValues(errorKind(res.Err)).Inc()
			}
			l.logger.Warn("load failed", "url", rawURL, "error", res.Err)
			return nil, res.Err
		}
		if !fetched {
			l.hits.Inc()
		}
		return res.Val.(json.RawMessage), nil
	}
}

// Clear drops the cached document for rawURL so the next Load re-fetches it.
func (l *Loader) Clear(rawURL string) {
	l.mu.Lock()
	delete(l.cache, rawURL)
	l.mu.Unlock()
}

// ClearAll empties the cache.
func (l *Loader) ClearAll() {
	l.mu.Lock()
	l.cache = make(map[string]json.RawMessage)
	l.mu.Unlock()
}

// Len reports how many documents are cached.
func (l *Loader) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.cache)
}

func (l *Loader) cached(rawURL string) (json.RawMessage, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	doc, ok := l.cache[rawURL]
	return doc, ok
}
