// Package transport fetches remote documents over HTTP with a response cache
// in front of the network.
package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/okian/pitchpredict/internal/adapters/repository"
	"github.com/okian/pitchpredict/pkg/logger"
	"github.com/okian/pitchpredict/pkg/metrics"
)

const (
	defaultTimeout   = 120 * time.Second
	defaultUserAgent = "pitchpredict"
	bodyExcerptLen   = 256
)

// Client performs cached GET requests.
type Client struct {
	http      *http.Client
	store     repository.Store
	metrics   *metrics.Manager
	log       logger.Logger
	now       func() time.Time
	userAgent string
}

// New creates a Client. Without WithStore nothing is cached.
func New(opts ...Option) *Client {
	c := &Client{
		http:      &http.Client{Timeout: defaultTimeout},
		store:     repository.NopStore{},
		metrics:   metrics.Default(),
		now:       time.Now,
		userAgent: defaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = logger.Named("transport")
	}
	return c
}

// Get returns the body at rawURL. A cached copy no older than maxAge is
// served without touching the network. An expired copy is still returned
// when the remote request fails.
func (c *Client) Get(ctx context.Context, rawURL string, maxAge time.Duration) ([]byte, error) {
	return c.get(ctx, rawURL, func(e repository.Entry) bool {
		return e.Age(c.now()) <= maxAge
	})
}

// GetSettled is Get for a document that stops changing at settled. A copy
// fetched at or after settled is served whatever its age; an earlier copy
// must be no older than maxAge.
func (c *Client) GetSettled(ctx context.Context, rawURL string, settled time.Time, maxAge time.Duration) ([]byte, error) {
	return c.get(ctx, rawURL, func(e repository.Entry) bool {
		return !e.FetchedAt.Before(settled) || e.Age(c.now()) <= maxAge
	})
}

func (c *Client) get(ctx context.Context, rawURL string, fresh func(repository.Entry) bool) ([]byte, error) {
	source := sourceOf(rawURL)

	entry, err := c.store.Get(ctx, rawURL)
	switch {
	case err == nil && fresh(entry):
		c.metrics.RecordCacheLookup("hit")
		c.log.Debug(ctx, "served from cache",
			logger.String("url", rawURL),
			logger.Int("bytes", len(entry.Body)))
		return entry.Body, nil
	case err == nil:
		c.metrics.RecordCacheLookup("stale")
	case errors.Is(err, repository.ErrNotFound):
		c.metrics.RecordCacheLookup("miss")
	default:
		c.metrics.RecordCacheLookup("error")
		c.log.Warn(ctx, "cache read failed", logger.String("url", rawURL), logger.Error(err))
	}

	body, err := c.fetch(ctx, source, rawURL)
	if err != nil {
		if stale := entry.Body; stale != nil && ctx.Err() == nil {
			c.log.Warn(ctx, "remote fetch failed; serving stale copy",
				logger.String("url", rawURL),
				logger.Duration("age", entry.Age(c.now())),
				logger.Error(err))
			return stale, nil
		}
		return nil, err
	}

	if putErr := c.store.Put(ctx, rawURL, body); putErr != nil {
		c.log.Warn(ctx, "cache write failed", logger.String("url", rawURL), logger.Error(putErr))
	}
	return body, nil
}

func (c *Client) fetch(ctx context.Context, source, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.RecordRemoteRequest(source, 0, time.Since(start))
		return nil, fmt.Errorf("GET %s: %w", source, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.metrics.RecordRemoteRequest(source, resp.StatusCode, time.Since(start))
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, bodyExcerptLen))
		return nil, fmt.Errorf("%w %d from %s: %s", ErrUnexpectedStatus, resp.StatusCode, source, string(excerpt))
	}

	body, err := io.ReadAll(resp.Body)
	c.metrics.RecordRemoteRequest(source, resp.StatusCode, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("reading body from %s: %w", source, err)
	}

	c.log.Debug(ctx, "fetched",
		logger.String("host", source),
		logger.Int("bytes", len(body)),
		logger.Duration("took", time.Since(start)))
	return body, nil
}

func sourceOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "unknown"
	}
	return u.Hostname()
}
