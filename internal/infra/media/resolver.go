// Package media provides MediaItemResolver implementations: they turn track
// descriptors into playable items the rendering subsystem can load.
package media

import (
	"context"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/okkei/cueplay/internal/app/queue"
	"github.com/okkei/cueplay/internal/domain/track"
)

// ErrNoLocator is returned for tracks without any remote locator.
var ErrNoLocator = errors.New("track has no remote locator")

// HTTPOptions holds HTTP resolver settings.
type HTTPOptions struct {
	TimeoutMs    int    `mapstructure:"timeout_ms"`
	MaxRetries   int    `mapstructure:"max_retries"`
	RetryDelayMs int    `mapstructure:"retry_delay_ms"`
	UserAgent    string `mapstructure:"user_agent"`
}

func (o *HTTPOptions) applyDefaults() {
	if o.TimeoutMs <= 0 {
		o.TimeoutMs = 5000
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = 3
	}
	if o.RetryDelayMs <= 0 {
		o.RetryDelayMs = 500
	}
	if o.UserAgent == "" {
		o.UserAgent = "cueplay/1.0"
	}
}

// Verify HTTPResolver implements queue.Resolver at compile time.
var _ queue.Resolver = (*HTTPResolver)(nil)

// HTTPResolver probes a track's locators over HTTP, preferring the segmented
// stream and falling back to the single-file URL. Each locator is retried a
// bounded number of times before the next one is tried.
type HTTPResolver struct {
	client     *http.Client
	maxRetries int
	retryDelay time.Duration
	userAgent  string
}

// NewHTTPResolver creates an HTTP resolver.
func NewHTTPResolver(opts HTTPOptions) *HTTPResolver {
	opts.applyDefaults()
	return &HTTPResolver{
		client:     &http.Client{Timeout: time.Duration(opts.TimeoutMs) * time.Millisecond},
		maxRetries: opts.MaxRetries,
		retryDelay: time.Duration(opts.RetryDelayMs) * time.Millisecond,
		userAgent:  opts.UserAgent,
	}
}

// Name returns the resolver name used in config.
func (r *HTTPResolver) Name() string { return "http" }

// Resolve probes the track's locators in preference order and returns an
// item for the first reachable one.
func (r *HTTPResolver) Resolve(ctx context.Context, t track.Track) (queue.Item, error) {
	locators := t.Locators()
	if len(locators) == 0 {
		return queue.Item{}, errors.Wrapf(ErrNoLocator, "track %s", t.ID)
	}

	var lastErr error
	for _, locator := range locators {
		mime, err := r.probe(ctx, locator)
		if err != nil {
			zlog.Debug().Msgf("media: locator probe failed: track=%s url=%s error=%v", t.ID, locator, err)
			lastErr = err
			if ctx.Err() != nil {
				break
			}
			continue
		}
		return queue.Item{
			TrackID:  t.ID,
			MediaURL: locator,
			MimeType: mime,
			Duration: t.Duration,
		}, nil
	}

	return queue.Item{}, errors.Wrapf(lastErr, "failed to resolve track %s", t.ID)
}

// probe issues a HEAD request with bounded retry and returns the reported
// media type.
func (r *HTTPResolver) probe(ctx context.Context, url string) (string, error) {
	var mime string
	err := r.retry(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
		if err != nil {
			return err
		}
		req.Header.Set("User-Agent", r.userAgent)

		resp, err := r.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 400 {
			return errors.Newf("unexpected status %d", resp.StatusCode)
		}
		mime = resp.Header.Get("Content-Type")
		return nil
	})
	return mime, err
}

// retry runs fn up to maxRetries times with a fixed delay between attempts.
func (r *HTTPResolver) retry(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 0; attempt < r.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(r.retryDelay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if err = fn(); err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return err
		}
	}
	return err
}
