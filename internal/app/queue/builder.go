// Package queue provides queue construction from a track list, resolving
// remote media descriptors into playable items in bounded concurrent batches.
package queue

import (
	"context"
	"sync"
	"time"

	zlog "github.com/rs/zerolog/log"

	"github.com/okkei/cueplay/internal/domain/track"
)

// Item is the opaque playable handle produced by resolving one track.
// Items live for one playback session: they are created during queue
// construction and discarded on stop or on replacement by a new session.
type Item struct {
	TrackID  string        // ID of the resolved track
	MediaURL string        // Locator the renderer should load
	MimeType string        // Reported media type, if known
	Duration time.Duration // Known duration, copied from the track
}

// Resolver turns a track descriptor into a playable item.
// Resolution is I/O-bound and may fail per item.
type Resolver interface {
	Resolve(ctx context.Context, t track.Track) (Item, error)
	Name() string
}

// Sink receives queue construction results.
// All callbacks are invoked from the builder; OnItem is always called in
// ascending index order.
type Sink interface {
	// OnItem delivers a resolved item for the track at the given index.
	OnItem(index int, item Item)
	// OnSkip reports a track dropped because its resolution failed.
	OnSkip(index int, t track.Track, err error)
}

// Config holds builder configuration.
type Config struct {
	BatchSize int // Tracks resolved per batch
	Workers   int // Concurrent resolutions within a batch
}

// Builder converts an ordered track list into an ordered item list.
// The first track is resolved synchronously so playback can start fast; the
// remainder is resolved in fixed-size concurrent batches in the background,
// order-restored per batch, and streamed to the sink incrementally.
type Builder struct {
	resolver  Resolver
	batchSize int
	workers   int
}

// NewBuilder creates a builder around the given resolver.
func NewBuilder(resolver Resolver, cfg Config) *Builder {
	batchSize := cfg.BatchSize
	if batchSize < 1 {
		batchSize = 30
	}
	workers := cfg.Workers
	if workers < 1 {
		workers = batchSize
	}
	return &Builder{
		resolver:  resolver,
		batchSize: batchSize,
		workers:   workers,
	}
}

// Session is one in-flight queue construction. Done is closed when background
// resolution has exited, whether by completion or cancellation.
type Session struct {
	done chan struct{}
}

// Done returns the completion channel.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Build resolves tracks[0] before returning and streams the remaining tracks
// to the sink from a background goroutine. Cancellation of ctx is checked at
// batch and item boundaries; cancelled work is abandoned without touching
// items already delivered.
func (b *Builder) Build(ctx context.Context, tracks []track.Track, sink Sink) *Session {
	s := &Session{done: make(chan struct{})}

	if len(tracks) == 0 {
		close(s.done)
		return s
	}

	// Fast path to first sound: the caller waits for this one resolution.
	if item, err := b.resolver.Resolve(ctx, tracks[0]); err != nil {
		zlog.Warn().Msgf("queue: first track resolution failed: track=%s error=%v", tracks[0].ID, err)
		sink.OnSkip(0, tracks[0], err)
	} else {
		sink.OnItem(0, item)
	}

	if len(tracks) == 1 {
		close(s.done)
		return s
	}

	go func() {
		defer close(s.done)
		b.buildRemainder(ctx, tracks, sink)
	}()

	return s
}

// buildRemainder resolves tracks[1:] batch by batch.
func (b *Builder) buildRemainder(ctx context.Context, tracks []track.Track, sink Sink) {
	for start := 1; start < len(tracks); start += b.batchSize {
		if ctx.Err() != nil {
			zlog.Debug().Msgf("queue: build cancelled at batch boundary: next=%d", start)
			return
		}

		end := start + b.batchSize
		if end > len(tracks) {
			end = len(tracks)
		}

		results, failures := b.resolveBatch(ctx, tracks, start, end)
		if ctx.Err() != nil {
			return
		}

		if len(failures) == end-start {
			// Whole batch failed: every track is skipped, later batches
			// still proceed on their own merits.
			zlog.Warn().Msgf("queue: batch failed entirely: batch=[%d,%d)", start, end)
		}

		// Restore original order within the batch before delivery.
		for i := start; i < end; i++ {
			if err, failed := failures[i]; failed {
				sink.OnSkip(i, tracks[i], err)
				continue
			}
			sink.OnItem(i, results[i])
		}

		zlog.Debug().Msgf("queue: batch resolved: batch=[%d,%d) skipped=%d", start, end, len(failures))
	}
}

// resolveBatch resolves tracks[start:end] on a bounded worker pool.
func (b *Builder) resolveBatch(ctx context.Context, tracks []track.Track, start, end int) (map[int]Item, map[int]error) {
	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		results  = make(map[int]Item, end-start)
		failures = make(map[int]error)
	)

	sem := make(chan struct{}, b.workers)
	for i := start; i < end; i++ {
		if ctx.Err() != nil {
			break
		}

		wg.Add(1)
		sem <- struct{}{}
		go func(index int) {
			defer wg.Done()
			defer func() { <-sem }()

			item, err := b.resolver.Resolve(ctx, tracks[index])
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures[index] = err
				return
			}
			results[index] = item
		}(i)
	}
	wg.Wait()

	return results, failures
}
