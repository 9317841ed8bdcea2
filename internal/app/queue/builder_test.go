package queue

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okkei/cueplay/internal/domain/track"
)

// fakeResolver resolves tracks in memory, optionally failing selected IDs.
type fakeResolver struct {
	mu       sync.Mutex
	fail     map[string]bool
	delay    time.Duration
	resolved []string
}

func (r *fakeResolver) Resolve(ctx context.Context, t track.Track) (Item, error) {
	if r.delay > 0 {
		select {
		case <-time.After(r.delay):
		case <-ctx.Done():
			return Item{}, ctx.Err()
		}
	}
	if err := ctx.Err(); err != nil {
		return Item{}, err
	}

	r.mu.Lock()
	r.resolved = append(r.resolved, t.ID)
	r.mu.Unlock()

	if r.fail[t.ID] {
		return Item{}, errors.Newf("no playable source for %s", t.ID)
	}
	return Item{
		TrackID:  t.ID,
		MediaURL: t.StreamURL,
		Duration: t.Duration,
	}, nil
}

func (r *fakeResolver) Name() string { return "fake" }

// recordingSink collects builder callbacks.
type recordingSink struct {
	mu      sync.Mutex
	items   []int
	skipped []int
}

func (s *recordingSink) OnItem(index int, item Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, index)
}

func (s *recordingSink) OnSkip(index int, t track.Track, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.skipped = append(s.skipped, index)
}

func (s *recordingSink) snapshot() ([]int, []int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.items...), append([]int(nil), s.skipped...)
}

func makeTracks(n int) []track.Track {
	tracks := make([]track.Track, n)
	for i := range tracks {
		tracks[i] = track.Track{
			ID:        fmt.Sprintf("t%d", i),
			StreamURL: fmt.Sprintf("https://cdn.example.com/t%d/master.m3u8", i),
			Duration:  3 * time.Minute,
		}
	}
	return tracks
}

func TestBuilder_PreservesOrder(t *testing.T) {
	resolver := &fakeResolver{}
	builder := NewBuilder(resolver, Config{BatchSize: 4, Workers: 4})
	sink := &recordingSink{}

	session := builder.Build(context.Background(), makeTracks(11), sink)
	<-session.Done()

	items, skipped := sink.snapshot()
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, items)
	assert.Empty(t, skipped)
}

func TestBuilder_FirstItemDeliveredBeforeReturn(t *testing.T) {
	resolver := &fakeResolver{}
	builder := NewBuilder(resolver, Config{BatchSize: 2, Workers: 2})
	sink := &recordingSink{}

	session := builder.Build(context.Background(), makeTracks(5), sink)

	// Build returns only after tracks[0] was handed to the sink.
	items, _ := sink.snapshot()
	require.NotEmpty(t, items)
	assert.Equal(t, 0, items[0])

	<-session.Done()
}

func TestBuilder_SkipsFailedTracks(t *testing.T) {
	resolver := &fakeResolver{fail: map[string]bool{"t2": true, "t5": true}}
	builder := NewBuilder(resolver, Config{BatchSize: 3, Workers: 3})
	sink := &recordingSink{}

	session := builder.Build(context.Background(), makeTracks(7), sink)
	<-session.Done()

	items, skipped := sink.snapshot()
	assert.Equal(t, []int{0, 1, 3, 4, 6}, items)
	assert.Equal(t, []int{2, 5}, skipped)
}

func TestBuilder_FailedFirstTrackIsSkipped(t *testing.T) {
	resolver := &fakeResolver{fail: map[string]bool{"t0": true}}
	builder := NewBuilder(resolver, Config{BatchSize: 3, Workers: 3})
	sink := &recordingSink{}

	session := builder.Build(context.Background(), makeTracks(3), sink)
	<-session.Done()

	items, skipped := sink.snapshot()
	assert.Equal(t, []int{1, 2}, items)
	assert.Equal(t, []int{0}, skipped)
}

func TestBuilder_WholeBatchFailureSkipsAndContinues(t *testing.T) {
	// Tracks 3 and 4 form the second batch; both fail.
	resolver := &fakeResolver{fail: map[string]bool{"t3": true, "t4": true}}
	builder := NewBuilder(resolver, Config{BatchSize: 2, Workers: 2})
	sink := &recordingSink{}

	session := builder.Build(context.Background(), makeTracks(7), sink)
	<-session.Done()

	items, skipped := sink.snapshot()
	// Batch [3,5) failed entirely; later batches are unaffected.
	assert.Equal(t, []int{0, 1, 2, 5, 6}, items)
	assert.Equal(t, []int{3, 4}, skipped)
}

func TestBuilder_CancellationStopsBackgroundWork(t *testing.T) {
	resolver := &fakeResolver{delay: 20 * time.Millisecond}
	builder := NewBuilder(resolver, Config{BatchSize: 2, Workers: 2})
	sink := &recordingSink{}

	ctx, cancel := context.WithCancel(context.Background())
	session := builder.Build(ctx, makeTracks(40), sink)
	cancel()

	select {
	case <-session.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("builder did not stop after cancellation")
	}

	items, _ := sink.snapshot()
	// The synchronously resolved first item is there; the cancelled batches
	// produced at most one in-flight batch worth of items.
	require.NotEmpty(t, items)
	assert.Less(t, len(items), 40)
}

func TestBuilder_EmptyTrackList(t *testing.T) {
	builder := NewBuilder(&fakeResolver{}, Config{})
	sink := &recordingSink{}

	session := builder.Build(context.Background(), nil, sink)
	<-session.Done()

	items, skipped := sink.snapshot()
	assert.Empty(t, items)
	assert.Empty(t, skipped)
}
