package player

import (
	"time"

	"github.com/okkei/cueplay/internal/domain/track"
)

// Progress is a snapshot of per-track and per-playlist playback position.
// All durations are non-negative.
type Progress struct {
	TrackElapsed     time.Duration
	TrackDuration    time.Duration
	TrackIndex       int
	PlaylistElapsed  time.Duration
	PlaylistDuration time.Duration
}

// TrackFraction returns the track completion fraction in [0,1].
// A zero or negative duration yields 0.
func (p Progress) TrackFraction() float64 {
	return fraction(p.TrackElapsed, p.TrackDuration)
}

// PlaylistFraction returns the playlist completion fraction in [0,1].
func (p Progress) PlaylistFraction() float64 {
	return fraction(p.PlaylistElapsed, p.PlaylistDuration)
}

func fraction(elapsed, total time.Duration) float64 {
	if total <= 0 {
		return 0
	}
	f := elapsed.Seconds() / total.Seconds()
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// progressTracker derives Progress samples from the authoritative track
// durations of one playlist. Durations come from catalogue metadata, never
// from the renderer, so samples stay consistent before media metadata loads.
type progressTracker struct {
	durations []time.Duration
	prefix    []time.Duration // prefix[i] = sum of durations before index i
	total     time.Duration
}

func newProgressTracker(tracks []track.Track) *progressTracker {
	t := &progressTracker{
		durations: make([]time.Duration, len(tracks)),
		prefix:    make([]time.Duration, len(tracks)),
	}
	for i, tr := range tracks {
		t.prefix[i] = t.total
		t.durations[i] = tr.Duration
		t.total += tr.Duration
	}
	return t
}

// sample computes the progress for the track at index with the given elapsed
// time reported by the renderer. Elapsed time is clamped to the known track
// duration so samples never overshoot playlist totals.
func (t *progressTracker) sample(index int, elapsed time.Duration) Progress {
	if index < 0 || index >= len(t.durations) {
		return Progress{PlaylistDuration: t.total}
	}
	if elapsed < 0 {
		elapsed = 0
	}
	if d := t.durations[index]; elapsed > d {
		elapsed = d
	}
	return Progress{
		TrackElapsed:     elapsed,
		TrackDuration:    t.durations[index],
		TrackIndex:       index,
		PlaylistElapsed:  t.prefix[index] + elapsed,
		PlaylistDuration: t.total,
	}
}
