package player

import (
	"sync"
	"time"

	zlog "github.com/rs/zerolog/log"

	"github.com/okkei/cueplay/internal/app/queue"
)

// Verify SimRenderer implements Renderer at compile time.
var _ Renderer = (*SimRenderer)(nil)

// SimRenderer simulates a rendering subsystem against the wall clock: it
// "plays" enqueued items in real time, advancing the playhead between ticks
// and emitting the same signals a real renderer would. It produces no audio.
type SimRenderer struct {
	mu sync.Mutex

	items     []queue.Item
	pos       int
	elapsed   time.Duration
	playing   bool
	announced bool // current item signalled since it became current
	volume    float64
	lastTick  time.Time

	signals chan Signal
	done    chan struct{}
	once    sync.Once
}

// NewSimRenderer creates a simulated renderer emitting time updates at the
// given cadence.
func NewSimRenderer(interval time.Duration) *SimRenderer {
	if interval <= 0 {
		interval = 333 * time.Millisecond
	}
	r := &SimRenderer{
		volume:  1.0,
		signals: make(chan Signal, 64),
		done:    make(chan struct{}),
	}
	go r.loop(interval)
	return r
}

func (r *SimRenderer) Enqueue(item queue.Item) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, item)
}

func (r *SimRenderer) RemoveAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = nil
	r.pos = 0
	r.elapsed = 0
	r.playing = false
	r.announced = false
}

// Play starts or resumes the simulation. Announcing the current item is
// deferred to the loop goroutine: Play may be called with the coordinator
// lock held and must never block on signal delivery.
func (r *SimRenderer) Play() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.playing || r.pos >= len(r.items) {
		return
	}
	r.playing = true
	r.lastTick = toWallTime(time.Now())
}

func (r *SimRenderer) Pause() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.playing = false
}

func (r *SimRenderer) SetVolume(v float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.volume = v
}

func (r *SimRenderer) Signals() <-chan Signal {
	return r.signals
}

// Close stops the simulation loop and closes the signal stream.
func (r *SimRenderer) Close() {
	r.once.Do(func() { close(r.done) })
}

func (r *SimRenderer) loop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	defer close(r.signals)

	for {
		select {
		case <-r.done:
			return
		case <-ticker.C:
			for _, sig := range r.tick() {
				if sig.Type == SignalTimeUpdated {
					r.trySend(sig)
					continue
				}
				r.send(sig)
			}
		}
	}
}

// tick advances the simulated playhead and returns the signals to emit.
// Signals are computed under the lock but sent outside it.
func (r *SimRenderer) tick() []Signal {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.playing || r.pos >= len(r.items) {
		return nil
	}

	var sigs []Signal
	if !r.announced {
		r.announced = true
		sigs = append(sigs, Signal{Type: SignalCurrentItemChanged, Index: r.pos})
	}

	// Wall clock, not tick count: the monotonic clock may drift against
	// the durations the catalogue reports.
	now := toWallTime(time.Now())
	r.elapsed += now.Sub(r.lastTick)
	r.lastTick = now

	current := r.items[r.pos]
	if r.elapsed < current.Duration {
		return append(sigs, Signal{Type: SignalTimeUpdated, Index: r.pos, Elapsed: r.elapsed})
	}

	// Item played to its end.
	sigs = append(sigs, Signal{Type: SignalItemFinished, Index: r.pos})
	zlog.Debug().Msgf("sim: item finished: index=%d track=%s", r.pos, current.TrackID)

	if r.pos+1 < len(r.items) {
		r.pos++
		r.elapsed = 0
		sigs = append(sigs, Signal{Type: SignalCurrentItemChanged, Index: r.pos})
	} else {
		r.playing = false
		r.announced = false
		r.elapsed = 0
	}
	return sigs
}

func (r *SimRenderer) send(sig Signal) {
	select {
	case r.signals <- sig:
	case <-r.done:
	}
}

// trySend drops the signal when the buffer is full. Only used for time
// updates, which are safe to lose.
func (r *SimRenderer) trySend(sig Signal) {
	select {
	case r.signals <- sig:
	default:
	}
}

// toWallTime strips the monotonic clock reading so elapsed time follows the
// wall clock.
func toWallTime(t time.Time) time.Time {
	return time.Unix(t.Unix(), int64(t.Nanosecond()))
}
