package player

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/okkei/cueplay/internal/app/events"
	"github.com/okkei/cueplay/internal/app/queue"
	"github.com/okkei/cueplay/internal/domain/playlist"
	"github.com/okkei/cueplay/internal/domain/track"
)

// Errors
var (
	ErrEmptyPlaylist        = errors.New("playlist has no tracks")
	ErrItemResolutionFailed = errors.New("item resolution failed")
	ErrNoPlayableItems      = errors.New("no playable items in playlist")
)

// Config holds player configuration.
type Config struct {
	QueueBatchSize int     // Tracks resolved per prefetch batch
	QueueWorkers   int     // Concurrent resolutions within a batch
	EventBuffer    int     // Per-subscriber event channel buffer
	Volume         float64 // Initial volume in [0,1]
}

// queuedItem binds a resolved item to its original playlist position.
// The renderer queue is an indexed array; "current" is always a plain index
// into it, never an identity lookup, so repeated tracks are unambiguous.
type queuedItem struct {
	trackIndex int
	item       queue.Item
}

// playSession is one playback session: the prefetch work belonging to a
// single Play call. A new Play or a Stop cancels exactly this session's
// background work and nothing else.
type playSession struct {
	cancel          context.CancelFunc
	build           *queue.Session
	ready           chan struct{} // closed once build is set
	rendererStarted bool
}

// Player is the playback state machine. All command handling and all
// renderer-signal handling is serialized on one mutex, so commands and
// signals never interleave mid-mutation. Background prefetch results are
// applied under the same mutex and guarded by session identity.
type Player struct {
	mu sync.Mutex

	renderer Renderer
	builder  *queue.Builder

	events  *events.Bus[Event]
	royalty *events.Bus[RoyaltyEvent]

	state    State
	current  *track.Track
	trackIdx int // playlist index of the current track
	rpos     int // renderer queue position of the current item
	playlist *playlist.Playlist
	queued   []queuedItem
	repeat   RepeatMode
	volume   float64

	tracker       *progressTracker
	progress      Progress
	lastPublished *Progress

	session *playSession
	done    chan struct{}
	closed  bool
}

// New creates a player around a renderer and a media item resolver.
func New(renderer Renderer, resolver queue.Resolver, cfg Config) *Player {
	volume := cfg.Volume
	if volume < 0 || volume > 1 {
		volume = 1.0
	}

	p := &Player{
		renderer: renderer,
		builder: queue.NewBuilder(resolver, queue.Config{
			BatchSize: cfg.QueueBatchSize,
			Workers:   cfg.QueueWorkers,
		}),
		events:   events.NewBus[Event](cfg.EventBuffer),
		royalty:  events.NewBus[RoyaltyEvent](cfg.EventBuffer),
		state:    StateIdle,
		trackIdx: -1,
		rpos:     -1,
		volume:   volume,
		done:     make(chan struct{}),
	}

	go p.run()
	return p
}

// EventSubscription is a subscription to the playback/UI event stream.
type EventSubscription = events.Subscription[Event]

// RoyaltySubscription is a subscription to the royalty tracking stream.
type RoyaltySubscription = events.Subscription[RoyaltyEvent]

// SubscribeEvents returns a subscription to the playback/UI event stream.
func (p *Player) SubscribeEvents() *events.Subscription[Event] {
	return p.events.Subscribe()
}

// UnsubscribeEvents removes a playback event subscription.
func (p *Player) UnsubscribeEvents(sub *events.Subscription[Event]) {
	p.events.Unsubscribe(sub)
}

// SubscribeRoyalty returns a subscription to the royalty tracking stream.
func (p *Player) SubscribeRoyalty() *events.Subscription[RoyaltyEvent] {
	return p.royalty.Subscribe()
}

// UnsubscribeRoyalty removes a royalty event subscription.
func (p *Player) UnsubscribeRoyalty(sub *events.Subscription[RoyaltyEvent]) {
	p.royalty.Unsubscribe(sub)
}

// Play starts playback of a playlist, replacing any existing session.
// It returns once the first track has been resolved (or skipped); the
// remainder of the queue streams in from the background. Failures are
// surfaced on the event stream, never returned.
func (p *Player) Play(pl *playlist.Playlist) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	old := p.detachSessionLocked()
	p.clearQueueLocked()
	p.mu.Unlock()

	// Cancellation of the superseded session must be acknowledged before
	// new work starts.
	waitSession(old)

	p.mu.Lock()
	if pl == nil || pl.IsEmpty() {
		zlog.Warn().Msg("player: play rejected, playlist is empty")
		p.setStatusLocked(Status{State: StateStopped}, false)
		p.resetProgressLocked(false)
		p.publishLocked(Event{Type: EventErrorOccurred, Err: ErrEmptyPlaylist})
		p.mu.Unlock()
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &playSession{cancel: cancel, ready: make(chan struct{})}
	p.session = s
	p.playlist = pl
	p.tracker = newProgressTracker(pl.Tracks)
	p.resetProgressLocked(false)
	p.renderer.SetVolume(p.volume)

	first := &pl.Tracks[0]
	zlog.Info().Msgf("player: starting playlist: id=%s name=%s tracks=%d", pl.ID, pl.Name, pl.Len())
	p.setStatusLocked(Status{State: StatePlaying, Track: first, Index: 0}, false)
	p.publishLocked(Event{Type: EventPlaylistQueued, Playlist: pl})
	tracks := pl.Tracks
	p.mu.Unlock()

	// Fast path: suspends until the first item is resolved.
	s.build = p.builder.Build(ctx, tracks, &buildSink{p: p, session: s})
	close(s.ready)

	go func() {
		<-s.build.Done()
		p.onBuildDone(s)
	}()
}

// Pause pauses playback. Valid only while playing; a no-op otherwise.
func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pauseLocked()
}

func (p *Player) pauseLocked() {
	if p.closed || p.state != StatePlaying {
		return
	}
	p.renderer.Pause()
	p.setStatusLocked(Status{State: StatePaused, Track: p.current, Index: p.trackIdx}, false)
}

// Resume resumes paused playback. Valid only while paused; a no-op otherwise.
func (p *Player) Resume() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed || p.state != StatePaused {
		return
	}
	p.renderer.Play()
	p.setStatusLocked(Status{State: StatePlaying, Track: p.current, Index: p.trackIdx}, false)
}

// Stop stops playback from any state: in-flight prefetch is cancelled, the
// queue is cleared, progress is reset to zero. Stop returns only after the
// cancellation of background work has been acknowledged.
func (p *Player) Stop() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	old := p.detachSessionLocked()
	p.renderer.Pause()
	p.clearQueueLocked()
	p.setStatusLocked(Status{State: StateStopped}, false)
	p.resetProgressLocked(true)
	p.mu.Unlock()

	waitSession(old)
}

// SetRepeatMode updates the repeat mode. Pure state update: no effect on
// current playback, persists across play/pause/stop and playlist changes.
func (p *Player) SetRepeatMode(mode RepeatMode) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.repeat = mode
}

// SetVolume applies a volume in [0,1]. Out-of-range values are rejected:
// the previous volume is retained and no event is emitted.
func (p *Player) SetVolume(v float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if v < 0 || v > 1 {
		zlog.Warn().Msgf("player: rejecting out-of-range volume: %v", v)
		return
	}
	p.volume = v
	p.renderer.SetVolume(v)
	p.publishLocked(Event{Type: EventVolumeChanged, Volume: v})
}

// State returns the current playback state.
func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Status returns the full observable playback status.
func (p *Player) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.statusLocked()
}

// IsPlaying reports whether the player is in the playing state.
func (p *Player) IsPlaying() bool {
	return p.State() == StatePlaying
}

// Progress returns the last computed progress sample.
func (p *Player) Progress() Progress {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.progress
}

// CurrentTrack returns the current track, or nil outside active states.
func (p *Player) CurrentTrack() *track.Track {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// CurrentPlaylist returns the most recently played playlist, or nil.
func (p *Player) CurrentPlaylist() *playlist.Playlist {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playlist
}

// RepeatMode returns the current repeat mode.
func (p *Player) RepeatMode() RepeatMode {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.repeat
}

// Volume returns the current volume.
func (p *Player) Volume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

// Close shuts the player down: cancels any session, stops the signal pump
// and closes both event streams. The player is not commandable afterwards.
func (p *Player) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	old := p.detachSessionLocked()
	close(p.done)
	p.mu.Unlock()

	waitSession(old)
	p.events.Close()
	p.royalty.Close()
	return nil
}

// run is the signal pump: it serializes renderer signals onto the
// coordinator mutex.
func (p *Player) run() {
	sigs := p.renderer.Signals()
	for {
		select {
		case <-p.done:
			return
		case sig, ok := <-sigs:
			if !ok {
				return
			}
			p.handleSignal(sig)
		}
	}
}

func (p *Player) handleSignal(sig Signal) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed || p.session == nil {
		// Stale signal from a cleared session.
		return
	}

	switch sig.Type {
	case SignalTimeUpdated:
		p.handleTimeUpdatedLocked(sig.Elapsed)
	case SignalCurrentItemChanged:
		p.handleCurrentChangedLocked(sig.Index)
	case SignalItemFinished:
		p.handleItemFinishedLocked(sig.Index)
	case SignalStalled:
		zlog.Debug().Msg("player: renderer stalled")
		p.publishLocked(Event{Type: EventNetworkStalled})
	case SignalFailed:
		zlog.Warn().Msgf("player: renderer failure, pausing: error=%v", sig.Err)
		p.publishLocked(Event{Type: EventNetworkFailure, Err: sig.Err})
		p.pauseLocked()
	}
}

func (p *Player) handleTimeUpdatedLocked(elapsed time.Duration) {
	if p.state != StatePlaying {
		return
	}
	idx := p.trackIndexAtLocked(p.rpos)
	if idx < 0 {
		return
	}
	p.publishProgressLocked(p.tracker.sample(idx, elapsed))
}

func (p *Player) handleCurrentChangedLocked(rpos int) {
	idx := p.trackIndexAtLocked(rpos)
	if idx < 0 {
		return
	}
	p.rpos = rpos
	tr := &p.playlist.Tracks[idx]

	state := p.state
	if !state.IsActive() {
		state = StatePlaying
	}

	p.royalty.Publish(RoyaltyEvent{Type: RoyaltyTrackStarted, Track: *tr})
	p.setStatusLocked(Status{State: state, Track: tr, Index: idx}, false)
	p.publishProgressLocked(p.tracker.sample(idx, 0))
}

func (p *Player) handleItemFinishedLocked(rpos int) {
	idx := p.trackIndexAtLocked(rpos)
	if idx < 0 {
		return
	}
	finished := p.playlist.Tracks[idx]
	p.royalty.Publish(RoyaltyEvent{Type: RoyaltyTrackFinished, Track: finished})

	isLast := rpos >= len(p.queued)-1
	decision := Decide(isLast, p.repeat)
	zlog.Debug().Msgf("player: track finished: track=%s index=%d last=%v decision=%s",
		finished.ID, idx, isLast, decision)

	switch decision {
	case DecisionAdvance:
		// The renderer advances on its own; the next current-item-changed
		// signal carries the new position.
	case DecisionStop:
		p.publishLocked(Event{Type: EventPlaylistCompleted})
		p.completeLocked()
	case DecisionRestartQueue:
		p.publishLocked(Event{Type: EventPlaylistCompleted})
		p.restartQueueLocked()
	}
}

// completeLocked ends the session after the queue played through.
func (p *Player) completeLocked() {
	p.detachSessionLocked()
	p.renderer.RemoveAll()
	p.queued = nil
	p.rpos = -1
	p.setStatusLocked(Status{State: StateStopped}, false)
	p.resetProgressLocked(true)
}

// restartQueueLocked re-issues the already resolved items from index 0.
// Track metadata is not re-fetched and the repeat mode is untouched.
func (p *Player) restartQueueLocked() {
	if len(p.queued) == 0 {
		p.completeLocked()
		return
	}

	p.renderer.RemoveAll()
	for _, q := range p.queued {
		p.renderer.Enqueue(q.item)
	}
	p.renderer.Play()

	p.rpos = 0
	idx := p.queued[0].trackIndex
	first := &p.playlist.Tracks[idx]
	p.resetProgressLocked(false)
	p.setStatusLocked(Status{State: StatePlaying, Track: first, Index: idx}, true)
}

// onBuildDone handles prefetch completion for a session. If resolution
// produced no playable items at all, the session cannot ever play: report
// and stop rather than staying in a playing state forever.
func (p *Player) onBuildDone(s *playSession) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed || p.session != s {
		return
	}
	if len(p.queued) > 0 {
		return
	}

	zlog.Warn().Msg("player: no items could be resolved, stopping session")
	p.publishLocked(Event{Type: EventErrorOccurred, Err: ErrNoPlayableItems})
	p.detachSessionLocked()
	p.setStatusLocked(Status{State: StateStopped}, false)
	p.resetProgressLocked(true)
}

// detachSessionLocked cancels and removes the active session, if any.
// Callers wait for the returned session outside the lock.
func (p *Player) detachSessionLocked() *playSession {
	s := p.session
	if s == nil {
		return nil
	}
	p.session = nil
	s.cancel()
	return s
}

// waitSession blocks until a detached session's background work has exited.
func waitSession(s *playSession) {
	if s == nil {
		return
	}
	<-s.ready
	<-s.build.Done()
}

func (p *Player) clearQueueLocked() {
	p.renderer.RemoveAll()
	p.queued = nil
	p.rpos = -1
}

func (p *Player) trackIndexAtLocked(rpos int) int {
	if rpos < 0 || rpos >= len(p.queued) {
		return -1
	}
	return p.queued[rpos].trackIndex
}

func (p *Player) statusLocked() Status {
	return Status{State: p.state, Track: p.current, Index: p.trackIdx}
}

// setStatusLocked applies a status and mirrors the mutation onto the event
// stream. Unchanged statuses are suppressed unless force is set.
func (p *Player) setStatusLocked(st Status, force bool) {
	prior := p.statusLocked()
	p.state = st.State
	p.current = st.Track
	p.trackIdx = st.Index
	if st.Track == nil {
		p.trackIdx = -1
		st.Index = -1
	}
	if force || !st.Equal(prior) {
		p.publishLocked(Event{Type: EventStateChanged, Status: st})
	}
}

// publishProgressLocked publishes a sample only when it differs from the
// last published one, so the event stream is not flooded at the sampling
// cadence.
func (p *Player) publishProgressLocked(sample Progress) {
	if p.lastPublished != nil && sample == *p.lastPublished {
		return
	}
	p.progress = sample
	published := sample
	p.lastPublished = &published
	p.publishLocked(Event{Type: EventProgressUpdated, Progress: sample})

	if p.current != nil {
		p.royalty.Publish(RoyaltyEvent{
			Type:     RoyaltyTrackProgress,
			Track:    *p.current,
			Fraction: sample.TrackFraction(),
		})
	}
}

// resetProgressLocked zeroes the progress. On stop the zero sample is
// force-published, bypassing last-sample suppression.
func (p *Player) resetProgressLocked(publish bool) {
	p.progress = Progress{}
	p.lastPublished = nil
	if publish {
		zero := Progress{}
		p.lastPublished = &zero
		p.publishLocked(Event{Type: EventProgressUpdated, Progress: zero})
	}
}

func (p *Player) publishLocked(e Event) {
	p.events.Publish(e)
}

// buildSink marshals queue builder results onto the coordinator. Every
// callback is guarded by session identity so a superseded session can never
// touch current state.
type buildSink struct {
	p       *Player
	session *playSession
}

func (s *buildSink) OnItem(index int, item queue.Item) {
	p := s.p
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.session != s.session {
		return
	}

	p.queued = append(p.queued, queuedItem{trackIndex: index, item: item})
	p.renderer.Enqueue(item)

	if !s.session.rendererStarted {
		s.session.rendererStarted = true
		if p.state == StatePlaying {
			p.renderer.Play()
		}
	}
}

func (s *buildSink) OnSkip(index int, t track.Track, err error) {
	p := s.p
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.session != s.session {
		return
	}

	zlog.Warn().Msgf("player: skipping unresolvable track: track=%s index=%d error=%v", t.ID, index, err)
	p.publishLocked(Event{
		Type: EventErrorOccurred,
		Err:  errors.Mark(errors.Wrapf(err, "track %s (index %d)", t.ID, index), ErrItemResolutionFailed),
	})
}
