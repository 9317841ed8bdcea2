// Package player provides the playback state machine coordinating queue
// construction, renderer signals, progress sampling and event emission.
package player

import "github.com/okkei/cueplay/internal/domain/track"

// State represents the playback state.
type State int

const (
	StateIdle    State = iota // No session started yet
	StatePlaying              // Track is playing
	StatePaused               // Track is paused
	StateStopped              // Session stopped or completed
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// IsActive returns true while a session holds a current track.
func (s State) IsActive() bool {
	return s == StatePlaying || s == StatePaused
}

// Status is the full observable playback state. Track and Index carry the
// current track only for the active states; they are zero otherwise.
type Status struct {
	State State
	Track *track.Track
	Index int
}

// Equal reports whether two statuses are observably identical.
// Tracks are compared by ID, never by pointer identity.
func (st Status) Equal(other Status) bool {
	if st.State != other.State || st.Index != other.Index {
		return false
	}
	switch {
	case st.Track == nil && other.Track == nil:
		return true
	case st.Track == nil || other.Track == nil:
		return false
	default:
		return st.Track.ID == other.Track.ID
	}
}
