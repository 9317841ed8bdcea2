package player

// RepeatMode defines the repeat behavior applied on track end.
// The mode persists across play/pause/stop cycles and across playlist
// changes until explicitly changed.
type RepeatMode int

const (
	RepeatNone RepeatMode = iota // Stop after the last track
	RepeatAll                    // Restart the queue after the last track
)

// String returns the repeat mode name.
func (m RepeatMode) String() string {
	switch m {
	case RepeatNone:
		return "none"
	case RepeatAll:
		return "all"
	default:
		return "unknown"
	}
}

// Decision is the outcome of the repeat policy on track end.
type Decision int

const (
	DecisionAdvance      Decision = iota // Let the renderer move to the next item
	DecisionStop                         // End of queue, stop playback
	DecisionRestartQueue                 // End of queue, restart from index 0
)

// String returns the decision name.
func (d Decision) String() string {
	switch d {
	case DecisionAdvance:
		return "advance"
	case DecisionStop:
		return "stop"
	case DecisionRestartQueue:
		return "restart_queue"
	default:
		return "unknown"
	}
}

// Decide applies the repeat policy for a finished track.
func Decide(isLastTrack bool, mode RepeatMode) Decision {
	if !isLastTrack {
		return DecisionAdvance
	}
	if mode == RepeatAll {
		return DecisionRestartQueue
	}
	return DecisionStop
}
