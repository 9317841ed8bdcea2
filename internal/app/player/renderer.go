package player

import (
	"time"

	"github.com/okkei/cueplay/internal/app/queue"
)

// SignalType identifies a renderer signal.
type SignalType int

const (
	SignalItemFinished       SignalType = iota // The item at Index played to its end
	SignalCurrentItemChanged                   // The item at Index became current
	SignalTimeUpdated                          // Elapsed carries the playhead within the current item
	SignalStalled                              // Transient buffering condition
	SignalFailed                               // Unrecoverable failure for the current item, Err is set
)

// String returns the signal type name.
func (s SignalType) String() string {
	switch s {
	case SignalItemFinished:
		return "item_finished"
	case SignalCurrentItemChanged:
		return "current_item_changed"
	case SignalTimeUpdated:
		return "time_updated"
	case SignalStalled:
		return "stalled"
	case SignalFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Signal is a typed renderer notification. Index refers to the renderer's
// queue position of the affected item.
type Signal struct {
	Type    SignalType
	Index   int
	Elapsed time.Duration
	Err     error
}

// Renderer is the media-decoding/rendering subsystem the engine drives.
// The engine owns sequencing and state; the renderer owns decoding and the
// playhead. Implementations deliver their signals on a single channel so the
// coordinator consumes them serialized.
type Renderer interface {
	// Enqueue appends an item to the renderer's play queue.
	Enqueue(item queue.Item)
	// RemoveAll clears the renderer's play queue and stops decoding.
	RemoveAll()
	// Play starts or resumes rendering of the current item.
	Play()
	// Pause pauses rendering, keeping the playhead.
	Pause()
	// SetVolume applies a volume in [0,1]. Values are pre-validated by the engine.
	SetVolume(v float64)
	// Signals returns the renderer's signal stream.
	Signals() <-chan Signal
}
