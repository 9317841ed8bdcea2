package player

import (
	"github.com/okkei/cueplay/internal/domain/playlist"
	"github.com/okkei/cueplay/internal/domain/track"
)

// EventType represents a playback event type.
type EventType int

const (
	EventPlaylistQueued    EventType = iota // A playlist was accepted for playback
	EventStateChanged                       // Playback state changed
	EventProgressUpdated                    // A new progress sample was published
	EventPlaylistCompleted                  // The queue played through to the end
	EventNetworkStalled                     // Transient buffering, no state change
	EventNetworkFailure                     // Unrecoverable load failure, playback paused
	EventErrorOccurred                      // Non-fatal engine error (empty playlist, skipped track)
	EventVolumeChanged                      // Volume was updated
)

// String returns the string representation of the event type.
func (e EventType) String() string {
	switch e {
	case EventPlaylistQueued:
		return "playlist_queued"
	case EventStateChanged:
		return "state_changed"
	case EventProgressUpdated:
		return "progress_updated"
	case EventPlaylistCompleted:
		return "playlist_completed"
	case EventNetworkStalled:
		return "network_stalled"
	case EventNetworkFailure:
		return "network_failure"
	case EventErrorOccurred:
		return "error_occurred"
	case EventVolumeChanged:
		return "volume_changed"
	default:
		return "unknown"
	}
}

// Event is a playback/UI event. The payload fields are populated per type:
// Playlist for PlaylistQueued, Status for StateChanged, Progress for
// ProgressUpdated, Err for NetworkFailure/ErrorOccurred, Volume for
// VolumeChanged.
type Event struct {
	Type     EventType
	Playlist *playlist.Playlist
	Status   Status
	Progress Progress
	Err      error
	Volume   float64
}

// RoyaltyEventType represents a royalty tracking event type.
type RoyaltyEventType int

const (
	RoyaltyTrackStarted  RoyaltyEventType = iota // Playback of a track began
	RoyaltyTrackProgress                         // Periodic progress within a track
	RoyaltyTrackFinished                         // A track played to its end
)

// String returns the string representation of the royalty event type.
func (e RoyaltyEventType) String() string {
	switch e {
	case RoyaltyTrackStarted:
		return "track_started"
	case RoyaltyTrackProgress:
		return "track_progress"
	case RoyaltyTrackFinished:
		return "track_finished"
	default:
		return "unknown"
	}
}

// RoyaltyEvent is an analytics-only signal. It is a stream independent from
// Event and is never used to drive playback logic.
type RoyaltyEvent struct {
	Type     RoyaltyEventType
	Track    track.Track
	Fraction float64 // Track completion fraction, set for TrackProgress
}
