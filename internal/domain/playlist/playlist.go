// Package playlist provides the Playlist domain entity.
package playlist

import (
	"time"

	"github.com/okkei/cueplay/internal/domain/track"
)

// Playlist represents an ordered, named collection of tracks together with
// its catalogue metadata. Playlists are supplied externally and never mutated
// by the engine.
type Playlist struct {
	ID     string        // Catalogue playlist ID
	Name   string        // Playlist name
	Tags   []string      // Descriptive tags
	Tracks []track.Track // Ordered track list
}

// IsEmpty reports whether the playlist has no tracks.
func (p *Playlist) IsEmpty() bool {
	return len(p.Tracks) == 0
}

// Len returns the number of tracks.
func (p *Playlist) Len() int {
	return len(p.Tracks)
}

// TrackIDs returns all track IDs in playlist order.
func (p *Playlist) TrackIDs() []string {
	ids := make([]string, len(p.Tracks))
	for i, t := range p.Tracks {
		ids[i] = t.ID
	}
	return ids
}

// TotalDuration returns the summed duration of all tracks.
func (p *Playlist) TotalDuration() time.Duration {
	var total time.Duration
	for _, t := range p.Tracks {
		total += t.Duration
	}
	return total
}
