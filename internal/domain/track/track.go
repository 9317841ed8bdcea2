// Package track provides the Track domain entity.
package track

import "time"

// Track represents a single playable audio unit.
// The duration is authoritative catalogue metadata, never derived from the
// renderer at rest. Tracks are supplied externally and never mutated.
type Track struct {
	ID        string        // Catalogue track ID
	Name      string        // Display name
	Artists   []string      // Artist names
	StreamURL string        // Segmented-stream locator (preferred)
	FileURL   string        // Single-file fallback locator (optional)
	Duration  time.Duration // Known track duration
}

// Locators returns the remote audio locators in preference order:
// the segmented stream first, then the single-file fallback.
// Empty locators are omitted.
func (t *Track) Locators() []string {
	locators := make([]string, 0, 2)
	if t.StreamURL != "" {
		locators = append(locators, t.StreamURL)
	}
	if t.FileURL != "" {
		locators = append(locators, t.FileURL)
	}
	return locators
}

// HasLocator reports whether the track carries at least one remote locator.
func (t *Track) HasLocator() bool {
	return t.StreamURL != "" || t.FileURL != ""
}

// ArtistLine returns the artists joined for display.
func (t *Track) ArtistLine() string {
	switch len(t.Artists) {
	case 0:
		return ""
	case 1:
		return t.Artists[0]
	}
	line := t.Artists[0]
	for _, a := range t.Artists[1:] {
		line += ", " + a
	}
	return line
}
