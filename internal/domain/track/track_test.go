package track

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTrack_Locators(t *testing.T) {
	tests := []struct {
		name      string
		streamURL string
		fileURL   string
		expected  []string
	}{
		{
			name:      "stream and fallback",
			streamURL: "https://cdn.example.com/t1/master.m3u8",
			fileURL:   "https://cdn.example.com/t1.mp3",
			expected:  []string{"https://cdn.example.com/t1/master.m3u8", "https://cdn.example.com/t1.mp3"},
		},
		{
			name:      "stream only",
			streamURL: "https://cdn.example.com/t1/master.m3u8",
			expected:  []string{"https://cdn.example.com/t1/master.m3u8"},
		},
		{
			name:     "fallback only",
			fileURL:  "https://cdn.example.com/t1.mp3",
			expected: []string{"https://cdn.example.com/t1.mp3"},
		},
		{
			name:     "no locators",
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			track := &Track{
				ID:        "test-id",
				StreamURL: tt.streamURL,
				FileURL:   tt.fileURL,
			}

			assert.Equal(t, tt.expected, track.Locators())
			assert.Equal(t, len(tt.expected) > 0, track.HasLocator())
		})
	}
}

func TestTrack_ArtistLine(t *testing.T) {
	tests := []struct {
		name     string
		artists  []string
		expected string
	}{
		{name: "no artists", artists: nil, expected: ""},
		{name: "single artist", artists: []string{"Alice"}, expected: "Alice"},
		{name: "multiple artists", artists: []string{"Alice", "Bob", "Carol"}, expected: "Alice, Bob, Carol"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			track := &Track{Name: "song", Artists: tt.artists, Duration: 3 * time.Minute}
			assert.Equal(t, tt.expected, track.ArtistLine())
		})
	}
}
