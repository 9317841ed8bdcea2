// Package catalogue provides a client for the catalogue API, the external
// collaborator supplying playlist and track metadata.
package catalogue

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
	"golang.org/x/oauth2"

	"github.com/okkei/cueplay/internal/domain/playlist"
	"github.com/okkei/cueplay/internal/domain/track"
)

// Client is a catalogue API client.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Config represents catalogue client configuration.
type Config struct {
	BaseURL string
	Timeout time.Duration
	// TokenSource supplies bearer tokens. Token refresh is owned by the
	// external auth collaborator; nil means unauthenticated requests.
	TokenSource oauth2.TokenSource
}

// New creates a catalogue client.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("catalogue base URL is required")
	}

	var httpClient *http.Client
	if cfg.TokenSource != nil {
		httpClient = oauth2.NewClient(ctx, cfg.TokenSource)
	} else {
		httpClient = &http.Client{}
	}
	if cfg.Timeout > 0 {
		httpClient.Timeout = cfg.Timeout
	}

	return &Client{
		baseURL:    cfg.BaseURL,
		httpClient: httpClient,
	}, nil
}

// playlistDoc is the wire representation of a playlist with its songs.
type playlistDoc struct {
	ID     string     `json:"id"`
	Name   string     `json:"name"`
	Tags   []string   `json:"tags"`
	Tracks []trackDoc `json:"tracks"`
}

type trackDoc struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Artists     []string `json:"artists"`
	StreamURL   string   `json:"stream_url"`
	FileURL     string   `json:"file_url"`
	DurationSec float64  `json:"duration_sec"`
}

// GetPlaylist retrieves a playlist with its full track list.
func (c *Client) GetPlaylist(ctx context.Context, id string) (*playlist.Playlist, error) {
	if id == "" {
		return nil, errors.New("playlist id is required")
	}

	endpoint := fmt.Sprintf("%s/playlists/%s", c.baseURL, url.PathEscape(id))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "catalogue request failed")
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, errors.Newf("playlist not found: %s", id)
	case resp.StatusCode != http.StatusOK:
		return nil, errors.Newf("unexpected status %d from catalogue", resp.StatusCode)
	}

	var doc playlistDoc
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, errors.Wrap(err, "failed to decode playlist")
	}

	pl := convertPlaylist(doc)
	zlog.Debug().Msgf("catalogue: fetched playlist: id=%s name=%s tracks=%d", pl.ID, pl.Name, pl.Len())
	return pl, nil
}

func convertPlaylist(doc playlistDoc) *playlist.Playlist {
	pl := &playlist.Playlist{
		ID:     doc.ID,
		Name:   doc.Name,
		Tags:   doc.Tags,
		Tracks: make([]track.Track, 0, len(doc.Tracks)),
	}
	for _, td := range doc.Tracks {
		pl.Tracks = append(pl.Tracks, track.Track{
			ID:        td.ID,
			Name:      td.Name,
			Artists:   td.Artists,
			StreamURL: td.StreamURL,
			FileURL:   td.FileURL,
			Duration:  time.Duration(td.DurationSec * float64(time.Second)),
		})
	}
	return pl
}
