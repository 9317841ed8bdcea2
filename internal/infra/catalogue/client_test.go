package catalogue

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

const playlistBody = `{
  "id": "pl-1",
  "name": "Morning Mix",
  "tags": ["morning", "chill"],
  "tracks": [
    {"id": "t1", "name": "Opener", "artists": ["A", "B"], "stream_url": "https://cdn/t1", "duration_sec": 181.5},
    {"id": "t2", "name": "Closer", "artists": ["C"], "file_url": "file:///t2.mp3", "duration_sec": 240}
  ]
}`

func TestGetPlaylist(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/playlists/pl-1", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(playlistBody))
	}))
	defer srv.Close()

	c, err := New(context.Background(), Config{BaseURL: srv.URL})
	require.NoError(t, err)

	pl, err := c.GetPlaylist(context.Background(), "pl-1")
	require.NoError(t, err)
	assert.Equal(t, "pl-1", pl.ID)
	assert.Equal(t, "Morning Mix", pl.Name)
	assert.Equal(t, []string{"morning", "chill"}, pl.Tags)
	require.Len(t, pl.Tracks, 2)
	assert.Equal(t, "Opener", pl.Tracks[0].Name)
	assert.Equal(t, []string{"A", "B"}, pl.Tracks[0].Artists)
	assert.Equal(t, 181500*time.Millisecond, pl.Tracks[0].Duration)
	assert.Equal(t, "file:///t2.mp3", pl.Tracks[1].FileURL)
	assert.Equal(t, 4*time.Minute, pl.Tracks[1].Duration)
}

func TestGetPlaylistSendsBearerToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(playlistBody))
	}))
	defer srv.Close()

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "secret-token"})
	c, err := New(context.Background(), Config{BaseURL: srv.URL, TokenSource: ts})
	require.NoError(t, err)

	_, err = c.GetPlaylist(context.Background(), "pl-1")
	require.NoError(t, err)
}

func TestGetPlaylistNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c, err := New(context.Background(), Config{BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = c.GetPlaylist(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestGetPlaylistServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c, err := New(context.Background(), Config{BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = c.GetPlaylist(context.Background(), "pl-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 500")
}

func TestGetPlaylistBadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer srv.Close()

	c, err := New(context.Background(), Config{BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = c.GetPlaylist(context.Background(), "pl-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode")
}

func TestNewRequiresBaseURL(t *testing.T) {
	_, err := New(context.Background(), Config{})
	require.Error(t, err)
}

func TestGetPlaylistRequiresID(t *testing.T) {
	c, err := New(context.Background(), Config{BaseURL: "http://localhost"})
	require.NoError(t, err)

	_, err = c.GetPlaylist(context.Background(), "")
	require.Error(t, err)
}
