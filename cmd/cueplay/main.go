// Package main provides the cueplay entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"
	"golang.org/x/oauth2"

	"github.com/okkei/cueplay/internal/app/player"
	"github.com/okkei/cueplay/internal/infra/catalogue"
	"github.com/okkei/cueplay/internal/infra/config"
	"github.com/okkei/cueplay/internal/infra/logger"
	"github.com/okkei/cueplay/internal/infra/media"
)

var (
	app        = kingpin.New("cueplay", "cueplay playlist playback engine")
	configPath = app.Flag("config", "Path to config file").Default("config/cueplay.yaml").String()
	verbose    = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()
	logfile    = app.Flag("logfile", "Path to log file (default: stdout)").String()

	// play command (default)
	playCmd    = app.Command("play", "Play a playlist (default)").Default()
	playlistID = playCmd.Flag("playlist", "Catalogue playlist ID").Required().String()
	repeatMode = playCmd.Flag("repeat", "Repeat mode").Default("none").Enum("none", "all")

	// list-resolvers command
	listResolversCmd = app.Command("list-resolvers", "List available media resolvers and exit")
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	if command == listResolversCmd.FullCommand() {
		printResolvers()
		return
	}

	// Initialize logger
	loggerConfig := logger.Config{
		Output: "stdout",
		Level:  "info",
	}
	if *verbose {
		loggerConfig.Level = "debug"
	}
	if *logfile != "" {
		loggerConfig.Output = *logfile
	}
	if err := logger.Init(loggerConfig); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	zlog.Info().Msgf("Loading config from %s", *configPath)
	cfg, err := config.Load(*configPath)
	if err != nil {
		zlog.Fatal().Msgf("Failed to load config: %v", err)
	}

	if err := run(cfg); err != nil {
		zlog.Error().Msgf("Playback error: %v", err)
		os.Exit(1)
	}
}

// run executes the main playback logic. Using a separate function ensures
// defer statements are executed even when returning with an error.
func run(cfg *config.Config) error {
	ctx := context.Background()

	// Create catalogue client
	catCfg := catalogue.Config{
		BaseURL: cfg.Catalogue.BaseURL,
		Timeout: cfg.Catalogue.Timeout(),
	}
	if cfg.Catalogue.Token != "" {
		catCfg.TokenSource = oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Catalogue.Token})
	}
	cat, err := catalogue.New(ctx, catCfg)
	if err != nil {
		return fmt.Errorf("failed to create catalogue client: %w", err)
	}

	zlog.Info().Msgf("Fetching playlist: id=%s", *playlistID)
	pl, err := cat.GetPlaylist(ctx, *playlistID)
	if err != nil {
		return fmt.Errorf("failed to fetch playlist: %w", err)
	}

	// Create media resolver chain from config
	resolver, err := media.NewResolverFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("failed to create resolver: %w", err)
	}

	renderer := player.NewSimRenderer(cfg.Playback.SampleInterval())
	defer renderer.Close()

	p := player.New(renderer, resolver, player.Config{
		QueueBatchSize: cfg.Playback.BatchSize,
		QueueWorkers:   cfg.Playback.Workers,
		Volume:         cfg.Playback.Volume,
	})
	defer p.Close()

	if *repeatMode == "all" {
		p.SetRepeatMode(player.RepeatAll)
	}

	events := p.SubscribeEvents()
	defer p.UnsubscribeEvents(events)
	royalty := p.SubscribeRoyalty()
	defer p.UnsubscribeRoyalty(royalty)

	// Playback ends when the engine returns to Stopped
	stoppedCh := make(chan struct{})
	go consumeEvents(events, stoppedCh)
	go consumeRoyalty(royalty)

	zlog.Info().Msgf("Starting playback: playlist=%s tracks=%d repeat=%s", pl.Name, pl.Len(), *repeatMode)
	p.Play(pl)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		zlog.Info().Msg("Received shutdown signal...")
		p.Stop()
	case <-stoppedCh:
		zlog.Info().Msg("Playback finished")
	}

	return nil
}

// consumeEvents logs playback events and signals when playback stops.
func consumeEvents(sub *player.EventSubscription, stoppedCh chan<- struct{}) {
	sawPlayback := false
	for e := range sub.C {
		switch e.Type {
		case player.EventPlaylistQueued:
			zlog.Info().Msgf("Event: playlist queued: name=%s tracks=%d", e.Playlist.Name, e.Playlist.Len())
		case player.EventStateChanged:
			name := ""
			if e.Status.Track != nil {
				name = e.Status.Track.Name
			}
			zlog.Info().Msgf("Event: state changed: state=%s track=%s index=%d", e.Status.State, name, e.Status.Index)
			if e.Status.State == player.StatePlaying {
				sawPlayback = true
			}
			if e.Status.State == player.StateStopped && sawPlayback {
				close(stoppedCh)
				return
			}
		case player.EventProgressUpdated:
			zlog.Debug().Msgf("Event: progress: track=%d elapsed=%s playlist=%.1f%%",
				e.Progress.TrackIndex, e.Progress.TrackElapsed, e.Progress.PlaylistFraction()*100)
		case player.EventPlaylistCompleted:
			zlog.Info().Msg("Event: playlist completed")
		case player.EventNetworkStalled:
			zlog.Warn().Msg("Event: network stalled, buffering")
		case player.EventNetworkFailure:
			zlog.Error().Msgf("Event: network failure: %v", e.Err)
		case player.EventErrorOccurred:
			zlog.Warn().Msgf("Event: error: %v", e.Err)
		case player.EventVolumeChanged:
			zlog.Info().Msgf("Event: volume changed: volume=%.2f", e.Volume)
		}
	}
}

// consumeRoyalty logs royalty tracking events.
func consumeRoyalty(sub *player.RoyaltySubscription) {
	for e := range sub.C {
		switch e.Type {
		case player.RoyaltyTrackProgress:
			zlog.Debug().Msgf("Royalty: track progress: id=%s fraction=%.2f", e.Track.ID, e.Fraction)
		default:
			zlog.Info().Msgf("Royalty: %s: id=%s name=%s", e.Type, e.Track.ID, e.Track.Name)
		}
	}
}

// printResolvers prints available media resolver types.
func printResolvers() {
	fmt.Println("Available Resolvers:")
	for _, name := range media.ResolverTypes() {
		fmt.Printf("  %s\n", name)
	}
}
