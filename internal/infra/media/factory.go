package media

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/mitchellh/mapstructure"
	zlog "github.com/rs/zerolog/log"

	"github.com/okkei/cueplay/internal/app/queue"
	"github.com/okkei/cueplay/internal/domain/track"
	"github.com/okkei/cueplay/internal/infra/config"
)

// ResolverTypes lists the supported resolver types.
func ResolverTypes() []string {
	return []string{"http", "static"}
}

// NewResolverFromConfig creates a resolver from configuration. Multiple
// entries form a fallback chain tried in order.
func NewResolverFromConfig(cfg *config.Config) (queue.Resolver, error) {
	if len(cfg.Resolvers) == 0 {
		return nil, errors.New("no resolvers configured")
	}

	resolvers := make([]queue.Resolver, 0, len(cfg.Resolvers))
	for i, rcfg := range cfg.Resolvers {
		resolver, err := newResolver(rcfg)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to create resolver (index %d, type %s)", i, rcfg.Type)
		}
		resolvers = append(resolvers, resolver)
		zlog.Info().Msgf("media: registered resolver: index=%d type=%s", i+1, rcfg.Type)
	}

	if len(resolvers) == 1 {
		return resolvers[0], nil
	}
	return NewChain(resolvers), nil
}

func newResolver(rcfg config.ResolverConfig) (queue.Resolver, error) {
	switch rcfg.Type {
	case "http":
		var opts HTTPOptions
		if err := decodeSettings(rcfg.Settings, &opts); err != nil {
			return nil, err
		}
		return NewHTTPResolver(opts), nil

	case "static":
		var opts StaticOptions
		if err := decodeSettings(rcfg.Settings, &opts); err != nil {
			return nil, err
		}
		return NewStaticResolver(opts), nil

	default:
		return nil, errors.Newf("unsupported resolver type: %s", rcfg.Type)
	}
}

func decodeSettings(settings map[string]any, out any) error {
	if settings == nil {
		return nil
	}
	if err := mapstructure.Decode(settings, out); err != nil {
		return errors.Wrap(err, "failed to decode resolver settings")
	}
	return nil
}

// Verify Chain implements queue.Resolver at compile time.
var _ queue.Resolver = (*Chain)(nil)

// Chain tries multiple resolvers in order until one succeeds.
type Chain struct {
	resolvers []queue.Resolver
}

// NewChain creates a resolver chain.
func NewChain(resolvers []queue.Resolver) *Chain {
	return &Chain{resolvers: resolvers}
}

// Name returns the resolver name.
func (c *Chain) Name() string { return "chain" }

// Resolve tries each resolver in order, returning the first success.
func (c *Chain) Resolve(ctx context.Context, t track.Track) (queue.Item, error) {
	var lastErr error
	for _, r := range c.resolvers {
		item, err := r.Resolve(ctx, t)
		if err == nil {
			return item, nil
		}
		zlog.Debug().Msgf("media: resolver failed, trying next: resolver=%s track=%s error=%v", r.Name(), t.ID, err)
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return queue.Item{}, errors.Wrapf(lastErr, "all resolvers failed for track %s", t.ID)
}
