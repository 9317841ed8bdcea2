package media

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/okkei/cueplay/internal/app/queue"
	"github.com/okkei/cueplay/internal/domain/track"
)

// StaticOptions holds static resolver settings.
type StaticOptions struct {
	MimeType string `mapstructure:"mime_type"`
}

// Verify StaticResolver implements queue.Resolver at compile time.
var _ queue.Resolver = (*StaticResolver)(nil)

// StaticResolver maps tracks directly to items without any I/O. Useful for
// offline runs and local fixtures where locators are known to be valid.
type StaticResolver struct {
	mimeType string
}

// NewStaticResolver creates a static resolver.
func NewStaticResolver(opts StaticOptions) *StaticResolver {
	return &StaticResolver{mimeType: opts.MimeType}
}

// Name returns the resolver name used in config.
func (r *StaticResolver) Name() string { return "static" }

// Resolve returns an item for the track's preferred locator.
func (r *StaticResolver) Resolve(_ context.Context, t track.Track) (queue.Item, error) {
	locators := t.Locators()
	if len(locators) == 0 {
		return queue.Item{}, errors.Wrapf(ErrNoLocator, "track %s", t.ID)
	}
	return queue.Item{
		TrackID:  t.ID,
		MediaURL: locators[0],
		MimeType: r.mimeType,
		Duration: t.Duration,
	}, nil
}
