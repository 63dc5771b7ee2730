package catalogue

import (
	"context"

	"github.com/rs/zerolog"
)

// CacheOptions configures the optional warm/shared caches layered in front of
// a CatalogueLoader. A zero value disables both and Load behaves exactly as
// Load(ctx, source, loader).
type CacheOptions struct {
	Warm   *WarmCache
	Shared *SharedCache
	Log    zerolog.Logger
}

// LoadWithCache builds the catalogue for a file-backed source, checking the
// shared cache, then the on-disk warm cache, before falling back to loader.
// Any cache miss or error is non-fatal; the only fatal outcome is the
// underlying loader itself failing or yielding an empty catalogue.
func LoadWithCache(ctx context.Context, sourcePath string, loader Loader, opts CacheOptions) (*Catalogue, error) {
	key, hashErr := HashFile(sourcePath)

	if hashErr == nil {
		if opts.Shared != nil {
			if events, ok := opts.Shared.Get(ctx, key); ok {
				opts.Log.Info().Str("source", sourcePath).Msg("catalogue loaded from shared cache")
				return FromSorted(events), nil
			}
		}
		if opts.Warm != nil {
			if events, ok := opts.Warm.Get(key); ok {
				opts.Log.Info().Str("source", sourcePath).Msg("catalogue loaded from warm cache")
				cat := FromSorted(events)
				if opts.Shared != nil {
					opts.Shared.Put(ctx, key, cat.Events())
				}
				return cat, nil
			}
		}
	}

	cat, err := Load(ctx, sourcePath, loader)
	if err != nil {
		return nil, err
	}

	if hashErr == nil {
		events := cat.Events()
		if opts.Warm != nil {
			if err := opts.Warm.Put(key, events); err != nil {
				opts.Log.Warn().Err(err).Msg("catalogue warm cache write failed")
			}
		}
		if opts.Shared != nil {
			opts.Shared.Put(ctx, key, events)
		}
	}

	return cat, nil
}
