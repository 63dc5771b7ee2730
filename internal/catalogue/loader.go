package catalogue

import "context"

// Loader yields the ordered (not necessarily sorted) raw rows of a catalogue
// source. Field decoding and BOM handling live entirely behind this
// interface; Catalogue.Load treats it as opaque.
type Loader interface {
	Load(ctx context.Context) ([]RawEvent, error)
}

// LoaderFunc adapts a plain function to Loader.
type LoaderFunc func(ctx context.Context) ([]RawEvent, error)

func (f LoaderFunc) Load(ctx context.Context) ([]RawEvent, error) { return f(ctx) }
