package catalogue

import (
	"context"
	"fmt"
	"sort"
)

// Catalogue is the immutable, process-wide, ordered sequence of events,
// sorted by TimestampMillis ascending with ties broken by id (source order).
// It is built exactly once and never mutated; all reads are lock-free.
type Catalogue struct {
	events []Event
}

// Load consumes a Loader's raw rows, assigns ids 1..N in source order after a
// stable sort by timestamp, and returns an immutable Catalogue. It fails with
// a *LoadError on a loader error or an empty result.
func Load(ctx context.Context, source string, loader Loader) (*Catalogue, error) {
	raw, err := loader.Load(ctx)
	if err != nil {
		return nil, NewLoadError(source, err)
	}
	if len(raw) == 0 {
		return nil, NewLoadError(source, fmt.Errorf("empty catalogue"))
	}

	events := FromRaw(raw)
	return &Catalogue{events: events}, nil
}

// FromRaw performs the stable-sort-then-assign-id step on already-decoded
// rows. Exported so the warm cache and shared cache paths can skip straight
// to a finished Catalogue without re-running loader decoding, and so it can
// be driven directly from already-sorted cached events (FromRaw is stable,
// so re-running it on sorted+id'd input is a no-op beyond re-stamping ids).
func FromRaw(raw []RawEvent) []Event {
	sort.SliceStable(raw, func(i, j int) bool {
		return raw[i].TimestampMillis < raw[j].TimestampMillis
	})

	events := make([]Event, len(raw))
	for i, r := range raw {
		events[i] = Event{
			ID:              int64(i + 1),
			TimestampMillis: r.TimestampMillis,
			Payload:         r.Payload,
		}
	}
	return events
}

// FromSorted builds a Catalogue directly from an already-sorted, already
// id-assigned slice (the shape produced by the warm/shared cache paths).
func FromSorted(events []Event) *Catalogue {
	cp := make([]Event, len(events))
	copy(cp, events)
	return &Catalogue{events: cp}
}

// Events returns a defensive copy of the underlying ordered slice, for
// serialization into a cache.
func (c *Catalogue) Events() []Event {
	cp := make([]Event, len(c.events))
	copy(cp, c.events)
	return cp
}

// Size returns N, the number of events in the catalogue.
func (c *Catalogue) Size() int { return len(c.events) }

// At returns E[i]. Panics if i is out of [0, N); callers are expected to
// bounds-check via Size()/cursor invariants, which always keep cursor in
// [0, N].
func (c *Catalogue) At(i int) Event { return c.events[i] }

// FirstTimestamp returns E[0].TimestampMillis.
func (c *Catalogue) FirstTimestamp() int64 { return c.events[0].TimestampMillis }

// LastTimestamp returns E[N-1].TimestampMillis.
func (c *Catalogue) LastTimestamp() int64 { return c.events[len(c.events)-1].TimestampMillis }

// LowerBoundByTimestamp returns the first index i such that
// E[i].TimestampMillis >= t, or N if no such index exists.
func (c *Catalogue) LowerBoundByTimestamp(t int64) int {
	return sort.Search(len(c.events), func(i int) bool {
		return c.events[i].TimestampMillis >= t
	})
}

// IndexByID returns the index of the event with the given id via binary
// search over the id-ordered catalogue (ids are assigned 1..N in the
// catalogue's own sort order, so id order and slice order coincide).
func (c *Catalogue) IndexByID(id int64) (int, bool) {
	n := len(c.events)
	i := sort.Search(n, func(i int) bool {
		return c.events[i].ID >= id
	})
	if i < n && c.events[i].ID == id {
		return i, true
	}
	return 0, false
}
