package catalogue

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSharedCache_RoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	sc, err := NewSharedCache(mr.Addr(), 0, 0, zerolog.Nop())
	require.NoError(t, err)
	defer sc.Close()

	events := []Event{
		{ID: 1, TimestampMillis: 0, Payload: map[string]string{"symbol": "AAPL"}},
	}
	sc.Put(context.Background(), "key1", events)

	got, ok := sc.Get(context.Background(), "key1")
	require.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, "AAPL", got[0].Payload["symbol"])
}

func TestSharedCache_MissReturnsFalse(t *testing.T) {
	mr := miniredis.RunT(t)
	sc, err := NewSharedCache(mr.Addr(), 0, 0, zerolog.Nop())
	require.NoError(t, err)
	defer sc.Close()

	_, ok := sc.Get(context.Background(), "nope")
	assert.False(t, ok)
}

func TestNewSharedCache_UnreachableFails(t *testing.T) {
	_, err := NewSharedCache("127.0.0.1:1", 0, 0, zerolog.Nop())
	assert.Error(t, err)
}
