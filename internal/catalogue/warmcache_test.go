package catalogue

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWarmCache_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	wc := NewWarmCache(dir)

	events := []Event{
		{ID: 1, TimestampMillis: 0, Payload: map[string]string{"symbol": "AAPL"}},
		{ID: 2, TimestampMillis: 100, Payload: map[string]string{"symbol": "MSFT"}},
	}

	require.NoError(t, wc.Put("deadbeef", events))

	got, ok := wc.Get("deadbeef")
	require.True(t, ok)
	require.Len(t, got, 2)
	assert.Equal(t, "AAPL", got[0].Payload["symbol"])
	assert.Equal(t, int64(100), got[1].TimestampMillis)
}

func TestWarmCache_MissReturnsFalse(t *testing.T) {
	wc := NewWarmCache(t.TempDir())
	_, ok := wc.Get("nope")
	assert.False(t, ok)
}

func TestHashFile_StableForSameContent(t *testing.T) {
	dir := t.TempDir()
	p := dir + "/a.csv"
	require.NoError(t, os.WriteFile(p, []byte("timestamp,symbol\n0,AAPL\n"), 0o644))

	h1, err := HashFile(p)
	require.NoError(t, err)
	h2, err := HashFile(p)
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
}
