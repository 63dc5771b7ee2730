package catalogue

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeCSV_StripsBOMAndParsesDomainFields(t *testing.T) {
	bom := "\xEF\xBB\xBF"
	csv := bom + "id,timestamp,symbol,bidPrice\n1,0,AAPL,100.5\n2,100,MSFT,200.25\n"

	rows, err := decodeCSV(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, int64(0), rows[0].TimestampMillis)
	assert.Equal(t, "AAPL", rows[0].Payload["symbol"])
	assert.Equal(t, "100.5", rows[0].Payload["bidPrice"])
	assert.Equal(t, "1", rows[0].Payload["id"])

	assert.Equal(t, int64(100), rows[1].TimestampMillis)
	assert.Equal(t, "MSFT", rows[1].Payload["symbol"])
}

func TestDecodeCSV_MissingTimestampColumnFails(t *testing.T) {
	csv := "id,symbol\n1,AAPL\n"
	_, err := decodeCSV(strings.NewReader(csv))
	require.Error(t, err)
}

func TestDecodeCSV_EmptyFails(t *testing.T) {
	_, err := decodeCSV(strings.NewReader(""))
	require.Error(t, err)
}

func TestDecodeCSV_BadTimestampFails(t *testing.T) {
	csv := "timestamp,symbol\nnotanumber,AAPL\n"
	_, err := decodeCSV(strings.NewReader(csv))
	require.Error(t, err)
}

func TestDecodeCSV_RaggedRowTolerated(t *testing.T) {
	csv := "timestamp,symbol,size\n10,AAPL\n"
	rows, err := decodeCSV(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	_, hasSize := rows[0].Payload["size"]
	assert.False(t, hasSize)
}
