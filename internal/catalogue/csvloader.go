package catalogue

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// CSVLoader reads market-data events from a CSV file. The first row is a
// header naming the columns; a "timestamp" (or "timestampMillis") column is
// required, everything else becomes the event payload. Handles a leading
// UTF-8 byte-order mark transparently, a common source of confusion when
// the file was produced by spreadsheet tools.
type CSVLoader struct {
	Path string
}

// NewCSVLoader returns a Loader reading from path.
func NewCSVLoader(path string) *CSVLoader {
	return &CSVLoader{Path: path}
}

func (l *CSVLoader) Load(ctx context.Context) ([]RawEvent, error) {
	f, err := os.Open(l.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return decodeCSV(f)
}

// decodeCSV is split out from Load so tests can exercise it against an
// in-memory reader without touching the filesystem.
func decodeCSV(r io.Reader) ([]RawEvent, error) {
	stripped := transform.NewReader(r, unicode.BOMOverride(transform.Nop))

	cr := csv.NewReader(stripped)
	cr.FieldsPerRecord = -1 // tolerate ragged trailing columns in the domain fields

	header, err := cr.Read()
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("empty csv")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	tsCol := -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "timestamp", "timestampmillis", "ts":
			tsCol = i
		}
	}
	if tsCol == -1 {
		return nil, fmt.Errorf("csv missing timestamp column")
	}

	var rows []RawEvent
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if tsCol >= len(record) {
			return nil, fmt.Errorf("row missing timestamp field")
		}
		ts, err := strconv.ParseInt(strings.TrimSpace(record[tsCol]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse timestamp %q: %w", record[tsCol], err)
		}

		payload := make(map[string]string, len(header))
		for i, name := range header {
			if i == tsCol || i >= len(record) {
				continue
			}
			payload[strings.TrimSpace(name)] = record[i]
		}
		rows = append(rows, RawEvent{TimestampMillis: ts, Payload: payload})
	}
	return rows, nil
}
