// Package catalogue holds the immutable, process-wide event catalogue.
package catalogue

import "encoding/json"

// Event is an immutable market-data record on the synthetic replay timeline.
type Event struct {
	ID              int64             `json:"id"`
	TimestampMillis int64             `json:"timestamp"`
	Payload         map[string]string `json:"-"`
}

// MarshalJSON flattens Payload alongside id/timestamp so the wire schema stays
// {"id":..,"timestamp":..,...domain fields} as required by the streaming contract.
func (e Event) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(e.Payload)+2)
	for k, v := range e.Payload {
		out[k] = v
	}
	out["id"] = e.ID
	out["timestamp"] = e.TimestampMillis
	return json.Marshal(out)
}

// UnmarshalJSON reconstructs Payload from whatever fields aren't id/timestamp,
// the inverse of MarshalJSON's flattening. Needed so the warm/shared catalogue
// caches round-trip events exactly.
func (e *Event) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	payload := make(map[string]string, len(raw))
	for k, v := range raw {
		switch k {
		case "id":
			if f, ok := v.(float64); ok {
				e.ID = int64(f)
			}
		case "timestamp":
			if f, ok := v.(float64); ok {
				e.TimestampMillis = int64(f)
			}
		default:
			if s, ok := v.(string); ok {
				payload[k] = s
			} else {
				b, _ := json.Marshal(v)
				payload[k] = string(b)
			}
		}
	}
	e.Payload = payload
	return nil
}

// RawEvent is the pre-sort, pre-id-assignment row a CatalogueLoader yields.
type RawEvent struct {
	TimestampMillis int64
	Payload         map[string]string
}
