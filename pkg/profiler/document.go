package profiler

import (
	"encoding/json"
	"fmt"
)

// Document field names are an external contract shared with every consumer
// of saved profiles; they never change.
const (
	fieldBytecodesID = "bytecodesID"
	fieldName        = "name"
	fieldHash        = "hash"
)

// Document is the serialized shape of a Database: three array-valued
// fields, always in the order bytecodes, compilations, events, each
// preserving its collection's append order.
type Document struct {
	Bytecodes    []map[string]any `json:"bytecodes"`
	Compilations []any            `json:"compilations"`
	Events       []EventDocument  `json:"events"`
}

// EventDocument is the serialized shape of one event. Bytecodes holds the
// index of the referenced profiling record; Compilation holds the index of
// the referenced compilation record and is omitted when the event had none.
type EventDocument struct {
	Time        float64 `json:"time"`
	Bytecodes   int     `json:"bytecodes"`
	Compilation *int    `json:"compilation,omitempty"`
	Summary     string  `json:"summary"`
	Detail      string  `json:"detail"`
}

// ParseDocument decodes a saved profile document from JSON text.
func ParseDocument(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse profile document: %w", err)
	}
	return &doc, nil
}

// Validate checks the structural invariants every database-produced
// document satisfies: bytecodes entries carry contiguous indices in append
// order, and every event references an in-range bytecodes entry and, when
// present, an in-range compilation entry.
func (d *Document) Validate() error {
	for i, entry := range d.Bytecodes {
		id, ok := documentInt(entry[fieldBytecodesID])
		if !ok {
			return fmt.Errorf("bytecodes entry %d: missing or non-numeric %s", i, fieldBytecodesID)
		}
		if id != i {
			return fmt.Errorf("bytecodes entry %d: %s is %d, want %d", i, fieldBytecodesID, id, i)
		}
	}
	for i, ev := range d.Events {
		if ev.Bytecodes < 0 || ev.Bytecodes >= len(d.Bytecodes) {
			return fmt.Errorf("event %d: bytecodes reference %d out of range [0,%d)", i, ev.Bytecodes, len(d.Bytecodes))
		}
		if ev.Compilation != nil {
			if c := *ev.Compilation; c < 0 || c >= len(d.Compilations) {
				return fmt.Errorf("event %d: compilation reference %d out of range [0,%d)", i, c, len(d.Compilations))
			}
		}
	}
	return nil
}

// documentInt normalizes the numeric types a document field may carry:
// native ints before marshaling, float64 after a JSON round trip.
func documentInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}
