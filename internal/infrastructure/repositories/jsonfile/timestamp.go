package jsonfile

import (
	"encoding/json"
	"fmt"
	"time"
)

// timestampLayout is the format the historical documents were written in:
// naive local time, fractional seconds trimmed of trailing zeros and the
// whole fraction omitted when zero.
const timestampLayout = "2006-01-02T15:04:05.999999"

// timestampParseLayouts covers the formats encountered in documents written
// over the project's lifetime.
var timestampParseLayouts = []string{
	timestampLayout,
	"2006-01-02T15:04:05",
	time.RFC3339Nano,
	time.RFC3339,
}

// Timestamp serializes time values in the document-compatible format.
type Timestamp struct {
	time.Time
}

func newTimestamp(t time.Time) *Timestamp {
	return &Timestamp{Time: t}
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Format(timestampLayout))
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for _, layout := range timestampParseLayouts {
		if parsed, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp %q", raw)
}
