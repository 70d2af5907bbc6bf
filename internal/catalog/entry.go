package catalog

import (
	"encoding/json"
	"fmt"
	"time"
)

// Entry is one sample catalog from the manifest. Fields the harness does not
// know about are kept in Extra and written back unchanged on upload.
type Entry struct {
	ID        int
	Type      string
	Assets    []string
	Timestamp float64
	Extra     map[string]json.RawMessage
}

type entryFields struct {
	ID        int      `json:"id"`
	Type      string   `json:"type"`
	Assets    []string `json:"assets"`
	Timestamp float64  `json:"timestamp,omitempty"`
}

var knownEntryKeys = []string{"id", "type", "assets", "timestamp"}

// CheckType returns ErrUnexpectedType unless the entry is a sample catalog.
func (e Entry) CheckType() error {
	if e.Type != SampleType {
		return fmt.Errorf("%w: entry %d has type %q", ErrUnexpectedType, e.ID, e.Type)
	}
	return nil
}

// Stamp records t as the upload time, in fractional Unix seconds.
func (e *Entry) Stamp(t time.Time) {
	e.Timestamp = float64(t.UnixNano()) / float64(time.Second)
}

func (e *Entry) UnmarshalJSON(data []byte) error {
	var fields entryFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for _, k := range knownEntryKeys {
		delete(raw, k)
	}
	if len(raw) == 0 {
		raw = nil
	}

	*e = Entry{
		ID:        fields.ID,
		Type:      fields.Type,
		Assets:    fields.Assets,
		Timestamp: fields.Timestamp,
		Extra:     raw,
	}
	return nil
}

func (e Entry) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(e.Extra)+len(knownEntryKeys))
	for k, v := range e.Extra {
		out[k] = v
	}

	known, err := json.Marshal(entryFields{
		ID:        e.ID,
		Type:      e.Type,
		Assets:    e.Assets,
		Timestamp: e.Timestamp,
	})
	if err != nil {
		return nil, err
	}
	var knownRaw map[string]json.RawMessage
	if err := json.Unmarshal(known, &knownRaw); err != nil {
		return nil, fmt.Errorf("re-encoding entry %d: %w", e.ID, err)
	}
	for k, v := range knownRaw {
		out[k] = v
	}
	return json.Marshal(out)
}
