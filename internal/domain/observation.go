package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Observation is one raw, possibly partial, description of a flight as handed over by a
// scraping or API source. Exactly one of Text or Record is set.
type Observation struct {
	Text   string
	Record map[string]any
}

func TextObservation(s string) Observation { return Observation{Text: s} }

func RecordObservation(m map[string]any) Observation { return Observation{Record: m} }

func (o Observation) IsRecord() bool { return o.Record != nil }

// UnmarshalJSON accepts either a JSON string (free text) or a JSON object (API record).
func (o *Observation) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*o = Observation{}
		return nil
	}
	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*o = Observation{Text: s}
		return nil
	case '{':
		var m map[string]any
		if err := json.Unmarshal(b, &m); err != nil {
			return err
		}
		*o = Observation{Record: m}
		return nil
	default:
		return fmt.Errorf("observation: expected string or object, got %q", b[:1])
	}
}

func (o Observation) MarshalJSON() ([]byte, error) {
	if o.Record != nil {
		return json.Marshal(o.Record)
	}
	return json.Marshal(o.Text)
}

// Replay is the on-disk shape of a recorded search pair.
type Replay struct {
	Cash  []Observation `json:"cash"`
	Award []Observation `json:"award"`
}
