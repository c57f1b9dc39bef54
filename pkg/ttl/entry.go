package ttl

import "encoding/json"

// Entry is one TTL-store value: its text, the duration originally
// requested (kept for audit/reconstruction), the absolute expiry instant
// computed at commit time, and whether the store the entry lives in was
// opened with encryption. Value itself is always plaintext; the whole store
// file is encrypted as one blob by the cell.
type Entry struct {
	Key       string
	Value     string
	Duration  *DurationText
	ExpiresAt *int64 // milliseconds since epoch; nil means never expires
	Encrypted bool
}

// entryJSON mirrors the on-disk schema exactly:
//
//	{"key":"...","value":"...","duration":"PT30S"|null,"expiresAt":123|null,"encrypted":false}
type entryJSON struct {
	Key       string  `json:"key"`
	Value     string  `json:"value"`
	Duration  *string `json:"duration"`
	ExpiresAt *int64  `json:"expiresAt"`
	Encrypted bool    `json:"encrypted"`
}

// MarshalJSON implements json.Marshaler so Entry serializes to the schema's
// exact field names regardless of the Go struct's own field layout.
func (e Entry) MarshalJSON() ([]byte, error) {
	out := entryJSON{
		Key:       e.Key,
		Value:     e.Value,
		ExpiresAt: e.ExpiresAt,
		Encrypted: e.Encrypted,
	}
	if e.Duration != nil {
		s := e.Duration.String()
		out.Duration = &s
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler, parsing the ISO-8601 duration
// text back into a DurationText if present.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var in entryJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	e.Key = in.Key
	e.Value = in.Value
	e.ExpiresAt = in.ExpiresAt
	e.Encrypted = in.Encrypted
	e.Duration = nil
	if in.Duration != nil {
		d, err := ParseDurationText(*in.Duration)
		if err != nil {
			return err
		}
		e.Duration = &d
	}
	return nil
}
