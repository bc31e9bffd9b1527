package siri_sm

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/travigo/nextdepartures/pkg/ctdf"
)

// TextValue decodes the loosely typed SIRI-Lite text fields. Producers send a plain string,
// an object of the form {"value": "..."}, or an array of either. A field of any other shape is
// kept as malformed rather than failing the whole document.
type TextValue struct {
	values    []string
	set       bool
	malformed bool
}

func NewTextValue(values ...string) TextValue {
	return TextValue{values: values, set: len(values) > 0}
}

type valueObject struct {
	Value *string `json:"value"`
	Lang  string  `json:"lang"`
}

func (t *TextValue) UnmarshalJSON(data []byte) error {
	*t = TextValue{}

	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	t.set = true

	switch data[0] {
	case '"':
		var value string
		if err := json.Unmarshal(data, &value); err != nil {
			t.malformed = true
			return nil
		}
		t.values = []string{value}
	case '{':
		value, ok := decodeValueObject(data)
		if !ok {
			t.malformed = true
			return nil
		}
		t.values = []string{value}
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(data, &items); err != nil {
			t.malformed = true
			return nil
		}
		for _, item := range items {
			var inner TextValue
			_ = inner.UnmarshalJSON(item)
			if inner.malformed {
				t.malformed = true
				continue
			}
			t.values = append(t.values, inner.values...)
		}
	default:
		t.malformed = true
	}

	return nil
}

func decodeValueObject(data []byte) (string, bool) {
	var object valueObject
	if err := json.Unmarshal(data, &object); err != nil || object.Value == nil {
		return "", false
	}
	return *object.Value, true
}

func (t TextValue) MarshalJSON() ([]byte, error) {
	if !t.set {
		return []byte("null"), nil
	}
	if len(t.values) == 1 {
		return json.Marshal(t.values[0])
	}
	return json.Marshal(t.values)
}

// Lookup returns the first non blank value
func (t TextValue) Lookup() ctdf.Optional[string] {
	for _, value := range t.values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return ctdf.Present(trimmed)
		}
	}

	if t.malformed {
		return ctdf.Absent[string](ctdf.AbsenceMalformedField)
	}
	return ctdf.Absent[string](ctdf.AbsenceFieldMissing)
}

func (t TextValue) String() string {
	return t.Lookup().OrElse("")
}

// LookupTime parses the value as an ISO-8601 timestamp. A timestamp without an offset is local
// time in location, UTC when location is nil.
func (t TextValue) LookupTime(location *time.Location) ctdf.Optional[time.Time] {
	raw := t.Lookup()
	if !raw.Valid() {
		return ctdf.Absent[time.Time](raw.Reason)
	}

	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05Z0700"} {
		if parsed, err := time.Parse(layout, raw.Value); err == nil {
			return ctdf.Present(parsed)
		}
	}

	if location == nil {
		location = time.UTC
	}
	if parsed, err := time.ParseInLocation("2006-01-02T15:04:05.999999999", raw.Value, location); err == nil {
		return ctdf.Present(parsed)
	}

	return ctdf.Absent[time.Time](ctdf.AbsenceMalformedField)
}

// FlagValue decodes a SIRI boolean. Some producers quote it, anything else is malformed.
type FlagValue struct {
	value     bool
	set       bool
	malformed bool
}

func NewFlagValue(value bool) FlagValue {
	return FlagValue{value: value, set: true}
}

func (f *FlagValue) UnmarshalJSON(data []byte) error {
	*f = FlagValue{}

	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	f.set = true

	raw := strings.Trim(string(data), `"`)
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true":
		f.value = true
	case "false":
	default:
		f.malformed = true
	}

	return nil
}

func (f FlagValue) MarshalJSON() ([]byte, error) {
	if !f.set || f.malformed {
		return []byte("null"), nil
	}
	return json.Marshal(f.value)
}

func (f FlagValue) Lookup() ctdf.Optional[bool] {
	switch {
	case f.malformed:
		return ctdf.Absent[bool](ctdf.AbsenceMalformedField)
	case !f.set:
		return ctdf.Absent[bool](ctdf.AbsenceFieldMissing)
	default:
		return ctdf.Present(f.value)
	}
}
