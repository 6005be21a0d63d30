package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// WireLayout is the date format used by the remote service and the local cache.
// All timestamps are UTC with millisecond precision.
const WireLayout = "2006-01-02 15:04:05.000Z"

// Timestamp is a required point in time encoded with WireLayout.
// An empty wire string decodes to the zero Timestamp, which record
// validation rejects.
type Timestamp struct {
	time.Time
}

// At wraps t as a Timestamp truncated to the wire precision.
func At(t time.Time) Timestamp {
	if t.IsZero() {
		return Timestamp{}
	}
	return Timestamp{Time: t.UTC().Truncate(time.Millisecond)}
}

// ParseTimestamp parses a wire-formatted date.
func ParseTimestamp(s string) (Timestamp, error) {
	if s == "" {
		return Timestamp{}, nil
	}
	t, err := time.Parse(WireLayout, s)
	if err != nil {
		return Timestamp{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return Timestamp{Time: t.UTC()}, nil
}

// String formats the timestamp with WireLayout, or "" when zero.
func (t Timestamp) String() string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(WireLayout)
}

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// OptionalTime is either Present(t) or Absent. The remote service sends
// absent dates as empty strings; they never become a sentinel time.
type OptionalTime struct {
	value   time.Time
	present bool
}

// Present returns an OptionalTime holding t. A zero t is Absent.
func Present(t time.Time) OptionalTime {
	if t.IsZero() {
		return OptionalTime{}
	}
	return OptionalTime{value: At(t).Time, present: true}
}

// Absent returns an empty OptionalTime.
func Absent() OptionalTime {
	return OptionalTime{}
}

// Get returns the held time and whether it is present.
func (o OptionalTime) Get() (time.Time, bool) {
	return o.value, o.present
}

// IsPresent reports whether a time is held.
func (o OptionalTime) IsPresent() bool {
	return o.present
}

func (o OptionalTime) String() string {
	if !o.present {
		return "absent"
	}
	return At(o.value).String()
}

// MarshalJSON implements json.Marshaler. Absent encodes as "".
func (o OptionalTime) MarshalJSON() ([]byte, error) {
	if !o.present {
		return []byte(`""`), nil
	}
	return At(o.value).MarshalJSON()
}

// UnmarshalJSON implements json.Unmarshaler. "" and null decode to Absent.
func (o *OptionalTime) UnmarshalJSON(data []byte) error {
	var ts Timestamp
	if err := ts.UnmarshalJSON(data); err != nil {
		return err
	}
	*o = Present(ts.Time)
	return nil
}
