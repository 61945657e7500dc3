package logrec

import (
	"fmt"
	"strconv"
	"time"
)

// TimestampLayout is the canonical rendering of timestamp-class details.
const TimestampLayout = "2006-01-02 15:04:05"

// Detail is a sealed interface over the three value classes a log entry
// can carry. Only Number, Timestamp, and Text implement it. The class of
// a detail is decided by the field-classification rules at normalization
// time, never inferred again downstream.
type Detail interface {
	detail() // sealed
	Kind() Kind
	String() string
}

// Kind discriminates Detail variants for storage and diagnostics.
type Kind string

const (
	KindNumber    Kind = "number"
	KindTimestamp Kind = "timestamp"
	KindText      Kind = "text"
)

// Number is a numeric detail value (e.g. a price).
type Number float64

func (Number) detail() {}
func (Number) Kind() Kind { return KindNumber }
func (n Number) String() string {
	return strconv.FormatFloat(float64(n), 'f', -1, 64)
}

// Timestamp is a date/time detail value, always rendered in
// TimestampLayout form ("YYYY-MM-DD HH:MM:SS").
type Timestamp string

func (Timestamp) detail() {}
func (Timestamp) Kind() Kind { return KindTimestamp }
func (t Timestamp) String() string { return string(t) }

// Time parses the canonical rendering back into a time value.
func (t Timestamp) Time() (time.Time, error) {
	return time.Parse(TimestampLayout, string(t))
}

// Text is a detail value kept in its string form.
type Text string

func (Text) detail() {}
func (Text) Kind() Kind { return KindText }
func (t Text) String() string { return string(t) }

// DecodeDetail reconstructs a Detail from its stored (kind, value) pair.
// It is the inverse of Kind()/String() and is used by the change-log
// store when scanning rows.
func DecodeDetail(kind, value string) (Detail, error) {
	switch Kind(kind) {
	case KindNumber:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("decode number detail %q: %w", value, err)
		}
		return Number(f), nil
	case KindTimestamp:
		return Timestamp(value), nil
	case KindText:
		return Text(value), nil
	default:
		return nil, fmt.Errorf("unknown detail kind %q", kind)
	}
}
