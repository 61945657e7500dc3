package normalize

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/datamartlab/logmart/internal/logrec"
	"github.com/datamartlab/logmart/internal/rules"
)

// coerceDetail converts a raw detail cell into a typed Detail according to
// the field's declared class. A nil or empty cell becomes empty text
// regardless of class; the appliers treat that as an absent value.
func coerceDetail(class rules.Class, v any) (logrec.Detail, error) {
	if v == nil {
		return logrec.Text(""), nil
	}
	if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
		return logrec.Text(""), nil
	}

	switch class {
	case rules.ClassNumber:
		return coerceNumber(v)
	case rules.ClassTimestamp:
		return coerceTimestamp(v)
	default:
		return coerceText(v), nil
	}
}

// coerceNumber handles numeric-class details. Spreadsheet tooling mangles
// these three ways: the cell may already be numeric, it may have been
// auto-converted to a date, or it may be text with a comma decimal
// separator. A date (either pre-converted or parsed from text) is encoded
// as day + "." + zero-padded month, matching how the source system's
// operators keyed prices that the spreadsheet re-interpreted as dates.
func coerceNumber(v any) (logrec.Detail, error) {
	switch val := v.(type) {
	case float64:
		return logrec.Number(val), nil
	case int:
		return logrec.Number(float64(val)), nil
	case int64:
		return logrec.Number(float64(val)), nil
	case time.Time:
		return dayDotMonth(val), nil
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(val), " ", "")
		s = strings.ReplaceAll(s, ",", ".")
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return logrec.Number(f), nil
		}
		if t, ok := parseDateString(s, true); ok {
			return dayDotMonth(t), nil
		}
		return nil, fmt.Errorf("cannot coerce %q to a number or date", val)
	default:
		return nil, fmt.Errorf("cannot coerce %T to a number", v)
	}
}

// dayDotMonth renders a date as the decimal day.month (e.g. August 14 →
// 14.08). Faithful to the source system; see DESIGN.md before changing.
func dayDotMonth(t time.Time) logrec.Number {
	f, _ := strconv.ParseFloat(fmt.Sprintf("%d.%02d", t.Day(), int(t.Month())), 64)
	return logrec.Number(f)
}

// coerceTimestamp handles timestamp-class details: native times are
// re-rendered canonically, digit strings and integers are spreadsheet
// serial day counts, and anything else is parsed day-first.
func coerceTimestamp(v any) (logrec.Detail, error) {
	switch val := v.(type) {
	case time.Time:
		return logrec.Timestamp(val.Format(logrec.TimestampLayout)), nil
	case int:
		return serialTimestamp(int64(val)), nil
	case int64:
		return serialTimestamp(val), nil
	case float64:
		if val == float64(int64(val)) {
			return serialTimestamp(int64(val)), nil
		}
		return nil, fmt.Errorf("cannot coerce %v to a date", val)
	case string:
		s := strings.TrimSpace(val)
		if isDigits(s) {
			n, err := strconv.ParseInt(s, 10, 64)
			if err == nil {
				return serialTimestamp(n), nil
			}
		}
		if t, ok := parseDateString(s, true); ok {
			return logrec.Timestamp(t.Format(logrec.TimestampLayout)), nil
		}
		return nil, fmt.Errorf("cannot coerce %q to a date", val)
	default:
		return nil, fmt.Errorf("cannot coerce %T to a date", v)
	}
}

func serialTimestamp(n int64) logrec.Timestamp {
	return logrec.Timestamp(fromSerialDays(n).Format(logrec.TimestampLayout))
}

// coerceText keeps the value's string form.
func coerceText(v any) logrec.Detail {
	switch val := v.(type) {
	case string:
		return logrec.Text(val)
	case time.Time:
		return logrec.Text(val.Format(logrec.TimestampLayout))
	case float64:
		return logrec.Text(strconv.FormatFloat(val, 'f', -1, 64))
	default:
		return logrec.Text(fmt.Sprint(v))
	}
}
