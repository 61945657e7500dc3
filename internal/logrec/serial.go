package logrec

import "time"

// SerialEpoch is the spreadsheet serial-date epoch: a serial date is an
// integer day offset from 1899-12-30.
var SerialEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// FromSerialDays converts a spreadsheet serial day count to a time.
func FromSerialDays(n int64) time.Time {
	return SerialEpoch.AddDate(0, 0, int(n))
}
