package core

import "time"

// TimestampLayout renders times as "March 05, 2025 at 02:30 PM".
const TimestampLayout = "January 02, 2006 at 03:04 PM"

// DateLayout is the celebration birthday format.
const DateLayout = "2006-01-02"

// FormatTimestamp renders t with TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}
