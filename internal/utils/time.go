package utils

import (
	"time"
)

// layoutISO matches JavaScript's Date.prototype.toISOString.
const layoutISO = "2006-01-02T15:04:05.000Z"

// NowUTC returns current time in UTC.
func NowUTC() time.Time {
	return time.Now().UTC()
}

// FormatISO formats t in UTC with millisecond precision.
func FormatISO(t time.Time) string {
	return t.UTC().Format(layoutISO)
}
