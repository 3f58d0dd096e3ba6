// Package utils contains various common utils separate by utility types
package utils

import (
	"time"
)

// NanoSecsToTime converts an int64 of nanoseconds from epoch to a UTC Time struct
func NanoSecsToTime(ts int64) time.Time {
	return time.Unix(0, ts).UTC()
}

// TimeToNanoSecs converts a Time struct to an int64 of nanoseconds from epoch
func TimeToNanoSecs(t time.Time) int64 {
	return t.UnixNano()
}
