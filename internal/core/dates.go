package core

import (
	"fmt"
	"time"
)

// TimestampLayout is the calendar format used in exported records.
const TimestampLayout = "2006-01-02 15:04:05"

// NanosecondThreshold separates second-based dates from the nanosecond
// dates written by newer stores. A second count this large is ~3000 years.
const NanosecondThreshold int64 = 100_000_000_000

// AppleEpoch is 2001-01-01 00:00:00 UTC, the zero point of store dates.
var AppleEpoch = time.Date(2001, time.January, 1, 0, 0, 0, 0, time.UTC)

// NormalizeDate returns a raw store date as whole seconds since AppleEpoch.
// Loaders apply it once; everything downstream works in seconds.
func NormalizeDate(raw int64) int64 {
	if raw > NanosecondThreshold || raw < -NanosecondThreshold {
		return raw / int64(time.Second)
	}
	return raw
}

// DateTime converts seconds since AppleEpoch to a UTC time.
func DateTime(seconds int64) time.Time {
	return time.Unix(AppleEpoch.Unix()+seconds, 0).UTC()
}

// TimestampToString formats seconds since AppleEpoch with TimestampLayout.
// It is the inverse of StringToTimestamp.
func TimestampToString(seconds int64) string {
	return DateTime(seconds).Format(TimestampLayout)
}

// StringToTimestamp parses TimestampLayout back to seconds since AppleEpoch.
func StringToTimestamp(value string) (int64, error) {
	t, err := time.ParseInLocation(TimestampLayout, value, time.UTC)
	if err != nil {
		return 0, fmt.Errorf("parse timestamp %q: %w", value, err)
	}
	return t.Unix() - AppleEpoch.Unix(), nil
}
