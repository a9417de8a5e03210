package utils

import (
	"fmt"
	"time"
)

// SentinelDate stands in for dates that could not be parsed.
var SentinelDate = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

const SentinelDateID int32 = 20000101

// DateID encodes a calendar date as yyyymmdd.
func DateID(t time.Time) int32 {
	return int32(t.Year()*10000 + int(t.Month())*100 + t.Day())
}

func DateFromID(id int32) time.Time {
	y := int(id / 10000)
	m := time.Month((id / 100) % 100)
	d := int(id % 100)
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func MustParseDate(dateStr string) time.Time {
	t, _ := time.ParseInLocation("2006-01-02", dateStr, time.UTC)
	return t
}

func ParseISOTime(s string) (*time.Time, error) {
	if s == "" {
		return nil, fmt.Errorf("empty time string")
	}

	// Try standard RFC3339 format (ISO 8601)
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return &t, nil
	}

	// Try with nanoseconds (e.g. 2025-10-13T09:30:00.123Z)
	t, err = time.Parse(time.RFC3339Nano, s)
	if err == nil {
		return &t, nil
	}

	layouts := []string{
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"2006-01-02T15:04:05.000",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if tt, e := time.ParseInLocation(layout, s, time.UTC); e == nil {
			return &tt, nil
		}
	}

	return nil, fmt.Errorf("failed to parse time: %v", s)
}
