package common

import (
	"encoding/json"
	"time"
)

// LocalDateTime renders a timestamp without zone in Location.
type LocalDateTime struct {
	time.Time
}

const dateTimeLayout = "2006-01-02T15:04:05"

// Location is the zone timestamps are shown in. Timestamps are stored in UTC.
var Location = time.UTC

func NewLocalDateTime(t time.Time) LocalDateTime {
	if t.IsZero() {
		return LocalDateTime{}
	}
	return LocalDateTime{Time: t.In(Location)}
}

func (l *LocalDateTime) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		l.Time = time.Time{}
		return nil
	}
	t, err := time.ParseInLocation(dateTimeLayout, s, Location)
	if err != nil {
		return err
	}
	l.Time = t
	return nil
}

func (l LocalDateTime) MarshalJSON() ([]byte, error) {
	if l.Time.IsZero() {
		return json.Marshal("")
	}
	return json.Marshal(l.Format(dateTimeLayout))
}
