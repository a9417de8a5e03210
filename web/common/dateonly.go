package common

import (
	"encoding/json"
	"fmt"
	"time"

	"shiftinsight.com/shiftinsight/utils"
)

// DateOnly renders as yyyy-MM-dd.
type DateOnly struct {
	time.Time
}

const dateLayout = "2006-01-02"

// DateOnlyFromID converts a yyyymmdd date id. The zero id has no date.
func DateOnlyFromID(id int32) *DateOnly {
	if id == 0 {
		return nil
	}
	return &DateOnly{Time: utils.DateFromID(id)}
}

func (d DateOnly) ID() int32 {
	return utils.DateID(d.Time)
}

func (d *DateOnly) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		d.Time = time.Time{}
		return nil
	}

	t, err := time.ParseInLocation(dateLayout, s, time.UTC)
	if err != nil {
		return fmt.Errorf("invalid date format: %v", err)
	}
	d.Time = t
	return nil
}

func (d DateOnly) MarshalJSON() ([]byte, error) {
	if d.Time.IsZero() {
		return json.Marshal("")
	}
	return json.Marshal(d.Format(dateLayout))
}
