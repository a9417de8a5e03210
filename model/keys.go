package model

import (
	"time"

	"shiftinsight.com/shiftinsight/utils"
)

// Natural keys are plain comparable structs so they can be used directly as map keys.
// Values returns the key in the column order of the owning dimension table.

type EmployeeKey struct {
	FullName string
}

func (k EmployeeKey) Values() []any { return []any{k.FullName} }

type ClientKey struct {
	Name string
}

func (k ClientKey) Values() []any { return []any{k.Name} }

type JobKey struct {
	Name string
}

func (k JobKey) Values() []any { return []any{k.Name} }

type ShiftKey struct {
	Name  string
	Start string
	End   string
}

func (k ShiftKey) Values() []any { return []any{k.Name, k.Start, k.End} }

// DateKey is a calendar date without a location.
type DateKey struct {
	Year  int
	Month time.Month
	Day   int
}

func NewDateKey(t time.Time) DateKey {
	return DateKey{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

func DateKeyFromID(id int32) DateKey {
	return NewDateKey(utils.DateFromID(id))
}

func (k DateKey) Time() time.Time {
	return time.Date(k.Year, k.Month, k.Day, 0, 0, 0, 0, time.UTC)
}

func (k DateKey) ID() int32 { return utils.DateID(k.Time()) }

func (k DateKey) String() string { return k.Time().Format("2006-01-02") }

func (k DateKey) Values() []any { return []any{k.ID()} }

// FactKey is the de-duplication key of the fact table.
type FactKey struct {
	EmployeeID int32
	DateID     int32
	ShiftID    int32
}
