package model

import (
	"time"

	"gorm.io/datatypes"
)

const (
	LoadStatusComplete = "complete"
	LoadStatusError    = "error"
)

// LoadRun records the outcome of one spreadsheet load.
type LoadRun struct {
	LoadID   string `gorm:"column:load_id;type:char(36);primaryKey"`
	Filename string `gorm:"column:filename;type:varchar(255)"`
	Source   string `gorm:"column:source;type:varchar(32)"`
	Status   string `gorm:"column:status;type:varchar(16);not null;index:idx_load_runs_status"`
	Error    string `gorm:"column:error;type:text"`

	Rows             int `gorm:"column:row_count;not null;default:0"`
	Inserted         int `gorm:"column:inserted;not null;default:0"`
	Skipped          int `gorm:"column:skipped;not null;default:0"`
	Failed           int `gorm:"column:failed;not null;default:0"`
	NewDimensionRows int `gorm:"column:new_dimension_rows;not null;default:0"`

	FirstDateID int32 `gorm:"column:first_date_id"`
	LastDateID  int32 `gorm:"column:last_date_id"`

	RawTotal       float64 `gorm:"column:raw_total;type:decimal(14,2);not null;default:0"`
	AdjustedTotal  float64 `gorm:"column:adjusted_total;type:decimal(14,2);not null;default:0"`
	PersistedTotal float64 `gorm:"column:persisted_total;type:decimal(14,2);not null;default:0"`
	Match          bool    `gorm:"column:totals_match;type:bool;not null;default:false"`

	Diagnostics    datatypes.JSON `gorm:"column:diagnostics"`
	SkippedDetails datatypes.JSON `gorm:"column:skipped_details"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamp;not null;default:CURRENT_TIMESTAMP;<-:create;index:idx_load_runs_created_at"`
}

func (LoadRun) TableName() string {
	return "load_runs"
}
