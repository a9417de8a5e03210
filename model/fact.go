package model

import (
	"time"
)

// FactShift is one worked shift. (EmployeeID, DateID, ShiftID) is unique across the table.
type FactShift struct {
	ShiftRecordID int64 `gorm:"column:shift_record_id;primaryKey;autoIncrement"`

	EmployeeID int32 `gorm:"column:employee_id;not null;uniqueIndex:uq_fact_employee_date_shift,priority:1;index:idx_fact_employee_id;index:idx_fact_dates_employee,priority:2"`
	DateID     int32 `gorm:"column:date_id;not null;uniqueIndex:uq_fact_employee_date_shift,priority:2;index:idx_fact_date_id;index:idx_fact_dates_client,priority:1;index:idx_fact_dates_employee,priority:1"`
	ShiftID    int32 `gorm:"column:shift_id;not null;uniqueIndex:uq_fact_employee_date_shift,priority:3;index:idx_fact_shift_id"`
	ClientID   int32 `gorm:"column:client_id;not null;index:idx_fact_client_id;index:idx_fact_dates_client,priority:2"`
	JobID      int32 `gorm:"column:job_id;not null;index:idx_fact_job_id"`

	Duration         float64 `gorm:"column:duration;type:decimal(10,2);not null;default:0"`
	PaidHours        float64 `gorm:"column:paid_hours;type:decimal(10,2);not null;default:0"`
	HourRate         float64 `gorm:"column:hour_rate;type:decimal(10,2);not null;default:0"`
	Deductions       float64 `gorm:"column:deductions;type:decimal(12,2);not null;default:0"`
	Additions        float64 `gorm:"column:additions;type:decimal(12,2);not null;default:0"`
	TotalPay         float64 `gorm:"column:total_pay;type:decimal(12,2);not null;default:0"`
	ClientHourlyRate float64 `gorm:"column:client_hourly_rate;type:decimal(10,2);not null;default:0"`
	ClientNet        float64 `gorm:"column:client_net;type:decimal(12,2);not null;default:0"`

	SelfEmployed bool   `gorm:"column:self_employed;type:bool;not null;default:false"`
	DNS          bool   `gorm:"column:dns;type:bool;not null;default:false"`
	JobStatus    string `gorm:"column:job_status;type:varchar(128)"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamp;not null;default:CURRENT_TIMESTAMP;<-:create"`
}

func (FactShift) TableName() string {
	return "fact_shifts"
}

func (f FactShift) Key() FactKey {
	return FactKey{EmployeeID: f.EmployeeID, DateID: f.DateID, ShiftID: f.ShiftID}
}
