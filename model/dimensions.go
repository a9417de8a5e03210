package model

import (
	"time"
)

const (
	UnknownClient = "Unknown Client"
	UnknownJob    = "Unknown Job"
)

type DimEmployee struct {
	EmployeeID int32     `gorm:"column:employee_id;primaryKey;autoIncrement"`
	FullName   string    `gorm:"column:full_name;type:varchar(255) CHARACTER SET utf8mb4 COLLATE utf8mb4_bin;not null;uniqueIndex:uq_dim_employees_full_name"`
	Role       string    `gorm:"column:role;type:varchar(128)"`
	CreatedAt  time.Time `gorm:"column:created_at;type:timestamp;not null;default:CURRENT_TIMESTAMP;<-:create"`
}

func (DimEmployee) TableName() string {
	return "dim_employees"
}

func (e DimEmployee) NaturalKey() EmployeeKey { return EmployeeKey{FullName: e.FullName} }
func (e DimEmployee) SurrogateID() int32 { return e.EmployeeID }

type DimClient struct {
	ClientID   int32     `gorm:"column:client_id;primaryKey;autoIncrement"`
	ClientName string    `gorm:"column:client_name;type:varchar(255) CHARACTER SET utf8mb4 COLLATE utf8mb4_bin;not null;uniqueIndex:uq_dim_clients_client_name"`
	CreatedAt  time.Time `gorm:"column:created_at;type:timestamp;not null;default:CURRENT_TIMESTAMP;<-:create"`
}

func (DimClient) TableName() string {
	return "dim_clients"
}

func (c DimClient) NaturalKey() ClientKey { return ClientKey{Name: c.ClientName} }
func (c DimClient) SurrogateID() int32 { return c.ClientID }

// DimJob is identified by name only; location and site are kept from the row that first introduced it.
type DimJob struct {
	JobID     int32     `gorm:"column:job_id;primaryKey;autoIncrement"`
	JobName   string    `gorm:"column:job_name;type:varchar(255) CHARACTER SET utf8mb4 COLLATE utf8mb4_bin;not null;uniqueIndex:uq_dim_jobs_job_name"`
	Location  string    `gorm:"column:location;type:varchar(255);index:idx_job_location"`
	Site      string    `gorm:"column:site;type:varchar(255)"`
	CreatedAt time.Time `gorm:"column:created_at;type:timestamp;not null;default:CURRENT_TIMESTAMP;<-:create"`
}

func (DimJob) TableName() string {
	return "dim_jobs"
}

func (j DimJob) NaturalKey() JobKey { return JobKey{Name: j.JobName} }
func (j DimJob) SurrogateID() int32 { return j.JobID }

type DimShift struct {
	ShiftID    int32     `gorm:"column:shift_id;primaryKey;autoIncrement"`
	ShiftName  string    `gorm:"column:shift_name;type:varchar(255) CHARACTER SET utf8mb4 COLLATE utf8mb4_bin;not null;uniqueIndex:uq_dim_shifts_name_start_end,priority:1"`
	ShiftStart string    `gorm:"column:shift_start;type:char(8);not null;uniqueIndex:uq_dim_shifts_name_start_end,priority:2"`
	ShiftEnd   string    `gorm:"column:shift_end;type:char(8);not null;uniqueIndex:uq_dim_shifts_name_start_end,priority:3"`
	CreatedAt  time.Time `gorm:"column:created_at;type:timestamp;not null;default:CURRENT_TIMESTAMP;<-:create"`
}

func (DimShift) TableName() string {
	return "dim_shifts"
}

func (s DimShift) NaturalKey() ShiftKey {
	return ShiftKey{Name: s.ShiftName, Start: s.ShiftStart, End: s.ShiftEnd}
}
func (s DimShift) SurrogateID() int32 { return s.ShiftID }

// DimDate uses the yyyymmdd encoding of Date as its primary key.
type DimDate struct {
	DateID    int32     `gorm:"column:date_id;primaryKey;autoIncrement:false"`
	Date      time.Time `gorm:"column:date;type:date;not null;index:idx_date_date"`
	Day       string    `gorm:"column:day;type:varchar(16)"`
	Month     string    `gorm:"column:month;type:varchar(16);index:idx_date_month"`
	Year      int       `gorm:"column:year"`
	CreatedAt time.Time `gorm:"column:created_at;type:timestamp;not null;default:CURRENT_TIMESTAMP;<-:create"`
}

func (DimDate) TableName() string {
	return "dim_dates"
}

func NewDimDate(key DateKey) DimDate {
	t := key.Time()
	return DimDate{
		DateID: key.ID(),
		Date:   t,
		Day:    t.Weekday().String(),
		Month:  t.Month().String(),
		Year:   t.Year(),
	}
}

func (d DimDate) NaturalKey() DateKey { return DateKeyFromID(d.DateID) }
func (d DimDate) SurrogateID() int32 { return d.DateID }
