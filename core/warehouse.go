package core

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"shiftinsight.com/shiftinsight/loader"
	"shiftinsight.com/shiftinsight/model"
)

var _ loader.Store = (*Warehouse)(nil)

// Warehouse is the MySQL star schema behind a load.
type Warehouse struct {
	db *gorm.DB

	employees *dimensionTable[model.EmployeeKey, model.DimEmployee]
	clients   *dimensionTable[model.ClientKey, model.DimClient]
	jobs      *dimensionTable[model.JobKey, model.DimJob]
	shifts    *dimensionTable[model.ShiftKey, model.DimShift]
	dates     *dimensionTable[model.DateKey, model.DimDate]
}

// NewWarehouse wraps db. lookupChunk bounds the number of keys per IN query; <= 0 uses DefaultLookupChunk.
func NewWarehouse(db *gorm.DB, lookupChunk int) *Warehouse {
	return &Warehouse{
		db:        db,
		employees: newDimensionTable[model.EmployeeKey, model.DimEmployee](db, lookupChunk, "employee_id", "full_name"),
		clients:   newDimensionTable[model.ClientKey, model.DimClient](db, lookupChunk, "client_id", "client_name"),
		jobs:      newDimensionTable[model.JobKey, model.DimJob](db, lookupChunk, "job_id", "job_name"),
		shifts:    newDimensionTable[model.ShiftKey, model.DimShift](db, lookupChunk, "shift_id", "shift_name", "shift_start", "shift_end"),
		dates:     newDimensionTable[model.DateKey, model.DimDate](db, lookupChunk, "date_id"),
	}
}

func (w *Warehouse) Employees() loader.DimensionStore[model.EmployeeKey, model.DimEmployee] {
	return w.employees
}

func (w *Warehouse) Clients() loader.DimensionStore[model.ClientKey, model.DimClient] {
	return w.clients
}

func (w *Warehouse) Jobs() loader.DimensionStore[model.JobKey, model.DimJob] {
	return w.jobs
}

func (w *Warehouse) Shifts() loader.DimensionStore[model.ShiftKey, model.DimShift] {
	return w.shifts
}

func (w *Warehouse) Dates() loader.DimensionStore[model.DateKey, model.DimDate] {
	return w.dates
}

// FactKeys returns the (employee, date, shift) triples already stored for from <= date_id <= to.
func (w *Warehouse) FactKeys(ctx context.Context, from, to int32) (map[model.FactKey]struct{}, error) {
	var keys []model.FactKey
	err := w.db.WithContext(ctx).
		Model(&model.FactShift{}).
		Select("employee_id, date_id, shift_id").
		Where("date_id BETWEEN ? AND ?", from, to).
		Scan(&keys).Error
	if err != nil {
		return nil, err
	}

	existing := make(map[model.FactKey]struct{}, len(keys))
	for _, k := range keys {
		existing[k] = struct{}{}
	}
	return existing, nil
}

// InsertFacts writes one batch atomically.
func (w *Warehouse) InsertFacts(ctx context.Context, facts []model.FactShift) error {
	if len(facts) == 0 {
		return nil
	}
	return w.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&facts).Error
	})
}

type netTotal struct {
	Total decimal.NullDecimal
}

func (w *Warehouse) SumClientNet(ctx context.Context, from, to int32) (decimal.Decimal, error) {
	var result netTotal
	err := w.db.WithContext(ctx).
		Model(&model.FactShift{}).
		Select("SUM(client_net) AS total").
		Where("date_id BETWEEN ? AND ?", from, to).
		Scan(&result).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !result.Total.Valid {
		return decimal.Zero, nil
	}
	return result.Total.Decimal, nil
}
