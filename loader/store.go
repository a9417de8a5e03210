package loader

import (
	"context"

	"github.com/shopspring/decimal"
	"shiftinsight.com/shiftinsight/model"
)

// DimensionStore is the storage side of one dimension table.
type DimensionStore[K comparable, R any] interface {
	// LoadKeys returns every natural key with its surrogate id.
	LoadKeys(ctx context.Context) (map[K]int32, error)
	// InsertRows inserts rows in a single batch operation.
	InsertRows(ctx context.Context, rows []R) error
	// LookupKeys returns the ids of the given keys that exist.
	LookupKeys(ctx context.Context, keys []K) (map[K]int32, error)
}

// Store is everything the loader needs from the warehouse. It never updates or deletes.
type Store interface {
	Employees() DimensionStore[model.EmployeeKey, model.DimEmployee]
	Clients() DimensionStore[model.ClientKey, model.DimClient]
	Jobs() DimensionStore[model.JobKey, model.DimJob]
	Shifts() DimensionStore[model.ShiftKey, model.DimShift]
	Dates() DimensionStore[model.DateKey, model.DimDate]

	// FactKeys returns the dedup keys of facts with fromDateID <= date_id <= toDateID.
	FactKeys(ctx context.Context, fromDateID, toDateID int32) (map[model.FactKey]struct{}, error)
	// InsertFacts writes facts in one transaction.
	InsertFacts(ctx context.Context, facts []model.FactShift) error
	SumClientNet(ctx context.Context, fromDateID, toDateID int32) (decimal.Decimal, error)
}
