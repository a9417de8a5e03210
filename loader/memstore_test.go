package loader

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"shiftinsight.com/shiftinsight/model"
)

// memDimension is an in-memory DimensionStore with a unique natural key.
type memDimension[K comparable, R any] struct {
	key func(R) K
	id  func(K) int32

	ids  map[K]int32
	rows []R
	next int32

	insertErr   error
	insertCalls int
	// beforeInsert runs at the start of InsertRows, imitating another writer
	beforeInsert func(call int)
	lookupCalls int
}

func newMemDimension[K comparable, R any](key func(R) K, id func(K) int32) *memDimension[K, R] {
	return &memDimension[K, R]{key: key, id: id, ids: make(map[K]int32)}
}

func (m *memDimension[K, R]) LoadKeys(ctx context.Context) (map[K]int32, error) {
	out := make(map[K]int32, len(m.ids))
	for k, v := range m.ids {
		out[k] = v
	}
	return out, nil
}

func (m *memDimension[K, R]) InsertRows(ctx context.Context, rows []R) error {
	m.insertCalls++
	if m.beforeInsert != nil {
		m.beforeInsert(m.insertCalls)
	}
	if m.insertErr != nil {
		return m.insertErr
	}
	for _, r := range rows {
		if _, ok := m.ids[m.key(r)]; ok {
			return fmt.Errorf("duplicate entry %v", m.key(r))
		}
	}
	for _, r := range rows {
		k := m.key(r)
		m.next++
		id := m.next
		if m.id != nil {
			id = m.id(k)
		}
		m.ids[k] = id
		m.rows = append(m.rows, r)
	}
	return nil
}

func (m *memDimension[K, R]) LookupKeys(ctx context.Context, keys []K) (map[K]int32, error) {
	m.lookupCalls++
	out := make(map[K]int32)
	for _, k := range keys {
		if id, ok := m.ids[k]; ok {
			out[k] = id
		}
	}
	return out, nil
}

// put simulates a row created by someone else.
func (m *memDimension[K, R]) put(row R) int32 {
	k := m.key(row)
	m.next++
	id := m.next
	if m.id != nil {
		id = m.id(k)
	}
	m.ids[k] = id
	m.rows = append(m.rows, row)
	return id
}

type memStore struct {
	employees *memDimension[model.EmployeeKey, model.DimEmployee]
	clients   *memDimension[model.ClientKey, model.DimClient]
	jobs      *memDimension[model.JobKey, model.DimJob]
	shifts    *memDimension[model.ShiftKey, model.DimShift]
	dates     *memDimension[model.DateKey, model.DimDate]

	facts       []model.FactShift
	factCalls   int
	poison      func(model.FactShift) bool
	factKeysErr error
}

func newMemStore() *memStore {
	return &memStore{
		employees: newMemDimension[model.EmployeeKey, model.DimEmployee](model.DimEmployee.NaturalKey, nil),
		clients:   newMemDimension[model.ClientKey, model.DimClient](model.DimClient.NaturalKey, nil),
		jobs:      newMemDimension[model.JobKey, model.DimJob](model.DimJob.NaturalKey, nil),
		shifts:    newMemDimension[model.ShiftKey, model.DimShift](model.DimShift.NaturalKey, nil),
		dates:     newMemDimension[model.DateKey, model.DimDate](model.DimDate.NaturalKey, model.DateKey.ID),
	}
}

func (s *memStore) Employees() DimensionStore[model.EmployeeKey, model.DimEmployee] {
	return s.employees
}
func (s *memStore) Clients() DimensionStore[model.ClientKey, model.DimClient] { return s.clients }
func (s *memStore) Jobs() DimensionStore[model.JobKey, model.DimJob] { return s.jobs }
func (s *memStore) Shifts() DimensionStore[model.ShiftKey, model.DimShift] { return s.shifts }
func (s *memStore) Dates() DimensionStore[model.DateKey, model.DimDate] { return s.dates }

func (s *memStore) FactKeys(ctx context.Context, from, to int32) (map[model.FactKey]struct{}, error) {
	if s.factKeysErr != nil {
		return nil, s.factKeysErr
	}
	out := make(map[model.FactKey]struct{})
	for _, f := range s.facts {
		if f.DateID >= from && f.DateID <= to {
			out[f.Key()] = struct{}{}
		}
	}
	return out, nil
}

// InsertFacts is all-or-nothing like a transaction.
func (s *memStore) InsertFacts(ctx context.Context, facts []model.FactShift) error {
	s.factCalls++
	stored := make(map[model.FactKey]bool, len(s.facts))
	for _, f := range s.facts {
		stored[f.Key()] = true
	}
	for _, f := range facts {
		if s.poison != nil && s.poison(f) {
			return fmt.Errorf("constraint violation on employee %d", f.EmployeeID)
		}
		if stored[f.Key()] {
			return fmt.Errorf("duplicate entry %v", f.Key())
		}
		stored[f.Key()] = true
	}
	s.facts = append(s.facts, facts...)
	return nil
}

func (s *memStore) SumClientNet(ctx context.Context, from, to int32) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, f := range s.facts {
		if f.DateID >= from && f.DateID <= to {
			total = total.Add(decimal.NewFromFloat(f.ClientNet))
		}
	}
	return total, nil
}

// sheetRecord returns a full data row in RequiredColumns order with overrides applied.
func sheetRecord(overrides map[string]string) []string {
	values := map[string]string{
		ColJobName:          "Warehouse",
		ColShiftName:        "Morning",
		ColFullName:         "Jane Doe",
		ColLocation:         "Leeds",
		ColSite:             "North",
		ColRole:             "Picker",
		ColMonth:            "March",
		ColDate:             "2024-03-01",
		ColDay:              "Friday",
		ColShiftStart:       "06:00",
		ColShiftEnd:         "14:00",
		ColDuration:         "8",
		ColPaidHours:        "7.5",
		ColHourRate:         "12",
		ColDeductions:       "0",
		ColAdditions:        "0",
		ColTotalPay:         "90",
		ColClientHourlyRate: "16",
		ColClientNet:        "120",
		ColSelfEmployed:     "no",
		ColDNS:              "no",
		ColClient:           "Acme",
		ColJobStatus:        "Completed",
	}
	for k, v := range overrides {
		values[k] = v
	}
	record := make([]string, len(RequiredColumns))
	for i, col := range RequiredColumns {
		record[i] = values[col]
	}
	return record
}

func sheetTable(rows ...map[string]string) *Table {
	records := [][]string{RequiredColumns}
	for _, r := range rows {
		records = append(records, sheetRecord(r))
	}
	return buildTable("Sheet1", records, nil)
}

func cleanRows(rows ...map[string]string) []CleanRow {
	c := &Cleaner{}
	return c.CleanAll(sheetTable(rows...).Rows)
}
