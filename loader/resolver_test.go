package loader

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"shiftinsight.com/shiftinsight/model"
	"shiftinsight.com/shiftinsight/utils"
)

func employeeResolver(store *memDimension[model.EmployeeKey, model.DimEmployee]) *Resolver[model.EmployeeKey, model.DimEmployee] {
	return &Resolver[model.EmployeeKey, model.DimEmployee]{
		Name:  "employee",
		Store: store,
		Key:   model.DimEmployee.NaturalKey,
	}
}

func TestResolverCreatesOnlyNewDistinctKeys(t *testing.T) {
	store := newMemDimension[model.EmployeeKey, model.DimEmployee](model.DimEmployee.NaturalKey, nil)
	existingID := store.put(model.DimEmployee{FullName: "Sam Smith"})

	candidates := []model.DimEmployee{
		{FullName: "Jane Doe", Role: "Picker"},
		{FullName: "Sam Smith", Role: "Driver"},
		{FullName: "Jane Doe", Role: "Supervisor"},
		{FullName: "Ali Khan", Role: "Packer"},
	}
	for i := 0; i < 1000; i++ {
		candidates = append(candidates, model.DimEmployee{FullName: "Jane Doe"})
	}

	res, err := employeeResolver(store).Resolve(context.Background(), candidates)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Created)
	assert.Equal(t, 1, store.insertCalls)
	assert.Equal(t, 1, store.lookupCalls)
	assert.Len(t, store.rows, 3)
	assert.Equal(t, existingID, res.IDs[model.EmployeeKey{FullName: "Sam Smith"}])
	assert.Contains(t, res.IDs, model.EmployeeKey{FullName: "Jane Doe"})
	assert.Contains(t, res.IDs, model.EmployeeKey{FullName: "Ali Khan"})

	// attributes come from the first occurrence
	jane := utils.Find(store.rows, func(e model.DimEmployee) bool { return e.FullName == "Jane Doe" })
	require.NotNil(t, jane)
	assert.Equal(t, "Picker", jane.Role)
}

func TestResolverSkipsInsertWhenNothingIsNew(t *testing.T) {
	store := newMemDimension[model.EmployeeKey, model.DimEmployee](model.DimEmployee.NaturalKey, nil)
	store.put(model.DimEmployee{FullName: "Jane Doe"})

	res, err := employeeResolver(store).Resolve(context.Background(), []model.DimEmployee{{FullName: "Jane Doe"}})
	require.NoError(t, err)

	assert.Equal(t, 0, res.Created)
	assert.Equal(t, 0, store.insertCalls)
	assert.Equal(t, 0, store.lookupCalls)
	assert.Len(t, res.IDs, 1)
}

func TestResolverRecoversIdsWhenInsertFails(t *testing.T) {
	store := newMemDimension[model.EmployeeKey, model.DimEmployee](model.DimEmployee.NaturalKey, nil)
	// a concurrent load creates Jane Doe between our snapshot and our insert
	var janeID int32
	store.beforeInsert = func(call int) {
		if call == 1 {
			janeID = store.put(model.DimEmployee{FullName: "Jane Doe"})
		}
	}

	res, err := employeeResolver(store).Resolve(context.Background(), []model.DimEmployee{{FullName: "Jane Doe"}, {FullName: "Ali Khan"}})
	require.NoError(t, err)

	assert.Equal(t, 1, res.Created)
	assert.Equal(t, 2, store.insertCalls)
	assert.Len(t, store.rows, 2)
	assert.Equal(t, janeID, res.IDs[model.EmployeeKey{FullName: "Jane Doe"}])
	assert.Contains(t, res.IDs, model.EmployeeKey{FullName: "Ali Khan"})
}

func TestResolverFailsWhenKeysCannotBeCreated(t *testing.T) {
	store := newMemDimension[model.EmployeeKey, model.DimEmployee](model.DimEmployee.NaturalKey, nil)
	store.insertErr = errors.New("Error 1205: Lock wait timeout exceeded")

	_, err := employeeResolver(store).Resolve(context.Background(), []model.DimEmployee{{FullName: "Jane Doe"}, {FullName: "Ali Khan"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to insert 2 employee rows")
	assert.Equal(t, 2, store.insertCalls)
}

func TestDateResolverUsesDerivedIds(t *testing.T) {
	store := newMemDimension[model.DateKey, model.DimDate](model.DimDate.NaturalKey, model.DateKey.ID)
	resolver := &Resolver[model.DateKey, model.DimDate]{
		Name:  "date",
		Store: store,
		Key:   model.DimDate.NaturalKey,
		ID:    model.DateKey.ID,
	}

	march := model.NewDateKey(utils.MustParseDate("2024-03-01"))
	sentinel := model.NewDateKey(utils.SentinelDate)
	res, err := resolver.Resolve(context.Background(), []model.DimDate{
		model.NewDimDate(march), model.NewDimDate(sentinel), model.NewDimDate(march),
	})
	require.NoError(t, err)

	assert.Equal(t, 2, res.Created)
	assert.Equal(t, 0, store.lookupCalls)
	assert.Equal(t, int32(20240301), res.IDs[march])
	assert.Equal(t, utils.SentinelDateID, res.IDs[sentinel])

	friday := utils.Find(store.rows, func(d model.DimDate) bool { return d.DateID == 20240301 })
	require.NotNil(t, friday)
	assert.Equal(t, "Friday", friday.Day)
	assert.Equal(t, "March", friday.Month)
	assert.Equal(t, 2024, friday.Year)
}
