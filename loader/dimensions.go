package loader

import (
	"context"

	"github.com/sirupsen/logrus"
	"shiftinsight.com/shiftinsight/model"
	"shiftinsight.com/shiftinsight/utils"
)

// Dimensions holds the natural key -> surrogate id maps of the five dimensions.
type Dimensions struct {
	Employees map[model.EmployeeKey]int32
	Clients   map[model.ClientKey]int32
	Jobs      map[model.JobKey]int32
	Shifts    map[model.ShiftKey]int32
	Dates     map[model.DateKey]int32
}

type NewDimensionRows struct {
	Employees int `json:"employees"`
	Clients   int `json:"clients"`
	Jobs      int `json:"jobs"`
	Shifts    int `json:"shifts"`
	Dates     int `json:"dates"`
}

func (n NewDimensionRows) Total() int {
	return n.Employees + n.Clients + n.Jobs + n.Shifts + n.Dates
}

func employeeOf(r CleanRow) (model.EmployeeKey, bool) {
	return model.EmployeeKey{FullName: r.FullName}, r.FullName != ""
}

func clientOf(r CleanRow) (model.ClientKey, bool) {
	return model.ClientKey{Name: r.Client}, r.Client != ""
}

func jobOf(r CleanRow) (model.JobKey, bool) {
	return model.JobKey{Name: r.JobName}, r.JobName != ""
}

func shiftOf(r CleanRow) (model.ShiftKey, bool) {
	return model.ShiftKey{Name: r.ShiftName, Start: r.ShiftStart, End: r.ShiftEnd}, r.ShiftName != ""
}

// dimensionStage resolves one dimension and returns how many rows it created.
type dimensionStage struct {
	name string
	run  func(ctx context.Context) (int, error)
}

// resolveDimensions runs the five resolvers in order: employee, client, job, shift, date.
func resolveDimensions(ctx context.Context, store Store, rows []CleanRow, log *logrus.Entry, onDone func(name string, created int)) (*Dimensions, *NewDimensionRows, error) {
	dims := &Dimensions{}
	created := &NewDimensionRows{}

	stages := []dimensionStage{
		{"employees", func(ctx context.Context) (int, error) {
			var candidates []model.DimEmployee
			for _, r := range rows {
				if _, ok := employeeOf(r); ok {
					candidates = append(candidates, model.DimEmployee{FullName: r.FullName, Role: r.Role})
				}
			}
			res, err := (&Resolver[model.EmployeeKey, model.DimEmployee]{
				Name: "employee", Store: store.Employees(), Key: model.DimEmployee.NaturalKey, Log: log,
			}).Resolve(ctx, candidates)
			if err != nil {
				return 0, err
			}
			dims.Employees, created.Employees = res.IDs, res.Created
			return res.Created, nil
		}},
		{"clients", func(ctx context.Context) (int, error) {
			var candidates []model.DimClient
			for _, r := range rows {
				if _, ok := clientOf(r); ok {
					candidates = append(candidates, model.DimClient{ClientName: r.Client})
				}
			}
			res, err := (&Resolver[model.ClientKey, model.DimClient]{
				Name: "client", Store: store.Clients(), Key: model.DimClient.NaturalKey, Log: log,
			}).Resolve(ctx, candidates)
			if err != nil {
				return 0, err
			}
			dims.Clients, created.Clients = res.IDs, res.Created
			return res.Created, nil
		}},
		{"jobs", func(ctx context.Context) (int, error) {
			var candidates []model.DimJob
			for _, r := range rows {
				if _, ok := jobOf(r); ok {
					candidates = append(candidates, model.DimJob{JobName: r.JobName, Location: r.Location, Site: r.Site})
				}
			}
			res, err := (&Resolver[model.JobKey, model.DimJob]{
				Name: "job", Store: store.Jobs(), Key: model.DimJob.NaturalKey, Log: log,
			}).Resolve(ctx, candidates)
			if err != nil {
				return 0, err
			}
			dims.Jobs, created.Jobs = res.IDs, res.Created
			return res.Created, nil
		}},
		{"shifts", func(ctx context.Context) (int, error) {
			var candidates []model.DimShift
			for _, r := range rows {
				if _, ok := shiftOf(r); ok {
					candidates = append(candidates, model.DimShift{ShiftName: r.ShiftName, ShiftStart: r.ShiftStart, ShiftEnd: r.ShiftEnd})
				}
			}
			res, err := (&Resolver[model.ShiftKey, model.DimShift]{
				Name: "shift", Store: store.Shifts(), Key: model.DimShift.NaturalKey, Log: log,
			}).Resolve(ctx, candidates)
			if err != nil {
				return 0, err
			}
			dims.Shifts, created.Shifts = res.IDs, res.Created
			return res.Created, nil
		}},
		{"dates", func(ctx context.Context) (int, error) {
			candidates := utils.Map(rows, func(r CleanRow) model.DimDate { return model.NewDimDate(r.DateKey()) })
			res, err := (&Resolver[model.DateKey, model.DimDate]{
				Name: "date", Store: store.Dates(), Key: model.DimDate.NaturalKey, ID: model.DateKey.ID, Log: log,
			}).Resolve(ctx, candidates)
			if err != nil {
				return 0, err
			}
			dims.Dates, created.Dates = res.IDs, res.Created
			return res.Created, nil
		}},
	}

	for _, stage := range stages {
		n, err := stage.run(ctx)
		if err != nil {
			return nil, nil, err
		}
		if onDone != nil {
			onDone(stage.name, n)
		}
	}

	return dims, created, nil
}
