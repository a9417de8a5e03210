package loader

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// DefaultTolerance absorbs currency rounding between the sheet and the decimal columns.
var DefaultTolerance = decimal.NewFromFloat(1.0)

type Reconciliation struct {
	RawSource      decimal.Decimal
	Skipped        decimal.Decimal
	AdjustedSource decimal.Decimal
	Persisted      decimal.Decimal
	FromDateID     int32
	ToDateID       int32
	Match          bool
}

func (r Reconciliation) Difference() decimal.Decimal {
	return r.Persisted.Sub(r.AdjustedSource)
}

// Verification is the JSON form of a Reconciliation.
type Verification struct {
	ExcelRevenue    float64 `json:"excel_revenue"`
	RawExcelRevenue float64 `json:"raw_excel_revenue"`
	SkippedRevenue  float64 `json:"skipped_revenue"`
	DBRevenue       float64 `json:"db_revenue"`
	Match           bool    `json:"match"`
}

func (r Reconciliation) Verification() Verification {
	return Verification{
		ExcelRevenue:    r.AdjustedSource.Round(2).InexactFloat64(),
		RawExcelRevenue: r.RawSource.Round(2).InexactFloat64(),
		SkippedRevenue:  r.Skipped.Round(2).InexactFloat64(),
		DBRevenue:       r.Persisted.Round(2).InexactFloat64(),
		Match:           r.Match,
	}
}

// DateRange returns the min and max date ids of rows. ok is false for no rows.
func DateRange(rows []CleanRow) (from, to int32, ok bool) {
	for i, r := range rows {
		id := r.DateKey().ID()
		if i == 0 || id < from {
			from = id
		}
		if i == 0 || id > to {
			to = id
		}
	}
	return from, to, len(rows) > 0
}

type Reconciler struct {
	Store Store
	// Tolerance defaults to DefaultTolerance when nil. A zero tolerance demands equal totals.
	Tolerance *decimal.Decimal
}

// Reconcile compares what the sheet says should be stored with what the fact table holds in the
// sheet's date range. A mismatch is reported, never rolled back.
func (rc *Reconciler) Reconcile(ctx context.Context, rows []CleanRow, skips []SkipRecord) (*Reconciliation, error) {
	res := &Reconciliation{}
	for _, r := range rows {
		res.RawSource = res.RawSource.Add(decimal.NewFromFloat(EffectiveClientNet(r)))
	}
	for _, s := range skips {
		if s.countsAgainstSource() {
			res.Skipped = res.Skipped.Add(decimal.NewFromFloat(s.ClientNet))
		}
	}
	res.AdjustedSource = res.RawSource.Sub(res.Skipped)

	from, to, ok := DateRange(rows)
	if ok {
		persisted, err := rc.Store.SumClientNet(ctx, from, to)
		if err != nil {
			return nil, fmt.Errorf("failed to total persisted client net: %w", err)
		}
		res.Persisted = persisted
		res.FromDateID, res.ToDateID = from, to
	}

	res.Match = rc.within(res.Difference().Abs())
	return res, nil
}

func (rc *Reconciler) within(diff decimal.Decimal) bool {
	tolerance := DefaultTolerance
	if rc.Tolerance != nil {
		tolerance = *rc.Tolerance
	}
	if tolerance.IsZero() {
		return diff.IsZero()
	}
	return diff.LessThan(tolerance)
}
