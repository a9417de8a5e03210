package loader

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type Options struct {
	BatchSize int
	// Tolerance is the reconciliation tolerance; nil means DefaultTolerance and zero means exact.
	Tolerance *decimal.Decimal
	Logger    *logrus.Logger
}

// Loader runs the spreadsheet to star-schema pipeline: clean, resolve dimensions, build facts,
// write in batches and reconcile. One load runs sequentially on the caller's goroutine.
type Loader struct {
	store Store
	opts  Options
}

func New(store Store, opts Options) *Loader {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	return &Loader{store: store, opts: opts}
}

// Input describes one workbook to load. An empty LoadID gets a fresh uuid.
type Input struct {
	LoadID   string
	Filename string
	Sheet    string
	Reader   io.Reader
}

// LoadFile reads the workbook and loads it. Fatal errors are emitted as a single error event
// and returned; otherwise the summary is emitted with the complete event and returned.
func (l *Loader) LoadFile(ctx context.Context, in Input, progress ProgressFunc) (*Summary, error) {
	if in.LoadID == "" {
		in.LoadID = uuid.NewString()
	}
	log := l.opts.Logger.WithFields(logrus.Fields{"load_id": in.LoadID, "filename": in.Filename})

	progress.emit(StatusProgress, fmt.Sprintf("Reading %s", in.Filename), 5, nil)
	table, err := ReadWorkbook(in.Reader, in.Filename, in.Sheet)
	if err != nil {
		return nil, l.fail(log, progress, err)
	}
	log.WithField("rows", len(table.Rows)).Info("workbook read")

	return l.load(ctx, in, table, log, progress)
}

// LoadTable loads an already parsed table.
func (l *Loader) LoadTable(ctx context.Context, in Input, table *Table, progress ProgressFunc) (*Summary, error) {
	if in.LoadID == "" {
		in.LoadID = uuid.NewString()
	}
	log := l.opts.Logger.WithFields(logrus.Fields{"load_id": in.LoadID, "filename": in.Filename})
	return l.load(ctx, in, table, log, progress)
}

func (l *Loader) load(ctx context.Context, in Input, table *Table, log *logrus.Entry, progress ProgressFunc) (*Summary, error) {
	if err := CheckColumns(table.Header); err != nil {
		return nil, l.fail(log, progress, err)
	}
	progress.emit(StatusProgress, fmt.Sprintf("Found %d rows", len(table.Rows)), 10, nil)

	cleaner := &Cleaner{}
	rows := cleaner.CleanAll(table.Rows)
	if d := cleaner.Diagnostics; d.Total() > 0 {
		log.WithFields(logrus.Fields{
			"defaulted_dates":     d.DefaultedDates,
			"defaulted_times":     d.DefaultedTimes,
			"invalid_numbers":     d.InvalidNumbers,
			"placeholder_clients": d.PlaceholderClients,
			"placeholder_jobs":    d.PlaceholderJobs,
		}).Warn("values defaulted while cleaning")
	}
	progress.emit(StatusProgress, fmt.Sprintf("Cleaned %d rows", len(rows)), 15, nil)

	step := 0
	dims, created, err := resolveDimensions(ctx, l.store, rows, log.WithField("stage", "dimensions"), func(name string, n int) {
		step++
		progress.emit(StatusProgress, fmt.Sprintf("Resolved %s (%d new)", name, n), 15+step*8, nil)
	})
	if err != nil {
		return nil, l.fail(log, progress, err)
	}

	from, to, hasRows := DateRange(rows)
	var built BuildResult
	if hasRows {
		keys, err := l.store.FactKeys(ctx, from, to)
		if err != nil {
			return nil, l.fail(log, progress, fmt.Errorf("failed to fetch existing shifts: %w", err))
		}
		built = BuildFacts(rows, dims, keys)
	}
	progress.emit(StatusProgress, fmt.Sprintf("Prepared %d shifts, %d rows skipped", len(built.Facts), len(built.Skips)), 60, nil)

	writer := &Writer{Store: l.store, BatchSize: l.opts.BatchSize, Log: log.WithField("stage", "write")}
	written := writer.Write(ctx, built.Facts, func(batch, total, inserted int) {
		progress.emit(StatusProgress, fmt.Sprintf("Saved batch %d of %d (%d rows)", batch, total, inserted), 60+30*batch/total, nil)
	})

	progress.emit(StatusProgress, "Verifying totals", 95, nil)
	skips := make([]SkipRecord, 0, len(built.Skips)+len(written.Failed))
	skips = append(append(skips, built.Skips...), written.Failed...)
	reconciler := &Reconciler{Store: l.store, Tolerance: l.opts.Tolerance}
	rec, err := reconciler.Reconcile(ctx, rows, skips)
	if err != nil {
		return nil, l.fail(log, progress, err)
	}

	summary := &Summary{
		LoadID:         in.LoadID,
		Filename:       in.Filename,
		Rows:           len(rows),
		Inserted:       written.Inserted,
		Skipped:        len(built.Skips),
		Failed:         len(written.Failed),
		SkippedDetails: skips,
		Verification:   rec.Verification(),
		NewDimensions:  *created,
		Diagnostics:    cleaner.Diagnostics,
		Reconciliation: rec,
	}

	entry := log.WithFields(logrus.Fields{
		"rows":       summary.Rows,
		"inserted":   summary.Inserted,
		"skipped":    summary.Skipped,
		"failed":     summary.Failed,
		"source_net": rec.AdjustedSource.StringFixed(2),
		"stored_net": rec.Persisted.StringFixed(2),
	})
	if rec.Match {
		entry.Info("load complete")
	} else {
		entry.WithField("difference", rec.Difference().StringFixed(2)).Warn("load complete with reconciliation mismatch")
	}

	progress.emit(StatusComplete, fmt.Sprintf("Loaded %d of %d rows", summary.Inserted, summary.Rows), 100, summary)
	return summary, nil
}

func (l *Loader) fail(log *logrus.Entry, progress ProgressFunc, err error) error {
	log.WithError(err).Error("load failed")
	progress.emit(StatusError, fmt.Sprintf("Upload error: %v", err), 0, nil)
	return err
}
