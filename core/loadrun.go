package core

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"
	"shiftinsight.com/shiftinsight/loader"
	"shiftinsight.com/shiftinsight/model"
)

const (
	SourceUpload = "upload"
	SourceCLI    = "cli"
	SourceS3     = "s3"
)

// NewLoadRun turns a completed load into its history row.
func NewLoadRun(summary *loader.Summary, source string) (*model.LoadRun, error) {
	diagnostics, err := json.Marshal(summary.Diagnostics)
	if err != nil {
		return nil, fmt.Errorf("failed to encode diagnostics: %w", err)
	}
	skipped := summary.SkippedDetails
	if skipped == nil {
		skipped = []loader.SkipRecord{}
	}
	details, err := json.Marshal(skipped)
	if err != nil {
		return nil, fmt.Errorf("failed to encode skipped rows: %w", err)
	}

	run := &model.LoadRun{
		LoadID:           summary.LoadID,
		Filename:         summary.Filename,
		Source:           source,
		Status:           model.LoadStatusComplete,
		Rows:             summary.Rows,
		Inserted:         summary.Inserted,
		Skipped:          summary.Skipped,
		Failed:           summary.Failed,
		NewDimensionRows: summary.NewDimensions.Total(),
		Match:            summary.Verification.Match,
		Diagnostics:      datatypes.JSON(diagnostics),
		SkippedDetails:   datatypes.JSON(details),
	}
	if rec := summary.Reconciliation; rec != nil {
		run.FirstDateID = rec.FromDateID
		run.LastDateID = rec.ToDateID
		run.RawTotal = rec.RawSource.Round(2).InexactFloat64()
		run.AdjustedTotal = rec.AdjustedSource.Round(2).InexactFloat64()
		run.PersistedTotal = rec.Persisted.Round(2).InexactFloat64()
	}
	return run, nil
}

// FailedLoadRun records a load that stopped with a fatal error.
func FailedLoadRun(loadID, filename, source string, cause error) *model.LoadRun {
	return &model.LoadRun{
		LoadID:   loadID,
		Filename: filename,
		Source:   source,
		Status:   model.LoadStatusError,
		Error:    cause.Error(),
	}
}

func (w *Warehouse) SaveLoadRun(ctx context.Context, run *model.LoadRun) error {
	return w.db.WithContext(ctx).Create(run).Error
}

// ListLoadRuns returns one page of load history, newest first, and the total number of runs.
// Skipped row details are not loaded.
func (w *Warehouse) ListLoadRuns(ctx context.Context, limit, offset int) ([]model.LoadRun, int64, error) {
	var total int64
	if err := w.db.WithContext(ctx).Model(&model.LoadRun{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var runs []model.LoadRun
	err := w.db.WithContext(ctx).
		Omit("skipped_details").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&runs).Error
	if err != nil {
		return nil, 0, err
	}
	return runs, total, nil
}

// GetLoadRun returns one run including its skipped row details.
func (w *Warehouse) GetLoadRun(ctx context.Context, loadID string) (*model.LoadRun, error) {
	var run model.LoadRun
	if err := w.db.WithContext(ctx).Where("load_id = ?", loadID).First(&run).Error; err != nil {
		return nil, err
	}
	return &run, nil
}
