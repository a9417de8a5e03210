package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"shiftinsight.com/shiftinsight/core"
	"shiftinsight.com/shiftinsight/infrastructure/communication"
	"shiftinsight.com/shiftinsight/infrastructure/metrics"
	"shiftinsight.com/shiftinsight/loader"
	"shiftinsight.com/shiftinsight/model"
)

type Options struct {
	Loader      loader.Options
	LookupChunk int
	Notifiers   communication.Notifiers
}

// Service runs loads against the warehouse and records their outcome. Every surface
// (upload endpoint, CLI, S3 lambda) goes through it.
type Service struct {
	dm   *core.DatabaseManager
	opts Options
}

func New(dm *core.DatabaseManager, opts Options) *Service {
	if opts.Loader.Logger == nil {
		opts.Loader.Logger = logrus.StandardLogger()
	}
	return &Service{dm: dm, opts: opts}
}

func (s *Service) log() *logrus.Logger {
	return s.opts.Loader.Logger
}

// Load loads one workbook on a dedicated connection. The run is saved to load_runs whether it
// completes or fails; failing to save it is logged and does not fail the load.
func (s *Service) Load(ctx context.Context, in loader.Input, source string, progress loader.ProgressFunc) (*loader.Summary, error) {
	if in.LoadID == "" {
		in.LoadID = uuid.NewString()
	}
	log := s.log().WithFields(logrus.Fields{"load_id": in.LoadID, "filename": in.Filename, "source": source})

	terminal := false
	track := func(e loader.Event) {
		if e.Status != loader.StatusProgress {
			terminal = true
		}
		if progress != nil {
			progress(e)
		}
	}

	started := time.Now()
	var summary *loader.Summary
	err := s.dm.Exec(ctx, func(db *gorm.DB) error {
		wh := core.NewWarehouse(db, s.opts.LookupChunk)

		var loadErr error
		summary, loadErr = loader.New(wh, s.opts.Loader).LoadFile(ctx, in, track)

		var run *model.LoadRun
		if loadErr != nil {
			run = core.FailedLoadRun(in.LoadID, in.Filename, source, loadErr)
		} else {
			var err error
			if run, err = core.NewLoadRun(summary, source); err != nil {
				log.WithError(err).Warn("failed to build load run")
				return nil
			}
		}
		if err := wh.SaveLoadRun(ctx, run); err != nil {
			log.WithError(err).Warn("failed to save load run")
		}
		return loadErr
	})
	metrics.Record(summary, time.Since(started), err)

	if err != nil {
		if !terminal {
			log.WithError(err).Error("load failed before reading")
			track(loader.Event{Status: loader.StatusError, Message: fmt.Sprintf("Upload error: %v", err)})
		}
		s.opts.Notifiers.Failed(ctx, log, in.LoadID, in.Filename, err)
		return nil, err
	}

	s.opts.Notifiers.Completed(ctx, log, summary)
	return summary, nil
}

// Migrate creates or updates the warehouse schema.
func (s *Service) Migrate(ctx context.Context) error {
	return s.dm.Exec(ctx, func(db *gorm.DB) error {
		return core.Migrate(ctx, db, s.log().WithField("stage", "migrate"))
	})
}

// ListLoadRuns returns one page of load history, newest first.
func (s *Service) ListLoadRuns(ctx context.Context, limit, offset int) ([]model.LoadRun, int64, error) {
	var (
		runs  []model.LoadRun
		total int64
	)
	err := s.dm.Exec(ctx, func(db *gorm.DB) error {
		var err error
		runs, total, err = core.NewWarehouse(db, s.opts.LookupChunk).ListLoadRuns(ctx, limit, offset)
		return err
	})
	return runs, total, err
}

func (s *Service) GetLoadRun(ctx context.Context, loadID string) (*model.LoadRun, error) {
	var run *model.LoadRun
	err := s.dm.Exec(ctx, func(db *gorm.DB) error {
		var err error
		run, err = core.NewWarehouse(db, s.opts.LookupChunk).GetLoadRun(ctx, loadID)
		return err
	})
	return run, err
}
