package loader

import (
	"context"

	"github.com/sirupsen/logrus"
	"shiftinsight.com/shiftinsight/model"
	"shiftinsight.com/shiftinsight/utils"
)

const DefaultBatchSize = 1000

// FactInserter writes one batch of facts atomically.
type FactInserter interface {
	InsertFacts(ctx context.Context, facts []model.FactShift) error
}

type WriteResult struct {
	Inserted int
	Batches  int
	Failed   []SkipRecord
}

// Writer persists facts in fixed-size batches, one transaction per batch. A failed batch is
// retried row by row so only the offending rows are lost.
type Writer struct {
	Store     FactInserter
	BatchSize int
	Log       *logrus.Entry
}

// Write reports every finished batch (1-based) through onBatch.
func (w *Writer) Write(ctx context.Context, facts []PendingFact, onBatch func(batch, total, inserted int)) WriteResult {
	size := w.BatchSize
	if size <= 0 {
		size = DefaultBatchSize
	}
	log := w.Log
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	batches := utils.Chunk(facts, size)
	result := WriteResult{Batches: len(batches)}

	for i, batch := range batches {
		index := i + 1
		rows := utils.Map(batch, func(p PendingFact) model.FactShift { return p.Fact })

		if err := w.Store.InsertFacts(ctx, rows); err != nil {
			log.WithError(err).WithFields(logrus.Fields{"batch": index, "rows": len(batch)}).
				Error("batch insert failed, retrying row by row")
			inserted, failed := w.retryRows(ctx, batch, index, log)
			result.Inserted += inserted
			result.Failed = append(result.Failed, failed...)
		} else {
			log.WithFields(logrus.Fields{"batch": index, "rows": len(batch)}).Info("batch inserted")
			result.Inserted += len(batch)
		}

		if onBatch != nil {
			onBatch(index, len(batches), result.Inserted)
		}
	}

	return result
}

func (w *Writer) retryRows(ctx context.Context, batch []PendingFact, index int, log *logrus.Entry) (int, []SkipRecord) {
	inserted := 0
	var failed []SkipRecord
	for _, p := range batch {
		if err := w.Store.InsertFacts(ctx, []model.FactShift{p.Fact}); err != nil {
			log.WithError(err).WithFields(logrus.Fields{"batch": index, "row": p.Row}).Error("row insert failed")
			failed = append(failed, SkipRecord{
				Row:       p.Row,
				Reason:    ReasonInsertFailed,
				Details:   err.Error(),
				ClientNet: p.Fact.ClientNet,
			})
			continue
		}
		inserted++
	}
	log.WithFields(logrus.Fields{"batch": index, "rows": len(batch), "inserted": inserted, "failed": len(failed)}).
		Warn("batch recovered row by row")
	return inserted, failed
}
