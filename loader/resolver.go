package loader

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"shiftinsight.com/shiftinsight/utils"
)

// Resolver maps the natural keys of one dimension to surrogate ids, creating the rows it has not seen.
type Resolver[K comparable, R any] struct {
	Name  string
	Store DimensionStore[K, R]
	Key   func(R) K
	// ID, when set, derives the surrogate id from the key so inserted rows need no re-query.
	ID  func(K) int32
	Log *logrus.Entry
}

type Resolution[K comparable] struct {
	IDs     map[K]int32
	Created int
}

// Resolve works on the distinct candidates only: existing keys are fetched in one query,
// unseen keys are inserted in one batch and then re-queried for their ids. A failed insert
// (a concurrent load won the race for some of the keys) falls back to the re-query, and the
// keys the other writer did not create are inserted once more. Keys that still have no id
// fail the load.
func (r *Resolver[K, R]) Resolve(ctx context.Context, candidates []R) (*Resolution[K], error) {
	ids, err := r.Store.LoadKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s keys: %w", r.Name, err)
	}
	if ids == nil {
		ids = make(map[K]int32)
	}

	staged := utils.UniqueBy(utils.Filter(candidates, func(c R) bool {
		_, ok := ids[r.Key(c)]
		return !ok
	}), r.Key)

	res := &Resolution[K]{IDs: ids}
	if len(staged) == 0 {
		return res, nil
	}

	keys := utils.Map(staged, r.Key)
	log := r.logger().WithField("dimension", r.Name)

	insertErr := r.Store.InsertRows(ctx, staged)
	if insertErr == nil && r.ID != nil {
		for _, k := range keys {
			ids[k] = r.ID(k)
		}
		res.Created = len(keys)
		log.Infof("created %d %s rows", res.Created, r.Name)
		return res, nil
	}
	if insertErr != nil {
		log.WithError(insertErr).Warnf("insert of %d %s rows failed, re-querying by natural key", len(staged), r.Name)
	}

	found, err := r.Store.LookupKeys(ctx, keys)
	if err != nil {
		if insertErr != nil {
			return nil, fmt.Errorf("failed to insert %s rows (%v) and to re-query them: %w", r.Name, insertErr, err)
		}
		return nil, fmt.Errorf("failed to re-query new %s rows: %w", r.Name, err)
	}
	for k, id := range found {
		ids[k] = id
	}
	if insertErr == nil {
		res.Created = len(found)
	}

	retry := utils.Filter(staged, func(c R) bool {
		_, ok := ids[r.Key(c)]
		return !ok
	})
	if len(retry) > 0 && insertErr != nil {
		created, err := r.insertAgain(ctx, retry, ids)
		if err != nil {
			return nil, err
		}
		res.Created = created
	}

	if missing := len(keys) - countPresent(ids, keys); missing > 0 {
		return nil, fmt.Errorf("failed to resolve %d %s keys", missing, r.Name)
	}
	if res.Created > 0 {
		log.Infof("created %d %s rows", res.Created, r.Name)
	}
	return res, nil
}

// insertAgain writes the rows a racing writer did not create and merges their ids into ids.
func (r *Resolver[K, R]) insertAgain(ctx context.Context, rows []R, ids map[K]int32) (int, error) {
	keys := utils.Map(rows, r.Key)
	if err := r.Store.InsertRows(ctx, rows); err != nil {
		return 0, fmt.Errorf("failed to insert %d %s rows: %w", len(rows), r.Name, err)
	}
	if r.ID != nil {
		for _, k := range keys {
			ids[k] = r.ID(k)
		}
		return len(keys), nil
	}
	found, err := r.Store.LookupKeys(ctx, keys)
	if err != nil {
		return 0, fmt.Errorf("failed to re-query new %s rows: %w", r.Name, err)
	}
	for k, id := range found {
		ids[k] = id
	}
	return len(found), nil
}

func countPresent[K comparable](ids map[K]int32, keys []K) int {
	n := 0
	for _, k := range keys {
		if _, ok := ids[k]; ok {
			n++
		}
	}
	return n
}

func (r *Resolver[K, R]) logger() *logrus.Entry {
	if r.Log != nil {
		return r.Log
	}
	return logrus.NewEntry(logrus.StandardLogger())
}
