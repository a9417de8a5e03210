package core

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"shiftinsight.com/shiftinsight/utils"
)

const DefaultLookupChunk = 500

type naturalKey interface {
	comparable
	Values() []any
}

type dimensionRow[K naturalKey] interface {
	NaturalKey() K
	SurrogateID() int32
}

// dimensionTable is a dimension table addressed by natural key. keyColumns are in K.Values() order;
// when empty the id column is the key, as for dim_dates.
type dimensionTable[K naturalKey, R dimensionRow[K]] struct {
	db          *gorm.DB
	idColumn    string
	keyColumns  []string
	lookupChunk int
}

func newDimensionTable[K naturalKey, R dimensionRow[K]](db *gorm.DB, lookupChunk int, idColumn string, keyColumns ...string) *dimensionTable[K, R] {
	if lookupChunk <= 0 {
		lookupChunk = DefaultLookupChunk
	}
	if len(keyColumns) == 0 {
		keyColumns = []string{idColumn}
	}
	return &dimensionTable[K, R]{db: db, idColumn: idColumn, keyColumns: keyColumns, lookupChunk: lookupChunk}
}

func (t *dimensionTable[K, R]) columns() []string {
	columns := []string{t.idColumn}
	for _, c := range t.keyColumns {
		if c != t.idColumn {
			columns = append(columns, c)
		}
	}
	return columns
}

func (t *dimensionTable[K, R]) index(rows []R, into map[K]int32) {
	for _, r := range rows {
		into[r.NaturalKey()] = r.SurrogateID()
	}
}

func (t *dimensionTable[K, R]) LoadKeys(ctx context.Context) (map[K]int32, error) {
	var rows []R
	if err := t.db.WithContext(ctx).Select(t.columns()).Find(&rows).Error; err != nil {
		return nil, err
	}
	ids := make(map[K]int32, len(rows))
	t.index(rows, ids)
	return ids, nil
}

// InsertRows leaves keys another writer created in the meantime untouched. Ids are read back with LookupKeys.
func (t *dimensionTable[K, R]) InsertRows(ctx context.Context, rows []R) error {
	if len(rows) == 0 {
		return nil
	}
	return t.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(&rows, t.lookupChunk).Error
}

// LookupKeys re-reads ids for keys in chunks of lookupChunk. Keys absent from the table are absent from the result.
func (t *dimensionTable[K, R]) LookupKeys(ctx context.Context, keys []K) (map[K]int32, error) {
	ids := make(map[K]int32, len(keys))
	for _, chunk := range utils.Chunk(keys, t.lookupChunk) {
		var rows []R
		if err := t.db.WithContext(ctx).Select(t.columns()).Where(t.inClause(), t.inValues(chunk)).Find(&rows).Error; err != nil {
			return nil, err
		}
		t.index(rows, ids)
	}
	return ids, nil
}

func (t *dimensionTable[K, R]) inClause() string {
	if len(t.keyColumns) == 1 {
		return fmt.Sprintf("%s IN ?", t.keyColumns[0])
	}
	return fmt.Sprintf("(%s) IN ?", strings.Join(t.keyColumns, ", "))
}

func (t *dimensionTable[K, R]) inValues(keys []K) any {
	if len(t.keyColumns) == 1 {
		return utils.Map(keys, func(k K) any { return k.Values()[0] })
	}
	return utils.Map(keys, func(k K) []any { return k.Values() })
}
