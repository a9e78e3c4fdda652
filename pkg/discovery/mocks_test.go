package discovery

import (
	"context"
	"errors"
	"sync"

	"github.com/sightline-data/sightline-engine/pkg/adapters/datasource"
)

// fakeCatalog is an in-memory CatalogReader for engine tests.
type fakeCatalog struct {
	mu sync.Mutex

	databases []string
	stats     map[string][]datasource.TableStatsRow
	columns   map[string]map[string][]datasource.ColumnRow
	fks       map[string][]datasource.ForeignKeyRow
	samples   map[string]map[string][]map[string]any

	failOn string // database name whose stats fetch fails

	calls int // total catalog calls, for cache-hit assertions
}

var errCatalogUnavailable = errors.New("catalog unavailable")

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		stats:   make(map[string][]datasource.TableStatsRow),
		columns: make(map[string]map[string][]datasource.ColumnRow),
		fks:     make(map[string][]datasource.ForeignKeyRow),
		samples: make(map[string]map[string][]map[string]any),
	}
}

func (f *fakeCatalog) addTable(db string, stat datasource.TableStatsRow, cols []datasource.ColumnRow) {
	f.stats[db] = append(f.stats[db], stat)
	if f.columns[db] == nil {
		f.columns[db] = make(map[string][]datasource.ColumnRow)
	}
	f.columns[db][stat.TableName] = cols
}

func (f *fakeCatalog) record() {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
}

func (f *fakeCatalog) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeCatalog) ListDatabases(ctx context.Context) ([]string, error) {
	f.record()
	return f.databases, nil
}

func (f *fakeCatalog) ListTableStats(ctx context.Context, database string) ([]datasource.TableStatsRow, error) {
	f.record()
	if database == f.failOn && f.failOn != "" {
		return nil, errCatalogUnavailable
	}
	return f.stats[database], nil
}

func (f *fakeCatalog) ListColumns(ctx context.Context, database, table string) ([]datasource.ColumnRow, error) {
	f.record()
	return f.columns[database][table], nil
}

func (f *fakeCatalog) ListForeignKeys(ctx context.Context, database string) ([]datasource.ForeignKeyRow, error) {
	f.record()
	return f.fks[database], nil
}

func (f *fakeCatalog) SampleRows(ctx context.Context, database, table string, limit int) ([]map[string]any, error) {
	f.record()
	rows := f.samples[database][table]
	if limit < len(rows) {
		return rows[:limit], nil
	}
	return rows, nil
}
