package discovery

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sightline-data/sightline-engine/pkg/adapters/datasource"
	"github.com/sightline-data/sightline-engine/pkg/cache"
	"github.com/sightline-data/sightline-engine/pkg/models"
)

func newTestOrchestrator(t *testing.T, f *fakeCatalog, enabled bool) *Orchestrator {
	t.Helper()
	store := cache.New(t.TempDir(), enabled, 64<<20, nil)
	return NewOrchestrator(f, store, datasource.NewStatementLog(), 4*time.Hour, 20000, nil)
}

func TestDiscover_PaginationMath(t *testing.T) {
	f := newFakeCatalog()
	for i := 0; i < 12; i++ {
		f.databases = append(f.databases, fmt.Sprintf("db%02d", i))
	}

	orch := newTestOrchestrator(t, f, false)

	report, _, err := orch.Discover(context.Background(), Request{
		DetailLevel: DetailSummary,
		Page:        1,
		PageSize:    5,
	})
	require.NoError(t, err)

	assert.Equal(t, 3, report.Pagination.TotalPages)
	assert.Equal(t, 12, report.Pagination.TotalDatabases)
	assert.False(t, report.Pagination.HasPreviousPage)
	assert.True(t, report.Pagination.HasNextPage)
	require.Len(t, report.AnalyzedDatabases, 5)
	assert.Equal(t, "db00", report.AnalyzedDatabases[0])
	assert.Equal(t, "db04", report.AnalyzedDatabases[4])

	report, _, err = orch.Discover(context.Background(), Request{
		DetailLevel: DetailSummary,
		Page:        3,
		PageSize:    5,
	})
	require.NoError(t, err)

	assert.Len(t, report.AnalyzedDatabases, 2)
	assert.False(t, report.Pagination.HasNextPage)
	assert.True(t, report.Pagination.HasPreviousPage)
}

func TestDiscover_OutOfRangePageYieldsEmptySet(t *testing.T) {
	f := newFakeCatalog()
	f.databases = []string{"a", "b"}

	orch := newTestOrchestrator(t, f, false)

	report, _, err := orch.Discover(context.Background(), Request{
		DetailLevel: DetailSummary,
		Page:        9,
		PageSize:    5,
	})
	require.NoError(t, err)

	assert.Empty(t, report.AnalyzedDatabases)
	assert.Equal(t, 9, report.Pagination.Page)
	assert.False(t, report.Pagination.HasNextPage)
	assert.True(t, report.Pagination.HasPreviousPage)
}

func TestPaginate_NonPositivePageSizeIsClampedToOne(t *testing.T) {
	databases := []string{"a", "b", "c"}

	for _, size := range []int{0, -5} {
		pagination, window := paginate(databases, 1, size)
		assert.Equal(t, 1, pagination.PageSize, "page size %d", size)
		assert.Equal(t, 3, pagination.TotalPages, "page size %d", size)
		assert.Equal(t, []string{"a"}, window, "page size %d", size)
		assert.True(t, pagination.HasNextPage, "page size %d", size)
	}
}

func TestDiscover_ExcludesSystemSchemas(t *testing.T) {
	f := newFakeCatalog()
	f.databases = []string{"information_schema", "mysql", "performance_schema", "sys", "app"}

	orch := newTestOrchestrator(t, f, false)

	report, _, err := orch.Discover(context.Background(), Request{
		DetailLevel: DetailSummary,
		Page:        1,
		PageSize:    10,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"app"}, report.AllDatabases)
}

func TestDiscover_SecondCallServedFromCache(t *testing.T) {
	f := newFakeCatalog()
	f.databases = []string{"shop"}
	seedShop(f)

	orch := newTestOrchestrator(t, f, true)

	req := Request{DetailLevel: DetailDetailed, Page: 1, PageSize: 5}

	first, prov, err := orch.Discover(context.Background(), req)
	require.NoError(t, err)
	assert.Nil(t, prov, "first call is a live computation")

	callsAfterFirst := f.callCount()

	second, prov, err := orch.Discover(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, prov, "second call must hit the cache")
	assert.True(t, prov.Hit)
	assert.Less(t, prov.AgeSeconds, int64(4*60*60))

	// Only the database-list resolution touches the catalog on a hit.
	assert.Equal(t, callsAfterFirst+1, f.callCount(),
		"no catalog analysis queries on a cache hit")

	assert.Equal(t, first.Pagination, second.Pagination)
	assert.Equal(t, len(first.Databases), len(second.Databases))
}

func TestDiscover_FailureAbortsWholeCall(t *testing.T) {
	f := newFakeCatalog()
	f.databases = []string{"good", "bad"}
	f.addTable("good", datasource.TableStatsRow{TableName: "t"}, nil)
	f.failOn = "bad"

	orch := newTestOrchestrator(t, f, false)

	_, _, err := orch.Discover(context.Background(), Request{
		DetailLevel: DetailSummary,
		Page:        1,
		PageSize:    5,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, errCatalogUnavailable)
}

func TestDiscover_CrossDatabaseInsights(t *testing.T) {
	f := newFakeCatalog()
	f.databases = []string{"us", "eu"}
	for _, db := range []string{"us", "eu"} {
		f.addTable(db,
			datasource.TableStatsRow{TableName: "users", RowCount: 10, DataBytes: 10},
			[]datasource.ColumnRow{{ColumnName: "user_name", DataType: "varchar"}})
	}

	orch := newTestOrchestrator(t, f, false)

	report, _, err := orch.Discover(context.Background(), Request{
		DetailLevel:           DetailDetailed,
		Page:                  1,
		PageSize:              5,
		CrossDatabaseAnalysis: true,
	})
	require.NoError(t, err)

	require.Len(t, report.CrossDatabase, 2)
	assert.Equal(t, "duplicate_table_structure", report.CrossDatabase[0].Type)
	assert.Equal(t, "users", report.CrossDatabase[0].Table)
	assert.Equal(t, []string{"eu", "us"}, report.CrossDatabase[0].Databases)
	assert.Equal(t, "distributed_user_data", report.CrossDatabase[1].Type)
}

func TestDiscover_Recommendations(t *testing.T) {
	f := newFakeCatalog()
	f.databases = []string{"shop"}
	seedShop(f)

	orch := newTestOrchestrator(t, f, false)

	report, _, err := orch.Discover(context.Background(), Request{
		DetailLevel:            DetailDetailed,
		Page:                   1,
		PageSize:               5,
		IncludeRecommendations: true,
	})
	require.NoError(t, err)

	require.NotEmpty(t, report.Recommendations)
	assert.Equal(t, "User cohort analysis", report.Recommendations[0].Title)
	assert.Contains(t, report.Recommendations[0].ExampleSQL, "JOIN")
}

func TestDiscover_SizeEstimateAndStatements(t *testing.T) {
	f := newFakeCatalog()
	f.databases = []string{"shop"}
	seedShop(f)

	orch := newTestOrchestrator(t, f, false)

	report, _, err := orch.Discover(context.Background(), Request{
		DetailLevel: DetailDetailed,
		Page:        1,
		PageSize:    5,
	})
	require.NoError(t, err)

	require.NotNil(t, report.SizeEstimate)
	assert.Greater(t, report.SizeEstimate.Bytes, 0)
	assert.Empty(t, report.SizeEstimate.Guidance, "small report needs no guidance")
}

func TestDiscover_ExplicitDatabaseListSkipsAutoDiscovery(t *testing.T) {
	f := newFakeCatalog()
	seedShop(f)

	orch := newTestOrchestrator(t, f, false)

	report, _, err := orch.Discover(context.Background(), Request{
		Databases:   []string{"shop"},
		DetailLevel: DetailSummary,
		Page:        1,
		PageSize:    5,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"shop"}, report.AllDatabases)
	require.Contains(t, report.Databases, "shop")
	assert.Equal(t, models.RoleUnknown, report.Databases["shop"].Tables["orders"].Classification.RoleType)
}
