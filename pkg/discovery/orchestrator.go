package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sightline-data/sightline-engine/pkg/adapters/datasource"
	"github.com/sightline-data/sightline-engine/pkg/cache"
	"github.com/sightline-data/sightline-engine/pkg/models"
)

// systemSchemas are never auto-discovered as analysis targets.
var systemSchemas = map[string]bool{
	"information_schema": true,
	"performance_schema": true,
	"mysql":              true,
	"sys":                true,
}

// Request is the argument bag for one discovery call.
type Request struct {
	Databases              []string
	FocusArea              string
	DetailLevel            string
	MaxTablesPerDB         int
	SampleDataLimit        int
	Page                   int
	PageSize               int
	CrossDatabaseAnalysis  bool
	IncludeRecommendations bool
}

// Orchestrator drives a full discovery call: database resolution, pagination,
// per-database analysis, cross-database insights, recommendations and cache
// round-trips.
type Orchestrator struct {
	catalog        datasource.CatalogReader
	analyzer       *Analyzer
	store          *cache.Store
	stmtLog        *datasource.StatementLog
	ttl            time.Duration
	tokenThreshold int
	logger         *zap.Logger
}

// NewOrchestrator creates a discovery orchestrator.
// If logger is nil, a no-op logger is used.
func NewOrchestrator(catalog datasource.CatalogReader, store *cache.Store, stmtLog *datasource.StatementLog, ttl time.Duration, tokenThreshold int, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		catalog:        catalog,
		analyzer:       NewAnalyzer(catalog, logger),
		store:          store,
		stmtLog:        stmtLog,
		ttl:            ttl,
		tokenThreshold: tokenThreshold,
		logger:         logger,
	}
}

// Discover runs one discovery call. Databases within the page are analyzed
// sequentially; a failure on any database aborts the whole call so reports
// are never partially populated. Identical requests within the TTL window are
// served from the cache with fresh provenance.
func (o *Orchestrator) Discover(ctx context.Context, req Request) (*models.DiscoveryReport, *cache.Provenance, error) {
	databases, err := o.resolveDatabases(ctx, req.Databases)
	if err != nil {
		return nil, nil, err
	}

	fingerprint := requestFingerprint(req, databases)
	if payload, prov := o.store.Read(cache.OpDiscovery, "server", fingerprint, o.ttl); payload != nil {
		var report models.DiscoveryReport
		if err := json.Unmarshal(payload, &report); err == nil {
			o.logger.Debug("discovery served from cache",
				zap.Int64("age_seconds", prov.AgeSeconds))
			return &report, prov, nil
		}
		o.logger.Warn("discarding undecodable cached discovery report", zap.Error(err))
	}

	pagination, window := paginate(databases, req.Page, req.PageSize)

	o.stmtLog.Reset()

	report := &models.DiscoveryReport{
		AllDatabases:      databases,
		AnalyzedDatabases: window,
		Databases:         make(map[string]*models.DatabaseAnalysis, len(window)),
		Pagination:        pagination,
		FocusArea:         req.FocusArea,
	}

	for _, db := range window {
		analysis, err := o.analyzer.Analyze(ctx, db, req.DetailLevel, req.MaxTablesPerDB, req.SampleDataLimit)
		if err != nil {
			return nil, nil, err
		}
		report.Databases[db] = analysis
	}

	report.ExecutedStatements = o.stmtLog.Statements()

	if req.CrossDatabaseAnalysis && len(window) > 1 {
		report.CrossDatabase = crossDatabaseInsights(report.Databases)
	}

	if req.IncludeRecommendations {
		report.Recommendations = recommend(report.Databases)
	}

	report.SizeEstimate = estimateSize(report, o.tokenThreshold)

	o.store.Write(report, cache.OpDiscovery, "server", fingerprint)

	return report, nil, nil
}

// resolveDatabases returns the caller-supplied list, or every visible
// database minus the system-schema exclusion set.
func (o *Orchestrator) resolveDatabases(ctx context.Context, requested []string) ([]string, error) {
	if len(requested) > 0 {
		out := make([]string, len(requested))
		copy(out, requested)
		return out, nil
	}

	all, err := o.catalog.ListDatabases(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve databases: %w", err)
	}

	databases := make([]string, 0, len(all))
	for _, db := range all {
		if !systemSchemas[db] {
			databases = append(databases, db)
		}
	}
	return databases, nil
}

// paginate computes the pagination window. The page number is not clamped:
// out-of-range pages yield an empty window with flags computed from the raw
// page number. A non-positive page size is clamped to 1 so the math stays
// well defined for direct library callers.
func paginate(databases []string, page, pageSize int) (models.Pagination, []string) {
	if pageSize < 1 {
		pageSize = 1
	}
	total := len(databases)
	totalPages := (total + pageSize - 1) / pageSize

	p := models.Pagination{
		Page:            page,
		PageSize:        pageSize,
		TotalDatabases:  total,
		TotalPages:      totalPages,
		HasNextPage:     page < totalPages,
		HasPreviousPage: page > 1,
	}

	start := (page - 1) * pageSize
	end := start + pageSize
	if start < 0 || start >= total {
		return p, []string{}
	}
	if end > total {
		end = total
	}
	return p, databases[start:end]
}

// requestFingerprint builds a stable fingerprint of everything that affects
// the report content. The database list is sorted so caller ordering does not
// defeat the cache.
func requestFingerprint(req Request, databases []string) string {
	sorted := make([]string, len(databases))
	copy(sorted, databases)
	sort.Strings(sorted)

	return cache.FingerprintArgs(map[string]any{
		"focus_area":      req.FocusArea,
		"detail_level":    req.DetailLevel,
		"page":            req.Page,
		"page_size":       req.PageSize,
		"max_tables":      req.MaxTablesPerDB,
		"sample_limit":    req.SampleDataLimit,
		"cross_database":  req.CrossDatabaseAnalysis,
		"recommendations": req.IncludeRecommendations,
		"databases":       strings.Join(sorted, ","),
	})
}

// crossDatabaseInsights detects structural patterns recurring across the
// analyzed databases.
func crossDatabaseInsights(analyses map[string]*models.DatabaseAnalysis) []models.CrossDatabaseInsight {
	insights := make([]models.CrossDatabaseInsight, 0)

	// Tables whose name recurs across databases.
	tableHosts := make(map[string][]string)
	for dbName, analysis := range analyses {
		for tableName := range analysis.Tables {
			tableHosts[tableName] = append(tableHosts[tableName], dbName)
		}
	}

	tableNames := make([]string, 0, len(tableHosts))
	for name := range tableHosts {
		tableNames = append(tableNames, name)
	}
	sort.Strings(tableNames)

	for _, tableName := range tableNames {
		hosts := tableHosts[tableName]
		if len(hosts) < 2 {
			continue
		}
		sort.Strings(hosts)
		insights = append(insights, models.CrossDatabaseInsight{
			Type:        "duplicate_table_structure",
			Description: fmt.Sprintf("table %q exists in %d databases", tableName, len(hosts)),
			Databases:   hosts,
			Table:       tableName,
		})
	}

	// Databases that independently hold user or event tables.
	var userDataHosts []string
	for dbName, analysis := range analyses {
		if analysis.Summary.RoleCounts[models.RoleUserDimension] > 0 ||
			analysis.Summary.RoleCounts[models.RoleUserEvents] > 0 {
			userDataHosts = append(userDataHosts, dbName)
		}
	}
	if len(userDataHosts) >= 2 {
		sort.Strings(userDataHosts)
		insights = append(insights, models.CrossDatabaseInsight{
			Type:        "distributed_user_data",
			Description: fmt.Sprintf("%d databases contain user or event tables; cross-database user analysis may need identity stitching", len(userDataHosts)),
			Databases:   userDataHosts,
		})
	}

	return insights
}

// estimateSize reports the serialized report size with guidance when it is
// likely to exceed the caller's context budget. The already-computed data is
// never truncated.
func estimateSize(report *models.DiscoveryReport, tokenThreshold int) *models.SizeEstimate {
	data, err := json.Marshal(report)
	if err != nil {
		return nil
	}

	// Rough heuristic: one token per four bytes of JSON.
	estimate := &models.SizeEstimate{
		Bytes:           len(data),
		EstimatedTokens: len(data) / 4,
	}

	if tokenThreshold > 0 && estimate.EstimatedTokens > tokenThreshold {
		estimate.Guidance = []string{
			"reduce page_size to analyze fewer databases per call",
			"use detail_level=summary for a cheaper first pass",
			"pass an explicit databases filter to narrow the scope",
		}
	}

	return estimate
}
