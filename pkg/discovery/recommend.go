package discovery

import (
	"github.com/sightline-data/sightline-engine/pkg/models"
)

// recommend generates analytic recommendations keyed off the aggregate role
// counts across all analyzed databases. The SQL is a template starting point,
// not a guaranteed-valid statement against any particular schema.
func recommend(analyses map[string]*models.DatabaseAnalysis) []models.Recommendation {
	counts := make(map[models.RoleType]int)
	for _, analysis := range analyses {
		for role, n := range analysis.Summary.RoleCounts {
			counts[role] += n
		}
	}

	recs := make([]models.Recommendation, 0)

	if counts[models.RoleUserDimension] > 0 && counts[models.RoleUserEvents] > 0 {
		recs = append(recs, models.Recommendation{
			Title:       "User cohort analysis",
			Description: "User dimension and event tables are both present; cohort retention by signup period is possible.",
			ExampleSQL: "SELECT DATE_FORMAT(u.created_at, '%Y-%m') AS cohort,\n" +
				"       COUNT(DISTINCT e.user_id) AS active_users\n" +
				"FROM users u\n" +
				"JOIN events e ON e.user_id = u.id\n" +
				"GROUP BY cohort\nORDER BY cohort",
		})
		recs = append(recs, models.Recommendation{
			Title:       "User activity timeline",
			Description: "Event tables carry user and time columns; a per-user activity timeline query applies.",
			ExampleSQL: "SELECT e.user_id, e.created_at, e.event_type\n" +
				"FROM events e\n" +
				"WHERE e.created_at >= NOW() - INTERVAL 30 DAY\n" +
				"ORDER BY e.user_id, e.created_at",
		})
	}

	if counts[models.RoleFactTable] > 0 {
		recs = append(recs, models.Recommendation{
			Title:       "Metric aggregation",
			Description: "Fact tables detected; aggregate metrics over dimension joins for reporting.",
			ExampleSQL: "SELECT d.name, SUM(f.amount) AS total_amount, COUNT(*) AS n\n" +
				"FROM fact_table f\n" +
				"JOIN dimension_table d ON d.id = f.dimension_id\n" +
				"GROUP BY d.name\nORDER BY total_amount DESC",
		})
	}

	if counts[models.RoleUserEvents] > 0 {
		recs = append(recs, models.Recommendation{
			Title:       "Event funnel analysis",
			Description: "Event tables detected; ordered event sequences per user support funnel queries.",
			ExampleSQL: "SELECT event_type, COUNT(DISTINCT user_id) AS users\n" +
				"FROM events\nGROUP BY event_type\nORDER BY users DESC",
		})
	}

	if counts[models.RoleDimensionTable] > 0 && counts[models.RoleFactTable] == 0 {
		recs = append(recs, models.Recommendation{
			Title:       "Normalized schema reporting",
			Description: "Dimension-style tables without fact tables suggest an operational schema; reporting queries will need joins across the relationship graph.",
		})
	}

	return recs
}
