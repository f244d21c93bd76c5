package calculaterecommendations

import (
	"strings"

	"visa-portal/internal/models"
)

type recommendationKey struct {
	title       string
	description string
}

// Aggregate turns backend rows into recommendations. Rows without a
// description are dropped; rows sharing the exact (title, description)
// pair collapse into the first one seen.
func Aggregate(rows []models.RecommendationRow) []models.Recommendation {
	out := make([]models.Recommendation, 0, len(rows))
	seen := make(map[recommendationKey]bool, len(rows))
	for _, row := range rows {
		if strings.TrimSpace(row.Description) == "" {
			continue
		}
		key := recommendationKey{title: row.Title, description: row.Description}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, models.Recommendation{
			Title:       row.Title,
			Description: row.Description,
			IsPositive:  row.Remark,
		})
	}
	return out
}
