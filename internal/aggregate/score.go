package aggregate

import (
	"strings"
	"time"

	"jobpulse/internal/domain"
)

const recentWindow = 7 * 24 * time.Hour

// relevanceScore weighs where the query text appears in a record. Title
// matches dominate, then company, description and requirements; a small
// bonus rewards postings from the last seven days.
func relevanceScore(j domain.JobRecord, query string, now time.Time) int {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return 0
	}

	score := 0
	if strings.Contains(strings.ToLower(j.Title), q) {
		score += 10
	}
	if strings.Contains(strings.ToLower(j.Company), q) {
		score += 8
	}
	if strings.Contains(strings.ToLower(j.Description), q) {
		score += 5
	}
	for _, r := range j.Requirements {
		if strings.Contains(strings.ToLower(r), q) {
			score += 3
			break
		}
	}
	if !j.PostedAt.IsZero() && now.Sub(j.PostedAt) <= recentWindow {
		score += 2
	}
	return score
}
