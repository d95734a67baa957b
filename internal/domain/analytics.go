package domain

import "time"

type TrendDirection string

const (
	TrendIncreasing TrendDirection = "increasing"
	TrendStable     TrendDirection = "stable"
	TrendDecreasing TrendDirection = "decreasing"
)

type IndustryTrend struct {
	Skill  string  `json:"skill"`
	Demand float64 `json:"demand"`
}

type SalaryInsight struct {
	Average    int            `json:"average"`
	Percentile int            `json:"percentile"`
	Trend      TrendDirection `json:"trend"`
}

// AnalyticsSnapshot is rebuilt per request and never persisted; it must
// always be derivable, synthetically if necessary.
type AnalyticsSnapshot struct {
	UserID              string          `json:"user_id"`
	ProfileViews        int             `json:"profile_views"`
	ApplicationsSent    int             `json:"applications_sent"`
	InterviewsScheduled int             `json:"interviews_scheduled"`
	ResponseRate        float64         `json:"response_rate"`
	AvgResponseDays     float64         `json:"avg_response_days"`
	TopSkills           []string        `json:"top_skills"`
	IndustryTrends      []IndustryTrend `json:"industry_trends"`
	Salary              SalaryInsight   `json:"salary_insight"`
}

// ActivityEvent is the fire-and-forget telemetry payload carried by
// activity:track and analytics:track_view.
type ActivityEvent struct {
	UserID     string            `json:"user_id"`
	Action     string            `json:"action"`
	Target     string            `json:"target,omitempty"`
	Properties map[string]string `json:"properties,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}
