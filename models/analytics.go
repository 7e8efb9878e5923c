package models

import "time"

// DashboardSummary holds the per-action counters shown on the dashboard.
// Rename and delete are intentionally not part of the shape.
type DashboardSummary struct {
	Uploads   int64 `json:"uploads"`
	Downloads int64 `json:"downloads"`
	Views     int64 `json:"views"`
	Shares    int64 `json:"shares"`
	Searches  int64 `json:"searches"`
}

// NewDashboardSummary projects raw per-action counts onto the summary shape.
func NewDashboardSummary(counts map[Action]int64) DashboardSummary {
	return DashboardSummary{
		Uploads:   counts[ActionUpload],
		Downloads: counts[ActionDownload],
		Views:     counts[ActionView],
		Shares:    counts[ActionShare],
		Searches:  counts[ActionSearch],
	}
}

type SummaryPeriod string

const (
	PeriodDaily   SummaryPeriod = "daily"
	PeriodWeekly  SummaryPeriod = "weekly"
	PeriodMonthly SummaryPeriod = "monthly"
)

// Window returns the sliding window length for the period.
func (p SummaryPeriod) Window() (time.Duration, bool) {
	switch p {
	case PeriodDaily:
		return 24 * time.Hour, true
	case PeriodWeekly:
		return 7 * 24 * time.Hour, true
	case PeriodMonthly:
		return 30 * 24 * time.Hour, true
	default:
		return 0, false
	}
}

type ActivitySummary struct {
	UserID string        `json:"user_id"`
	Period SummaryPeriod `json:"period"`
	From   time.Time     `json:"from"`
	DashboardSummary
}

type RecentActivity struct {
	Action      Action    `json:"action"`
	FileName    string    `json:"file_name,omitempty"`
	SearchQuery string    `json:"search_query,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

func NewRecentActivity(l ActivityLog) RecentActivity {
	return RecentActivity{
		Action:      l.Action,
		FileName:    l.Details.FileName,
		SearchQuery: l.Details.SearchQuery,
		Timestamp:   l.Timestamp,
	}
}

// Dashboard is the read model rendered by the dashboard view.
type Dashboard struct {
	Summary        DashboardSummary `json:"summary"`
	RecentActivity []RecentActivity `json:"recent_activity"`
}
