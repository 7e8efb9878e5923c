package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"storeit/models"
	"storeit/store"
	"storeit/utils"
)

const (
	dashboardWindow     = 7 * 24 * time.Hour
	recentActivityLimit = 10
)

// AnalyticsService aggregates activity logs into dashboard counters.
type AnalyticsService struct {
	store    store.ActivityStore
	resolver CurrentUserResolver
	logger   zerolog.Logger
	now      func() time.Time
}

func NewAnalyticsService(s store.ActivityStore, resolver CurrentUserResolver) *AnalyticsService {
	return &AnalyticsService{
		store:    s,
		resolver: resolver,
		logger:   utils.Component("analytics"),
		now:      time.Now,
	}
}

// GetDashboardAnalytics counts the current user's actions over the last
// seven days. It returns nil when nobody is signed in or the read fails.
func (s *AnalyticsService) GetDashboardAnalytics(ctx context.Context) *models.DashboardSummary {
	user := s.currentUser(ctx)
	if user == nil {
		return nil
	}

	counts, ok := s.countSince(ctx, user.ID, s.now().Add(-dashboardWindow))
	if !ok {
		return nil
	}

	summary := models.NewDashboardSummary(counts)
	return &summary
}

// GetActivitySummary counts the current user's actions over the sliding
// window of period. Unknown periods yield nil.
func (s *AnalyticsService) GetActivitySummary(ctx context.Context, period models.SummaryPeriod) *models.ActivitySummary {
	window, ok := period.Window()
	if !ok {
		return nil
	}

	user := s.currentUser(ctx)
	if user == nil {
		return nil
	}

	return s.summaryFor(ctx, user.ID, period, window)
}

// SummaryForUser is GetActivitySummary for an explicit user, used by jobs
// that run outside a request.
func (s *AnalyticsService) SummaryForUser(ctx context.Context, userID string, period models.SummaryPeriod) *models.ActivitySummary {
	window, ok := period.Window()
	if !ok || userID == "" {
		return nil
	}
	return s.summaryFor(ctx, userID, period, window)
}

// ActiveUsers lists users with activity inside the period's window.
func (s *AnalyticsService) ActiveUsers(ctx context.Context, period models.SummaryPeriod) []string {
	window, ok := period.Window()
	if !ok {
		return []string{}
	}

	users, err := s.store.ActiveUsers(ctx, s.now().Add(-window))
	if err != nil {
		utils.RequestLogger(ctx, s.logger).Error().Err(err).Msg("failed to list active users")
		return []string{}
	}
	return users
}

// GetDashboard builds the dashboard view model: the seven day summary and the
// most recent activity entries.
func (s *AnalyticsService) GetDashboard(ctx context.Context) *models.Dashboard {
	user := s.currentUser(ctx)
	if user == nil {
		return nil
	}

	counts, ok := s.countSince(ctx, user.ID, s.now().Add(-dashboardWindow))
	if !ok {
		return nil
	}

	recent := []models.RecentActivity{}
	logs, err := s.store.FindActivities(ctx, store.ActivityQuery{UserID: user.ID, Limit: recentActivityLimit})
	if err != nil {
		utils.RequestLogger(ctx, s.logger).Error().Err(err).Str("user_id", user.ID).Msg("failed to load recent activity")
	}
	for _, l := range logs {
		recent = append(recent, models.NewRecentActivity(l))
	}

	return &models.Dashboard{
		Summary:        models.NewDashboardSummary(counts),
		RecentActivity: recent,
	}
}

func (s *AnalyticsService) summaryFor(ctx context.Context, userID string, period models.SummaryPeriod, window time.Duration) *models.ActivitySummary {
	from := s.now().Add(-window)
	counts, ok := s.countSince(ctx, userID, from)
	if !ok {
		return nil
	}

	return &models.ActivitySummary{
		UserID:           userID,
		Period:           period,
		From:             from.UTC(),
		DashboardSummary: models.NewDashboardSummary(counts),
	}
}

func (s *AnalyticsService) countSince(ctx context.Context, userID string, since time.Time) (map[models.Action]int64, bool) {
	counts, err := s.store.CountActivitiesByAction(ctx, userID, since)
	if err != nil {
		utils.RequestLogger(ctx, s.logger).Error().Err(err).Str("user_id", userID).Msg("failed to aggregate activity")
		return nil, false
	}
	return counts, true
}

func (s *AnalyticsService) currentUser(ctx context.Context) *models.SessionUser {
	user, err := s.resolver.CurrentUser(ctx)
	if err != nil {
		utils.RequestLogger(ctx, s.logger).Error().Err(err).Msg("failed to resolve current user")
		return nil
	}
	return user
}
