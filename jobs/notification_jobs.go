package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"storeit/models"
	"storeit/services"
	"storeit/utils"
)

const (
	digestTTL  = 7 * 24 * time.Hour
	runTimeout = 30 * time.Minute
)

// NotificationJobs periodically sends activity digests and storage alerts.
type NotificationJobs struct {
	analytics     *services.AnalyticsService
	notifications *services.NotificationService
	users         services.UserDirectory
	interval      time.Duration
	threshold     float64
	logger        zerolog.Logger
	now           func() time.Time
}

func NewNotificationJobs(analytics *services.AnalyticsService, notifications *services.NotificationService, users services.UserDirectory, interval time.Duration, threshold float64) *NotificationJobs {
	return &NotificationJobs{
		analytics:     analytics,
		notifications: notifications,
		users:         users,
		interval:      interval,
		threshold:     threshold,
		logger:        utils.Component("notification_jobs"),
		now:           time.Now,
	}
}

// Start runs one pass immediately and then one per interval until ctx is
// cancelled. Users notified within the last interval are skipped, so a
// restart does not repeat a digest or alert.
func (j *NotificationJobs) Start(ctx context.Context) {
	j.logger.Info().Dur("interval", j.interval).Msg("starting notification jobs")

	j.RunOnce(ctx)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			j.logger.Info().Msg("notification jobs stopped")
			return
		case <-ticker.C:
			j.RunOnce(ctx)
		}
	}
}

// RunOnce sends one round of digests and storage alerts and reports how many
// notifications of each kind were created.
func (j *NotificationJobs) RunOnce(ctx context.Context) (digests, alerts int) {
	ctx, cancel := context.WithTimeout(ctx, runTimeout)
	defer cancel()

	digests = j.sendDigests(ctx)

	alerts, err := j.sendStorageAlerts(ctx)
	if err != nil {
		j.logger.Error().Err(err).Msg("storage alert run failed")
	}

	j.logger.Info().Int("digests", digests).Int("storage_alerts", alerts).Msg("notification run completed")
	return digests, alerts
}

func (j *NotificationJobs) sendDigests(ctx context.Context) int {
	expires := j.now().Add(digestTTL).UTC()

	sent := 0
	for _, userID := range j.analytics.ActiveUsers(ctx, models.PeriodDaily) {
		if j.alreadyNotified(ctx, userID, models.NotificationActivitySummary) {
			continue
		}

		summary := j.analytics.SummaryForUser(ctx, userID, models.PeriodDaily)
		if summary == nil {
			continue
		}

		_, ok := j.notifications.CreateNotification(ctx, services.NewNotification{
			UserID:  userID,
			Type:    models.NotificationActivitySummary,
			Title:   "Your daily activity",
			Message: digestMessage(summary.DashboardSummary),
			Data: map[string]any{
				"period":    string(summary.Period),
				"from":      summary.From,
				"uploads":   summary.Uploads,
				"downloads": summary.Downloads,
				"views":     summary.Views,
				"shares":    summary.Shares,
				"searches":  summary.Searches,
			},
			ExpiresAt: &expires,
		})
		if ok {
			sent++
		}
	}
	return sent
}

func (j *NotificationJobs) sendStorageAlerts(ctx context.Context) (int, error) {
	users, err := j.users.FindNearQuota(ctx, j.threshold)
	if err != nil {
		return 0, fmt.Errorf("failed to find users near quota: %w", err)
	}

	expires := j.now().Add(j.interval).UTC()

	sent := 0
	for _, user := range users {
		if user.MaxStorage <= 0 || j.alreadyNotified(ctx, user.ID.Hex(), models.NotificationStorageLimit) {
			continue
		}

		percent := float64(user.UsedStorage) / float64(user.MaxStorage) * 100

		_, ok := j.notifications.CreateNotification(ctx, services.NewNotification{
			UserID:  user.ID.Hex(),
			Type:    models.NotificationStorageLimit,
			Title:   "Storage almost full",
			Message: fmt.Sprintf("You have used %.0f%% of your storage.", percent),
			Data: map[string]any{
				"used_storage": user.UsedStorage,
				"max_storage":  user.MaxStorage,
			},
			ExpiresAt: &expires,
		})
		if ok {
			sent++
		}
	}
	return sent, nil
}

// alreadyNotified treats a failed lookup as notified so an outage cannot
// cause duplicates.
func (j *NotificationJobs) alreadyNotified(ctx context.Context, userID string, t models.NotificationType) bool {
	notified, err := j.notifications.NotifiedSince(ctx, userID, t, j.now().Add(-j.interval))
	if err != nil {
		j.logger.Error().Err(err).Str("user_id", userID).Msg("skipping notification")
		return true
	}
	return notified
}

func digestMessage(s models.DashboardSummary) string {
	return fmt.Sprintf("In the last 24 hours: %d uploads, %d downloads, %d views, %d shares, %d searches.",
		s.Uploads, s.Downloads, s.Views, s.Shares, s.Searches)
}
