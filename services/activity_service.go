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
	defaultActivityLimit     = 50
	defaultFileActivityLimit = 20
)

// ActivityService records user actions and reads them back. Every method is
// best-effort: failures are logged and never returned.
type ActivityService struct {
	store    store.ActivityStore
	resolver CurrentUserResolver
	logger   zerolog.Logger
	now      func() time.Time
}

func NewActivityService(s store.ActivityStore, resolver CurrentUserResolver) *ActivityService {
	return &ActivityService{
		store:    s,
		resolver: resolver,
		logger:   utils.Component("activity"),
		now:      time.Now,
	}
}

// LogActivity records details against fileID for the current user. It does
// nothing when nobody is signed in.
func (s *ActivityService) LogActivity(ctx context.Context, fileID string, details models.ActivityDetails) {
	logger := utils.RequestLogger(ctx, s.logger)

	if details == nil {
		logger.Warn().Str("file_id", fileID).Msg("activity without details ignored")
		return
	}

	user, err := s.resolver.CurrentUser(ctx)
	if err != nil {
		logger.Error().Err(err).Str("action", string(details.Action())).Msg("failed to resolve current user")
		return
	}
	if user == nil {
		return
	}

	entry := models.NewActivityLog(user.ID, fileID, details, s.now().UTC())
	if meta, ok := utils.RequestMetaFromContext(ctx); ok {
		entry.IPAddress = meta.IPAddress
		entry.UserAgent = meta.UserAgent
	}

	if err := s.store.InsertActivity(ctx, &entry); err != nil {
		logger.Error().Err(err).
			Str("user_id", user.ID).
			Str("action", string(entry.Action)).
			Msg("failed to log activity")
	}
}

// GetUserActivityLogs returns the current user's most recent activity.
func (s *ActivityService) GetUserActivityLogs(ctx context.Context, limit int) []models.ActivityLog {
	return s.find(ctx, "", clampLimit(limit, defaultActivityLimit))
}

// GetFileActivityLogs returns the current user's most recent activity on one
// file.
func (s *ActivityService) GetFileActivityLogs(ctx context.Context, fileID string, limit int) []models.ActivityLog {
	if fileID == "" {
		return []models.ActivityLog{}
	}
	return s.find(ctx, fileID, clampLimit(limit, defaultFileActivityLimit))
}

func (s *ActivityService) find(ctx context.Context, fileID string, limit int64) []models.ActivityLog {
	logger := utils.RequestLogger(ctx, s.logger)

	user, err := s.resolver.CurrentUser(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("failed to resolve current user")
		return []models.ActivityLog{}
	}
	if user == nil {
		return []models.ActivityLog{}
	}

	logs, err := s.store.FindActivities(ctx, store.ActivityQuery{UserID: user.ID, FileID: fileID, Limit: limit})
	if err != nil {
		logger.Error().Err(err).Str("user_id", user.ID).Str("file_id", fileID).Msg("failed to get activity logs")
		return []models.ActivityLog{}
	}
	return logs
}
