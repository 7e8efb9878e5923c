// Package store persists activity logs, search history and notifications.
package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storeit/models"
)

const (
	ActivityLogsCollection  = "activity_logs"
	SearchHistoryCollection = "search_history"
	NotificationsCollection = "notifications"
	CacheCollection         = "cache"
	FileTagsCollection      = "file_tags"
)

var ErrMissingUser = errors.New("store: record has no user id")

type ActivityQuery struct {
	UserID string
	FileID string
	Limit  int64
}

type NotificationQuery struct {
	UserID     string
	UnreadOnly bool
	// Type and Since narrow the result when set.
	Type  models.NotificationType
	Since time.Time
	Limit int64
}

type ActivityStore interface {
	// InsertActivity persists log and sets its ID.
	InsertActivity(ctx context.Context, log *models.ActivityLog) error
	// FindActivities returns matching records, newest first.
	FindActivities(ctx context.Context, q ActivityQuery) ([]models.ActivityLog, error)
	// CountActivitiesByAction counts the user's records at or after since,
	// keyed by action. Actions without records are absent.
	CountActivitiesByAction(ctx context.Context, userID string, since time.Time) (map[models.Action]int64, error)
	// ActiveUsers lists the distinct users with at least one record at or
	// after since.
	ActiveUsers(ctx context.Context, since time.Time) ([]string, error)
}

type SearchHistoryStore interface {
	InsertSearch(ctx context.Context, entry *models.SearchHistoryEntry) error
	FindSearches(ctx context.Context, userID string, limit int64) ([]models.SearchHistoryEntry, error)
	// TopSearchQueries groups the user's searches by exact query text and
	// returns the most frequent first. Equal counts are ordered by query.
	TopSearchQueries(ctx context.Context, userID string, limit int64) ([]models.PopularQuery, error)
	AverageResultCount(ctx context.Context, userID string) (float64, error)
	FindNoResultSearches(ctx context.Context, userID string, limit int64) ([]models.NoResultQuery, error)
}

type NotificationStore interface {
	InsertNotification(ctx context.Context, n *models.Notification) error
	FindNotifications(ctx context.Context, q NotificationQuery) ([]models.Notification, error)
	// MarkNotificationRead flips read to true on an unread notification owned
	// by userID. It reports whether a notification changed.
	MarkNotificationRead(ctx context.Context, id primitive.ObjectID, userID string) (bool, error)
	CountUnread(ctx context.Context, userID string) (int64, error)
}
