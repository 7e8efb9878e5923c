package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storeit/models"
	"storeit/store"
	"storeit/utils"
)

const defaultNotificationLimit = 50

// NewNotification is the caller-supplied part of a notification. Read state
// and timestamp are always set by the service.
type NewNotification struct {
	UserID    string
	Type      models.NotificationType
	Title     string
	Message   string
	Data      map[string]any
	ExpiresAt *time.Time
}

type NotificationService struct {
	store    store.NotificationStore
	users    UserDirectory
	resolver CurrentUserResolver
	logger   zerolog.Logger
	now      func() time.Time
}

func NewNotificationService(s store.NotificationStore, users UserDirectory, resolver CurrentUserResolver) *NotificationService {
	return &NotificationService{
		store:    s,
		users:    users,
		resolver: resolver,
		logger:   utils.Component("notifications"),
		now:      time.Now,
	}
}

// CreateNotification stores an unread notification. The boolean is false
// when the input is invalid or the write failed.
func (s *NotificationService) CreateNotification(ctx context.Context, in NewNotification) (primitive.ObjectID, bool) {
	logger := utils.RequestLogger(ctx, s.logger)

	if in.UserID == "" {
		logger.Warn().Str("type", string(in.Type)).Msg("notification without recipient ignored")
		return primitive.NilObjectID, false
	}
	if !in.Type.IsValid() {
		logger.Warn().Str("type", string(in.Type)).Msg("unknown notification type")
		return primitive.NilObjectID, false
	}

	n := &models.Notification{
		UserID:    in.UserID,
		Type:      in.Type,
		Title:     in.Title,
		Message:   in.Message,
		Data:      in.Data,
		Read:      false,
		Timestamp: s.now().UTC(),
		ExpiresAt: in.ExpiresAt,
	}

	if err := s.store.InsertNotification(ctx, n); err != nil {
		logger.Error().Err(err).Str("user_id", in.UserID).Str("type", string(in.Type)).Msg("failed to create notification")
		return primitive.NilObjectID, false
	}
	return n.ID, true
}

// GetUserNotifications lists the current user's notifications, newest first.
func (s *NotificationService) GetUserNotifications(ctx context.Context, limit int, unreadOnly bool) []models.Notification {
	user := s.currentUser(ctx)
	if user == nil {
		return []models.Notification{}
	}

	list, err := s.store.FindNotifications(ctx, store.NotificationQuery{
		UserID:     user.ID,
		UnreadOnly: unreadOnly,
		Limit:      clampLimit(limit, defaultNotificationLimit),
	})
	if err != nil {
		utils.RequestLogger(ctx, s.logger).Error().Err(err).Str("user_id", user.ID).Msg("failed to get notifications")
		return []models.Notification{}
	}
	return list
}

// MarkNotificationAsRead marks one of the current user's unread
// notifications as read. Unknown, foreign and already read notifications
// all report false.
func (s *NotificationService) MarkNotificationAsRead(ctx context.Context, notificationID string) bool {
	user := s.currentUser(ctx)
	if user == nil {
		return false
	}

	id, err := primitive.ObjectIDFromHex(notificationID)
	if err != nil {
		return false
	}

	changed, err := s.store.MarkNotificationRead(ctx, id, user.ID)
	if err != nil {
		utils.RequestLogger(ctx, s.logger).Error().Err(err).
			Str("user_id", user.ID).
			Str("notification_id", notificationID).
			Msg("failed to mark notification read")
		return false
	}
	return changed
}

func (s *NotificationService) GetUnreadCount(ctx context.Context) int64 {
	user := s.currentUser(ctx)
	if user == nil {
		return 0
	}

	count, err := s.store.CountUnread(ctx, user.ID)
	if err != nil {
		utils.RequestLogger(ctx, s.logger).Error().Err(err).Str("user_id", user.ID).Msg("failed to count unread notifications")
		return 0
	}
	return count
}

// NotifiedSince reports whether userID already received a notification of
// type t at or after since.
func (s *NotificationService) NotifiedSince(ctx context.Context, userID string, t models.NotificationType, since time.Time) (bool, error) {
	list, err := s.store.FindNotifications(ctx, store.NotificationQuery{
		UserID: userID,
		Type:   t,
		Since:  since,
		Limit:  1,
	})
	if err != nil {
		return false, fmt.Errorf("failed to look up %s notifications: %w", t, err)
	}
	return len(list) > 0, nil
}

// NotifyFileShared creates a file_shared notification for every recipient
// that has an account, skipping the sharer. It returns how many were created.
func (s *NotificationService) NotifyFileShared(ctx context.Context, fileName string, sharedBy models.SessionUser, recipientEmails []string) int {
	if len(recipientEmails) == 0 || s.users == nil {
		return 0
	}
	logger := utils.RequestLogger(ctx, s.logger)

	recipients, err := s.users.FindByEmails(ctx, recipientEmails)
	if err != nil {
		logger.Error().Err(err).Str("file_name", fileName).Msg("failed to resolve share recipients")
		return 0
	}

	sharer := sharedBy.Name
	if sharer == "" {
		sharer = sharedBy.Email
	}

	created := 0
	for _, recipient := range recipients {
		id := recipient.ID.Hex()
		if id == sharedBy.ID || strings.EqualFold(recipient.Email, sharedBy.Email) {
			continue
		}

		_, ok := s.CreateNotification(ctx, NewNotification{
			UserID:  id,
			Type:    models.NotificationFileShared,
			Title:   fmt.Sprintf("File shared with you: %s", fileName),
			Message: fmt.Sprintf("%s has shared a file with you: %s", sharer, fileName),
			Data: map[string]any{
				"file_name":       fileName,
				"shared_by":       sharedBy.ID,
				"shared_by_email": sharedBy.Email,
			},
		})
		if ok {
			created++
		}
	}
	return created
}

func (s *NotificationService) currentUser(ctx context.Context) *models.SessionUser {
	user, err := s.resolver.CurrentUser(ctx)
	if err != nil {
		utils.RequestLogger(ctx, s.logger).Error().Err(err).Msg("failed to resolve current user")
		return nil
	}
	return user
}
