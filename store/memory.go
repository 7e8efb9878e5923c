package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storeit/models"
)

// MemoryStore keeps every record in process memory. It implements
// ActivityStore, SearchHistoryStore and NotificationStore and is safe for
// concurrent use.
type MemoryStore struct {
	mu            sync.RWMutex
	activities    []models.ActivityLog
	searches      []models.SearchHistoryEntry
	notifications []models.Notification
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) InsertActivity(_ context.Context, log *models.ActivityLog) error {
	if log.UserID == "" {
		return ErrMissingUser
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	log.ID = primitive.NewObjectID()
	stored := *log
	stored.Details.ShareEmails = append([]string(nil), log.Details.ShareEmails...)
	m.activities = append(m.activities, stored)
	return nil
}

func (m *MemoryStore) FindActivities(_ context.Context, q ActivityQuery) ([]models.ActivityLog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []models.ActivityLog{}
	for i := len(m.activities) - 1; i >= 0; i-- {
		a := m.activities[i]
		if a.UserID != q.UserID || (q.FileID != "" && a.FileID != q.FileID) {
			continue
		}
		out = append(out, a)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return truncate(out, q.Limit), nil
}

func (m *MemoryStore) CountActivitiesByAction(_ context.Context, userID string, since time.Time) (map[models.Action]int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	counts := make(map[models.Action]int64)
	for _, a := range m.activities {
		if a.UserID == userID && !a.Timestamp.Before(since) {
			counts[a.Action]++
		}
	}
	return counts, nil
}

func (m *MemoryStore) ActiveUsers(_ context.Context, since time.Time) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[string]struct{})
	users := []string{}
	for _, a := range m.activities {
		if a.Timestamp.Before(since) {
			continue
		}
		if _, ok := seen[a.UserID]; ok {
			continue
		}
		seen[a.UserID] = struct{}{}
		users = append(users, a.UserID)
	}
	sort.Strings(users)
	return users, nil
}

func (m *MemoryStore) InsertSearch(_ context.Context, entry *models.SearchHistoryEntry) error {
	if entry.UserID == "" {
		return ErrMissingUser
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	entry.ID = primitive.NewObjectID()
	m.searches = append(m.searches, *entry)
	return nil
}

func (m *MemoryStore) FindSearches(_ context.Context, userID string, limit int64) ([]models.SearchHistoryEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := m.userSearches(userID)
	return truncate(out, limit), nil
}

func (m *MemoryStore) TopSearchQueries(_ context.Context, userID string, limit int64) ([]models.PopularQuery, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	counts := make(map[string]int64)
	for _, s := range m.searches {
		if s.UserID == userID {
			counts[s.Query]++
		}
	}

	out := make([]models.PopularQuery, 0, len(counts))
	for query, count := range counts {
		out = append(out, models.PopularQuery{Query: query, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Query < out[j].Query
	})
	return truncate(out, limit), nil
}

func (m *MemoryStore) AverageResultCount(_ context.Context, userID string) (float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var total, n int
	for _, s := range m.searches {
		if s.UserID == userID {
			total += s.ResultCount
			n++
		}
	}
	if n == 0 {
		return 0, nil
	}
	return float64(total) / float64(n), nil
}

func (m *MemoryStore) FindNoResultSearches(_ context.Context, userID string, limit int64) ([]models.NoResultQuery, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []models.NoResultQuery{}
	for _, s := range m.userSearches(userID) {
		if s.ResultCount == 0 {
			out = append(out, models.NoResultQuery{Query: s.Query, Timestamp: s.Timestamp})
		}
	}
	return truncate(out, limit), nil
}

// userSearches returns the user's entries newest first. Callers hold mu.
func (m *MemoryStore) userSearches(userID string) []models.SearchHistoryEntry {
	out := []models.SearchHistoryEntry{}
	for i := len(m.searches) - 1; i >= 0; i-- {
		if m.searches[i].UserID == userID {
			out = append(out, m.searches[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out
}

func (m *MemoryStore) InsertNotification(_ context.Context, n *models.Notification) error {
	if n.UserID == "" {
		return ErrMissingUser
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	n.ID = primitive.NewObjectID()
	m.notifications = append(m.notifications, *n)
	return nil
}

func (m *MemoryStore) FindNotifications(_ context.Context, q NotificationQuery) ([]models.Notification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []models.Notification{}
	for i := len(m.notifications) - 1; i >= 0; i-- {
		n := m.notifications[i]
		if n.UserID != q.UserID || (q.UnreadOnly && n.Read) {
			continue
		}
		if (q.Type != "" && n.Type != q.Type) || (!q.Since.IsZero() && n.Timestamp.Before(q.Since)) {
			continue
		}
		out = append(out, n)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return truncate(out, q.Limit), nil
}

func (m *MemoryStore) MarkNotificationRead(_ context.Context, id primitive.ObjectID, userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.notifications {
		n := &m.notifications[i]
		if n.ID != id || n.UserID != userID || n.Read {
			continue
		}
		n.Read = true
		return true, nil
	}
	return false, nil
}

func (m *MemoryStore) CountUnread(_ context.Context, userID string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var count int64
	for _, n := range m.notifications {
		if n.UserID == userID && !n.Read {
			count++
		}
	}
	return count, nil
}

func truncate[T any](items []T, limit int64) []T {
	if limit > 0 && int64(len(items)) > limit {
		return items[:limit]
	}
	return items
}
