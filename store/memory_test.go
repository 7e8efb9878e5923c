package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storeit/models"
)

func TestMemoryStore_InsertActivityRequiresUser(t *testing.T) {
	m := NewMemoryStore()

	log := models.NewActivityLog("", "f1", models.DeleteDetails{}, time.Now())
	err := m.InsertActivity(context.Background(), &log)

	assert.ErrorIs(t, err, ErrMissingUser)
	logs, _ := m.FindActivities(context.Background(), ActivityQuery{UserID: ""})
	assert.Empty(t, logs)
}

func TestMemoryStore_FindActivitiesNewestFirst(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, name := range []string{"a.txt", "b.txt", "c.txt"} {
		log := models.NewActivityLog("u1", "f"+name, models.UploadDetails{FileName: name}, base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, m.InsertActivity(ctx, &log))
		assert.False(t, log.ID.IsZero())
	}
	other := models.NewActivityLog("u2", "x", models.ViewDetails{FileName: "x"}, base)
	require.NoError(t, m.InsertActivity(ctx, &other))

	logs, err := m.FindActivities(ctx, ActivityQuery{UserID: "u1", Limit: 2})
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "c.txt", logs[0].Details.FileName)
	assert.Equal(t, "b.txt", logs[1].Details.FileName)

	logs, err = m.FindActivities(ctx, ActivityQuery{UserID: "u1", FileID: "fa.txt"})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "a.txt", logs[0].Details.FileName)
}

func TestMemoryStore_CountActivitiesByAction(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	now := time.Now()
	since := now.Add(-7 * 24 * time.Hour)

	insert := func(user string, d models.ActivityDetails, at time.Time) {
		log := models.NewActivityLog(user, "f", d, at)
		require.NoError(t, m.InsertActivity(ctx, &log))
	}
	insert("u1", models.UploadDetails{FileName: "a"}, now)
	insert("u1", models.UploadDetails{FileName: "b"}, since)
	insert("u1", models.UploadDetails{FileName: "old"}, since.Add(-time.Second))
	insert("u1", models.SearchDetails{SearchQuery: "q"}, now)
	insert("u2", models.UploadDetails{FileName: "c"}, now)

	counts, err := m.CountActivitiesByAction(ctx, "u1", since)
	require.NoError(t, err)
	assert.Equal(t, map[models.Action]int64{
		models.ActionUpload: 2,
		models.ActionSearch: 1,
	}, counts)

	users, err := m.ActiveUsers(ctx, since)
	require.NoError(t, err)
	assert.Equal(t, []string{"u1", "u2"}, users)
}

func TestMemoryStore_TopSearchQueries(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	now := time.Now()

	for _, q := range []string{"dog", "cat", "cat", "bird", "dog", "cat", "ant"} {
		require.NoError(t, m.InsertSearch(ctx, &models.SearchHistoryEntry{UserID: "u1", Query: q, Timestamp: now}))
	}
	require.NoError(t, m.InsertSearch(ctx, &models.SearchHistoryEntry{UserID: "u2", Query: "bird", Timestamp: now}))

	top, err := m.TopSearchQueries(ctx, "u1", 2)
	require.NoError(t, err)
	assert.Equal(t, []models.PopularQuery{{Query: "cat", Count: 3}, {Query: "dog", Count: 2}}, top)

	// ties break on query text
	top, err = m.TopSearchQueries(ctx, "u1", 4)
	require.NoError(t, err)
	require.Len(t, top, 4)
	assert.Equal(t, "ant", top[2].Query)
	assert.Equal(t, "bird", top[3].Query)
}

func TestMemoryStore_SearchStats(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	base := time.Now()

	require.NoError(t, m.InsertSearch(ctx, &models.SearchHistoryEntry{UserID: "u1", Query: "a", ResultCount: 4, Timestamp: base}))
	require.NoError(t, m.InsertSearch(ctx, &models.SearchHistoryEntry{UserID: "u1", Query: "b", ResultCount: 0, Timestamp: base.Add(time.Second)}))
	require.NoError(t, m.InsertSearch(ctx, &models.SearchHistoryEntry{UserID: "u1", Query: "c", ResultCount: 0, Timestamp: base.Add(2 * time.Second)}))

	avg, err := m.AverageResultCount(ctx, "u1")
	require.NoError(t, err)
	assert.InDelta(t, 4.0/3.0, avg, 1e-9)

	avg, err = m.AverageResultCount(ctx, "nobody")
	require.NoError(t, err)
	assert.Zero(t, avg)

	empty, err := m.FindNoResultSearches(ctx, "u1", 10)
	require.NoError(t, err)
	require.Len(t, empty, 2)
	assert.Equal(t, "c", empty[0].Query)
	assert.Equal(t, "b", empty[1].Query)
}

func TestMemoryStore_MarkNotificationRead(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	n := &models.Notification{UserID: "owner", Type: models.NotificationFileShared, Title: "t", Timestamp: time.Now()}
	require.NoError(t, m.InsertNotification(ctx, n))

	ok, err := m.MarkNotificationRead(ctx, n.ID, "intruder")
	require.NoError(t, err)
	assert.False(t, ok)

	unread, err := m.CountUnread(ctx, "owner")
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)

	ok, err = m.MarkNotificationRead(ctx, n.ID, "owner")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = m.MarkNotificationRead(ctx, n.ID, "owner")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = m.MarkNotificationRead(ctx, primitive.NewObjectID(), "owner")
	require.NoError(t, err)
	assert.False(t, ok)

	list, err := m.FindNotifications(ctx, NotificationQuery{UserID: "owner", UnreadOnly: true})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestMemoryStore_FindNotificationsByTypeAndSince(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	now := time.Now()

	for _, n := range []*models.Notification{
		{UserID: "u1", Type: models.NotificationActivitySummary, Title: "old", Timestamp: now.Add(-48 * time.Hour)},
		{UserID: "u1", Type: models.NotificationActivitySummary, Title: "recent", Timestamp: now.Add(-time.Hour)},
		{UserID: "u1", Type: models.NotificationStorageLimit, Title: "alert", Timestamp: now.Add(-time.Hour)},
	} {
		require.NoError(t, m.InsertNotification(ctx, n))
	}

	list, err := m.FindNotifications(ctx, NotificationQuery{
		UserID: "u1",
		Type:   models.NotificationActivitySummary,
		Since:  now.Add(-24 * time.Hour),
	})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "recent", list[0].Title)

	list, err = m.FindNotifications(ctx, NotificationQuery{UserID: "u1"})
	require.NoError(t, err)
	assert.Len(t, list, 3)
}
