package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storeit/models"
	"storeit/store"
)

func TestNotificationService_CreateThenList(t *testing.T) {
	ctx := context.Background()
	svc := NewNotificationService(store.NewMemoryStore(), nil, fixedUser(alice))

	id, ok := svc.CreateNotification(ctx, NewNotification{
		UserID:  alice.ID,
		Type:    models.NotificationSecurityAlert,
		Title:   "New sign-in",
		Message: "A new device signed in",
	})
	require.True(t, ok)
	assert.False(t, id.IsZero())

	list := svc.GetUserNotifications(ctx, 0, false)
	require.Len(t, list, 1)
	assert.Equal(t, id, list[0].ID)
	assert.False(t, list[0].Read)
	assert.Equal(t, "New sign-in", list[0].Title)
	assert.Equal(t, "A new device signed in", list[0].Message)
	assert.Equal(t, models.NotificationSecurityAlert, list[0].Type)
	assert.Equal(t, int64(1), svc.GetUnreadCount(ctx))
}

func TestNotificationService_CreateRejectsInvalidInput(t *testing.T) {
	ctx := context.Background()
	svc := NewNotificationService(store.NewMemoryStore(), nil, fixedUser(alice))

	_, ok := svc.CreateNotification(ctx, NewNotification{UserID: alice.ID, Type: "party_invite", Title: "x"})
	assert.False(t, ok)

	_, ok = svc.CreateNotification(ctx, NewNotification{Type: models.NotificationStorageLimit, Title: "x"})
	assert.False(t, ok)

	assert.Empty(t, svc.GetUserNotifications(ctx, 0, false))
}

func TestNotificationService_MarkAsRead(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()
	owner := NewNotificationService(mem, nil, fixedUser(alice))
	other := NewNotificationService(mem, nil, fixedUser(bob))

	id, ok := owner.CreateNotification(ctx, NewNotification{UserID: alice.ID, Type: models.NotificationFileShared, Title: "t", Message: "m"})
	require.True(t, ok)

	// another user cannot flip it
	assert.False(t, other.MarkNotificationAsRead(ctx, id.Hex()))
	assert.False(t, owner.GetUserNotifications(ctx, 0, false)[0].Read)

	assert.True(t, owner.MarkNotificationAsRead(ctx, id.Hex()))
	assert.True(t, owner.GetUserNotifications(ctx, 0, false)[0].Read)

	// strict transition: already read reports false
	assert.False(t, owner.MarkNotificationAsRead(ctx, id.Hex()))

	assert.False(t, owner.MarkNotificationAsRead(ctx, "not-an-id"))
	assert.Equal(t, int64(0), owner.GetUnreadCount(ctx))
	assert.Empty(t, owner.GetUserNotifications(ctx, 0, true))
}

func TestNotificationService_NoUser(t *testing.T) {
	ctx := context.Background()
	svc := NewNotificationService(store.NewMemoryStore(), nil, noUser())

	assert.Empty(t, svc.GetUserNotifications(ctx, 0, false))
	assert.False(t, svc.MarkNotificationAsRead(ctx, "64b7f0c2a1b2c3d4e5f60009"))
	assert.Zero(t, svc.GetUnreadCount(ctx))
}

func TestNotificationService_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	svc := NewNotificationService(store.NewMemoryStore(), nil, fixedUser(alice))
	base := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	for i, title := range []string{"first", "second", "third"} {
		svc.now = fixedClock(base.Add(time.Duration(i) * time.Minute))
		_, ok := svc.CreateNotification(ctx, NewNotification{UserID: alice.ID, Type: models.NotificationActivitySummary, Title: title})
		require.True(t, ok)
	}

	list := svc.GetUserNotifications(ctx, 2, false)
	require.Len(t, list, 2)
	assert.Equal(t, "third", list[0].Title)
	assert.Equal(t, "second", list[1].Title)
}

func TestNotificationService_NotifyFileShared(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()
	dir := fakeDirectory{users: []models.User{
		{ID: mustObjectID(alice.ID), Email: alice.Email},
		{ID: mustObjectID(bob.ID), Email: bob.Email, Name: "Bob"},
	}}
	svc := NewNotificationService(mem, dir, fixedUser(alice))

	created := svc.NotifyFileShared(ctx, "plan.pdf", alice, []string{alice.Email, bob.Email, "stranger@example.com"})
	assert.Equal(t, 1, created)

	bobs := NewNotificationService(mem, dir, fixedUser(bob)).GetUserNotifications(ctx, 0, false)
	require.Len(t, bobs, 1)
	assert.Equal(t, models.NotificationFileShared, bobs[0].Type)
	assert.Equal(t, "plan.pdf", bobs[0].Data["file_name"])
	assert.Contains(t, bobs[0].Message, "Alice")

	assert.Empty(t, svc.GetUserNotifications(ctx, 0, false))

	assert.Zero(t, NewNotificationService(mem, fakeDirectory{err: errBoom}, fixedUser(alice)).
		NotifyFileShared(ctx, "plan.pdf", alice, []string{bob.Email}))
}

func TestNotificationService_NotifiedSince(t *testing.T) {
	ctx := context.Background()
	svc := NewNotificationService(store.NewMemoryStore(), nil, noUser())
	sent := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return sent }

	_, ok := svc.CreateNotification(ctx, NewNotification{UserID: "u1", Type: models.NotificationActivitySummary, Title: "digest"})
	require.True(t, ok)

	got, err := svc.NotifiedSince(ctx, "u1", models.NotificationActivitySummary, sent.Add(-time.Hour))
	require.NoError(t, err)
	assert.True(t, got)

	got, err = svc.NotifiedSince(ctx, "u1", models.NotificationActivitySummary, sent.Add(time.Minute))
	require.NoError(t, err)
	assert.False(t, got)

	got, err = svc.NotifiedSince(ctx, "u1", models.NotificationStorageLimit, sent.Add(-time.Hour))
	require.NoError(t, err)
	assert.False(t, got)
}
