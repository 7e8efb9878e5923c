package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storeit/models"
	"storeit/store"
	"storeit/utils"
)

func TestActivityService_NoUserWritesNothing(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()
	svc := NewActivityService(mem, noUser())

	svc.LogActivity(ctx, "f1", models.UploadDetails{FileName: "a.txt"})

	logs, err := mem.FindActivities(ctx, store.ActivityQuery{UserID: ""})
	require.NoError(t, err)
	assert.Empty(t, logs)
	assert.Empty(t, svc.GetUserActivityLogs(ctx, 10))
}

func TestActivityService_ResolverErrorIsSwallowed(t *testing.T) {
	mem := store.NewMemoryStore()
	svc := NewActivityService(mem, ResolverFunc(func(context.Context) (*models.SessionUser, error) {
		return nil, errBoom
	}))

	assert.NotPanics(t, func() {
		svc.LogActivity(context.Background(), "f1", models.DeleteDetails{})
	})
	assert.Empty(t, svc.GetUserActivityLogs(context.Background(), 0))
}

func TestActivityService_LogActivityStoresRequestMeta(t *testing.T) {
	now := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	mem := store.NewMemoryStore()
	svc := NewActivityService(mem, SessionResolver{})
	svc.now = fixedClock(now)

	ctx := utils.WithSessionUser(context.Background(), alice)
	ctx = utils.WithRequestMeta(ctx, utils.RequestMeta{RequestID: "r1", IPAddress: "10.0.0.1", UserAgent: "curl/8"})

	svc.LogActivity(ctx, "f1", models.ShareDetails{FileName: "a.txt", ShareEmails: []string{"bob@example.com"}})

	logs := svc.GetUserActivityLogs(ctx, 0)
	require.Len(t, logs, 1)
	got := logs[0]
	assert.Equal(t, alice.ID, got.UserID)
	assert.Equal(t, "f1", got.FileID)
	assert.Equal(t, models.ActionShare, got.Action)
	assert.Equal(t, now, got.Timestamp)
	assert.Equal(t, "10.0.0.1", got.IPAddress)
	assert.Equal(t, "curl/8", got.UserAgent)
	assert.Equal(t, models.ShareDetails{FileName: "a.txt", ShareEmails: []string{"bob@example.com"}}, got.TypedDetails())
}

func TestActivityService_StoreFailureIsSwallowed(t *testing.T) {
	svc := NewActivityService(failingActivityStore{store.NewMemoryStore()}, fixedUser(alice))

	assert.NotPanics(t, func() {
		svc.LogActivity(context.Background(), "f1", models.ViewDetails{FileName: "a.png"})
	})
}

func TestActivityService_FileActivityLimits(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()
	svc := NewActivityService(mem, fixedUser(alice))
	base := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

	for i := 0; i < 25; i++ {
		svc.now = fixedClock(base.Add(time.Duration(i) * time.Second))
		svc.LogActivity(ctx, "f1", models.ViewDetails{FileName: "a.png"})
	}
	svc.LogActivity(ctx, "f2", models.ViewDetails{FileName: "b.png"})

	logs := svc.GetFileActivityLogs(ctx, "f1", 0)
	assert.Len(t, logs, defaultFileActivityLimit)
	assert.Equal(t, base.Add(24*time.Second), logs[0].Timestamp)

	assert.Len(t, svc.GetFileActivityLogs(ctx, "f1", 3), 3)
	assert.Len(t, svc.GetUserActivityLogs(ctx, 0), 26)
	assert.Empty(t, svc.GetFileActivityLogs(ctx, "", 0))
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, int64(50), clampLimit(0, 50))
	assert.Equal(t, int64(50), clampLimit(-3, 50))
	assert.Equal(t, int64(7), clampLimit(7, 50))
	assert.Equal(t, int64(maxListLimit), clampLimit(10_000, 50))
}
