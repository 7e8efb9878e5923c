package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storeit/models"
	"storeit/services"
	"storeit/store"
	"storeit/utils"
)

var testUser = models.SessionUser{ID: "64b7f0c2a1b2c3d4e5f60001", Email: "alice@example.com", Name: "Alice"}

func init() {
	gin.SetMode(gin.TestMode)
}

// asUser stands in for the auth middleware.
func asUser(user *models.SessionUser) gin.HandlerFunc {
	return func(c *gin.Context) {
		if user != nil {
			c.Request = c.Request.WithContext(utils.WithSessionUser(c.Request.Context(), *user))
		}
		c.Next()
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func doRequest(t *testing.T, r http.Handler, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return w, env
}

func analyticsRouter(mem *store.MemoryStore, user *models.SessionUser) *gin.Engine {
	resolver := services.SessionResolver{}
	ac := NewAnalyticsController(
		services.NewAnalyticsService(mem, resolver),
		services.NewActivityService(mem, resolver),
		services.NewSearchHistoryService(mem, resolver),
	)

	r := gin.New()
	api := r.Group("/api", asUser(user))
	api.GET("/analytics/dashboard", ac.GetDashboard)
	api.GET("/analytics/summary", ac.GetSummary)
	api.GET("/analytics/activity", ac.GetActivity)
	api.GET("/analytics/search/popular", ac.GetPopularSearches)
	return r
}

func TestAnalyticsController_DashboardWithoutUserIsNull(t *testing.T) {
	r := analyticsRouter(store.NewMemoryStore(), nil)

	w, env := doRequest(t, r, http.MethodGet, "/api/analytics/dashboard", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
	assert.Equal(t, "null", string(env.Data))
}

func TestAnalyticsController_Dashboard(t *testing.T) {
	mem := store.NewMemoryStore()
	now := time.Now()
	for _, d := range []models.ActivityDetails{
		models.UploadDetails{FileName: "a.txt"},
		models.UploadDetails{FileName: "b.txt"},
		models.SearchDetails{SearchQuery: "tax"},
	} {
		log := models.NewActivityLog(testUser.ID, "f", d, now)
		require.NoError(t, mem.InsertActivity(context.Background(), &log))
	}
	r := analyticsRouter(mem, &testUser)

	w, env := doRequest(t, r, http.MethodGet, "/api/analytics/dashboard", "")
	require.Equal(t, http.StatusOK, w.Code)

	var dash models.Dashboard
	require.NoError(t, json.Unmarshal(env.Data, &dash))
	assert.Equal(t, models.DashboardSummary{Uploads: 2, Searches: 1}, dash.Summary)
	assert.Len(t, dash.RecentActivity, 3)
}

func TestAnalyticsController_SummaryRejectsUnknownPeriod(t *testing.T) {
	r := analyticsRouter(store.NewMemoryStore(), &testUser)

	w, _ := doRequest(t, r, http.MethodGet, "/api/analytics/summary?period=yearly", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env := doRequest(t, r, http.MethodGet, "/api/analytics/summary?period=daily", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"period":"daily"`)
}

func TestAnalyticsController_PopularSearches(t *testing.T) {
	mem := store.NewMemoryStore()
	for _, q := range []string{"cat", "dog", "cat"} {
		require.NoError(t, mem.InsertSearch(context.Background(), &models.SearchHistoryEntry{UserID: testUser.ID, Query: q, Timestamp: time.Now()}))
	}
	r := analyticsRouter(mem, &testUser)

	_, env := doRequest(t, r, http.MethodGet, "/api/analytics/search/popular?limit=1", "")

	var popular []models.PopularQuery
	require.NoError(t, json.Unmarshal(env.Data, &popular))
	assert.Equal(t, []models.PopularQuery{{Query: "cat", Count: 2}}, popular)

	_, env = doRequest(t, r, http.MethodGet, "/api/analytics/activity", "")
	assert.Equal(t, "[]", string(env.Data))
}

func TestNotificationController_MarkAsRead(t *testing.T) {
	mem := store.NewMemoryStore()
	svc := services.NewNotificationService(mem, nil, services.SessionResolver{})
	id, ok := svc.CreateNotification(context.Background(), services.NewNotification{
		UserID: testUser.ID,
		Type:   models.NotificationStorageLimit,
		Title:  "Storage almost full",
	})
	require.True(t, ok)

	nc := NewNotificationController(svc)
	r := gin.New()
	api := r.Group("/api", asUser(&testUser))
	api.GET("/notifications", nc.GetNotifications)
	api.GET("/notifications/unread-count", nc.GetUnreadCount)
	api.PATCH("/notifications/:id/read", nc.MarkAsRead)

	_, env := doRequest(t, r, http.MethodGet, "/api/notifications/unread-count", "")
	assert.JSONEq(t, `{"count":1}`, string(env.Data))

	w, _ := doRequest(t, r, http.MethodPatch, "/api/notifications/"+id.Hex()+"/read", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = doRequest(t, r, http.MethodPatch, "/api/notifications/"+id.Hex()+"/read", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	_, env = doRequest(t, r, http.MethodGet, "/api/notifications?unread=true", "")
	assert.Equal(t, "[]", string(env.Data))

	_, env = doRequest(t, r, http.MethodGet, "/api/notifications", "")
	var list []models.Notification
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list, 1)
	assert.True(t, list[0].Read)
}

type stubFiles struct {
	services.FileOperations
	err      error
	list     *models.FileList
	accessed []models.Action
}

func (s *stubFiles) GetFiles(context.Context, models.SessionUser, services.FileQuery) (*models.FileList, error) {
	return s.list, s.err
}

func (s *stubFiles) DeleteFile(context.Context, models.SessionUser, string) error {
	return s.err
}

func (s *stubFiles) LogFileAccess(_ context.Context, _, _ string, action models.Action) {
	s.accessed = append(s.accessed, action)
}

func fileRouter(files FileOperator, user *models.SessionUser) *gin.Engine {
	fc := NewFileController(files)
	r := gin.New()
	api := r.Group("/api", asUser(user))
	api.GET("/files", fc.GetFiles)
	api.DELETE("/files/:id", fc.DeleteFile)
	api.POST("/files/:id/access", fc.RecordAccess)
	return r
}

func TestFileController_ErrorMapping(t *testing.T) {
	cases := map[error]int{
		services.ErrFileNotFound:  http.StatusNotFound,
		services.ErrForbidden:     http.StatusForbidden,
		services.ErrQuotaExceeded: http.StatusInsufficientStorage,
		services.ErrInvalidFile:   http.StatusBadRequest,
		context.DeadlineExceeded:  http.StatusInternalServerError,

		fmt.Errorf("%w: %w", services.ErrInvalidFile, utils.ErrFileTooLarge): http.StatusRequestEntityTooLarge,
	}

	for err, status := range cases {
		r := fileRouter(&stubFiles{err: err}, &testUser)
		w, env := doRequest(t, r, http.MethodDelete, "/api/files/abc", "")
		assert.Equal(t, status, w.Code, err.Error())
		assert.False(t, env.Success)
	}
}

func TestFileController_RequiresUser(t *testing.T) {
	r := fileRouter(&stubFiles{list: &models.FileList{}}, nil)

	w, _ := doRequest(t, r, http.MethodGet, "/api/files", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestFileController_RecordAccess(t *testing.T) {
	files := &stubFiles{}
	r := fileRouter(files, &testUser)

	w, _ := doRequest(t, r, http.MethodPost, "/api/files/abc/access", `{"file_name":"a.png","action":"view"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = doRequest(t, r, http.MethodPost, "/api/files/abc/access", `{"file_name":"a.png","action":"rename"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	assert.Equal(t, []models.Action{models.ActionView}, files.accessed)
}
