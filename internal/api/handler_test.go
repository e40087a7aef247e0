package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/habitlit/internal/cache"
	"github.com/julianstephens/habitlit/internal/config"
	apperrors "github.com/julianstephens/habitlit/internal/errors"
	"github.com/julianstephens/habitlit/internal/models"
	"github.com/julianstephens/habitlit/internal/progression"
	"github.com/julianstephens/habitlit/internal/storage/sqlite"
	"github.com/julianstephens/habitlit/internal/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupTestRouter(t *testing.T, today string) *gin.Engine {
	t.Helper()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, store.Init())
	t.Cleanup(func() { store.Close() })
	require.NoError(t, store.SaveSettings(context.Background(), models.Settings{Timezone: "UTC"}))

	engine := progression.New(store, progression.Options{
		Clock: utils.NewFakeClockOn(today),
		Cache: cache.NewMemory(),
	})
	return NewRouter(NewHandler(engine), config.Default().HTTP)
}

func do(t *testing.T, r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func createHabit(t *testing.T, r http.Handler, user, title string) models.Habit {
	t.Helper()
	w := do(t, r, http.MethodPost, "/api/v1/users/"+user+"/habits", gin.H{"title": title, "target": 20, "unit": "pages"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[models.Habit](t, w)
}

func TestHealth(t *testing.T) {
	r := setupTestRouter(t, "2024-03-10")
	w := do(t, r, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRecordCompletionFlow(t *testing.T) {
	r := setupTestRouter(t, "2024-03-10")
	h := createHabit(t, r, "alice", "Read")
	assert.Equal(t, models.HabitStatusPending, h.Status)

	w := do(t, r, http.MethodPost, "/api/v1/habits/"+h.ID+"/completions", gin.H{"user_id": "alice", "percentage": 100})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	out := decode[progression.Outcome](t, w)
	assert.Equal(t, "2024-03-10", out.Completion.Date, "date defaults to today")
	assert.Equal(t, 10, out.XPGranted)
	assert.Equal(t, 1, out.Streak.Current)
	assert.False(t, out.RewardsPending)

	w = do(t, r, http.MethodGet, "/api/v1/habits/"+h.ID+"/streak", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decode[progression.StreakResult](t, w).Current)

	w = do(t, r, http.MethodGet, "/api/v1/users/alice/level", nil)
	require.Equal(t, http.StatusOK, w.Code)
	level := decode[models.LevelInfo](t, w)
	assert.Equal(t, 10, level.XP)
	assert.Equal(t, "Novice", level.Title)

	w = do(t, r, http.MethodDelete, "/api/v1/habits/"+h.ID+"/completions/2024-03-10", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Zero(t, decode[progression.Outcome](t, w).Streak.Current)

	w = do(t, r, http.MethodDelete, "/api/v1/habits/"+h.ID+"/completions/2024-03-10", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRecordCompletionErrorStatuses(t *testing.T) {
	r := setupTestRouter(t, "2024-03-10")
	h := createHabit(t, r, "alice", "Read")

	tests := []struct {
		name   string
		path   string
		body   interface{}
		status int
	}{
		{"missing percentage", "/api/v1/habits/" + h.ID + "/completions", gin.H{"user_id": "alice"}, http.StatusBadRequest},
		{"out of range", "/api/v1/habits/" + h.ID + "/completions", gin.H{"user_id": "alice", "percentage": 120}, http.StatusBadRequest},
		{"future date", "/api/v1/habits/" + h.ID + "/completions", gin.H{"user_id": "alice", "date": "2024-03-11", "percentage": 100}, http.StatusBadRequest},
		{"unknown habit", "/api/v1/habits/nope/completions", gin.H{"user_id": "alice", "percentage": 100}, http.StatusNotFound},
		{"other user", "/api/v1/habits/" + h.ID + "/completions", gin.H{"user_id": "bob", "percentage": 100}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, r, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}
}

func TestBadgesEndpoints(t *testing.T) {
	r := setupTestRouter(t, "2024-03-10")

	w := do(t, r, http.MethodGet, "/api/v1/users/alice/badges", nil)
	require.Equal(t, http.StatusOK, w.Code)
	statuses := decode[[]progression.BadgeStatus](t, w)
	assert.NotEmpty(t, statuses)
	for _, s := range statuses {
		assert.False(t, s.Progress.Unlocked, s.Badge.ID)
	}

	w = do(t, r, http.MethodPost, "/api/v1/users/alice/badges/evaluate", gin.H{"current_streak": 7, "events": []string{"comeback"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	eval := decode[progression.BadgeEvaluation](t, w)
	var ids []string
	for _, b := range eval.NewlyUnlocked {
		ids = append(ids, b.ID)
	}
	assert.ElementsMatch(t, []string{"streak-3", "streak-7", "comeback"}, ids)
}

func TestStatsEndpoints(t *testing.T) {
	r := setupTestRouter(t, "2024-03-10")
	h := createHabit(t, r, "alice", "Read")
	w := do(t, r, http.MethodPost, "/api/v1/habits/"+h.ID+"/completions", gin.H{"user_id": "alice", "percentage": 100})
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodGet, "/api/v1/users/alice/stats?from=2024-03-04&to=2024-03-10&granularity=day", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	stats := decode[models.PeriodStats](t, w)
	assert.Len(t, stats.Points, 7)
	assert.Equal(t, 1, stats.TotalCompleted)

	w = do(t, r, http.MethodGet, "/api/v1/users/alice/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	stats = decode[models.PeriodStats](t, w)
	assert.Equal(t, "2024-02-10", stats.Range.From)
	assert.Equal(t, models.GranularityDay, stats.Granularity)

	w = do(t, r, http.MethodGet, "/api/v1/users/alice/stats?from=2024-03-10&to=2024-03-01", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodGet, "/api/v1/users/alice/stats?from=0001-01-01&to=2024-03-01", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodGet, "/api/v1/users/alice/stats/weekly", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decode[models.Comparison](t, w).Current)
}

func TestXPAndReconcileEndpoints(t *testing.T) {
	r := setupTestRouter(t, "2024-03-10")

	w := do(t, r, http.MethodPost, "/api/v1/users/alice/xp", gin.H{"amount": -5})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPost, "/api/v1/users/alice/xp", gin.H{"amount": 150})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	award := decode[progression.XPAward](t, w)
	assert.Equal(t, 150, award.Granted)
	assert.Equal(t, 2, award.Level.Level)

	w = do(t, r, http.MethodPost, "/api/v1/users/alice/reconcile", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Zero(t, decode[progression.ReconcileReport](t, w).XPGranted)

	w = do(t, r, http.MethodGet, "/api/v1/users/alice/profile", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 150, decode[models.Profile](t, w).XP)
}

func TestHabitEndpoints(t *testing.T) {
	r := setupTestRouter(t, "2024-03-10")

	w := do(t, r, http.MethodPost, "/api/v1/users/alice/habits", gin.H{"icon": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	h := createHabit(t, r, "alice", "Read")

	w = do(t, r, http.MethodGet, "/api/v1/users/alice/habits", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.Habit](t, w), 1)

	w = do(t, r, http.MethodPost, "/api/v1/habits/"+h.ID+"/archive", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.HabitStatusArchived, decode[models.Habit](t, w).Status)

	w = do(t, r, http.MethodGet, "/api/v1/users/alice/habits", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]models.Habit](t, w))

	w = do(t, r, http.MethodDelete, "/api/v1/habits/"+h.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, r, http.MethodGet, "/api/v1/habits/"+h.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{apperrors.Validation("op", "bad"), http.StatusBadRequest},
		{apperrors.NotFound("op", "missing"), http.StatusNotFound},
		{apperrors.Conflict("op", errors.New("dup")), http.StatusConflict},
		{apperrors.Store("op", errors.New("down")), http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}
