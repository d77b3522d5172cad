package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attendify/attendify-api/internal/models"
	"github.com/attendify/attendify-api/internal/service"
)

type staticClassrooms struct {
	classrooms []models.Classroom
}

func (s *staticClassrooms) ListActive(_ context.Context) ([]models.Classroom, error) {
	return s.classrooms, nil
}

type recordingReconciler struct {
	endedAt []time.Time
}

func (r *recordingReconciler) Reconcile(_ context.Context, _ string, _ models.Session, endedAt time.Time) (int, error) {
	r.endedAt = append(r.endedAt, endedAt)
	return 1, nil
}

func sweepTestRouter(reconciler *recordingReconciler, clock func() time.Time) *gin.Engine {
	classrooms := &staticClassrooms{classrooms: []models.Classroom{
		{Code: "CS101", Sessions: []models.Session{
			{Day: "Monday", StartTime: "09:00", EndTime: "10:00"},
		}},
	}}
	resolver := service.NewScheduleResolver(30*time.Minute, nil)
	sweep := service.NewSweepService(classrooms, resolver, reconciler, nil, nil, nil)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewSweepHandler(sweep, clock)
	r.POST("/internal/sweep", h.Trigger)
	r.GET("/sweep/status", h.Status)
	return r
}

func TestSweepHandler_Trigger(t *testing.T) {
	reconciler := &recordingReconciler{}
	now := time.Date(2026, time.August, 31, 10, 10, 0, 0, time.UTC)
	r := sweepTestRouter(reconciler, func() time.Time { return now })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/internal/sweep", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data models.SweepSummary `json:"data"`
		Meta map[string]any      `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Data.ClassroomsScanned)
	assert.Equal(t, 1, body.Data.SessionsMatched)
	assert.Equal(t, 1, body.Data.StudentsMarkedAbsent)
	assert.Nil(t, body.Meta)
	require.Len(t, reconciler.endedAt, 1)
}

func TestSweepHandler_TriggerTimeOverride(t *testing.T) {
	reconciler := &recordingReconciler{}
	now := time.Date(2026, time.September, 1, 8, 0, 0, 0, time.UTC)
	r := sweepTestRouter(reconciler, func() time.Time { return now })

	// Monday 10:10, ten minutes after the CS101 session ends.
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/internal/sweep?at=2026-08-31T10:10:00Z", nil))

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, reconciler.endedAt, 1)
	assert.Equal(t, time.Date(2026, time.August, 31, 10, 0, 0, 0, time.UTC), reconciler.endedAt[0])
}

func TestSweepHandler_TriggerBadTimeOverride(t *testing.T) {
	r := sweepTestRouter(&recordingReconciler{}, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/internal/sweep?at=yesterday", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSweepHandler_TriggerDebugDetail(t *testing.T) {
	reconciler := &recordingReconciler{}
	now := time.Date(2026, time.August, 31, 10, 10, 0, 0, time.UTC)
	r := sweepTestRouter(reconciler, func() time.Time { return now })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/internal/sweep?debug=true", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Meta struct {
			Sessions []models.SweepSessionDetail `json:"sessions"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Meta.Sessions, 1)
	assert.Equal(t, "CS101", body.Meta.Sessions[0].ClassCode)
	assert.Equal(t, 1, body.Meta.Sessions[0].MarkedAbsent)
}

func TestSweepHandler_StatusWithoutSweep(t *testing.T) {
	r := sweepTestRouter(&recordingReconciler{}, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/sweep/status", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}
