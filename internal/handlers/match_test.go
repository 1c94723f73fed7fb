// internal/handlers/match_test.go
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tablemate-app/tablemate/internal/auth"
	"github.com/tablemate-app/tablemate/internal/engine"
	"github.com/tablemate-app/tablemate/internal/models"
)

// stubRunner returns canned results for both flows.
type stubRunner struct {
	summary *models.RunSummary
	err     error
	calls   int
}

func (s *stubRunner) RunScored(ctx context.Context) (*models.RunSummary, error) {
	s.calls++
	return s.summary, s.err
}

func (s *stubRunner) RunWeekend(ctx context.Context) (*models.RunSummary, error) {
	s.calls++
	return s.summary, s.err
}

func testHandler(runner matchRunner) *MatchHandler {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return &MatchHandler{Runner: runner, Secret: "sched-secret", Logger: logger}
}

func okSummary() *models.RunSummary {
	return &models.RunSummary{
		MatchWeek:     time.Date(2026, time.September, 3, 0, 0, 0, 0, time.UTC),
		GroupsCreated: 2,
		Placed:        8,
		Waitlisted:    1,
	}
}

func TestRunScoredWithAutomationSecret(t *testing.T) {
	runner := &stubRunner{summary: okSummary()}
	h := testHandler(runner)

	req := httptest.NewRequest("POST", "/matches/run", nil)
	req.Header.Set("X-Automation-Secret", "sched-secret")
	w := httptest.NewRecorder()
	h.RunScored(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 1, runner.calls)

	var resp models.RunSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.GroupsCreated)
	assert.Equal(t, 8, resp.Placed)
	assert.Equal(t, 1, resp.Waitlisted)
}

func TestRunScoredMissingAuth(t *testing.T) {
	runner := &stubRunner{summary: okSummary()}
	h := testHandler(runner)

	req := httptest.NewRequest("POST", "/matches/run", nil)
	w := httptest.NewRecorder()
	h.RunScored(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, 0, runner.calls, "unauthorized request must not trigger a run")
}

func TestRunScoredWrongSecret(t *testing.T) {
	h := testHandler(&stubRunner{summary: okSummary()})

	req := httptest.NewRequest("POST", "/matches/run", nil)
	req.Header.Set("X-Automation-Secret", "guess")
	w := httptest.NewRecorder()
	h.RunScored(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRunScoredAdminCookie(t *testing.T) {
	auth.Init() // ephemeral keys, no DB needed
	h := testHandler(&stubRunner{summary: okSummary()})

	token, err := auth.CreateJWT(uuid.New().String(), true)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/matches/run", nil)
	req.Header.Set("Cookie", "auth_token="+token)
	w := httptest.NewRecorder()
	h.RunScored(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRunScoredNonAdminCookie(t *testing.T) {
	auth.Init()
	runner := &stubRunner{summary: okSummary()}
	h := testHandler(runner)

	token, err := auth.CreateJWT(uuid.New().String(), false)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/matches/run", nil)
	req.Header.Set("Cookie", "auth_token="+token)
	w := httptest.NewRecorder()
	h.RunScored(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, 0, runner.calls)
}

func TestRunWeekendNothingToDo(t *testing.T) {
	runner := &stubRunner{
		summary: &models.RunSummary{MatchWeek: time.Date(2026, time.September, 3, 0, 0, 0, 0, time.UTC)},
		err:     engine.ErrNoEligibleEvents,
	}
	h := testHandler(runner)

	req := httptest.NewRequest("POST", "/matches/run/weekend", nil)
	req.Header.Set("X-Automation-Secret", "sched-secret")
	w := httptest.NewRecorder()
	h.RunWeekend(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)

	var resp struct {
		Error     string `json:"error"`
		MatchWeek string `json:"match_week"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Error)
	assert.NotEmpty(t, resp.MatchWeek, "summary is returned even when there is nothing to do")
}

func TestRunScoredConcurrentRunConflicts(t *testing.T) {
	runner := &stubRunner{summary: &models.RunSummary{}, err: engine.ErrRunInProgress}
	h := testHandler(runner)

	req := httptest.NewRequest("POST", "/matches/run", nil)
	req.Header.Set("X-Automation-Secret", "sched-secret")
	w := httptest.NewRecorder()
	h.RunScored(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}
