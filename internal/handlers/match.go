// internal/handlers/match.go
package handlers

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/tablemate-app/tablemate/internal/auth"
	"github.com/tablemate-app/tablemate/internal/engine"
	"github.com/tablemate-app/tablemate/internal/models"
)

// matchRunner is what the trigger endpoints need from the engine; tests
// substitute a stub.
type matchRunner interface {
	RunScored(ctx context.Context) (*models.RunSummary, error)
	RunWeekend(ctx context.Context) (*models.RunSummary, error)
}

// MatchHandler exposes the two batch trigger endpoints. Runs are authorized
// either by the shared automation secret header (the scheduler) or by an
// admin JWT cookie (a human trigger); no request body is required.
type MatchHandler struct {
	Runner matchRunner
	Secret string
	Logger *logrus.Logger
}

type runResponse struct {
	*models.RunSummary
	Error string `json:"error,omitempty"`
}

// authorize returns the HTTP status to reject with, or 0 when the request
// may trigger a run.
func (h *MatchHandler) authorize(r *http.Request) int {
	if secret := r.Header.Get("X-Automation-Secret"); secret != "" {
		if subtle.ConstantTimeCompare([]byte(secret), []byte(h.Secret)) == 1 {
			return 0
		}
		return http.StatusForbidden
	}

	cookieHeader := r.Header.Get("Cookie")
	if !strings.Contains(cookieHeader, "auth_token=") {
		return http.StatusUnauthorized
	}
	_, isAdmin, err := auth.AuthenticateJWT(extractCookieToken(cookieHeader, "auth_token"))
	if err != nil || !isAdmin {
		return http.StatusForbidden
	}
	return 0
}

// RunScored triggers the general scored flow.
func (h *MatchHandler) RunScored(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, h.Runner.RunScored)
}

// RunWeekend triggers the day-scoped weekend flow.
func (h *MatchHandler) RunWeekend(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, h.Runner.RunWeekend)
}

func (h *MatchHandler) run(w http.ResponseWriter, r *http.Request, fn func(context.Context) (*models.RunSummary, error)) {
	if status := h.authorize(r); status != 0 {
		http.Error(w, http.StatusText(status), status)
		return
	}

	summary, err := fn(r.Context())
	if err != nil {
		h.Logger.WithError(err).Warn("match run did not complete")
	}

	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, runResponse{RunSummary: summary})
	case errors.Is(err, engine.ErrNoEligibleEvents), errors.Is(err, engine.ErrNoEligibleUsers):
		// Real absence of demand, reported rather than retried.
		writeJSON(w, http.StatusNotFound, runResponse{RunSummary: summary, Error: err.Error()})
	case errors.Is(err, engine.ErrRunInProgress):
		writeJSON(w, http.StatusConflict, runResponse{RunSummary: summary, Error: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, runResponse{RunSummary: summary, Error: err.Error()})
	}
}
