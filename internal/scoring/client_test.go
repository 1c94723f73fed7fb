package scoring

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tablemate-app/tablemate/internal/models"
)

func TestClientScore(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/score", r.URL.Path)
		var req struct {
			UserA string `json:"user_a"`
			UserB string `json:"user_b"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		json.NewEncoder(w).Encode(map[string]int{"score": 42})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	a := models.User{ID: uuid.New()}
	b := models.User{ID: uuid.New()}
	score, err := c.Score(context.Background(), a, b)
	require.NoError(t, err)
	assert.Equal(t, 42, score)
}

func TestClientScoreNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.Score(context.Background(), models.User{ID: uuid.New()}, models.User{ID: uuid.New()})
	assert.Error(t, err)
}
