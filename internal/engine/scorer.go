// internal/engine/scorer.go
package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tablemate-app/tablemate/internal/models"
)

// PairScorer is the external compatibility oracle. It is slow, possibly
// rate limited, and may fail transiently; a failure means "unknown", not
// "zero compatibility".
type PairScorer interface {
	Score(ctx context.Context, a, b models.User) (int, error)
}

// Expander lazily computes and persists missing pairwise scores for a
// candidate pool so later runs can reuse them. Pairs scoring below Threshold
// are stored as rejected and never resurface; oracle failures are skipped
// without persisting anything so the pair is retried on the next run.
type Expander struct {
	Store     Store
	Scorer    PairScorer
	Threshold int
	// Batch bounds how many oracle calls are in flight at once, respecting
	// the vendor rate limit. Writes are serialized after each batch.
	Batch  int
	Logger *logrus.Logger
}

type pairResult struct {
	a, b  models.User
	score int
	err   error
}

// Expand scores every unscored unordered pair in the pool. It returns the
// count of pairs accepted as proposed matches and the count skipped (oracle
// or persistence failure). Already scored pairs are never recomputed or
// overwritten.
func (e *Expander) Expand(ctx context.Context, pool []models.User) (scored, skipped int, err error) {
	ids := make([]uuid.UUID, len(pool))
	for i, u := range pool {
		ids[i] = u.ID
	}
	existing, err := e.Store.ScoredPairs(ctx, ids)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to load existing scores: %w", err)
	}

	var missing [][2]models.User
	for i := 0; i < len(pool); i++ {
		for j := i + 1; j < len(pool); j++ {
			if _, ok := existing[KeyFor(pool[i].ID, pool[j].ID)]; ok {
				continue
			}
			missing = append(missing, [2]models.User{pool[i], pool[j]})
		}
	}
	if len(missing) == 0 {
		return 0, 0, nil
	}
	e.Logger.WithFields(logrus.Fields{
		"pool":    len(pool),
		"known":   len(existing),
		"missing": len(missing),
	}).Info("expanding pairwise scores")

	batch := e.Batch
	if batch <= 0 {
		batch = 20
	}
	for start := 0; start < len(missing); start += batch {
		if ctx.Err() != nil {
			return scored, skipped, ctx.Err()
		}
		end := start + batch
		if end > len(missing) {
			end = len(missing)
		}
		results := e.scoreBatch(ctx, missing[start:end])

		// Writes happen on this goroutine only.
		for _, res := range results {
			if res.err != nil {
				skipped++
				e.Logger.WithFields(logrus.Fields{
					"user_a": res.a.ID, "user_b": res.b.ID,
				}).WithError(res.err).Warn("score oracle failed, pair skipped")
				continue
			}
			a, b := models.OrderPair(res.a.ID, res.b.ID)
			sc := models.CompatibilityScore{UserA: a, UserB: b, Score: res.score, Status: models.ScoreStatusProposed}
			if res.score < e.Threshold {
				sc.Status = models.ScoreStatusRejected
			}
			if err := e.Store.SaveScore(ctx, sc); err != nil {
				skipped++
				e.Logger.WithError(err).Warn("failed to persist compatibility score")
				continue
			}
			if sc.Status == models.ScoreStatusProposed {
				scored++
			}
		}
	}
	return scored, skipped, nil
}

// scoreBatch fans one batch of oracle calls out to goroutines and collects
// the results. Each pair's score is independent, so this is the one place
// parallelism is worth it.
func (e *Expander) scoreBatch(ctx context.Context, pairs [][2]models.User) []pairResult {
	results := make([]pairResult, len(pairs))
	var wg sync.WaitGroup
	for i, p := range pairs {
		wg.Add(1)
		go func(i int, a, b models.User) {
			defer wg.Done()
			score, err := e.Scorer.Score(ctx, a, b)
			results[i] = pairResult{a: a, b: b, score: score, err: err}
		}(i, p[0], p[1])
	}
	wg.Wait()
	return results
}
