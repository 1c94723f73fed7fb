// Package engine forms weekly match groups. Two flows share the core: the
// scored flow partitions the whole active user pool with a gender-balanced
// greedy allocator after expanding pairwise compatibility scores, and the
// weekend flow chunks users with paid bookings into per-day groups. Both are
// scoped to the Thursday-anchored match week and respect the one active
// group per user per week invariant.
package engine

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tablemate-app/tablemate/internal/matchweek"
	"github.com/tablemate-app/tablemate/internal/models"
)

// Runner wires the engine's pieces together for one batch invocation. It is
// short-lived: a scheduler or an authenticated admin triggers one run and
// reads back the summary.
type Runner struct {
	Store    Store
	Scorer   PairScorer
	Notifier Notifier
	Locker   Locker
	Logger   *logrus.Logger

	GroupMin       int
	GroupMax       int
	ChunkSize      int
	ScoreThreshold int
	ScoreBatch     int

	// Budget caps a run's wall clock; the O(n²) scoring step is the risk.
	Budget time.Duration

	Now  func() time.Time
	Rand *rand.Rand
}

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func (r *Runner) rng() *rand.Rand {
	if r.Rand != nil {
		return r.Rand
	}
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// begin computes the match week, applies the wall-clock budget, and takes
// the per-week run lock.
func (r *Runner) begin(ctx context.Context) (context.Context, context.CancelFunc, func(), time.Time, error) {
	week := matchweek.Next(r.now())

	cancel := context.CancelFunc(func() {})
	if r.Budget > 0 {
		ctx, cancel = context.WithTimeout(ctx, r.Budget)
	}

	release := func() {}
	if r.Locker != nil {
		rel, ok, err := r.Locker.Acquire(ctx, week)
		if err != nil {
			cancel()
			return nil, nil, nil, week, fmt.Errorf("failed to acquire run lock: %w", err)
		}
		if !ok {
			cancel()
			return nil, nil, nil, week, ErrRunInProgress
		}
		release = rel
	}
	return ctx, cancel, release, week, nil
}

// RunScored executes the general flow: score expansion over the active pool,
// then greedy gender-balanced allocation into existing or new groups.
// The summary is best-effort and returned even on partial failure.
func (r *Runner) RunScored(ctx context.Context) (*models.RunSummary, error) {
	summary := &models.RunSummary{}
	ctx, cancel, release, week, err := r.begin(ctx)
	summary.MatchWeek = week
	if err != nil {
		return summary, err
	}
	defer cancel()
	defer release()

	resolver := &Resolver{Store: r.Store, Logger: r.Logger}
	pool, err := resolver.GeneralPool(ctx, week)
	if err != nil {
		return summary, err
	}

	expander := &Expander{
		Store:     r.Store,
		Scorer:    r.Scorer,
		Threshold: r.ScoreThreshold,
		Batch:     r.ScoreBatch,
		Logger:    r.Logger,
	}
	summary.PairsScored, summary.PairsSkipped, err = expander.Expand(ctx, pool)
	if err != nil {
		return summary, fmt.Errorf("score expansion failed: %w", err)
	}

	existing, err := r.Store.OpenGroups(ctx, week)
	if err != nil {
		return summary, fmt.Errorf("failed to load open groups: %w", err)
	}

	allocator := &Allocator{Min: r.GroupMin, Max: r.GroupMax, Rand: r.rng()}
	groups := allocator.Allocate(week, pool, existing)

	// A group with a single member is never left active: drop it and let its
	// member wait for the next run. Under-filled groups of two or more are
	// persisted; later runs top them up through the open-group search.
	persistable := groups[:0]
	for _, g := range groups {
		if g.New && len(g.Members) < 2 {
			r.Logger.WithField("group", g.Group.Name).Info("dropping singleton group, member waitlisted")
			continue
		}
		persistable = append(persistable, g)
	}

	persister := &Persister{Store: r.Store, Notifier: r.Notifier, Logger: r.Logger}
	res := persister.Persist(ctx, week, persistable)
	r.fill(summary, len(pool), res)

	r.logSummary("scored", summary)
	return summary, nil
}

// RunWeekend executes the day-scoped flow: users with paid bookings in the
// upcoming weekend window, bucketed by day and chunked into groups. Buckets
// below the minimum size are entirely waitlisted.
func (r *Runner) RunWeekend(ctx context.Context) (*models.RunSummary, error) {
	summary := &models.RunSummary{}
	ctx, cancel, release, week, err := r.begin(ctx)
	summary.MatchWeek = week
	if err != nil {
		return summary, err
	}
	defer cancel()
	defer release()

	from, to := matchweek.WeekendWindow(r.now())
	resolver := &Resolver{Store: r.Store, Logger: r.Logger}
	buckets, err := resolver.WeekendBuckets(ctx, from, to, week)
	if err != nil {
		return summary, err
	}

	// Name sequences continue from groups earlier runs created this week.
	counts, err := r.Store.DayGroupCounts(ctx, week)
	if err != nil {
		return summary, fmt.Errorf("failed to count day groups: %w", err)
	}

	chunker := &Chunker{Size: r.ChunkSize, Min: r.GroupMin, Max: r.GroupMax}
	var planned []*GroupState
	var eligible int
	for _, day := range []string{models.DayFriday, models.DaySaturday, models.DaySunday} {
		bucket := buckets[day]
		eligible += len(bucket)
		chunks := chunker.Chunk(bucket)
		if chunks == nil {
			continue // below minimum, whole bucket waitlisted
		}
		for i, chunk := range chunks {
			g := &GroupState{
				Group: models.Group{
					ID:        uuid.New(),
					Name:      fmt.Sprintf("%s-%d", day, counts[day]+i+1),
					Day:       day,
					GroupType: models.GroupTypeMixed,
					Status:    models.GroupStatusActive,
					MatchWeek: week,
				},
				New: true,
			}
			for _, u := range chunk {
				g.Add(u)
			}
			planned = append(planned, g)
		}
	}

	persister := &Persister{Store: r.Store, Notifier: r.Notifier, Logger: r.Logger}
	res := persister.Persist(ctx, week, planned)
	r.fill(summary, eligible, res)

	r.logSummary("weekend", summary)
	return summary, nil
}

// fill folds a persistence result into the summary. Whoever was eligible but
// neither placed, failed, nor grabbed by a concurrent run is waitlisted.
func (r *Runner) fill(summary *models.RunSummary, eligible int, res PersistResult) {
	summary.GroupsCreated = res.GroupsCreated
	summary.Placed = res.Placed
	summary.Failed = res.Failed
	summary.Waitlisted = eligible - res.Placed - res.Failed - res.AlreadyGrouped
	if summary.Waitlisted < 0 {
		summary.Waitlisted = 0
	}
}

func (r *Runner) logSummary(flow string, s *models.RunSummary) {
	r.Logger.WithFields(logrus.Fields{
		"flow":       flow,
		"match_week": s.MatchWeek.Format("2006-01-02"),
		"groups":     s.GroupsCreated,
		"placed":     s.Placed,
		"waitlisted": s.Waitlisted,
		"failed":     s.Failed,
	}).Info("match run finished")
}
