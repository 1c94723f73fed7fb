// internal/engine/persister.go
package engine

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Persister writes planned groups and memberships, keyed by match week.
// Each group's rows go in one transaction; opening the conversation and
// emitting the group-ready notification happen after commit and never roll
// the group back. Failed groups move their intended members to the failed
// tally so a re-run can pick them up — they are never double-counted as
// both placed and waitlisted.
type Persister struct {
	Store    Store
	Notifier Notifier
	Logger   *logrus.Logger
}

// PersistResult aggregates the per-group outcomes of one persistence pass.
type PersistResult struct {
	GroupsCreated int
	Placed        int
	Failed        int
	// AlreadyGrouped counts members dropped by the exclusion re-check
	// because a concurrent run placed them first.
	AlreadyGrouped int
}

// Persist writes every group in groups that gained members this run.
func (p *Persister) Persist(ctx context.Context, week time.Time, groups []*GroupState) PersistResult {
	var res PersistResult
	for _, g := range groups {
		if len(g.Added) == 0 {
			continue
		}

		var inserted int
		var err error
		if g.New {
			var ids []uuid.UUID
			ids, err = p.Store.CreateGroupWithMembers(ctx, g.Group, g.Added)
			inserted = len(ids)
		} else {
			var ids []uuid.UUID
			ids, err = p.Store.AddMembers(ctx, g.Group.ID, week, g.Added)
			inserted = len(ids)
		}
		if err != nil {
			res.Failed += len(g.Added)
			p.Logger.WithFields(logrus.Fields{
				"group":   g.Group.Name,
				"members": len(g.Added),
			}).WithError(err).Error("failed to persist group")
			continue
		}

		res.Placed += inserted
		res.AlreadyGrouped += len(g.Added) - inserted
		if g.New {
			res.GroupsCreated++
			if _, cerr := p.Store.OpenConversation(ctx, g.Group.ID); cerr != nil {
				p.Logger.WithField("group", g.Group.Name).WithError(cerr).Warn("failed to open conversation")
			}
		}

		if p.Notifier != nil {
			if nerr := p.Notifier.GroupReady(ctx, g.Group, g.Members); nerr != nil {
				p.Logger.WithField("group", g.Group.Name).WithError(nerr).Warn("group-ready notification failed")
			}
		}
	}
	return res
}
