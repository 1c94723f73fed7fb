// internal/engine/allocator.go
package engine

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/tablemate-app/tablemate/internal/models"
)

// Allocator is the greedy online placer for the scored flow. Candidates are
// processed in randomized order so group composition is not biased by
// database insertion order; the random source is injected so tests can fix
// the seed. This is a heuristic, not an optimum: repeated runs over the same
// pool may yield different group shapes.
type Allocator struct {
	Min  int
	Max  int
	Rand *rand.Rand
}

// Allocate places every user in pool into an existing or new group for the
// given match week and returns the full group set (untouched existing groups
// included; callers persist only those with a non-empty Added delta).
//
// Placement order per user: same-gender groups with room, then mixed groups
// with room, then a new group typed by whichever kind currently has fewer
// open groups (ties favor same_gender). Users without a specified gender
// only ever join or open mixed groups.
func (a *Allocator) Allocate(week time.Time, pool []models.User, existing []*GroupState) []*GroupState {
	groups := existing
	order := make([]models.User, len(pool))
	copy(order, pool)
	a.Rand.Shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})

	placed := make(map[uuid.UUID]bool)
	for _, u := range order {
		if placed[u.ID] {
			continue
		}
		g := a.findRoom(u, groups)
		if g == nil {
			g = a.openGroup(week, u, groups)
			groups = append(groups, g)
		}
		g.Add(u)
		placed[u.ID] = true
	}
	return groups
}

// findRoom scans same-gender groups first, then mixed ones.
func (a *Allocator) findRoom(u models.User, groups []*GroupState) *GroupState {
	for _, g := range groups {
		if g.Group.GroupType == models.GroupTypeSameGender && g.Fits(u, a.Max) {
			return g
		}
	}
	for _, g := range groups {
		if g.Group.GroupType == models.GroupTypeMixed && g.Fits(u, a.Max) {
			return g
		}
	}
	return nil
}

// openGroup starts a new group with u as its first member. The group type is
// load-balanced across the week's open groups; composition is deterministic
// for same-gender groups and drawn from the two fixed mixed ratios otherwise.
func (a *Allocator) openGroup(week time.Time, u models.User, groups []*GroupState) *GroupState {
	var sameGender, mixed int
	for _, g := range groups {
		switch g.Group.GroupType {
		case models.GroupTypeSameGender:
			sameGender++
		case models.GroupTypeMixed:
			mixed++
		}
	}

	groupType := models.GroupTypeSameGender
	if mixed < sameGender || u.Gender == "" {
		groupType = models.GroupTypeMixed
	}

	var composition string
	switch groupType {
	case models.GroupTypeSameGender:
		composition = models.CompositionAllMale
		if u.Gender == models.GenderFemale {
			composition = models.CompositionAllFemale
		}
	case models.GroupTypeMixed:
		composition = models.Composition2F3M
		if a.Rand.Intn(2) == 1 {
			composition = models.Composition3F2M
		}
	}

	return &GroupState{
		Group: models.Group{
			ID:                uuid.New(),
			Name:              fmt.Sprintf("table-%s-%d", week.Format("2006-01-02"), len(groups)+1),
			GroupType:         groupType,
			GenderComposition: composition,
			Status:            models.GroupStatusActive,
			MatchWeek:         week,
		},
		New: true,
	}
}
