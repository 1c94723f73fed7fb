// internal/engine/store.go
package engine

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/tablemate-app/tablemate/internal/models"
)

// Terminal "nothing to do" conditions. They reflect real absence of demand
// and are reported to the caller, never retried.
var (
	ErrNoEligibleEvents = errors.New("no eligible events in the weekend window")
	ErrNoEligibleUsers  = errors.New("no eligible users for this match week")
)

// ErrRunInProgress means another invocation holds the match-week run lock.
var ErrRunInProgress = errors.New("a run for this match week is already in progress")

// ErrGroupTooSmall aborts a group write that would leave fewer than two
// members after the per-member exclusion re-check.
var ErrGroupTooSmall = errors.New("group would be left with fewer than two members")

// PairKey identifies one unordered scored pair in canonical storage order.
type PairKey struct {
	A, B uuid.UUID
}

// KeyFor builds the canonical PairKey for two users in either order.
func KeyFor(a, b uuid.UUID) PairKey {
	x, y := models.OrderPair(a, b)
	return PairKey{A: x, B: y}
}

// WeekendBooking joins a paid, confirmed booking with its user and the start
// time of the booked event.
type WeekendBooking struct {
	User       models.User
	Booking    models.Booking
	EventStart time.Time
}

// Store is the persistence surface the engine runs against. The production
// implementation lives in internal/database; tests use an in-memory fake.
type Store interface {
	ActiveUsers(ctx context.Context) ([]models.User, error)
	EventsInWindow(ctx context.Context, from, to time.Time) ([]models.Event, error)
	PaidBookings(ctx context.Context, eventIDs []uuid.UUID) ([]WeekendBooking, error)
	GroupedUserIDs(ctx context.Context, week time.Time) (map[uuid.UUID]bool, error)

	ScoredPairs(ctx context.Context, pool []uuid.UUID) (map[PairKey]models.CompatibilityScore, error)
	SaveScore(ctx context.Context, sc models.CompatibilityScore) error

	// OpenGroups returns the week's active day-less groups with members.
	// Day-scoped weekend groups are never returned: their membership comes
	// only from paid bookings, so the scored allocator must not fill them.
	OpenGroups(ctx context.Context, week time.Time) ([]*GroupState, error)
	// DayGroupCounts reports how many active groups each meetup day already
	// holds for the week.
	DayGroupCounts(ctx context.Context, week time.Time) (map[string]int, error)
	// CreateGroupWithMembers writes the group row and its memberships in one
	// transaction, re-checking the one-active-group-per-week exclusion for
	// each member. It returns the members actually inserted; users grouped
	// by a concurrent run are silently dropped. The transaction rolls back
	// with ErrGroupTooSmall if fewer than two memberships survive.
	CreateGroupWithMembers(ctx context.Context, g models.Group, members []uuid.UUID) ([]uuid.UUID, error)
	// AddMembers appends members to an existing group under the same
	// exclusion re-check, returning those actually inserted.
	AddMembers(ctx context.Context, groupID uuid.UUID, week time.Time, members []uuid.UUID) ([]uuid.UUID, error)
	OpenConversation(ctx context.Context, groupID uuid.UUID) (uuid.UUID, error)
}

// Notifier receives the fire-and-forget "group ready" signal. Failures are
// logged by the caller and never roll back group creation.
type Notifier interface {
	GroupReady(ctx context.Context, g models.Group, members []uuid.UUID) error
}

// Locker serializes runs for one match week across processes.
type Locker interface {
	Acquire(ctx context.Context, week time.Time) (release func(), ok bool, err error)
}

// GroupState is one active (or planned) group plus everything the allocator
// needs to honor capacity and gender policy.
type GroupState struct {
	Group   models.Group
	Members []uuid.UUID

	// New marks a group opened during this run; Added holds the members
	// placed during this run (all of them, for a new group).
	New   bool
	Added []uuid.UUID
}

// Fits reports whether u can join the group. Same-gender groups require the
// user's gender to match the declared composition; mixed groups only need
// free capacity (their ratio composition is a declared intent, not a hard
// per-gender cap).
func (gs *GroupState) Fits(u models.User, max int) bool {
	if len(gs.Members) >= max {
		return false
	}
	switch gs.Group.GroupType {
	case models.GroupTypeSameGender:
		switch gs.Group.GenderComposition {
		case models.CompositionAllFemale:
			return u.Gender == models.GenderFemale
		case models.CompositionAllMale:
			return u.Gender == models.GenderMale
		}
		return false
	case models.GroupTypeMixed:
		return true
	}
	return false
}

// Add places u into the group and records the this-run delta.
func (gs *GroupState) Add(u models.User) {
	gs.Members = append(gs.Members, u.ID)
	gs.Added = append(gs.Added, u.ID)
}
