// internal/database/store.go
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tablemate-app/tablemate/internal/engine"
	"github.com/tablemate-app/tablemate/internal/models"
)

// Store implements engine.Store on the shared pgx pool.
type Store struct {
	Pool *pgxpool.Pool
}

// NewStore wraps the package pool.
func NewStore() *Store {
	return &Store{Pool: DB}
}

func (s *Store) ActiveUsers(ctx context.Context) ([]models.User, error) {
	q := `
	SELECT id, email, display_name, gender, status, day_preference, is_admin
	FROM users
	WHERE status = $1
	`
	rows, err := s.Pool.Query(ctx, q, models.UserStatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to query active users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Email, &u.DisplayName, &u.Gender, &u.Status, &u.DayPreference, &u.IsAdmin); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *Store) EventsInWindow(ctx context.Context, from, to time.Time) ([]models.Event, error) {
	q := `
	SELECT id, starts_at, status
	FROM events
	WHERE starts_at BETWEEN $1 AND $2
	  AND status IN ($3, $4)
	`
	rows, err := s.Pool.Query(ctx, q, from, to, models.EventStatusOpen, models.EventStatusFull)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		var ev models.Event
		if err := rows.Scan(&ev.ID, &ev.StartsAt, &ev.Status); err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

func (s *Store) PaidBookings(ctx context.Context, eventIDs []uuid.UUID) ([]engine.WeekendBooking, error) {
	q := `
	SELECT b.id, b.user_id, b.event_id, b.paid, b.status, b.day_preference,
	       e.starts_at,
	       u.id, u.email, u.display_name, u.gender, u.status, u.day_preference, u.is_admin
	FROM bookings b
	JOIN events e ON e.id = b.event_id
	JOIN users u ON u.id = b.user_id
	WHERE b.event_id = ANY($1)
	  AND b.paid
	  AND b.status = $2
	  AND u.status = $3
	`
	rows, err := s.Pool.Query(ctx, q, eventIDs, models.BookingStatusConfirmed, models.UserStatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	var out []engine.WeekendBooking
	for rows.Next() {
		var wb engine.WeekendBooking
		err := rows.Scan(
			&wb.Booking.ID, &wb.Booking.UserID, &wb.Booking.EventID,
			&wb.Booking.Paid, &wb.Booking.Status, &wb.Booking.DayPreference,
			&wb.EventStart,
			&wb.User.ID, &wb.User.Email, &wb.User.DisplayName, &wb.User.Gender,
			&wb.User.Status, &wb.User.DayPreference, &wb.User.IsAdmin,
		)
		if err != nil {
			return nil, err
		}
		out = append(out, wb)
	}
	return out, rows.Err()
}

func (s *Store) GroupedUserIDs(ctx context.Context, week time.Time) (map[uuid.UUID]bool, error) {
	q := `
	SELECT gm.user_id
	FROM group_memberships gm
	JOIN groups g ON g.id = gm.group_id
	WHERE gm.match_week = $1
	  AND g.status = $2
	`
	rows, err := s.Pool.Query(ctx, q, week, models.GroupStatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to query grouped users: %w", err)
	}
	defer rows.Close()

	grouped := make(map[uuid.UUID]bool)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		grouped[id] = true
	}
	return grouped, rows.Err()
}

func (s *Store) ScoredPairs(ctx context.Context, pool []uuid.UUID) (map[engine.PairKey]models.CompatibilityScore, error) {
	q := `
	SELECT user_a, user_b, score, status
	FROM compatibility_scores
	WHERE user_a = ANY($1) AND user_b = ANY($1)
	`
	rows, err := s.Pool.Query(ctx, q, pool)
	if err != nil {
		return nil, fmt.Errorf("failed to query compatibility scores: %w", err)
	}
	defer rows.Close()

	out := make(map[engine.PairKey]models.CompatibilityScore)
	for rows.Next() {
		var sc models.CompatibilityScore
		if err := rows.Scan(&sc.UserA, &sc.UserB, &sc.Score, &sc.Status); err != nil {
			return nil, err
		}
		out[engine.KeyFor(sc.UserA, sc.UserB)] = sc
	}
	return out, rows.Err()
}

// SaveScore inserts one scored pair. ON CONFLICT DO NOTHING keeps an already
// stored pair untouched, so re-running never duplicates or overwrites scores.
func (s *Store) SaveScore(ctx context.Context, sc models.CompatibilityScore) error {
	q := `
	INSERT INTO compatibility_scores (user_a, user_b, score, status)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (user_a, user_b) DO NOTHING
	`
	a, b := models.OrderPair(sc.UserA, sc.UserB)
	_, err := s.Pool.Exec(ctx, q, a, b, sc.Score, sc.Status)
	if err != nil {
		return fmt.Errorf("failed to insert compatibility score: %w", err)
	}
	return nil
}

// OpenGroups returns the week's active day-less groups with their members.
// Day-scoped weekend groups are excluded: their membership comes only from
// paid bookings, so the scored allocator must never top them up.
func (s *Store) OpenGroups(ctx context.Context, week time.Time) ([]*engine.GroupState, error) {
	q := `
	SELECT id, name, group_type, COALESCE(gender_composition, ''), status, match_week
	FROM groups
	WHERE match_week = $1 AND status = $2 AND day IS NULL
	`
	rows, err := s.Pool.Query(ctx, q, week, models.GroupStatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to query open groups: %w", err)
	}
	defer rows.Close()

	byID := make(map[uuid.UUID]*engine.GroupState)
	var out []*engine.GroupState
	for rows.Next() {
		var g models.Group
		if err := rows.Scan(&g.ID, &g.Name, &g.GroupType, &g.GenderComposition, &g.Status, &g.MatchWeek); err != nil {
			return nil, err
		}
		gs := &engine.GroupState{Group: g}
		byID[g.ID] = gs
		out = append(out, gs)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}

	mq := `
	SELECT gm.group_id, gm.user_id
	FROM group_memberships gm
	JOIN groups g ON g.id = gm.group_id
	WHERE g.match_week = $1 AND g.status = $2 AND g.day IS NULL
	`
	mrows, err := s.Pool.Query(ctx, mq, week, models.GroupStatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to query group members: %w", err)
	}
	defer mrows.Close()
	for mrows.Next() {
		var groupID, userID uuid.UUID
		if err := mrows.Scan(&groupID, &userID); err != nil {
			return nil, err
		}
		if gs, ok := byID[groupID]; ok {
			gs.Members = append(gs.Members, userID)
		}
	}
	return out, mrows.Err()
}

// DayGroupCounts reports how many active groups each meetup day already
// holds for the week. Weekend runs continue the day's name sequence from it.
func (s *Store) DayGroupCounts(ctx context.Context, week time.Time) (map[string]int, error) {
	q := `
	SELECT day, COUNT(*)
	FROM groups
	WHERE match_week = $1 AND status = $2 AND day IS NOT NULL
	GROUP BY day
	`
	rows, err := s.Pool.Query(ctx, q, week, models.GroupStatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to count day groups: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var day string
		var n int
		if err := rows.Scan(&day, &n); err != nil {
			return nil, err
		}
		counts[day] = n
	}
	return counts, rows.Err()
}

// insertMembership writes one membership row inside tx. The unique index on
// (user_id, match_week) makes the insert a no-op when a concurrent run
// placed the user first; the returned bool reports whether the row landed.
func insertMembership(ctx context.Context, tx pgx.Tx, groupID, userID uuid.UUID, week time.Time) (bool, error) {
	q := `
	INSERT INTO group_memberships (group_id, user_id, match_week)
	VALUES ($1, $2, $3)
	ON CONFLICT (user_id, match_week) DO NOTHING
	`
	ct, err := tx.Exec(ctx, q, groupID, userID, week)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() == 1, nil
}

// CreateGroupWithMembers writes the group row and its memberships in one
// transaction. Members grabbed by a concurrent run are dropped by the
// per-row exclusion; if fewer than two memberships survive, the whole
// transaction rolls back so no group is left active with under two members.
func (s *Store) CreateGroupWithMembers(ctx context.Context, g models.Group, members []uuid.UUID) ([]uuid.UUID, error) {
	var inserted []uuid.UUID
	err := pgx.BeginTxFunc(ctx, s.Pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		q := `
		INSERT INTO groups (id, name, day, group_type, gender_composition, status, match_week)
		VALUES ($1, $2, NULLIF($3, ''), $4, NULLIF($5, ''), $6, $7)
		`
		_, err := tx.Exec(ctx, q, g.ID, g.Name, g.Day, g.GroupType, g.GenderComposition, g.Status, g.MatchWeek)
		if err != nil {
			return err
		}
		for _, uid := range members {
			ok, err := insertMembership(ctx, tx, g.ID, uid, g.MatchWeek)
			if err != nil {
				return err
			}
			if ok {
				inserted = append(inserted, uid)
			}
		}
		if len(inserted) < 2 {
			return engine.ErrGroupTooSmall
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create group %s: %w", g.Name, err)
	}
	return inserted, nil
}

func (s *Store) AddMembers(ctx context.Context, groupID uuid.UUID, week time.Time, members []uuid.UUID) ([]uuid.UUID, error) {
	var inserted []uuid.UUID
	err := pgx.BeginTxFunc(ctx, s.Pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		for _, uid := range members {
			ok, err := insertMembership(ctx, tx, groupID, uid, week)
			if err != nil {
				return err
			}
			if ok {
				inserted = append(inserted, uid)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add members to group %v: %w", groupID, err)
	}
	return inserted, nil
}

func (s *Store) OpenConversation(ctx context.Context, groupID uuid.UUID) (uuid.UUID, error) {
	id := uuid.New()
	q := `
	INSERT INTO conversations (id, group_id)
	VALUES ($1, $2)
	ON CONFLICT (group_id) DO NOTHING
	`
	if _, err := s.Pool.Exec(ctx, q, id, groupID); err != nil {
		return uuid.Nil, fmt.Errorf("failed to open conversation for group %v: %w", groupID, err)
	}
	return id, nil
}
