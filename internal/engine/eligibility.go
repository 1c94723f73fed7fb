// internal/engine/eligibility.go
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tablemate-app/tablemate/internal/models"
)

// Resolver computes the candidate pool for a run: active users not already
// grouped this match week, optionally scoped to the weekend's day buckets.
type Resolver struct {
	Store  Store
	Logger *logrus.Logger
}

// GeneralPool returns every active user without an active group membership
// for the given match week. An empty pool yields ErrNoEligibleUsers.
func (r *Resolver) GeneralPool(ctx context.Context, week time.Time) ([]models.User, error) {
	users, err := r.Store.ActiveUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load active users: %w", err)
	}

	grouped, err := r.Store.GroupedUserIDs(ctx, week)
	if err != nil {
		return nil, fmt.Errorf("failed to load grouped users: %w", err)
	}

	pool := make([]models.User, 0, len(users))
	for _, u := range users {
		if grouped[u.ID] {
			continue
		}
		pool = append(pool, u)
	}
	if len(pool) == 0 {
		return nil, ErrNoEligibleUsers
	}

	r.Logger.WithFields(logrus.Fields{
		"active":  len(users),
		"grouped": len(grouped),
		"pool":    len(pool),
	}).Info("resolved general candidate pool")
	return pool, nil
}

// WeekendBuckets returns eligible users bucketed by meetup day for the
// weekend window containing or following now. A user lands in the bucket of
// their explicit day preference when it names a valid day, otherwise in the
// bucket of their booked event's weekday. Users are deduplicated per bucket
// and users already grouped this week are excluded.
func (r *Resolver) WeekendBuckets(ctx context.Context, from, to, week time.Time) (map[string][]models.User, error) {
	events, err := r.Store.EventsInWindow(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load weekend events: %w", err)
	}
	if len(events) == 0 {
		return nil, ErrNoEligibleEvents
	}

	ids := make([]uuid.UUID, len(events))
	for i, ev := range events {
		ids[i] = ev.ID
	}
	bookings, err := r.Store.PaidBookings(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load bookings: %w", err)
	}
	if len(bookings) == 0 {
		return nil, ErrNoEligibleUsers
	}

	grouped, err := r.Store.GroupedUserIDs(ctx, week)
	if err != nil {
		return nil, fmt.Errorf("failed to load grouped users: %w", err)
	}

	buckets := make(map[string][]models.User)
	seen := make(map[string]map[uuid.UUID]bool)
	for _, wb := range bookings {
		if grouped[wb.User.ID] {
			continue
		}
		day := wb.Booking.DayPreference
		if !models.IsMeetupDay(day) {
			day = weekdayBucket(wb.EventStart)
		}
		if seen[day] == nil {
			seen[day] = make(map[uuid.UUID]bool)
		}
		if seen[day][wb.User.ID] {
			continue
		}
		seen[day][wb.User.ID] = true
		buckets[day] = append(buckets[day], wb.User)
	}

	fields := logrus.Fields{"events": len(events), "bookings": len(bookings)}
	for day, us := range buckets {
		fields[day] = len(us)
	}
	r.Logger.WithFields(fields).Info("resolved weekend day buckets")
	return buckets, nil
}

// weekdayBucket maps an event start time onto a meetup day, defaulting
// off-window weekdays to saturday.
func weekdayBucket(t time.Time) string {
	switch t.Weekday() {
	case time.Friday:
		return models.DayFriday
	case time.Sunday:
		return models.DaySunday
	default:
		return models.DaySaturday
	}
}
