// internal/models/event.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// Event status values. Open and full events both accept group formation;
// cancelled ones do not.
const (
	EventStatusOpen      = "open"
	EventStatusFull      = "full"
	EventStatusCancelled = "cancelled"
)

// Booking status values.
const (
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"
)

// Event is a dated weekend dinner slot users book into.
type Event struct {
	ID       uuid.UUID `json:"id"`
	StartsAt time.Time `json:"starts_at"`
	Status   string    `json:"status"`
}

// Booking ties a user to an event. Paid, confirmed bookings against an
// open or full event make the user eligible for the weekend flow.
type Booking struct {
	ID            uuid.UUID `json:"id"`
	UserID        uuid.UUID `json:"user_id"`
	EventID       uuid.UUID `json:"event_id"`
	Paid          bool      `json:"paid"`
	Status        string    `json:"status"`
	DayPreference string    `json:"day_preference"`
}
