package models

import "github.com/google/uuid"

// Gender values stored on a user row. Empty string means unspecified.
const (
	GenderFemale = "female"
	GenderMale   = "male"
)

// User status values.
const (
	UserStatusActive = "active"
	UserStatusBanned = "banned"
)

// The three valid meetup days for the weekend flow.
const (
	DayFriday   = "friday"
	DaySaturday = "saturday"
	DaySunday   = "sunday"
)

// IsMeetupDay reports whether s names one of the three valid meetup days.
func IsMeetupDay(s string) bool {
	return s == DayFriday || s == DaySaturday || s == DaySunday
}

type User struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	Password    string    `json:"password,omitempty"`
	DisplayName string    `json:"display_name"`

	Gender        string `json:"gender"`
	Status        string `json:"status"`
	DayPreference string `json:"day_preference"`

	IsAdmin bool `json:"is_admin"`
}
