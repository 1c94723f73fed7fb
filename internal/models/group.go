// internal/models/group.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// Group type values.
const (
	GroupTypeSameGender = "same_gender"
	GroupTypeMixed      = "mixed"
)

// Gender composition values. Same-gender groups get one of the "all_*"
// compositions; mixed groups get one of the ratio compositions. The weekend
// flow leaves composition empty.
const (
	CompositionAllFemale = "all_female"
	CompositionAllMale   = "all_male"
	Composition2F3M      = "2F3M"
	Composition3F2M      = "3F2M"
)

// Group status values.
const (
	GroupStatusActive    = "active"
	GroupStatusDisbanded = "disbanded"
)

// Group is one social group for a match week. Day is set only for the
// weekend flow; GenderComposition only for the scored flow.
type Group struct {
	ID                uuid.UUID `json:"id"`
	Name              string    `json:"name"`
	Day               string    `json:"day,omitempty"`
	GroupType         string    `json:"group_type"`
	GenderComposition string    `json:"gender_composition,omitempty"`
	Status            string    `json:"status"`
	MatchWeek         time.Time `json:"match_week"`
}

// GroupMembership links one user to one group. A user holds at most one
// active membership per match week.
type GroupMembership struct {
	GroupID uuid.UUID `json:"group_id"`
	UserID  uuid.UUID `json:"user_id"`
}

// Conversation is the chat resource opened for a freshly persisted group.
// Message delivery lives in another service; only the row is created here.
type Conversation struct {
	ID      uuid.UUID `json:"id"`
	GroupID uuid.UUID `json:"group_id"`
}
