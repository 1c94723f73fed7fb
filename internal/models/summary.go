// internal/models/summary.go
package models

import "time"

// RunSummary is the best-effort result of one engine invocation. It is
// returned to the trigger caller even when parts of the run failed.
type RunSummary struct {
	MatchWeek     time.Time `json:"match_week"`
	GroupsCreated int       `json:"groups_created"`
	Placed        int       `json:"placed"`
	Waitlisted    int       `json:"waitlisted"`
	Failed        int       `json:"failed"`
	PairsScored   int       `json:"pairs_scored"`
	PairsSkipped  int       `json:"pairs_skipped"`
}
