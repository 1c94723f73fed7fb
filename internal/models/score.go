// internal/models/score.go
package models

import "github.com/google/uuid"

// Compatibility score status values. Proposed pairs feed group formation;
// rejected pairs are kept only so the oracle is never asked twice.
const (
	ScoreStatusProposed = "proposed"
	ScoreStatusRejected = "rejected"
)

// CompatibilityScore is one scored unordered pair. UserA/UserB are stored
// in canonical order (lexically smaller UUID first) so each pair appears
// exactly once.
type CompatibilityScore struct {
	UserA  uuid.UUID `json:"user_a"`
	UserB  uuid.UUID `json:"user_b"`
	Score  int       `json:"score"`
	Status string    `json:"status"`
}

// OrderPair returns the canonical storage order for an unordered user pair.
func OrderPair(a, b uuid.UUID) (uuid.UUID, uuid.UUID) {
	if b.String() < a.String() {
		return b, a
	}
	return a, b
}
