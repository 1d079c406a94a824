package model

import (
	"time"

	"github.com/google/uuid"
)

type MatchStatus string

const (
	MatchStatusPending   MatchStatus = "PENDING"
	MatchStatusContacted MatchStatus = "CONTACTED"
	MatchStatusAccepted  MatchStatus = "ACCEPTED"
	MatchStatusDeclined  MatchStatus = "DECLINED"
	MatchStatusNoAnswer  MatchStatus = "NO_ANSWER"
)

// matchTransitions enumerates every legal lifecycle move. NO_ANSWER
// requires the donor to have been contacted first; accept/decline may
// happen straight from PENDING when the donor responds out of band.
var matchTransitions = map[MatchStatus][]MatchStatus{
	MatchStatusPending:   {MatchStatusContacted, MatchStatusAccepted, MatchStatusDeclined},
	MatchStatusContacted: {MatchStatusAccepted, MatchStatusDeclined, MatchStatusNoAnswer},
}

// CanTransitionTo reports whether the lifecycle permits moving from s to next.
func (s MatchStatus) CanTransitionTo(next MatchStatus) bool {
	for _, allowed := range matchTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// MatchStatusesAllowing lists the statuses from which next is reachable.
func MatchStatusesAllowing(next MatchStatus) []MatchStatus {
	var from []MatchStatus
	for s, targets := range matchTransitions {
		for _, t := range targets {
			if t == next {
				from = append(from, s)
			}
		}
	}
	return from
}

// IsTerminal reports whether the match can no longer change.
func (s MatchStatus) IsTerminal() bool {
	return len(matchTransitions[s]) == 0
}

// NonTerminalMatchStatuses are the statuses counted by the duplicate
// guard: at most one match per (request, donor) pair may hold one.
func NonTerminalMatchStatuses() []MatchStatus {
	return []MatchStatus{MatchStatusPending, MatchStatusContacted}
}

// Match is one recorded attempt to pair a donor with a request. Matches
// are never deleted; they form the audit trail of the matching engine.
type Match struct {
	Base
	RequestID          uuid.UUID   `db:"request_id" json:"request_id"`
	DonorID            uuid.UUID   `db:"donor_id" json:"donor_id"`
	CompatibilityScore *int        `db:"compatibility_score" json:"compatibility_score,omitempty"`
	DistanceKm         float64     `db:"distance_km" json:"distance_km"`
	Status             MatchStatus `db:"status" json:"status"`
	ContactedAt        *time.Time  `db:"contacted_at" json:"contacted_at,omitempty"`
	Response           *string     `db:"response" json:"response,omitempty"`
}

type CreateMatchRequest struct {
	RequestID uuid.UUID `json:"request_id" binding:"required"`
	DonorID   uuid.UUID `json:"donor_id" binding:"required"`
}

// Match lifecycle event types.
const (
	EventMatchCreated   = "MATCH_CREATED"
	EventMatchContacted = "MATCH_CONTACTED"
	EventMatchAccepted  = "MATCH_ACCEPTED"
	EventMatchDeclined  = "MATCH_DECLINED"
	EventMatchNoAnswer  = "MATCH_NO_ANSWER"
)

// MatchEvent is the wire payload for match lifecycle events.
type MatchEvent struct {
	MatchID   uuid.UUID `json:"matchId"`
	RequestID uuid.UUID `json:"requestId"`
	DonorID   uuid.UUID `json:"donorId"`
	Event     string    `json:"event"`
}
