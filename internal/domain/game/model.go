package game

import (
	"strings"
	"time"
)

type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusLive      Status = "live"
	StatusFinal     Status = "final"
	StatusPostponed Status = "postponed"
	StatusCanceled  Status = "canceled"
)

// Game is the normalized per-game record reconciled from provider feeds.
type Game struct {
	ID            int64
	LeagueCode    string
	Season        int
	SeasonType    string
	HomeTeam      string
	AwayTeam      string
	HomeScore     *int
	AwayScore     *int
	Venue         string
	Status        Status
	StartTime     time.Time
	EndTime       *time.Time
	SourceGameKey string
	HasPBP        bool
	HasSocial     bool
	LastUpdatedAt time.Time
}

func ParseStatus(value string) (Status, bool) {
	switch Status(strings.ToLower(strings.TrimSpace(value))) {
	case StatusScheduled:
		return StatusScheduled, true
	case StatusLive:
		return StatusLive, true
	case StatusFinal:
		return StatusFinal, true
	case StatusPostponed:
		return StatusPostponed, true
	case StatusCanceled:
		return StatusCanceled, true
	default:
		return "", false
	}
}

// IsTerminal reports whether no further status transition is allowed.
func IsTerminal(status Status) bool {
	return status == StatusFinal || status == StatusCanceled
}

func rank(status Status) int {
	switch status {
	case StatusScheduled:
		return 0
	case StatusPostponed:
		return 1
	case StatusLive:
		return 2
	case StatusFinal, StatusCanceled:
		return 3
	default:
		return 0
	}
}

// ResolveStatusTransition applies the monotonic status lattice: final,
// canceled, and postponed all stick, and live never regresses to scheduled.
// A rescheduled game arrives through the schedule feed as a new record, not
// as a transition out of postponed.
func ResolveStatusTransition(current, incoming Status) Status {
	if current == "" {
		if incoming == "" {
			return StatusScheduled
		}
		return incoming
	}
	if incoming == "" {
		return current
	}
	if IsTerminal(current) || current == StatusPostponed {
		return current
	}
	if rank(incoming) > rank(current) {
		return incoming
	}
	return current
}
