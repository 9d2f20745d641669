package game

import (
	"context"
	"time"
)

// Range is the query window for game listings.
type Range string

const (
	RangeLast2   Range = "last2"
	RangeCurrent Range = "current"
	RangeNext24  Range = "next24"
)

func ParseRange(value string) (Range, bool) {
	switch Range(value) {
	case RangeLast2:
		return RangeLast2, true
	case RangeCurrent:
		return RangeCurrent, true
	case RangeNext24:
		return RangeNext24, true
	default:
		return "", false
	}
}

type Repository interface {
	GetByID(ctx context.Context, id int64) (Game, bool, error)
	ListByWindow(ctx context.Context, from, to time.Time) ([]Game, error)
	// FindByTeam resolves the game a team plays inside [from, to); the
	// abbreviation matches either side.
	FindByTeam(ctx context.Context, leagueCode, teamAbbreviation string, from, to time.Time) (Game, bool, error)
	// UpsertSchedule creates or refreshes a game by its identity key
	// (league, season, date, home, away) and returns its id. Status and
	// end_time are owned by the status synchronizer and are not written here
	// beyond the initial insert.
	UpsertSchedule(ctx context.Context, item Game) (int64, error)
	// UpdateStatus persists a transition already resolved by the
	// synchronizer. endTime is only written when the stored value is NULL.
	UpdateStatus(ctx context.Context, id int64, status Status, endTime *time.Time) error
	SetHasPBP(ctx context.Context, id int64) error
	SetHasSocial(ctx context.Context, id int64) error
}
