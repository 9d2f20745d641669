package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/scorewatch/scorewatch/internal/domain/game"
)

// GameRepository is a mutex-guarded in-memory mirror of the postgres games
// table, used in tests and local runs without a database.
type GameRepository struct {
	mu     sync.RWMutex
	items  map[int64]game.Game
	byKey  map[string]int64
	nextID int64
}

func NewGameRepository() *GameRepository {
	return &GameRepository{
		items: make(map[int64]game.Game),
		byKey: make(map[string]int64),
	}
}

func identityKey(item game.Game) string {
	return fmt.Sprintf("%s|%d|%s|%s|%s",
		item.LeagueCode,
		item.Season,
		item.StartTime.UTC().Format("2006-01-02"),
		item.HomeTeam,
		item.AwayTeam,
	)
}

// Seed inserts a game directly, bypassing schedule-upsert ownership rules.
func (r *GameRepository) Seed(item game.Game) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	if item.ID == 0 {
		r.nextID++
		item.ID = r.nextID
	} else if item.ID > r.nextID {
		r.nextID = item.ID
	}
	if item.Status == "" {
		item.Status = game.StatusScheduled
	}
	item.LastUpdatedAt = time.Now().UTC()
	r.items[item.ID] = item
	r.byKey[identityKey(item)] = item.ID
	return item.ID
}

func (r *GameRepository) GetByID(_ context.Context, id int64) (game.Game, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, ok := r.items[id]
	return item, ok, nil
}

func (r *GameRepository) ListByWindow(_ context.Context, from, to time.Time) ([]game.Game, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]game.Game, 0)
	for _, item := range r.items {
		if item.StartTime.Before(from) || !item.StartTime.Before(to) {
			continue
		}
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartTime.Equal(out[j].StartTime) {
			return out[i].ID < out[j].ID
		}
		return out[i].StartTime.Before(out[j].StartTime)
	})
	return out, nil
}

func (r *GameRepository) FindByTeam(_ context.Context, leagueCode, teamAbbreviation string, from, to time.Time) (game.Game, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var (
		best  game.Game
		found bool
	)
	for _, item := range r.items {
		if item.LeagueCode != leagueCode {
			continue
		}
		if item.HomeTeam != teamAbbreviation && item.AwayTeam != teamAbbreviation {
			continue
		}
		if item.StartTime.Before(from.Add(-6*time.Hour)) || !item.StartTime.Before(to) {
			continue
		}
		if !found || item.StartTime.After(best.StartTime) {
			best = item
			found = true
		}
	}
	return best, found, nil
}

func (r *GameRepository) UpsertSchedule(_ context.Context, item game.Game) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := identityKey(item)
	now := time.Now().UTC()

	if id, ok := r.byKey[key]; ok {
		stored := r.items[id]
		stored.SeasonType = item.SeasonType
		stored.Venue = item.Venue
		stored.StartTime = item.StartTime
		stored.SourceGameKey = item.SourceGameKey
		if item.HomeScore != nil {
			stored.HomeScore = item.HomeScore
		}
		if item.AwayScore != nil {
			stored.AwayScore = item.AwayScore
		}
		stored.LastUpdatedAt = now
		r.items[id] = stored
		return id, nil
	}

	r.nextID++
	item.ID = r.nextID
	if item.Status == "" {
		item.Status = game.StatusScheduled
	}
	item.LastUpdatedAt = now
	r.items[item.ID] = item
	r.byKey[key] = item.ID
	return item.ID, nil
}

func (r *GameRepository) UpdateStatus(_ context.Context, id int64, status game.Status, endTime *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[id]
	if !ok {
		return nil
	}
	item.Status = status
	if endTime != nil && item.EndTime == nil {
		t := endTime.UTC()
		item.EndTime = &t
	}
	item.LastUpdatedAt = time.Now().UTC()
	r.items[id] = item
	return nil
}

func (r *GameRepository) SetHasPBP(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if item, ok := r.items[id]; ok {
		item.HasPBP = true
		r.items[id] = item
	}
	return nil
}

func (r *GameRepository) SetHasSocial(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if item, ok := r.items[id]; ok {
		item.HasSocial = true
		r.items[id] = item
	}
	return nil
}
