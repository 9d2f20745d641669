package odds

import "time"

// Snapshot is one captured odds quote for a game. The odds adapter family
// produces only these; it has no path to play-by-play records.
type Snapshot struct {
	GameID     int64
	Book       string
	MarketType string
	HomeLine   *float64
	AwayLine   *float64
	Total      *float64
	CapturedAt time.Time
}
