package pbp

import "sort"

// Event is one play-by-play entry. Events are append-only per game and keyed
// by (GameID, Period, Sequence); the clock string stays provider-native.
type Event struct {
	GameID      int64
	Period      int
	Sequence    int
	Clock       string
	Description string
	PlayType    string
	Team        string
}

// Period groups ordered events for the read surface.
type Period struct {
	Number int     `json:"period"`
	Events []Event `json:"events"`
}

// GroupByPeriod buckets events into periods ordered by (period, sequence).
// Input order is not trusted; the stored natural key is.
func GroupByPeriod(events []Event) []Period {
	byPeriod := make(map[int][]Event)
	for _, item := range events {
		byPeriod[item.Period] = append(byPeriod[item.Period], item)
	}

	numbers := make([]int, 0, len(byPeriod))
	for number := range byPeriod {
		numbers = append(numbers, number)
	}
	sort.Ints(numbers)

	out := make([]Period, 0, len(numbers))
	for _, number := range numbers {
		items := byPeriod[number]
		sort.SliceStable(items, func(i, j int) bool { return items[i].Sequence < items[j].Sequence })
		out = append(out, Period{Number: number, Events: items})
	}

	return out
}
