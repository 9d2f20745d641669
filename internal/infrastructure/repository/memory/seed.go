package memory

import "github.com/scorewatch/scorewatch/internal/domain/account"

// SeedAccounts is the default official-account registry used for local
// development and the postgres bootstrap seed.
func SeedAccounts() []account.RegistryEntry {
	return []account.RegistryEntry{
		{Platform: "x", Handle: "@celtics", TeamID: 1, TeamAbbreviation: "BOS", LeagueCode: "NBA", IsActive: true},
		{Platform: "x", Handle: "@Lakers", TeamID: 2, TeamAbbreviation: "LAL", LeagueCode: "NBA", IsActive: true},
		{Platform: "x", Handle: "@warriors", TeamID: 3, TeamAbbreviation: "GSW", LeagueCode: "NBA", IsActive: true},
		{Platform: "x", Handle: "@nyknicks", TeamID: 4, TeamAbbreviation: "NYK", LeagueCode: "NBA", IsActive: true},
		{Platform: "x", Handle: "@okcthunder", TeamID: 5, TeamAbbreviation: "OKC", LeagueCode: "NBA", IsActive: true},
		{Platform: "bluesky", Handle: "celtics.bsky.social", TeamID: 1, TeamAbbreviation: "BOS", LeagueCode: "NBA", IsActive: true},
		{Platform: "bluesky", Handle: "lakers.bsky.social", TeamID: 2, TeamAbbreviation: "LAL", LeagueCode: "NBA", IsActive: true},
		{Platform: "x", Handle: "@patriots", TeamID: 101, TeamAbbreviation: "NE", LeagueCode: "NFL", IsActive: true},
		{Platform: "x", Handle: "@packers", TeamID: 102, TeamAbbreviation: "GB", LeagueCode: "NFL", IsActive: true},
	}
}
