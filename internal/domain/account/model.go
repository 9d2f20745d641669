package account

// RegistryEntry is one official social account the collector may poll.
// Entries are seeded out of band; the ingestion path never mutates them.
type RegistryEntry struct {
	ID               int64
	Platform         string
	Handle           string
	TeamID           int64
	TeamAbbreviation string
	LeagueCode       string
	IsActive         bool
}
