package games

import (
	"time"
)

// PerPage is the number of games shown per listing page.
const PerPage = 25

// StalenessWindow is how long a game's Steam-sourced fields are
// considered fresh. Games (and user ownership sets, see the ownership
// package) older than this are eligible for the next refresh batch.
const StalenessWindow = 24 * time.Hour

// Game is one cataloged Steam title.
type Game struct {
	ID      uint   `gorm:"column:game_id;primaryKey"`
	SteamID int64  `gorm:"column:steam_id;uniqueIndex"`
	Title   string `gorm:"not null;default:''"`

	// Compatibility flags as reported by Steam. Silicon is tracked in
	// the schema but no upstream source exposes it yet, so it stays
	// unchecked until one does.
	Mac       PropStatus `gorm:"not null;default:0"`
	SixtyFour PropStatus `gorm:"column:sixtyfour;not null;default:0"`
	Silicon   PropStatus `gorm:"not null;default:0"`

	// SteamRelease is nil when Steam's payload had no usable release
	// date (a known data-quality gap for a few legitimate titles).
	SteamRelease *time.Time `gorm:"column:steam_release;type:date"`

	// SteamUpdated is the last successful detail refresh. Creation does
	// not count: discovery only carries the ID and title, never full
	// details.
	SteamUpdated time.Time `gorm:"column:steam_updated"`

	CreatedAt time.Time `gorm:"column:created"`
	UpdatedAt time.Time `gorm:"column:updated"`
}

func (Game) TableName() string { return "games" }

// Detail is the refreshable subset of a game as reported by the Steam
// storefront. ReleaseDate is nil when the upstream date string was
// absent or unparseable.
type Detail struct {
	Title       string
	Platforms   map[string]bool
	ReleaseDate *time.Time
}

// GameRow is one listing-query result: the game plus its community
// vote aggregates, and — only on user-scoped listings — the caller's
// ownership and vote. The pointer fields replace the old trick of
// probing the result set for optional join columns.
type GameRow struct {
	Game `gorm:"embedded"`

	VoteCount    int `gorm:"column:vote_count"`
	YesVoteCount int `gorm:"column:yes_vote_count"`

	OwnershipID *uint `gorm:"column:ownership_id"`
	UserVote    *bool `gorm:"column:user_vote"`
}

// YesVotePercentage is the share of yes votes, rounded to the nearest
// whole percent. Zero votes yields 0 by policy rather than arithmetic.
func (r GameRow) YesVotePercentage() int {
	return YesPercentage(r.YesVoteCount, r.VoteCount)
}
