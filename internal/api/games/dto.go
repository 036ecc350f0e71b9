package games

import (
	"compatdb-app/internal/domain/games"
)

const releaseDateLayout = "2006-01-02"

// GameJSON is one game in a listing response. Ownership and vote only
// appear on user-scoped listings.
type GameJSON struct {
	ID                uint    `json:"id"`
	SteamID           int64   `json:"steam_id"`
	Title             string  `json:"title"`
	Mac               string  `json:"mac"`
	SixtyFour         string  `json:"sixtyfour"`
	Silicon           string  `json:"silicon"`
	ReleaseDate       *string `json:"release_date"`
	VoteCount         int     `json:"vote_count"`
	YesVotePercentage int     `json:"yes_vote_percentage"`

	OwnershipID *uint `json:"ownership_id,omitempty"`
	UserVote    *bool `json:"user_vote,omitempty"`
}

// ListJSON is one page of listing results. Page is one-based on the
// wire.
type ListJSON struct {
	Results      []GameJSON `json:"results"`
	Page         int        `json:"page"`
	TotalPages   int        `json:"total_pages"`
	TotalResults int        `json:"total_results"`
	PerPage      int        `json:"per_page"`
}

func toGameJSON(row games.GameRow) GameJSON {
	out := GameJSON{
		ID:                row.ID,
		SteamID:           row.SteamID,
		Title:             row.Title,
		Mac:               row.Mac.String(),
		SixtyFour:         row.SixtyFour.String(),
		Silicon:           row.Silicon.String(),
		VoteCount:         row.VoteCount,
		YesVotePercentage: row.YesVotePercentage(),
		OwnershipID:       row.OwnershipID,
		UserVote:          row.UserVote,
	}
	if row.SteamRelease != nil {
		date := row.SteamRelease.Format(releaseDateLayout)
		out.ReleaseDate = &date
	}
	return out
}

// NewListJSON converts a result page to its wire shape.
func NewListJSON(page *games.PagedResult[games.GameRow]) ListJSON {
	results := make([]GameJSON, 0, len(page.Results))
	for _, row := range page.Results {
		results = append(results, toGameJSON(row))
	}
	return ListJSON{
		Results:      results,
		Page:         page.Page + 1,
		TotalPages:   page.TotalPages(),
		TotalResults: page.TotalResults,
		PerPage:      page.PerPage,
	}
}
