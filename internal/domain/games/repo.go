package games

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// FilterMode selects which slice of the catalog a listing shows.
type FilterMode int

const (
	// FilterAll shows every game with a verified Mac status. Games we
	// haven't heard back from Steam about yet are hidden until then.
	FilterAll FilterMode = iota
	// FilterMac shows only Mac-compatible games.
	FilterMac
	// FilterCatalina shows only 64-bit (Catalina-ready) games.
	FilterCatalina
)

// CatalinaChecker reports whether a game is 64-bit compatible. The one
// real implementation scrapes the storefront page, which is fragile,
// so the refresh path only ever sees this interface.
type CatalinaChecker interface {
	CatalinaCompatible(steamID int64) (bool, error)
}

// Repository owns all games-table access.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// NewestSteamID returns the highest Steam ID we know about, or 0 when
// the catalog is empty. New-game discovery pages upward from here.
func (r *Repository) NewestSteamID() (int64, error) {
	var id int64
	err := r.db.Model(&Game{}).
		Select("COALESCE(MAX(steam_id), 0)").
		Scan(&id).Error
	if err != nil {
		return 0, fmt.Errorf("querying newest steam id: %w", err)
	}
	return id, nil
}

// ExistsBySteamID reports whether a game is already cataloged. The
// discovery job must call this before inserting; steam_id is unique
// and a duplicate insert is a hard failure.
func (r *Repository) ExistsBySteamID(steamID int64) (bool, error) {
	var count int64
	err := r.db.Model(&Game{}).Where("steam_id = ?", steamID).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("checking steam id %d: %w", steamID, err)
	}
	return count > 0, nil
}

// CreateDiscovered inserts a newly discovered game. Only the Steam ID
// and title are known at this point; every compatibility flag starts
// unchecked and the refresh timestamp stays at its zero value so the
// next update batch picks the game up.
func (r *Repository) CreateDiscovered(steamID int64, title string) (*Game, error) {
	game := &Game{SteamID: steamID, Title: title}
	if err := r.db.Create(game).Error; err != nil {
		return nil, fmt.Errorf("inserting game %d: %w", steamID, err)
	}
	return game, nil
}

// ByID loads a game by local ID, or nil when it doesn't exist.
func (r *Repository) ByID(id uint) (*Game, error) {
	var game Game
	err := r.db.First(&game, "game_id = ?", id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading game %d: %w", id, err)
	}
	return &game, nil
}

// GamesToUpdate returns games whose Steam data is older than the
// staleness window, oldest first, capped at limit. This is the whole
// refresh scheduling policy; there is no priority beyond age.
func (r *Repository) GamesToUpdate(limit int) ([]Game, error) {
	cutoff := time.Now().Add(-StalenessWindow)
	var stale []Game
	err := r.db.
		Where("steam_updated < ?", cutoff).
		Order("steam_updated ASC").
		Limit(limit).
		Find(&stale).Error
	if err != nil {
		return nil, fmt.Errorf("selecting stale games: %w", err)
	}
	return stale, nil
}

// BumpRefreshTime marks a refresh attempt without changing any data,
// so the game waits out the staleness window before the next try.
func (r *Repository) BumpRefreshTime(game *Game) error {
	now := time.Now()
	if err := r.db.Model(game).Update("steam_updated", now).Error; err != nil {
		return fmt.Errorf("bumping refresh time for game %d: %w", game.ID, err)
	}
	game.SteamUpdated = now
	return nil
}

// ApplyRefresh folds freshly fetched Steam details into a game and
// persists it. A nil detail means Steam no longer knows the game
// (delisted, usually); we still bump the refresh timestamp so a
// permanently broken entry isn't retried every cycle, and report false
// so the job can log it.
//
// Flag transitions: a present "mac" platform value sets Mac to yes/no;
// a missing key leaves the flag alone. Mac yes triggers the Catalina
// heuristic; Mac no resets SixtyFour to unchecked, since 64-bit
// support is meaningless without Mac support.
func (r *Repository) ApplyRefresh(game *Game, detail *Detail, catalina CatalinaChecker) (bool, error) {
	now := time.Now()

	if detail == nil {
		return false, r.BumpRefreshTime(game)
	}

	game.Title = detail.Title
	if detail.ReleaseDate != nil {
		game.SteamRelease = detail.ReleaseDate
	}

	if mac, ok := detail.Platforms["mac"]; ok {
		if mac {
			game.Mac = StatusYes
			compatible, err := catalina.CatalinaCompatible(game.SteamID)
			if err != nil {
				// The scrape failed; don't guess. Bump the timestamp so
				// this game waits for the next window like any other
				// per-game refresh failure.
				return false, r.BumpRefreshTime(game)
			}
			if compatible {
				game.SixtyFour = StatusYes
			} else {
				game.SixtyFour = StatusNo
			}
		} else {
			game.Mac = StatusNo
			game.SixtyFour = StatusUnchecked
		}
	}

	game.SteamUpdated = now
	if err := r.db.Save(game).Error; err != nil {
		return false, fmt.Errorf("saving game %d: %w", game.ID, err)
	}
	return true, nil
}

// GameIDsBySteamIDs resolves Steam IDs to local game IDs in one query.
// Steam IDs we haven't cataloged yet are simply missing from the
// result.
func (r *Repository) GameIDsBySteamIDs(steamIDs []int64) ([]uint, error) {
	if len(steamIDs) == 0 {
		return nil, nil
	}
	var ids []uint
	err := r.db.Model(&Game{}).
		Where("steam_id IN ?", steamIDs).
		Pluck("game_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("resolving steam ids: %w", err)
	}
	return ids, nil
}

// voteAggJoin folds per-game vote counts into a listing query. The
// outer join keeps games with zero votes in the result with zero
// counts.
const voteAggJoin = `LEFT JOIN (
		SELECT o.game_id,
		       COUNT(vt.vote_id) AS vote_count,
		       SUM(CASE WHEN vt.vote THEN 1 ELSE 0 END) AS yes_vote_count
		FROM ownership o
		JOIN votes vt ON vt.ownership_id = o.ownership_id
		GROUP BY o.game_id
	) v ON v.game_id = g.game_id`

// ByReleaseDate is the public listing: filtered, optionally searched,
// newest release first. A search collapses the result to page zero no
// matter what page was asked for. Only games released on or before now
// are listed; future-dated and undated games stay out.
func (r *Repository) ByReleaseDate(page int, filter FilterMode, terms []string) (*PagedResult[GameRow], error) {
	var where []string
	var args []any

	switch filter {
	case FilterMac:
		where = append(where, "g.mac = ?")
		args = append(args, StatusYes)
	case FilterCatalina:
		where = append(where, "g.sixtyfour = ?")
		args = append(args, StatusYes)
	default:
		where = append(where, "g.mac <> ?")
		args = append(args, StatusUnchecked)
	}

	where = append(where, "g.steam_release IS NOT NULL", "g.steam_release <= ?")
	args = append(args, time.Now())

	if len(terms) > MaxSearchTerms {
		terms = terms[:MaxSearchTerms]
	}
	for _, term := range terms {
		where = append(where, "LOWER(g.title) LIKE ?")
		args = append(args, "%"+strings.ToLower(term)+"%")
	}
	if len(terms) > 0 {
		page = 0
	}

	cond := strings.Join(where, " AND ")

	var total int64
	err := r.db.Raw("SELECT COUNT(*) FROM games g WHERE "+cond, args...).Scan(&total).Error
	if err != nil {
		return nil, fmt.Errorf("counting games: %w", err)
	}

	query := `SELECT g.*,
		COALESCE(v.vote_count, 0) AS vote_count,
		COALESCE(v.yes_vote_count, 0) AS yes_vote_count
	FROM games g ` + voteAggJoin + `
	WHERE ` + cond + `
	ORDER BY g.steam_release DESC, g.game_id
	LIMIT ? OFFSET ?`

	var rows []GameRow
	err = r.db.Raw(query, append(args, PerPage, page*PerPage)...).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("listing games: %w", err)
	}

	return &PagedResult[GameRow]{
		Results:      rows,
		TotalResults: int(total),
		PerPage:      PerPage,
		Page:         page,
	}, nil
}

// OwnedByUser lists one user's owned games, newest release first, with
// vote aggregates plus the caller's own ownership and vote attached.
func (r *Repository) OwnedByUser(userID uint, page int) (*PagedResult[GameRow], error) {
	var total int64
	err := r.db.Raw("SELECT COUNT(*) FROM ownership WHERE user_id = ?", userID).Scan(&total).Error
	if err != nil {
		return nil, fmt.Errorf("counting owned games: %w", err)
	}

	query := `SELECT g.*,
		COALESCE(v.vote_count, 0) AS vote_count,
		COALESCE(v.yes_vote_count, 0) AS yes_vote_count,
		ow.ownership_id AS ownership_id,
		uv.vote AS user_vote
	FROM games g
	JOIN ownership ow ON ow.game_id = g.game_id AND ow.user_id = ?
	LEFT JOIN votes uv ON uv.ownership_id = ow.ownership_id
	` + voteAggJoin + `
	ORDER BY g.steam_release DESC, g.game_id
	LIMIT ? OFFSET ?`

	var rows []GameRow
	err = r.db.Raw(query, userID, PerPage, page*PerPage).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("listing owned games: %w", err)
	}

	return &PagedResult[GameRow]{
		Results:      rows,
		TotalResults: int(total),
		PerPage:      PerPage,
		Page:         page,
	}, nil
}
