package ownership

import (
	"fmt"

	"compatdb-app/internal/domain/games"
	"compatdb-app/internal/domain/users"
)

// OwnedGamesSource reports the Steam IDs a user currently owns
// according to Steam.
type OwnedGamesSource interface {
	OwnedGames(steamUserID int64) ([]int64, error)
}

// Reconciler brings a user's local ownership rows in line with what
// Steam reports.
type Reconciler struct {
	owners *Repository
	users  *users.Repository
	games  *games.Repository
	steam  OwnedGamesSource
}

func NewReconciler(owners *Repository, users *users.Repository, games *games.Repository, steam OwnedGamesSource) *Reconciler {
	return &Reconciler{owners: owners, users: users, games: games, steam: steam}
}

// Reconcile diffs the user's Steam ownership list against the local
// ownership rows: games owned upstream but not locally gain a row,
// games owned locally but not upstream lose theirs (votes cascade
// away). Games Steam reports that we haven't cataloged yet are skipped
// this cycle; the catalog crawl will pick them up on its own cadence.
//
// If the Steam fetch fails, nothing is touched — not even the sync
// timestamp — since a half-applied diff is worse than a stale one. On
// success the timestamp is bumped even for an empty diff.
func (r *Reconciler) Reconcile(user *users.User) (added, removed int, err error) {
	steamIDs, err := r.steam.OwnedGames(user.SteamUserID)
	if err != nil {
		return 0, 0, fmt.Errorf("fetching owned games for user %d: %w", user.ID, err)
	}

	steamOwned, err := r.games.GameIDsBySteamIDs(steamIDs)
	if err != nil {
		return 0, 0, err
	}

	dbOwned, err := r.owners.OwnedGameIDs(user.ID)
	if err != nil {
		return 0, 0, err
	}

	dbSet := make(map[uint]bool, len(dbOwned))
	for _, id := range dbOwned {
		dbSet[id] = true
	}
	steamSet := make(map[uint]bool, len(steamOwned))
	for _, id := range steamOwned {
		steamSet[id] = true
	}

	for _, gameID := range steamOwned {
		if !dbSet[gameID] {
			if _, err := r.owners.Create(user.ID, gameID); err != nil {
				return added, removed, err
			}
			added++
		}
	}

	for _, gameID := range dbOwned {
		if !steamSet[gameID] {
			if err := r.owners.Delete(user.ID, gameID); err != nil {
				return added, removed, err
			}
			removed++
		}
	}

	if err := r.users.BumpGameSync(user); err != nil {
		return added, removed, err
	}
	return added, removed, nil
}
