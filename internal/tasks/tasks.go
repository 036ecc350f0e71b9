package tasks

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"compatdb-app/config"
	"compatdb-app/database"
	"compatdb-app/internal/domain/games"
	"compatdb-app/internal/domain/ownership"
	"compatdb-app/internal/domain/users"
	"compatdb-app/internal/steam"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

// Batch size limits. Steam tolerates roughly 200 storefront requests
// per five minutes; the refresh task paces itself to stay under that.
const (
	DefaultNewGames = 100
	MaxNewGames     = 50000
	MaxGameUpdates  = 200

	refreshWindow = 5 * time.Minute
)

// detailSource is the slice of the steam client the refresh tasks use.
type detailSource interface {
	GetAppDetails(steamID int64) (*games.Detail, error)
	games.CatalinaChecker
}

// Invoke runs one maintenance task and returns the process exit code.
// Tasks are what cron runs; each prints one plain line per item to
// stdout so the job log stays greppable.
func Invoke(args []string, log *zap.Logger) int {
	if len(args) == 0 {
		log.Error("no task named")
		return config.StatusNoTaskHandler
	}

	switch args[0] {
	case "initdb":
		return initDB(args[1:], log)
	case "newgames":
		return newGames(args[1:], log)
	case "updategames":
		return updateGames(args[1:], log)
	case "updategame":
		return updateGame(args[1:], log)
	case "syncowners":
		return syncOwners(log)
	default:
		log.Error("no handler for task", zap.String("task", args[0]))
		return config.StatusNoTaskHandler
	}
}

// initDB creates the schema. With the wipe flag the database file is
// deleted first so the result is a clean slate rather than a migration.
func initDB(args []string, log *zap.Logger) int {
	if len(args) > 0 && args[0] == "wipe" {
		if err := database.Wipe(config.DB_PATH); err != nil {
			log.Error("wiping database", zap.Error(err))
			return config.StatusGeneralSQLError
		}
		log.Info("wiped database", zap.String("path", config.DB_PATH))
	}
	if _, err := database.Open(config.DB_PATH); err != nil {
		log.Error("initializing database", zap.Error(err))
		return config.StatusGeneralSQLError
	}
	log.Info("database initialized", zap.String("path", config.DB_PATH))
	return 0
}

// newGames discovers catalog entries above our highest known Steam ID.
func newGames(args []string, log *zap.Logger) int {
	max, ok := maxParam(args, DefaultNewGames, MaxNewGames)
	if !ok {
		log.Error("bad max parameter", zap.String("value", args[0]))
		return config.StatusBadTaskParam
	}

	db, code := openDB(log)
	if code != 0 {
		return code
	}
	repo := games.NewRepository(db)
	client := steam.NewClient(config.STEAM_API_KEY, config.STEAM_LOG_DIR, log)

	cursor, err := repo.NewestSteamID()
	if err != nil {
		log.Error("reading discovery cursor", zap.Error(err))
		return config.StatusGeneralSQLError
	}

	apps, err := client.GetNewApps(cursor, max)
	if err != nil {
		log.Error("fetching app list", zap.Error(err))
		return config.StatusOutgoingNetworkError
	}

	added := 0
	for _, app := range apps {
		exists, err := repo.ExistsBySteamID(app.AppID)
		if err != nil {
			log.Error("checking for existing game", zap.Int64("steam_id", app.AppID), zap.Error(err))
			return config.StatusGeneralSQLError
		}
		if exists {
			continue
		}
		if _, err := repo.CreateDiscovered(app.AppID, app.Name); err != nil {
			log.Error("inserting game", zap.Int64("steam_id", app.AppID), zap.Error(err))
			return config.StatusGeneralSQLError
		}
		fmt.Printf("added %d %s\n", app.AppID, app.Name)
		added++
	}

	log.Info("discovery finished", zap.Int64("cursor", cursor), zap.Int("added", added))
	return 0
}

// updateGames refreshes the stalest entries, paced under Steam's
// storefront rate tolerance.
func updateGames(args []string, log *zap.Logger) int {
	max, ok := maxParam(args, MaxGameUpdates, MaxGameUpdates)
	if !ok {
		log.Error("bad max parameter", zap.String("value", args[0]))
		return config.StatusBadTaskParam
	}

	db, code := openDB(log)
	if code != 0 {
		return code
	}
	repo := games.NewRepository(db)
	client := steam.NewClient(config.STEAM_API_KEY, config.STEAM_LOG_DIR, log)

	stale, err := repo.GamesToUpdate(max)
	if err != nil {
		log.Error("selecting stale games", zap.Error(err))
		return config.StatusGeneralSQLError
	}

	limiter := rate.NewLimiter(rate.Every(refreshWindow/MaxGameUpdates), 1)
	updated := 0
	for i := range stale {
		game := &stale[i]
		if err := limiter.Wait(context.Background()); err != nil {
			log.Error("rate limiter", zap.Error(err))
			return config.StatusGeneralSQLError
		}
		ok, code := refreshOne(repo, client, game, log)
		if code != 0 {
			return code
		}
		if ok {
			updated++
		}
	}

	log.Info("refresh finished", zap.Int("selected", len(stale)), zap.Int("updated", updated))
	return 0
}

// updateGame refreshes a single entry by local ID, skipping the pacing.
func updateGame(args []string, log *zap.Logger) int {
	if len(args) == 0 {
		log.Error("updategame needs a game id")
		return config.StatusBadTaskParam
	}
	id, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil {
		log.Error("bad game id", zap.String("value", args[0]))
		return config.StatusBadTaskParam
	}

	db, code := openDB(log)
	if code != 0 {
		return code
	}
	repo := games.NewRepository(db)
	client := steam.NewClient(config.STEAM_API_KEY, config.STEAM_LOG_DIR, log)

	game, err := repo.ByID(uint(id))
	if err != nil {
		log.Error("loading game", zap.Uint64("game_id", id), zap.Error(err))
		return config.StatusGeneralSQLError
	}
	if game == nil {
		log.Error("no such game", zap.Uint64("game_id", id))
		return config.StatusBadTaskParam
	}

	if _, code := refreshOne(repo, client, game, log); code != 0 {
		return code
	}
	return 0
}

// refreshOne fetches fresh details for one game and folds them in.
// Fetch failures are local to the entry: the refresh timestamp is
// bumped so the game waits out the staleness window like any other,
// and the batch moves on to the next entry.
func refreshOne(repo *games.Repository, src detailSource, game *games.Game, log *zap.Logger) (bool, int) {
	detail, err := src.GetAppDetails(game.SteamID)
	if err != nil {
		log.Warn("fetching details", zap.Int64("steam_id", game.SteamID), zap.Error(err))
		if err := repo.BumpRefreshTime(game); err != nil {
			log.Error("bumping refresh time", zap.Int64("steam_id", game.SteamID), zap.Error(err))
			return false, config.StatusGeneralSQLError
		}
		fmt.Printf("failed %d %s\n", game.SteamID, game.Title)
		return false, 0
	}

	updated, err := repo.ApplyRefresh(game, detail, src)
	if err != nil {
		log.Error("applying refresh", zap.Int64("steam_id", game.SteamID), zap.Error(err))
		return false, config.StatusGeneralSQLError
	}
	if updated {
		fmt.Printf("updated %d %s\n", game.SteamID, game.Title)
	} else {
		fmt.Printf("skipped %d %s\n", game.SteamID, game.Title)
	}
	return updated, 0
}

// syncOwners reconciles the ownership sets of every user whose last
// sync is stale.
func syncOwners(log *zap.Logger) int {
	db, code := openDB(log)
	if code != 0 {
		return code
	}
	gameRepo := games.NewRepository(db)
	userRepo := users.NewRepository(db)
	ownerRepo := ownership.NewRepository(db)
	client := steam.NewClient(config.STEAM_API_KEY, config.STEAM_LOG_DIR, log)
	reconciler := ownership.NewReconciler(ownerRepo, userRepo, gameRepo, client)

	due, err := userRepo.NeedingSync()
	if err != nil {
		log.Error("selecting users to sync", zap.Error(err))
		return config.StatusGeneralSQLError
	}

	return reconcileAll(reconciler, due, log)
}

// reconcileAll visits each due user in turn. The first failure aborts
// the batch: the failed user's rows were left untouched by the
// reconciler, and pressing on past an unreachable upstream would just
// repeat the failure against every remaining user.
func reconcileAll(reconciler *ownership.Reconciler, due []users.User, log *zap.Logger) int {
	for i := range due {
		user := &due[i]
		added, removed, err := reconciler.Reconcile(user)
		if err != nil {
			log.Error("reconciling user", zap.Uint("user_id", user.ID), zap.Error(err))
			return config.StatusOutgoingNetworkError
		}
		fmt.Printf("synced %d +%d -%d\n", user.SteamUserID, added, removed)
	}

	log.Info("owner sync finished", zap.Int("users", len(due)))
	return 0
}

func openDB(log *zap.Logger) (*gorm.DB, int) {
	db, err := database.Open(config.DB_PATH)
	if err != nil {
		log.Error("opening database", zap.String("path", config.DB_PATH), zap.Error(err))
		return nil, config.StatusGeneralSQLError
	}
	return db, 0
}

// maxParam parses an optional batch-size argument, clamping to the
// task's ceiling. Without an argument the task runs with its modest
// default, not the ceiling.
func maxParam(args []string, def, ceiling int) (int, bool) {
	if len(args) == 0 {
		return def, true
	}
	max, err := strconv.Atoi(args[0])
	if err != nil || max < 1 {
		return 0, false
	}
	if max > ceiling {
		max = ceiling
	}
	return max, true
}
