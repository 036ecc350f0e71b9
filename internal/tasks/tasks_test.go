package tasks

import (
	"fmt"
	"strings"
	"testing"

	"compatdb-app/config"
	"compatdb-app/database"
	"compatdb-app/internal/domain/games"
	"compatdb-app/internal/domain/ownership"
	"compatdb-app/internal/domain/users"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func openTaskDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

type stubDetails struct {
	detail     *games.Detail
	err        error
	compatible bool
}

func (s *stubDetails) GetAppDetails(int64) (*games.Detail, error) { return s.detail, s.err }
func (s *stubDetails) CatalinaCompatible(int64) (bool, error)     { return s.compatible, nil }

func TestRefreshOneFetchFailureIsEntryLocal(t *testing.T) {
	db := openTaskDB(t)
	repo := games.NewRepository(db)
	game, err := repo.CreateDiscovered(440, "Team Fortress 2")
	require.NoError(t, err)

	src := &stubDetails{err: fmt.Errorf("steam unreachable")}
	updated, code := refreshOne(repo, src, game, zap.NewNop())

	// The batch keeps going, and the entry waits out the staleness
	// window before its next attempt.
	assert.False(t, updated)
	assert.Equal(t, 0, code)

	reloaded, err := repo.ByID(game.ID)
	require.NoError(t, err)
	assert.False(t, reloaded.SteamUpdated.IsZero())
	assert.Equal(t, "Team Fortress 2", reloaded.Title)
}

func TestRefreshOneSuccess(t *testing.T) {
	db := openTaskDB(t)
	repo := games.NewRepository(db)
	game, err := repo.CreateDiscovered(220, "Half-Life 2")
	require.NoError(t, err)

	src := &stubDetails{
		detail: &games.Detail{
			Title:     "Half-Life 2",
			Platforms: map[string]bool{"mac": true},
		},
		compatible: true,
	}
	updated, code := refreshOne(repo, src, game, zap.NewNop())
	assert.True(t, updated)
	assert.Equal(t, 0, code)

	reloaded, err := repo.ByID(game.ID)
	require.NoError(t, err)
	assert.Equal(t, games.StatusYes, reloaded.Mac)
	assert.Equal(t, games.StatusYes, reloaded.SixtyFour)
}

// flakyOwnedGames fails for one Steam user and answers empty for the
// rest.
type flakyOwnedGames struct {
	failID int64
}

func (f *flakyOwnedGames) OwnedGames(steamUserID int64) ([]int64, error) {
	if steamUserID == f.failID {
		return nil, fmt.Errorf("steam unreachable")
	}
	return []int64{}, nil
}

func TestReconcileAllAbortsOnFirstFailure(t *testing.T) {
	db := openTaskDB(t)
	gameRepo := games.NewRepository(db)
	userRepo := users.NewRepository(db)
	ownerRepo := ownership.NewRepository(db)

	first := &users.User{SteamUserID: 100, Nickname: "first"}
	second := &users.User{SteamUserID: 101, Nickname: "second"}
	require.NoError(t, db.Create(first).Error)
	require.NoError(t, db.Create(second).Error)

	reconciler := ownership.NewReconciler(ownerRepo, userRepo, gameRepo, &flakyOwnedGames{failID: 100})
	code := reconcileAll(reconciler, []users.User{*first, *second}, zap.NewNop())
	assert.Equal(t, config.StatusOutgoingNetworkError, code)

	// The batch stopped at the failure: the second user was never
	// visited.
	reloaded, err := userRepo.ByID(second.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.LastGameSync.IsZero())
}

func TestReconcileAllHappyPath(t *testing.T) {
	db := openTaskDB(t)
	gameRepo := games.NewRepository(db)
	userRepo := users.NewRepository(db)
	ownerRepo := ownership.NewRepository(db)

	user := &users.User{SteamUserID: 100, Nickname: "only"}
	require.NoError(t, db.Create(user).Error)

	reconciler := ownership.NewReconciler(ownerRepo, userRepo, gameRepo, &flakyOwnedGames{failID: -1})
	code := reconcileAll(reconciler, []users.User{*user}, zap.NewNop())
	assert.Equal(t, 0, code)

	reloaded, err := userRepo.ByID(user.ID)
	require.NoError(t, err)
	assert.False(t, reloaded.LastGameSync.IsZero())
}

func TestMaxParam(t *testing.T) {
	// No argument runs the default batch, not the ceiling.
	max, ok := maxParam(nil, DefaultNewGames, MaxNewGames)
	assert.True(t, ok)
	assert.Equal(t, DefaultNewGames, max)

	max, ok = maxParam([]string{"500"}, DefaultNewGames, MaxNewGames)
	assert.True(t, ok)
	assert.Equal(t, 500, max)

	// Requests above the ceiling clamp to it.
	max, ok = maxParam([]string{"999999"}, DefaultNewGames, MaxNewGames)
	assert.True(t, ok)
	assert.Equal(t, MaxNewGames, max)

	_, ok = maxParam([]string{"0"}, DefaultNewGames, MaxNewGames)
	assert.False(t, ok)
	_, ok = maxParam([]string{"-5"}, DefaultNewGames, MaxNewGames)
	assert.False(t, ok)
	_, ok = maxParam([]string{"lots"}, DefaultNewGames, MaxNewGames)
	assert.False(t, ok)
}
