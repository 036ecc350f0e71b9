package database

import (
	"fmt"
	"os"

	"compatdb-app/internal/domain/games"
	"compatdb-app/internal/domain/ownership"
	"compatdb-app/internal/domain/users"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open opens the SQLite database at path and migrates the schema.
//
// WAL journal mode lets the web process read while a batch task writes
// (and lets the sqlite CLI poke at the file while the app runs), which
// is the property the old dual-connection setup existed for. Foreign
// keys must be switched on per connection for the ownership/vote
// cascades to fire.
func Open(path string) (*gorm.DB, error) {
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=1", path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening database at %s: %w", path, err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates all tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&games.Game{},
		&users.User{},
		&ownership.Ownership{},
		&ownership.Vote{},
	); err != nil {
		return fmt.Errorf("migrating schema: %w", err)
	}
	return nil
}

// Wipe deletes the database file (and its WAL sidecars) so initdb can
// start from a clean slate.
func Wipe(path string) error {
	for _, p := range []string{path, path + "-wal", path + "-shm"} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing %s: %w", p, err)
		}
	}
	return nil
}
