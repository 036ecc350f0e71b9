package users

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// SyncWindow is how long a user's ownership sync stays fresh. Matches
// the games staleness window.
const SyncWindow = 24 * time.Hour

// Summary is the slice of a Steam profile we keep locally.
type Summary struct {
	SteamID    int64
	Nickname   string
	AvatarHash string
}

// Repository owns all users-table access.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ByID loads a user by local ID, or nil when not found.
func (r *Repository) ByID(id uint) (*User, error) {
	var user User
	err := r.db.First(&user, "user_id = ?", id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading user %d: %w", id, err)
	}
	return &user, nil
}

// BySteamID loads a user by Steam ID, or nil when not found.
func (r *Repository) BySteamID(steamID int64) (*User, error) {
	var user User
	err := r.db.First(&user, "steam_user_id = ?", steamID).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading user by steam id %d: %w", steamID, err)
	}
	return &user, nil
}

// Create registers a new user from their Steam profile summary.
func (r *Repository) Create(s Summary) (*User, error) {
	user := &User{
		SteamUserID: s.SteamID,
		Nickname:    s.Nickname,
		AvatarHash:  s.AvatarHash,
		LastAuth:    time.Now(),
	}
	if err := r.db.Create(user).Error; err != nil {
		return nil, fmt.Errorf("inserting user %d: %w", s.SteamID, err)
	}
	return user, nil
}

// BumpAuthDate marks the user as having just logged in.
func (r *Repository) BumpAuthDate(user *User) error {
	now := time.Now()
	if err := r.db.Model(user).Update("last_auth", now).Error; err != nil {
		return fmt.Errorf("bumping auth date for user %d: %w", user.ID, err)
	}
	user.LastAuth = now
	return nil
}

// BumpGameSync records a completed ownership reconciliation. Called
// unconditionally at the end of every successful reconcile, diff or no
// diff, which is what makes the operation idempotent and retry-safe.
func (r *Repository) BumpGameSync(user *User) error {
	now := time.Now()
	if err := r.db.Model(user).Update("last_game_synch", now).Error; err != nil {
		return fmt.Errorf("bumping game sync for user %d: %w", user.ID, err)
	}
	user.LastGameSync = now
	return nil
}

// NeedingSync returns users whose ownership set hasn't been reconciled
// within the sync window, longest-waiting first.
func (r *Repository) NeedingSync() ([]User, error) {
	cutoff := time.Now().Add(-SyncWindow)
	var due []User
	err := r.db.
		Where("last_game_synch < ?", cutoff).
		Order("last_game_synch ASC").
		Find(&due).Error
	if err != nil {
		return nil, fmt.Errorf("selecting users needing sync: %w", err)
	}
	return due, nil
}
