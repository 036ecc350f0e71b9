package users

import (
	"fmt"
	"time"
)

// User is a registered Steam account. All identity comes from Steam;
// we never hold credentials of our own.
type User struct {
	ID          uint   `gorm:"column:user_id;primaryKey"`
	SteamUserID int64  `gorm:"column:steam_user_id;uniqueIndex"`
	Nickname    string `gorm:"not null;default:''"`
	AvatarHash  string `gorm:"column:avatar_hash;not null;default:''"`

	// LastAuth is bumped every time the user logs in via Steam.
	LastAuth time.Time `gorm:"column:last_auth"`

	// LastGameSync is when the user's ownership set was last reconciled
	// against Steam. Bumped even when the reconciliation found nothing
	// to change, so the sync scheduler doesn't spin on quiet accounts.
	LastGameSync time.Time `gorm:"column:last_game_synch"`

	CreatedAt time.Time `gorm:"column:created"`
	UpdatedAt time.Time `gorm:"column:updated"`
}

func (User) TableName() string { return "users" }

// AvatarURL builds the Steam CDN URL for the smallest avatar size from
// the stored hash.
func (u *User) AvatarURL() string {
	if len(u.AvatarHash) < 2 {
		return ""
	}
	return fmt.Sprintf("https://steamcdn-a.akamaihd.net/steamcommunity/public/images/avatars/%s/%s.jpg",
		u.AvatarHash[:2], u.AvatarHash)
}
