package ownership

import (
	"time"

	"compatdb-app/internal/domain/games"
	"compatdb-app/internal/domain/users"
)

// Ownership records that a user owns a game, mirrored from Steam by
// the reconciler. Rows are only ever created and hard-deleted, never
// edited; deleting one cascades to its vote.
type Ownership struct {
	ID     uint `gorm:"column:ownership_id;primaryKey"`
	UserID uint `gorm:"column:user_id;not null;uniqueIndex:idx_ownership_user_game"`
	GameID uint `gorm:"column:game_id;not null;uniqueIndex:idx_ownership_user_game"`

	CreatedAt time.Time `gorm:"column:created"`

	User users.User `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
	Game games.Game `gorm:"foreignKey:GameID;references:ID;constraint:OnDelete:CASCADE"`
}

func (Ownership) TableName() string { return "ownership" }

// Vote is one user's yes/no call on a game's 64-bit compatibility,
// tied to the ownership row because only owners may vote. The
// ownership FK is deliberately not unique — a future vote type would
// add a discriminator column — but current logic keeps it to one vote
// per ownership.
type Vote struct {
	ID          uint `gorm:"column:vote_id;primaryKey"`
	OwnershipID uint `gorm:"column:ownership_id;not null"`
	Vote        bool `gorm:"column:vote;not null"`

	CreatedAt time.Time `gorm:"column:created"`

	Ownership Ownership `gorm:"foreignKey:OwnershipID;references:ID;constraint:OnDelete:CASCADE"`
}

func (Vote) TableName() string { return "votes" }
