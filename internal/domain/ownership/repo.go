package ownership

import (
	"fmt"

	"gorm.io/gorm"
)

// Repository owns ownership- and votes-table access. Ownership is
// mostly handled as bare IDs: a user can easily own several hundred
// games, so the reconciler never materializes full Game rows.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// OwnedGameIDs returns the local game IDs a user owns according to the
// database.
func (r *Repository) OwnedGameIDs(userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&Ownership{}).
		Where("user_id = ?", userID).
		Pluck("game_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("listing owned game ids for user %d: %w", userID, err)
	}
	return ids, nil
}

// ByID loads an ownership row, or nil when not found.
func (r *Repository) ByID(id uint) (*Ownership, error) {
	var o Ownership
	err := r.db.First(&o, "ownership_id = ?", id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading ownership %d: %w", id, err)
	}
	return &o, nil
}

// Get loads the ownership row for a (user, game) pair, or nil.
func (r *Repository) Get(userID, gameID uint) (*Ownership, error) {
	var o Ownership
	err := r.db.First(&o, "user_id = ? AND game_id = ?", userID, gameID).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading ownership for user %d game %d: %w", userID, gameID, err)
	}
	return &o, nil
}

// Create inserts an ownership row for a (user, game) pair.
func (r *Repository) Create(userID, gameID uint) (*Ownership, error) {
	o := &Ownership{UserID: userID, GameID: gameID}
	if err := r.db.Create(o).Error; err != nil {
		return nil, fmt.Errorf("inserting ownership for user %d game %d: %w", userID, gameID, err)
	}
	return o, nil
}

// Delete removes the ownership row for a (user, game) pair. The FK
// cascade takes any vote with it.
func (r *Repository) Delete(userID, gameID uint) error {
	err := r.db.Where("user_id = ? AND game_id = ?", userID, gameID).Delete(&Ownership{}).Error
	if err != nil {
		return fmt.Errorf("deleting ownership for user %d game %d: %w", userID, gameID, err)
	}
	return nil
}

// VoteByOwnership returns the vote on an ownership, or nil when the
// owner hasn't voted.
func (r *Repository) VoteByOwnership(ownershipID uint) (*Vote, error) {
	var v Vote
	err := r.db.First(&v, "ownership_id = ?", ownershipID).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading vote for ownership %d: %w", ownershipID, err)
	}
	return &v, nil
}

// SaveVote inserts or updates a vote.
func (r *Repository) SaveVote(v *Vote) error {
	if err := r.db.Save(v).Error; err != nil {
		return fmt.Errorf("saving vote for ownership %d: %w", v.OwnershipID, err)
	}
	return nil
}

// DeleteVote removes a vote.
func (r *Repository) DeleteVote(v *Vote) error {
	if v.ID == 0 {
		return nil
	}
	if err := r.db.Delete(v).Error; err != nil {
		return fmt.Errorf("deleting vote %d: %w", v.ID, err)
	}
	return nil
}
