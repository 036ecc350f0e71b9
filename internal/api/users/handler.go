package users

import (
	"net/http"
	"strconv"

	gamesapi "compatdb-app/internal/api/games"
	"compatdb-app/internal/domain/games"
	"compatdb-app/internal/domain/ownership"
	"compatdb-app/internal/domain/users"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler serves the logged-in user's pages: profile, owned games and
// voting.
type Handler struct {
	users  *users.Repository
	games  *games.Repository
	owners *ownership.Repository
	log    *zap.Logger
}

func NewHandler(userRepo *users.Repository, gameRepo *games.Repository, ownerRepo *ownership.Repository, log *zap.Logger) *Handler {
	return &Handler{users: userRepo, games: gameRepo, owners: ownerRepo, log: log}
}

// Me handles GET /user: the caller's own profile.
func (h *Handler) Me(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":         user.ID,
		"steam_id":   user.SteamUserID,
		"nickname":   user.Nickname,
		"avatar_url": user.AvatarURL(),
		"last_sync":  user.LastGameSync,
	})
}

// OwnedGames handles GET /user/games and GET /user/games/:page: the
// caller's library, newest release first, with their own vote attached
// to each row.
func (h *Handler) OwnedGames(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	page, ok := gamesapi.PageParam(c)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "No such page"})
		return
	}

	result, err := h.games.OwnedByUser(user.ID, page)
	if err != nil {
		h.log.Error("listing owned games", zap.Uint("user_id", user.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list games"})
		return
	}
	if result.OutOfRange() {
		c.JSON(http.StatusNotFound, gin.H{"error": "No such page"})
		return
	}

	c.JSON(http.StatusOK, gamesapi.NewListJSON(result))
}

// Vote handles GET /user/vote/:ownership/:action with action one of
// yes, no or delete. Voting on an ownership row that belongs to
// someone else is rejected before the action is even looked at.
func (h *Handler) Vote(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}

	ownershipID, err := strconv.ParseUint(c.Param("ownership"), 10, 32)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No such ownership"})
		return
	}
	owned, err := h.owners.ByID(uint(ownershipID))
	if err != nil {
		h.log.Error("loading ownership", zap.Uint64("ownership_id", ownershipID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to vote"})
		return
	}
	if owned == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No such ownership"})
		return
	}
	if owned.UserID != user.ID {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not your game"})
		return
	}

	var value bool
	switch c.Param("action") {
	case "yes":
		value = true
	case "no":
		value = false
	case "delete":
		if err := h.deleteVote(owned.ID); err != nil {
			h.log.Error("deleting vote", zap.Uint("ownership_id", owned.ID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to vote"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
		return
	default:
		c.JSON(http.StatusNotFound, gin.H{"error": "No such vote action"})
		return
	}

	if err := h.castVote(owned.ID, value); err != nil {
		h.log.Error("saving vote", zap.Uint("ownership_id", owned.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to vote"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// castVote records a yes/no vote, replacing the previous one if the
// user already voted on this ownership.
func (h *Handler) castVote(ownershipID uint, value bool) error {
	vote, err := h.owners.VoteByOwnership(ownershipID)
	if err != nil {
		return err
	}
	if vote == nil {
		vote = &ownership.Vote{OwnershipID: ownershipID}
	}
	vote.Vote = value
	return h.owners.SaveVote(vote)
}

func (h *Handler) deleteVote(ownershipID uint) error {
	vote, err := h.owners.VoteByOwnership(ownershipID)
	if err != nil {
		return err
	}
	if vote == nil {
		return nil
	}
	return h.owners.DeleteVote(vote)
}

// currentUser resolves the authenticated user from the context set by
// the auth middleware. A stale token for a deleted user answers 401.
func (h *Handler) currentUser(c *gin.Context) (*users.User, bool) {
	value, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not logged in"})
		return nil, false
	}
	userID, ok := value.(uint)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not logged in"})
		return nil, false
	}
	user, err := h.users.ByID(userID)
	if err != nil {
		h.log.Error("loading current user", zap.Uint("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load user"})
		return nil, false
	}
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not logged in"})
		return nil, false
	}
	return user, true
}
