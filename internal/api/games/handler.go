package games

import (
	"net/http"
	"strconv"

	"compatdb-app/internal/domain/games"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler serves the public game listing.
type Handler struct {
	games *games.Repository
	log   *zap.Logger
}

func NewHandler(repo *games.Repository, log *zap.Logger) *Handler {
	return &Handler{games: repo, log: log}
}

// List handles GET /games and GET /games/:page. Query params: filter
// ("mac" or "cat", default all) and q (search terms). A search always
// answers with page 1 regardless of the page asked for.
func (h *Handler) List(c *gin.Context) {
	page, ok := PageParam(c)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "No such page"})
		return
	}

	var filter games.FilterMode
	switch c.Query("filter") {
	case "":
		filter = games.FilterAll
	case "mac":
		filter = games.FilterMac
	case "cat":
		filter = games.FilterCatalina
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown filter"})
		return
	}

	terms := games.Tokenize(c.Query("q"))

	result, err := h.games.ByReleaseDate(page, filter, terms)
	if err != nil {
		h.log.Error("listing games", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list games"})
		return
	}
	if result.OutOfRange() {
		c.JSON(http.StatusNotFound, gin.H{"error": "No such page"})
		return
	}

	c.JSON(http.StatusOK, NewListJSON(result))
}

// PageParam reads the one-based :page path param and returns it
// zero-based. Absent means the first page; zero, negative or
// non-numeric pages are rejected.
func PageParam(c *gin.Context) (int, bool) {
	raw := c.Param("page")
	if raw == "" {
		return 0, true
	}
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 0, false
	}
	return page - 1, true
}
