package routes

import (
	authapi "compatdb-app/internal/api/auth"
	gamesapi "compatdb-app/internal/api/games"
	usersapi "compatdb-app/internal/api/users"
	"compatdb-app/internal/app/http/middleware"

	"github.com/gin-gonic/gin"
)

// Handlers bundles everything the route table needs.
type Handlers struct {
	Games *gamesapi.Handler
	Auth  *authapi.Handler
	Users *usersapi.Handler
}

func RegisterRoutes(r *gin.Engine, h Handlers) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	public := r.Group("/")
	public.Use(middleware.SanitizeQueryParams())

	public.GET("/games", h.Games.List)
	public.GET("/games/:page", h.Games.List)

	public.GET("/auth/steam", h.Auth.SteamStart)
	public.GET("/auth/steam/callback", h.Auth.SteamCallback)
	public.GET("/logout", h.Auth.Logout)

	// Authenticated
	user := r.Group("/user")
	user.Use(middleware.AuthMiddleware())
	user.GET("", h.Users.Me)
	user.GET("/games", h.Users.OwnedGames)
	user.GET("/games/:page", h.Users.OwnedGames)
	user.GET("/vote/:ownership/:action", h.Users.Vote)
}
