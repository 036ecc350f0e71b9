package main

import (
	"os"
	"time"

	"compatdb-app/config"
	"compatdb-app/database"
	authapi "compatdb-app/internal/api/auth"
	gamesapi "compatdb-app/internal/api/games"
	usersapi "compatdb-app/internal/api/users"
	routes "compatdb-app/internal/app/http"
	"compatdb-app/internal/domain/games"
	"compatdb-app/internal/domain/ownership"
	"compatdb-app/internal/domain/users"
	"compatdb-app/internal/logger"
	"compatdb-app/internal/steam"
	"compatdb-app/internal/tasks"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// gin.SetMode(gin.ReleaseMode) uncomment only in production
	config.LoadEnv()
	log := logger.New(config.LOG_LEVEL)
	defer log.Sync()

	// With arguments we run one maintenance task and exit; without, we
	// serve the API.
	if len(os.Args) > 1 {
		os.Exit(tasks.Invoke(os.Args[1:], log))
	}

	db, err := database.Open(config.DB_PATH)
	if err != nil {
		log.Error("opening database", zap.Error(err))
		os.Exit(config.StatusGeneralSQLError)
	}

	gameRepo := games.NewRepository(db)
	userRepo := users.NewRepository(db)
	ownerRepo := ownership.NewRepository(db)
	client := steam.NewClient(config.STEAM_API_KEY, config.STEAM_LOG_DIR, log)

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{config.CORS_ORIGIN},
		AllowMethods:     []string{"GET", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, routes.Handlers{
		Games: gamesapi.NewHandler(gameRepo, log),
		Auth:  authapi.NewHandler(userRepo, client, log),
		Users: usersapi.NewHandler(userRepo, gameRepo, ownerRepo, log),
	})

	r.Run(":" + config.PORT)
}
