package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/stationgames/trivia-backend/internal/config"
	"github.com/stationgames/trivia-backend/internal/handler"
	"github.com/stationgames/trivia-backend/internal/middleware"
	"github.com/stationgames/trivia-backend/internal/response"
	"github.com/stationgames/trivia-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth      *handler.AuthHandler
	User      *handler.UserHandler
	Pool      *handler.PoolHandler
	Question  *handler.QuestionHandler
	Session   *handler.SessionHandler
	Telemetry *handler.TelemetryHandler
	WS        *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally.
	router.Use(response.RequestIDMiddleware())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for session starts and registration (30 per minute per IP).
	startLimiter := middleware.NewRateLimiter(30, time.Minute)

	// ─── 1. Player Group (No Auth) ─────────────────────────────────────
	api := router.Group("/api/v1")
	{
		api.POST("/users/register", startLimiter.Middleware(), handlers.User.Register)
		api.GET("/users", handlers.User.GetByEmail)

		api.GET("/pools", handlers.Pool.List)

		api.POST("/sessions/start", startLimiter.Middleware(), handlers.Session.Start)
		api.GET("/sessions/:session_id", handlers.Session.Get)
		api.GET("/sessions/:session_id/questions", handlers.Session.Questions)
		api.POST("/sessions/:session_id/answers", handlers.Session.SubmitAnswer)
		api.POST("/sessions/:session_id/end", handlers.Session.End)
		api.POST("/sessions/:session_id/abandon", handlers.Session.Abandon)
		api.GET("/sessions/:session_id/answers", handlers.Session.Answers)

		api.GET("/leaderboard/top", handlers.Session.TopScores)

		api.POST("/telemetry/track", handlers.Telemetry.Track)
	}

	// ─── 2. WebSocket Group ────────────────────────────────────────────
	ws := router.Group("/ws/v1")
	{
		ws.GET("/leaderboard", handlers.WS.LeaderboardStream)
	}

	// ─── 3. Admin Group (Operator JWT) ─────────────────────────────────
	router.POST("/api/v1/admin/login", handlers.Auth.Login)

	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(middleware.RequireOperatorJWT(authService))
	{
		adminAPI.GET("/questions", handlers.Question.List)
		adminAPI.POST("/questions", handlers.Question.Create)
		adminAPI.DELETE("/questions/:question_id", handlers.Question.Delete)

		adminAPI.POST("/pools", handlers.Pool.Save)
		adminAPI.DELETE("/pools/:pool_id", handlers.Pool.Delete)
	}

	return router
}
