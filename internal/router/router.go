package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/blueskyzii/Latihan-PPKN/internal/config"
	"github.com/blueskyzii/Latihan-PPKN/internal/handler"
	"github.com/blueskyzii/Latihan-PPKN/internal/middleware"
	"github.com/blueskyzii/Latihan-PPKN/internal/response"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Dashboard *handler.DashboardHandler
	Exam      *handler.ExamHandler
	WS        *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(handlers *Handlers, cfg *config.Config) *gin.Engine {
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
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "X-Client-ID", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Apply brotli middleware globally; the exam paper payload is the only
	// big response but compression is harmless elsewhere.
	router.Use(middleware.Brotli())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Token gate brute-force protection (30 attempts per minute per IP).
	selectLimiter := middleware.NewRateLimiter(30, time.Minute)

	// ─── 1. Dashboard Group ────────────────────────────────────────────
	dashboardAPI := router.Group("/api/v1/quizzes")
	{
		// The catalog changes rarely; let clients cache it briefly.
		dashboardAPI.GET("", middleware.CacheControl(300), handlers.Dashboard.ListQuizzes)
		dashboardAPI.POST("/:quiz_id/select",
			middleware.RequireClientID(),
			selectLimiter.Middleware(),
			handlers.Dashboard.SelectQuiz,
		)
	}

	// ─── 2. Exam Runner Group ──────────────────────────────────────────
	examAPI := router.Group("/api/v1/exam")
	examAPI.Use(middleware.RequireClientID())
	{
		examAPI.POST("/open", handlers.Exam.OpenExam)
		examAPI.GET("/state", handlers.Exam.GetState)
		examAPI.GET("/active", handlers.Exam.GetActive)
		examAPI.GET("/timer", handlers.Exam.Timer)
		examAPI.POST("/answer", handlers.Exam.SelectAnswer)
		examAPI.POST("/navigate", handlers.Exam.Navigate)
		examAPI.POST("/violation", handlers.Exam.RecordViolation)
		examAPI.POST("/finish", handlers.Exam.Finish)
		examAPI.POST("/reset", handlers.Exam.HardReset)
	}

	// ─── 3. WebSocket Group ────────────────────────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireClientID())
	{
		ws.GET("/exam/stream", handlers.WS.ExamStream)
	}

	return router
}
