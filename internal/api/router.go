package api

import (
	"github.com/chordquest/chordquest-api/internal/api/handlers"
	apimiddleware "github.com/chordquest/chordquest-api/internal/api/middleware"
	"github.com/chordquest/chordquest-api/internal/config"
	"github.com/chordquest/chordquest-api/internal/metrics"
	"github.com/chordquest/chordquest-api/internal/middleware"
	"github.com/chordquest/chordquest-api/internal/store"
	"github.com/gin-gonic/gin"
)

// SetupRouter wires the stage/chord library CRUD routes (gated by
// AUTH_MODE), the run start endpoint (ungated; it issues the per-run JWT),
// the run stream (gated by that JWT regardless of AUTH_MODE), and the
// ambient health/metrics endpoints.
func SetupRouter(cfg *config.Config, st *store.Store, cw *metrics.Client, version string) *gin.Engine {
	router := gin.New()

	router.Use(apimiddleware.RecoverWithSentry())
	router.Use(apimiddleware.SentryMiddleware())
	router.Use(apimiddleware.RequestTracking())
	router.Use(apimiddleware.CORS(cfg))

	sessionStore := middleware.NewSessionStore(cfg)
	middleware.SetupOAuth(cfg, sessionStore)
	router.Use(middleware.PlayerSession(sessionStore))

	healthHandler := handlers.NewHealthHandler(st.DB)
	router.GET("/health", healthHandler.HealthCheck)

	metricsHandler := handlers.NewMetricsHandler(version)
	router.GET("/api/metrics", metricsHandler.GetMetrics)

	chordRepo := store.NewChordRepo(st)
	stageRepo := store.NewStageRepo(st)

	chordHandler := handlers.NewChordHandler(chordRepo)
	stageHandler := handlers.NewStageHandler(stageRepo, cfg, cw)
	runHandler := handlers.NewRunHandler(stageRepo, chordRepo, cfg, cw)

	library := router.Group("/api")
	library.Use(libraryAuthMiddleware(cfg))
	{
		library.GET("/chords", chordHandler.List)
		library.POST("/chords", chordHandler.Create)
		library.DELETE("/chords/:chordID", chordHandler.Delete)

		library.GET("/stages", stageHandler.List)
		library.GET("/stages/:slug", stageHandler.Get)
		library.POST("/stages", stageHandler.Create)
		library.DELETE("/stages/:slug", stageHandler.Delete)
		library.POST("/stages/draft-progression", stageHandler.DraftProgression)
	}

	router.POST("/api/runs", runHandler.StartRun)

	runs := router.Group("/api/runs")
	runs.Use(middleware.RunAuth(cfg))
	{
		runs.GET("/:runID/stream", runHandler.Stream)
	}

	if cfg.GoogleClientID != "" {
		auth := router.Group("/api/auth")
		{
			auth.GET("/:provider", middleware.BeginOAuth)
			auth.GET("/:provider/callback", middleware.CompleteOAuth)
		}
	}

	return router
}

// libraryAuthMiddleware gates authoring of the stage/chord library
// (creating/deleting content other players will run), distinct from
// RunAuth which gates only a single run's websocket.
func libraryAuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	switch cfg.AuthMode {
	case "gateway":
		return apimiddleware.GatewayAuth()
	default:
		return apimiddleware.NoAuth()
	}
}
