package api

import (
	"github.com/labstack/echo/v4"

	"github.com/salonibalkondekar/analytics/internal/auth"
	"github.com/salonibalkondekar/analytics/internal/config"
	"github.com/salonibalkondekar/analytics/internal/database"
	"github.com/salonibalkondekar/analytics/internal/tracking"
)

// Handler state shared across the api package, wired once by
// RegisterRoutes.
var (
	cfg          config.Config
	authService  *auth.Service
	quota        *auth.QuotaEnforcer
	adminGate    *auth.AdminGate
	csrf         *auth.CSRF
	tracker      *tracking.Tracker
	aggregator   *tracking.Aggregator
	userRepo     *database.UserRepo
	modelRepo    *database.ModelRepo
	adminLogRepo *database.AdminLogRepo
	eventRepo    *database.EventRepo
)

// RegisterRoutes sets up all API routes
func RegisterRoutes(e *echo.Echo, c config.Config, authSvc *auth.Service) {
	cfg = c
	authService = authSvc
	quota = auth.NewQuotaEnforcer(c)
	adminGate = auth.NewAdminGate(c)
	csrf = auth.NewCSRF(c.SecretKey)
	tracker = tracking.NewTracker()
	aggregator = tracking.NewAggregator()
	userRepo = database.NewUserRepo()
	modelRepo = database.NewModelRepo()
	adminLogRepo = database.NewAdminLogRepo()
	eventRepo = database.NewEventRepo()

	rateLimit := auth.NewRateLimiter(c).Middleware()

	// Health check (public, liveness only)
	e.GET("/health", healthCheck)

	// Anonymous session issuance
	e.POST("/session", createAnonymousSession, rateLimit)

	// Session management
	authGroup := e.Group("/auth")
	authGroup.POST("/create-session", createUserSession, rateLimit)
	authGroup.POST("/destroy-session", destroySession)
	authGroup.GET("/current-user", currentUser, auth.RequireSession(authSvc))

	// Tracking (rate limited per IP; session optional)
	track := e.Group("/track", rateLimit, auth.OptionalSession(authSvc))
	track.POST("/pageview", trackPageView)
	track.POST("/link-click", trackLinkClick)
	track.POST("/scroll", trackScroll)

	// CAD events require identity
	e.POST("/track/cad-event", trackCADEvent, auth.RequireSession(authSvc))

	// Generated models
	modelsGroup := e.Group("/models")
	modelsGroup.POST("/store", storeModel, auth.RequireSession(authSvc))
	modelsGroup.POST("/:id/download", trackModelDownload)
	modelsGroup.GET("/:id", getModel)

	// Quota surface for the generation backend
	e.POST("/users/increment-count", incrementUserCount, auth.RequireSession(authSvc))
	e.GET("/users/:id/info", getUserInfo)

	// Admin surface: the shared secret is checked on every call.
	// Login performs its own check so both outcomes can be audited.
	e.POST("/admin/login", adminLogin)

	admin := e.Group("/admin", auth.RequireAdmin(adminGate))
	admin.GET("/stats", adminStats)
	admin.GET("/users", adminUsers)
	admin.GET("/models", adminModels)
	admin.GET("/models/:id/details", adminModelDetails)
	admin.POST("/reset-user-count", adminResetUserCount)
	admin.GET("/logs", adminLogs)
	admin.GET("/events/live", adminLiveEvents)
}
