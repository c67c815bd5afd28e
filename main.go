package main

import (
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/salonibalkondekar/analytics/internal/api"
	"github.com/salonibalkondekar/analytics/internal/auth"
	"github.com/salonibalkondekar/analytics/internal/config"
	"github.com/salonibalkondekar/analytics/internal/database"
	"github.com/salonibalkondekar/analytics/internal/migration"
)

func main() {
	cfg := config.Load()

	// Ensure absolute database path
	dbPath := cfg.DBPath
	if !filepath.IsAbs(dbPath) {
		cwd, _ := os.Getwd()
		dbPath = filepath.Join(cwd, dbPath)
	}

	// Initialize database
	log.Printf("Initializing analytics database at %s", dbPath)
	if err := database.Open(database.Config{Path: dbPath}); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	// One-time legacy JSON import, if the file is present
	if err := migration.ImportLegacyUsers(cfg.LegacyUsersFile); err != nil {
		log.Fatalf("Legacy user migration failed: %v", err)
	}

	// Initialize session gate
	authSvc := auth.NewService(cfg)

	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))

	// API routes
	api.RegisterRoutes(e, cfg, authSvc)

	log.Printf("Starting analytics service on port %s", cfg.Port)
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
