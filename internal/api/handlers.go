package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// healthCheck handles GET /health. Liveness only, no dependency checks.
func healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "analytics",
	})
}
