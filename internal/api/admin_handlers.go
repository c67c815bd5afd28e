package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/salonibalkondekar/analytics/internal/auth"
	"github.com/salonibalkondekar/analytics/internal/database"
	"github.com/salonibalkondekar/analytics/internal/models"
)

// adminLogin handles POST /admin/login. Both outcomes are written to
// the audit log.
func adminLogin(c echo.Context) error {
	password := auth.AdminPasswordFromRequest(c)
	ipAddress := c.RealIP()

	if !adminGate.Check(password) {
		if err := adminLogRepo.Log(models.ActionLoginFailed, "Invalid password", ipAddress, false); err != nil {
			c.Logger().Error("audit log error: ", err)
		}
		return c.JSON(http.StatusUnauthorized, map[string]string{
			"error": "Invalid password",
		})
	}

	if err := adminLogRepo.Log(models.ActionLoginSuccess, "Admin logged in", ipAddress, true); err != nil {
		c.Logger().Error("audit log error: ", err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"token":   "admin_authenticated",
	})
}

// adminStats handles GET /admin/stats
func adminStats(c echo.Context) error {
	hours := intQueryParam(c, "hours", 24)

	stats, err := aggregator.AdminStats(hours)
	if err != nil {
		c.Logger().Error("admin stats error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to compute stats",
		})
	}

	return c.JSON(http.StatusOK, stats)
}

// adminUsers handles GET /admin/users
func adminUsers(c echo.Context) error {
	users, err := userRepo.List(100)
	if err != nil {
		c.Logger().Error("admin users error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to list users",
		})
	}

	out := make([]map[string]any, 0, len(users))
	for _, u := range users {
		out = append(out, map[string]any{
			"id":            u.ID,
			"email":         u.Email,
			"name":          u.Name,
			"model_count":   u.ModelCount,
			"created_at":    u.CreatedAt,
			"last_activity": u.LastActivity,
			"is_blocked":    u.IsBlocked,
		})
	}

	return c.JSON(http.StatusOK, out)
}

// adminModels handles GET /admin/models
func adminModels(c echo.Context) error {
	limit := intQueryParam(c, "limit", 50)

	list, err := modelRepo.List(limit)
	if err != nil {
		c.Logger().Error("admin models error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to list models",
		})
	}

	out := make([]map[string]any, 0, len(list))
	for _, m := range list {
		out = append(out, map[string]any{
			"id":                 m.ID,
			"user_id":            m.UserID,
			"timestamp":          m.Timestamp,
			"prompt":             truncate(m.Prompt, 100),
			"stl_file_size":      m.STLFileSize,
			"generation_time_ms": m.GenerationTimeMs,
			"success":            m.Success,
			"download_count":     m.DownloadCount,
		})
	}

	return c.JSON(http.StatusOK, out)
}

// adminModelDetails handles GET /admin/models/:id/details
func adminModelDetails(c echo.Context) error {
	model, err := modelRepo.GetByID(c.Param("id"))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{
				"error": "Model not found",
			})
		}
		c.Logger().Error("admin model details error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to load model",
		})
	}

	return c.JSON(http.StatusOK, model)
}

// adminResetUserCount handles POST /admin/reset-user-count
func adminResetUserCount(c echo.Context) error {
	userID := c.QueryParam("user_id")
	if userID == "" {
		userID = c.FormValue("user_id")
	}
	if userID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "user_id is required",
		})
	}

	user, err := userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{
				"error": "User not found",
			})
		}
		c.Logger().Error("reset user count error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to load user",
		})
	}

	if err := quota.Reset(userID); err != nil {
		c.Logger().Error("reset user count error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to reset count",
		})
	}

	if err := adminLogRepo.Log(models.ActionResetUserCount, "Reset count for user "+user.Email, c.RealIP(), true); err != nil {
		c.Logger().Error("audit log error: ", err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success":   true,
		"new_count": 0,
	})
}

// adminLogs handles GET /admin/logs
func adminLogs(c echo.Context) error {
	entries, err := adminLogRepo.List(c.QueryParam("action"), intQueryParam(c, "limit", 100))
	if err != nil {
		c.Logger().Error("admin logs error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to list audit log",
		})
	}

	return c.JSON(http.StatusOK, entries)
}

func intQueryParam(c echo.Context, name string, fallback int) int {
	v := c.QueryParam(name)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
