package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/salonibalkondekar/analytics/internal/auth"
	"github.com/salonibalkondekar/analytics/internal/database"
	"github.com/salonibalkondekar/analytics/internal/models"
)

// storeModel handles POST /models/store (session required)
func storeModel(c echo.Context) error {
	var req models.StoreModelRequest
	if err := c.Bind(&req); err != nil || req.ModelID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
	}

	session := auth.SessionFromContext(c)

	success := true
	if req.Success != nil {
		success = *req.Success
	}

	err := tracker.StoreModel(&models.GeneratedModel{
		ID:                 req.ModelID,
		UserID:             session.UserID,
		SessionID:          session.ID,
		Prompt:             req.Prompt,
		GeneratedCode:      req.GeneratedCode,
		STLFilePath:        req.STLFilePath,
		STLFileSize:        req.STLFileSize,
		GenerationTimeMs:   req.GenerationTimeMs,
		AIGenerationTimeMs: req.AIGenerationTimeMs,
		ExecutionTimeMs:    req.ExecutionTimeMs,
		Success:            success,
		ErrorMessage:       req.ErrorMessage,
	})
	if err != nil {
		c.Logger().Error("store model error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to store model",
		})
	}

	return c.JSON(http.StatusOK, map[string]any{"success": true})
}

// trackModelDownload handles POST /models/:id/download
func trackModelDownload(c echo.Context) error {
	if err := tracker.TrackDownload(c.Param("id")); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{
				"error": "Model not found",
			})
		}
		c.Logger().Error("track download error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to record download",
		})
	}

	return c.JSON(http.StatusOK, map[string]any{"success": true})
}

// getModel handles GET /models/:id
func getModel(c echo.Context) error {
	model, err := modelRepo.GetByID(c.Param("id"))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{
				"error": "Model not found",
			})
		}
		c.Logger().Error("get model error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to load model",
		})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"id":                 model.ID,
		"user_id":            model.UserID,
		"timestamp":          model.Timestamp,
		"prompt":             model.Prompt,
		"generated_code":     model.GeneratedCode,
		"stl_file_path":      model.STLFilePath,
		"stl_file_size":      model.STLFileSize,
		"generation_time_ms": model.GenerationTimeMs,
		"success":            model.Success,
		"download_count":     model.DownloadCount,
	})
}
