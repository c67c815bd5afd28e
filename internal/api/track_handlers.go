package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/salonibalkondekar/analytics/internal/auth"
	"github.com/salonibalkondekar/analytics/internal/models"
	"github.com/salonibalkondekar/analytics/internal/tracking"
)

// trackPageView handles POST /track/pageview
func trackPageView(c echo.Context) error {
	var req models.PageViewRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
	}

	return recordPageView(c, req.Site, req.Path)
}

// trackLinkClick handles POST /track/link-click. Link clicks are
// recorded as page views with a synthetic path.
func trackLinkClick(c echo.Context) error {
	var req models.LinkClickRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
	}

	site := req.Site
	if site == "" {
		site = models.SitePortfolio
	}

	return recordPageView(c, site, tracking.LinkClickPath(req.LinkType))
}

// trackScroll handles POST /track/scroll
func trackScroll(c echo.Context) error {
	var req models.ScrollRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
	}

	site := req.Site
	if site == "" {
		site = models.SitePortfolio
	}

	return recordPageView(c, site, tracking.ScrollPath(req.ScrollPercentage))
}

func recordPageView(c echo.Context, site, path string) error {
	var sessionID, userID string
	if session := auth.SessionFromContext(c); session != nil {
		sessionID = session.ID
		userID = session.UserID
	}

	err := tracker.TrackPageView(
		site, path,
		c.RealIP(), c.Request().UserAgent(), c.Request().Referer(),
		sessionID, userID,
	)
	if err != nil {
		c.Logger().Error("track page view error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to record event",
		})
	}

	return c.JSON(http.StatusOK, map[string]any{"success": true})
}

// trackCADEvent handles POST /track/cad-event (session required)
func trackCADEvent(c echo.Context) error {
	var req models.CADEventRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
	}

	session := auth.SessionFromContext(c)

	eventType := req.EventType
	if eventType == "" {
		eventType = "unknown"
	}

	success := true
	if req.Success != nil {
		success = *req.Success
	}

	err := tracker.TrackCADEvent(&models.CADEvent{
		UserID:         session.UserID,
		SessionID:      session.ID,
		EventType:      eventType,
		Prompt:         req.Prompt,
		Code:           req.Code,
		Success:        success,
		ErrorMessage:   req.ErrorMessage,
		ModelSizeBytes: req.ModelSizeBytes,
		IPAddress:      c.RealIP(),
	})
	if err != nil {
		c.Logger().Error("track cad event error: ", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to record event",
		})
	}

	return c.JSON(http.StatusOK, map[string]any{"success": true})
}
