package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

// livePollInterval is how often the live feed checks for new events.
const livePollInterval = 2 * time.Second

// adminLiveEvents handles GET /admin/events/live. It upgrades to a
// WebSocket and streams CAD events as they are recorded, polling the
// store for rows newer than the last one sent. Admin auth has already
// run via the group middleware (password query parameter).
func adminLiveEvents(c echo.Context) error {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}
	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer ws.Close()

	lastID, err := eventRepo.LatestCADEventID()
	if err != nil {
		c.Logger().Error("live feed error: ", err)
		return nil
	}

	// Drain client frames so close messages are noticed.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(livePollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			return nil
		case <-c.Request().Context().Done():
			return nil
		case <-ticker.C:
			events, err := eventRepo.CADEventsAfter(lastID, 100)
			if err != nil {
				c.Logger().Error("live feed query error: ", err)
				return nil
			}

			for _, ev := range events {
				if err := ws.WriteJSON(ev); err != nil {
					return nil
				}
				lastID = ev.ID
			}
		}
	}
}
