package tracking

import (
	"fmt"

	"github.com/salonibalkondekar/analytics/internal/database"
	"github.com/salonibalkondekar/analytics/internal/models"
)

// Tracker is the event recorder: pure append of classified events.
// It never touches other entities; quota increments are a separate
// call made by the same request handler.
type Tracker struct {
	eventRepo *database.EventRepo
	modelRepo *database.ModelRepo
}

// NewTracker creates a new event recorder
func NewTracker() *Tracker {
	return &Tracker{
		eventRepo: database.NewEventRepo(),
		modelRepo: database.NewModelRepo(),
	}
}

// TrackPageView records one page view. Session and user linkage are
// optional; unauthenticated views are recorded with both empty.
func (t *Tracker) TrackPageView(site, path, ipAddress, userAgent, referrer, sessionID, userID string) error {
	return t.eventRepo.InsertPageView(&models.PageView{
		Site:      site,
		Path:      path,
		IPAddress: ipAddress,
		UserAgent: userAgent,
		Referrer:  referrer,
		SessionID: sessionID,
		UserID:    userID,
	})
}

// LinkClickPath encodes a link click as a synthetic page view path.
func LinkClickPath(linkType string) string {
	if linkType == "" {
		linkType = "unknown"
	}
	return "/link-click/" + linkType
}

// ScrollPath encodes a scroll milestone as a synthetic page view path.
func ScrollPath(percentage int) string {
	return fmt.Sprintf("/scroll/%d%%", percentage)
}

// TrackCADEvent records one CAD lifecycle event.
func (t *Tracker) TrackCADEvent(ev *models.CADEvent) error {
	return t.eventRepo.InsertCADEvent(ev)
}

// StoreModel records a generated model's metadata.
func (t *Tracker) StoreModel(m *models.GeneratedModel) error {
	return t.modelRepo.Insert(m)
}

// TrackDownload bumps a stored model's download counter, the single
// post-insert mutation the recorder performs.
func (t *Tracker) TrackDownload(modelID string) error {
	return t.modelRepo.IncrementDownloadCount(modelID)
}
