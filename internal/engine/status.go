package engine

import (
	"time"

	"github.com/hray3182/DoseLine/internal/models"
)

// MissedAfter is how long an instance stays actionable past its moment.
const MissedAfter = 2 * time.Hour

// DeriveStatus maps an instance's effective moment and optional log entry to
// its lifecycle status. Explicit taken/missed logs win; otherwise the
// two-hour window decides.
func DeriveStatus(now, at time.Time, log *models.LogEntry) models.Status {
	if log != nil {
		switch log.Status {
		case models.StatusTaken:
			return models.StatusTaken
		case models.StatusMissed:
			return models.StatusMissed
		}
	}

	elapsed := now.Sub(at)
	if log != nil && log.Status == models.StatusSnoozed && elapsed < MissedAfter {
		return models.StatusSnoozed
	}
	if elapsed > MissedAfter {
		return models.StatusMissed
	}
	return models.StatusUpcoming
}
