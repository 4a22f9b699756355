package engine

import "github.com/zeroslashagency/epsilon-attendance-api/internal/models"

// resolveStatus derives the day status, first match wins. Approved leave
// short-circuits before anything else; otherwise no intervals means absent,
// a first work span starting after shift start plus grace means late, and
// everything else is present. Ambiguity never changes the status: it is an
// orthogonal flag carried on the DayRecord.
func resolveStatus(spans []models.WorkInterval, window models.ShiftWindow, shift models.ShiftInfo) models.AttendanceStatus {
	if shift.OnLeave {
		return shift.Leave.Status()
	}

	var earliest *models.WorkInterval
	for i := range spans {
		if spans[i].Kind != models.IntervalWork {
			continue
		}
		if earliest == nil || spans[i].Start.Before(earliest.Start) {
			earliest = &spans[i]
		}
	}
	if earliest == nil {
		// The engine does not special-case today/future dates here; "not
		// yet due" is a presentation concern.
		return models.StatusAbsent
	}
	if earliest.Start.After(window.LateCutoff(earliest.Start)) {
		return models.StatusLate
	}
	return models.StatusPresent
}
