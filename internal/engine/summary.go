package engine

import (
	"fmt"
	"math"
	"time"

	"github.com/zeroslashagency/epsilon-attendance-api/internal/models"
)

// Summarize rolls a set of DayRecords up into period statistics. Working
// days exclude approved-leave statuses when computing the attendance rate;
// the average is taken over days that have at least one work interval.
func Summarize(records []models.DayRecord) models.PeriodSummary {
	summary := models.PeriodSummary{TotalDays: len(records)}
	if len(records) == 0 {
		summary.TotalHours = FormatDuration(0)
		summary.AverageHours = FormatDuration(0)
		return summary
	}

	var totalWorked time.Duration
	daysWithWork := 0
	var checkInMinutes, checkOutMinutes, checkInCount, checkOutCount int

	for _, rec := range records {
		if summary.From.IsZero() || rec.Date.Before(summary.From) {
			summary.From = rec.Date
		}
		if rec.Date.After(summary.To) {
			summary.To = rec.Date
		}

		switch rec.Status {
		case models.StatusPresent:
			summary.PresentDays++
		case models.StatusLate:
			summary.LateDays++
		case models.StatusAbsent:
			summary.AbsentDays++
		case models.StatusSick:
			summary.SickDays++
		case models.StatusVacation:
			summary.VacationDays++
		}
		if rec.HasAmbiguousPunches {
			summary.AmbiguousDays++
		}
		if !rec.Status.IsLeave() {
			summary.WorkingDays++
		}

		worked := time.Duration(rec.WorkedMinutes) * time.Minute
		totalWorked += worked
		if len(rec.Intervals) > 0 {
			hasWork := false
			for _, span := range rec.Intervals {
				if span.Kind == models.IntervalWork {
					hasWork = true
					break
				}
			}
			if hasWork {
				daysWithWork++
			}
		}
		if rec.CheckIn != nil {
			checkInMinutes += rec.CheckIn.Hour()*60 + rec.CheckIn.Minute()
			checkInCount++
		}
		if rec.CheckOut != nil {
			checkOutMinutes += rec.CheckOut.Hour()*60 + rec.CheckOut.Minute()
			checkOutCount++
		}
	}

	summary.TotalMinutes = int(totalWorked / time.Minute)
	summary.TotalHours = FormatDuration(totalWorked)
	if daysWithWork > 0 {
		summary.AverageHours = FormatDuration(totalWorked / time.Duration(daysWithWork))
	} else {
		summary.AverageHours = FormatDuration(0)
	}
	if summary.WorkingDays > 0 {
		rate := float64(summary.PresentDays+summary.LateDays) / float64(summary.WorkingDays) * 100
		summary.AttendanceRate = int(math.Floor(rate + 0.5))
	}
	if checkInCount > 0 {
		summary.AverageCheckIn = formatMinutesOfDay(checkInMinutes / checkInCount)
	}
	if checkOutCount > 0 {
		summary.AverageCheckOut = formatMinutesOfDay(checkOutMinutes / checkOutCount)
	}
	return summary
}

func formatMinutesOfDay(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
