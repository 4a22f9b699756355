package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeroslashagency/epsilon-attendance-api/internal/models"
)

var testDay = time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

func punch(hour, minute int, direction models.PunchDirection) models.PunchEvent {
	return models.PunchEvent{
		EmployeeCode: "EMP-001",
		Time:         time.Date(2026, 3, 10, hour, minute, 0, 0, time.UTC),
		Direction:    direction,
		DeviceID:     "device-1",
	}
}

func defaultShift() models.ShiftInfo {
	return models.ShiftInfo{Window: models.ShiftWindow{StartMinutes: 9 * 60, EndMinutes: 18 * 60, GraceMinutes: 10}}
}

// Clock pinned one day after the reconstructed date, so the date counts as a
// past day and trailing open spans get an inferred end.
func pastDayEngine() *Engine {
	return New(Config{}).WithClock(func() time.Time {
		return time.Date(2026, 3, 11, 8, 0, 0, 0, time.UTC)
	})
}

func todayEngine() *Engine {
	return New(Config{}).WithClock(func() time.Time {
		return time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	})
}

func TestReconstructDayCleanPair(t *testing.T) {
	events := []models.PunchEvent{
		punch(8, 58, models.PunchIn),
		punch(17, 5, models.PunchOut),
	}

	record, err := pastDayEngine().ReconstructDay("EMP-001", testDay, events, defaultShift())
	require.NoError(t, err)

	assert.Equal(t, models.StatusPresent, record.Status)
	assert.Equal(t, "8:07", record.TotalHours)
	assert.Equal(t, 487, record.WorkedMinutes)
	assert.Equal(t, models.ConfidenceHigh, record.Confidence)
	assert.False(t, record.HasAmbiguousPunches)
	require.NotNil(t, record.CheckIn)
	require.NotNil(t, record.CheckOut)
	assert.Equal(t, "08:58", record.CheckIn.Format("15:04"))
	assert.Equal(t, "17:05", record.CheckOut.Format("15:04"))
	require.Len(t, record.Intervals, 1)
	assert.Equal(t, models.IntervalWork, record.Intervals[0].Kind)
}

func TestReconstructDayLateAfterGrace(t *testing.T) {
	events := []models.PunchEvent{
		punch(9, 11, models.PunchIn),
		punch(18, 0, models.PunchOut),
	}

	record, err := pastDayEngine().ReconstructDay("EMP-001", testDay, events, defaultShift())
	require.NoError(t, err)
	assert.Equal(t, models.StatusLate, record.Status)
}

func TestReconstructDayWithinGraceIsPresent(t *testing.T) {
	events := []models.PunchEvent{
		punch(9, 10, models.PunchIn),
		punch(18, 0, models.PunchOut),
	}

	record, err := pastDayEngine().ReconstructDay("EMP-001", testDay, events, defaultShift())
	require.NoError(t, err)
	assert.Equal(t, models.StatusPresent, record.Status)
}

func TestReconstructDayZeroGraceShift(t *testing.T) {
	shift := models.ShiftInfo{Window: models.ShiftWindow{StartMinutes: 9 * 60, EndMinutes: 18 * 60, GraceMinutes: 0}}

	record, err := pastDayEngine().ReconstructDay("EMP-001", testDay, []models.PunchEvent{
		punch(9, 1, models.PunchIn),
		punch(18, 0, models.PunchOut),
	}, shift)
	require.NoError(t, err)
	assert.Equal(t, models.StatusLate, record.Status)

	record, err = pastDayEngine().ReconstructDay("EMP-001", testDay, []models.PunchEvent{
		punch(9, 0, models.PunchIn),
		punch(18, 0, models.PunchOut),
	}, shift)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPresent, record.Status)
}

func TestReconstructDayBreakToggle(t *testing.T) {
	events := []models.PunchEvent{
		punch(9, 0, models.PunchIn),
		punch(13, 0, models.PunchBreak),
		punch(13, 30, models.PunchBreak),
		punch(17, 0, models.PunchOut),
	}

	record, err := pastDayEngine().ReconstructDay("EMP-001", testDay, events, defaultShift())
	require.NoError(t, err)

	require.Len(t, record.Intervals, 3)
	assert.Equal(t, models.IntervalWork, record.Intervals[0].Kind)
	assert.Equal(t, models.IntervalBreak, record.Intervals[1].Kind)
	assert.Equal(t, models.IntervalWork, record.Intervals[2].Kind)
	assert.Equal(t, "7:30", record.TotalHours)
	assert.Equal(t, models.ConfidenceHigh, record.Confidence)
	assert.False(t, record.HasAmbiguousPunches)
}

func TestReconstructDayMissingCheckoutPastDay(t *testing.T) {
	events := []models.PunchEvent{
		punch(9, 0, models.PunchIn),
		punch(12, 0, models.PunchBreak),
		punch(12, 30, models.PunchBreak),
	}

	record, err := pastDayEngine().ReconstructDay("EMP-001", testDay, events, defaultShift())
	require.NoError(t, err)

	// The trailing work span ends at the day's last known event.
	require.Len(t, record.Intervals, 3)
	last := record.Intervals[len(record.Intervals)-1]
	assert.False(t, last.Open)
	assert.Equal(t, "12:30", last.End.Format("15:04"))

	assert.True(t, record.HasAmbiguousPunches)
	assert.Equal(t, models.ConfidenceLow, record.Confidence)

	// A synthesized out punch is appended, flagged inferred.
	var inferred *models.AnnotatedPunch
	for i := range record.PunchLogs {
		if record.PunchLogs[i].Inferred {
			inferred = &record.PunchLogs[i]
		}
	}
	require.NotNil(t, inferred)
	assert.Equal(t, models.PunchOut, inferred.Direction)
	assert.Equal(t, models.ConfidenceLow, inferred.Confidence)
}

func TestReconstructDayOpenIntervalToday(t *testing.T) {
	events := []models.PunchEvent{
		punch(9, 0, models.PunchIn),
	}

	record, err := todayEngine().ReconstructDay("EMP-001", testDay, events, defaultShift())
	require.NoError(t, err)

	require.Len(t, record.Intervals, 1)
	assert.True(t, record.Intervals[0].Open)
	assert.Nil(t, record.CheckOut)
	assert.False(t, record.HasAmbiguousPunches)
	assert.Equal(t, models.ConfidenceHigh, record.Confidence)
	assert.Equal(t, models.StatusPresent, record.Status)
}

func TestReconstructDayDuplicateScansSuppressed(t *testing.T) {
	dup := punch(9, 0, models.PunchIn)
	events := []models.PunchEvent{
		dup,
		dup,
		punch(17, 0, models.PunchOut),
	}

	record, err := pastDayEngine().ReconstructDay("EMP-001", testDay, events, defaultShift())
	require.NoError(t, err)
	assert.Len(t, record.PunchLogs, 2)
	assert.Equal(t, models.ConfidenceHigh, record.Confidence)
	assert.False(t, record.HasAmbiguousPunches)
}

func TestReconstructDayConflictDiscardEarlier(t *testing.T) {
	events := []models.PunchEvent{
		punch(9, 0, models.PunchIn),
		{EmployeeCode: "EMP-001", Time: time.Date(2026, 3, 10, 9, 20, 0, 0, time.UTC), Direction: models.PunchIn, DeviceID: "device-2"},
		punch(17, 0, models.PunchOut),
	}

	record, err := pastDayEngine().ReconstructDay("EMP-001", testDay, events, defaultShift())
	require.NoError(t, err)

	// 09:00 in is discarded as a probable duplicate; 09:20 opens the span.
	require.Len(t, record.Intervals, 1)
	assert.Equal(t, "09:20", record.Intervals[0].Start.Format("15:04"))
	assert.Equal(t, models.StatusLate, record.Status)
	assert.True(t, record.HasAmbiguousPunches)
	assert.Equal(t, models.ConfidenceLow, record.Confidence)
	assert.True(t, record.PunchLogs[0].Discarded)
}

func TestReconstructDayConflictDiscardLater(t *testing.T) {
	eng := New(Config{ConflictPolicy: ConflictDiscardLater}).WithClock(func() time.Time {
		return time.Date(2026, 3, 11, 8, 0, 0, 0, time.UTC)
	})
	events := []models.PunchEvent{
		punch(9, 0, models.PunchIn),
		{EmployeeCode: "EMP-001", Time: time.Date(2026, 3, 10, 9, 20, 0, 0, time.UTC), Direction: models.PunchIn, DeviceID: "device-2"},
		punch(17, 0, models.PunchOut),
	}

	record, err := eng.ReconstructDay("EMP-001", testDay, events, defaultShift())
	require.NoError(t, err)
	require.Len(t, record.Intervals, 1)
	assert.Equal(t, "09:00", record.Intervals[0].Start.Format("15:04"))
	assert.Equal(t, models.StatusPresent, record.Status)
	assert.True(t, record.HasAmbiguousPunches)
}

func TestReconstructDayUnmatchedOut(t *testing.T) {
	events := []models.PunchEvent{
		punch(8, 0, models.PunchOut),
		punch(9, 0, models.PunchIn),
		punch(17, 0, models.PunchOut),
	}

	record, err := pastDayEngine().ReconstructDay("EMP-001", testDay, events, defaultShift())
	require.NoError(t, err)
	require.Len(t, record.Intervals, 1)
	assert.Equal(t, "09:00", record.Intervals[0].Start.Format("15:04"))
	assert.True(t, record.HasAmbiguousPunches)
	assert.Equal(t, models.ConfidenceLow, record.Confidence)
}

func TestReconstructDayEmptyIsAbsent(t *testing.T) {
	record, err := pastDayEngine().ReconstructDay("EMP-001", testDay, nil, defaultShift())
	require.NoError(t, err)
	assert.Equal(t, models.StatusAbsent, record.Status)
	assert.Empty(t, record.Intervals)
	assert.Equal(t, "0:00", record.TotalHours)
	assert.Equal(t, models.ConfidenceHigh, record.Confidence)
	assert.False(t, record.HasAmbiguousPunches)
}

func TestReconstructDayLeaveShortCircuits(t *testing.T) {
	shift := models.ShiftInfo{OnLeave: true, Leave: models.LeaveVacation}
	events := []models.PunchEvent{
		punch(9, 0, models.PunchIn),
		punch(17, 0, models.PunchOut),
	}

	record, err := pastDayEngine().ReconstructDay("EMP-001", testDay, events, shift)
	require.NoError(t, err)
	assert.Equal(t, models.StatusVacation, record.Status)
	// Intervals are still reconstructed even on leave days.
	assert.Len(t, record.Intervals, 1)
}

func TestReconstructDayRejectsOutsideDate(t *testing.T) {
	events := []models.PunchEvent{
		{EmployeeCode: "EMP-001", Time: time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC), Direction: models.PunchIn},
	}

	_, err := pastDayEngine().ReconstructDay("EMP-001", testDay, events, defaultShift())
	require.Error(t, err)
}

func TestReconstructDayDeterministic(t *testing.T) {
	shuffled := []models.PunchEvent{
		punch(17, 0, models.PunchOut),
		punch(13, 30, models.PunchBreak),
		punch(9, 0, models.PunchIn),
		punch(13, 0, models.PunchBreak),
	}
	ordered := []models.PunchEvent{
		punch(9, 0, models.PunchIn),
		punch(13, 0, models.PunchBreak),
		punch(13, 30, models.PunchBreak),
		punch(17, 0, models.PunchOut),
	}

	a, err := pastDayEngine().ReconstructDay("EMP-001", testDay, shuffled, defaultShift())
	require.NoError(t, err)
	b, err := pastDayEngine().ReconstructDay("EMP-001", testDay, ordered, defaultShift())
	require.NoError(t, err)
	assert.Equal(t, b, a)
}

func TestNormalizeTieBreakClosersFirst(t *testing.T) {
	at := time.Date(2026, 3, 10, 13, 0, 0, 0, time.UTC)
	events := []models.PunchEvent{
		{Time: at, Direction: models.PunchIn, DeviceID: "a"},
		{Time: at, Direction: models.PunchOut, DeviceID: "b"},
	}

	normalized, err := normalize(events, testDay)
	require.NoError(t, err)
	require.Len(t, normalized, 2)
	assert.Equal(t, models.PunchOut, normalized[0].Direction)
	assert.Equal(t, models.PunchIn, normalized[1].Direction)
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "8:07", FormatDuration(8*time.Hour+7*time.Minute))
	assert.Equal(t, "0:00", FormatDuration(0))
	assert.Equal(t, "0:00", FormatDuration(-time.Hour))
	assert.Equal(t, "10:05", FormatDuration(10*time.Hour+5*time.Minute))
}
