package timetrack

import (
	"time"

	"github.com/consultdesk/consultdesk/internal/models"
	"github.com/shopspring/decimal"
)

// HourPlaces is the precision durations are stored with.
const HourPlaces = 6

var nanosPerHour = decimal.NewFromInt(int64(time.Hour))

// Hours converts d to decimal hours at nanosecond resolution.
func Hours(d time.Duration) decimal.Decimal {
	return decimal.NewFromInt(int64(d)).Div(nanosPerHour)
}

// Elapsed reports how long an entry has run: now minus start for running
// entries, the stored duration for stopped ones.
func Elapsed(e *models.TimeEntry, now time.Time) time.Duration {
	if !e.IsRunning && e.Duration.Valid {
		return time.Duration(e.Duration.Decimal.Mul(nanosPerHour).IntPart())
	}
	if e.EndTime != nil {
		return e.EndTime.Sub(e.StartTime)
	}
	if now.Before(e.StartTime) {
		return 0
	}
	return now.Sub(e.StartTime)
}
