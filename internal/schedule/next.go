package schedule

import (
	"time"

	"github.com/sourceplane/jobconf/internal/model"
)

// Next returns the first run strictly after t, in t's location. Constant
// schedules have no fixed run times and report false.
func Next(s model.Schedule, t time.Time) (time.Time, bool) {
	switch s := s.(type) {
	case model.IntervalSchedule:
		return t.Add(s.Period), true
	case model.DailySchedule:
		return nextDaily(s, t), true
	case model.CronSchedule:
		next := s.Next(t)
		return next, !next.IsZero()
	}
	return time.Time{}, false
}

// Upcoming returns up to n consecutive runs after t.
func Upcoming(s model.Schedule, t time.Time, n int) []time.Time {
	var out []time.Time
	for len(out) < n {
		next, ok := Next(s, t)
		if !ok {
			break
		}
		out = append(out, next)
		t = next
	}
	return out
}

func nextDaily(s model.DailySchedule, t time.Time) time.Time {
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	for i := 0; i <= 7; i++ {
		day := midnight.AddDate(0, 0, i)
		run := time.Date(day.Year(), day.Month(), day.Day(),
			s.StartTime.Hour, s.StartTime.Minute, s.StartTime.Second, 0, t.Location())
		if !run.After(t) {
			continue
		}
		if s.Days.Unrestricted() || s.Days.Has(run.Weekday()) {
			return run
		}
	}
	// Unreachable for a non-empty day set.
	return t.AddDate(0, 0, 7)
}
