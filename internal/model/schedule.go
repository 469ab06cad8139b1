package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron"
)

// ScheduleKind names a recurrence kind. It is also the grammar keyword.
type ScheduleKind string

const (
	KindInterval ScheduleKind = "interval"
	KindDaily    ScheduleKind = "daily"
	KindConstant ScheduleKind = "constant"
	KindCron     ScheduleKind = "cron"
)

// Schedule is a closed set of recurrence descriptors. Only the types in this
// file implement it; consumers switch on the concrete type.
type Schedule interface {
	Kind() ScheduleKind
	// String renders the schedule back in the grammar it was parsed from.
	String() string
	isSchedule()
}

// IntervalSchedule runs a job every Period.
type IntervalSchedule struct {
	Period time.Duration
}

func (IntervalSchedule) Kind() ScheduleKind { return KindInterval }
func (IntervalSchedule) isSchedule()        {}

func (s IntervalSchedule) String() string {
	return "interval " + formatPeriod(s.Period)
}

func formatPeriod(d time.Duration) string {
	units := []struct {
		size   time.Duration
		suffix string
	}{
		{24 * time.Hour, "d"},
		{time.Hour, "h"},
		{time.Minute, "m"},
		{time.Second, "s"},
	}
	for _, u := range units {
		if d >= u.size && d%u.size == 0 {
			return fmt.Sprintf("%d%s", d/u.size, u.suffix)
		}
	}
	return fmt.Sprintf("%ds", int64(d/time.Second))
}

// TimeOfDay is a wall-clock time without a date.
type TimeOfDay struct {
	Hour   int
	Minute int
	Second int
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
}

// Duration is the offset of t from midnight.
func (t TimeOfDay) Duration() time.Duration {
	return time.Duration(t.Hour)*time.Hour + time.Duration(t.Minute)*time.Minute + time.Duration(t.Second)*time.Second
}

// WeekdayLetters lists the recognized day initials, Monday first.
const WeekdayLetters = "MTWRFSU"

var letterDays = [7]time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

// WeekdayForLetter maps a day initial from WeekdayLetters to its weekday.
func WeekdayForLetter(r rune) (time.Weekday, bool) {
	i := strings.IndexRune(WeekdayLetters, r)
	if i < 0 {
		return 0, false
	}
	return letterDays[i], true
}

// Weekdays is a set of days. The zero value means every day.
type Weekdays uint8

func NewWeekdays(days ...time.Weekday) Weekdays {
	var w Weekdays
	for _, d := range days {
		w |= 1 << uint(d)
	}
	return w
}

// Unrestricted reports whether the set places no restriction on days.
func (w Weekdays) Unrestricted() bool { return w == 0 }

func (w Weekdays) Has(d time.Weekday) bool {
	return w == 0 || w&(1<<uint(d)) != 0
}

// List returns the days in the set, Monday first. It is empty for an
// unrestricted set.
func (w Weekdays) List() []time.Weekday {
	var out []time.Weekday
	for _, d := range letterDays {
		if w&(1<<uint(d)) != 0 {
			out = append(out, d)
		}
	}
	return out
}

func (w Weekdays) String() string {
	var sb strings.Builder
	for i, d := range letterDays {
		if w&(1<<uint(d)) != 0 {
			sb.WriteByte(WeekdayLetters[i])
		}
	}
	return sb.String()
}

// DailySchedule runs once per selected day. Without a start time the job runs
// at midnight.
type DailySchedule struct {
	StartTime    TimeOfDay
	HasStartTime bool
	Days         Weekdays
}

func (DailySchedule) Kind() ScheduleKind { return KindDaily }
func (DailySchedule) isSchedule()        {}

func (s DailySchedule) String() string {
	parts := []string{"daily"}
	if s.HasStartTime {
		parts = append(parts, s.StartTime.String())
	}
	if !s.Days.Unrestricted() {
		parts = append(parts, s.Days.String())
	}
	return strings.Join(parts, " ")
}

// ConstantSchedule relaunches a job as soon as its previous run completes.
type ConstantSchedule struct{}

func (ConstantSchedule) Kind() ScheduleKind { return KindConstant }
func (ConstantSchedule) isSchedule()        {}
func (ConstantSchedule) String() string     { return "constant" }

// CronSchedule runs on a standard five-field cron expression.
type CronSchedule struct {
	Expr string
	spec cron.Schedule
}

func NewCronSchedule(expr string, spec cron.Schedule) CronSchedule {
	return CronSchedule{Expr: expr, spec: spec}
}

func (CronSchedule) Kind() ScheduleKind { return KindCron }
func (CronSchedule) isSchedule()        {}
func (s CronSchedule) String() string   { return "cron " + s.Expr }

// Next returns the first activation after t.
func (s CronSchedule) Next(t time.Time) time.Time {
	if s.spec == nil {
		return time.Time{}
	}
	return s.spec.Next(t)
}
