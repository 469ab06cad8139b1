// Package schedule parses the recurrence mini-language used by job
// definitions:
//
//	interval 20s | interval 5 minutes | every 1h
//	daily [HH:MM[:SS]] [MTWRFSU]
//	constant
//	cron <minute> <hour> <day-of-month> <month> <day-of-week>
//
// Keywords are case-insensitive.
package schedule

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron"
	"github.com/sourceplane/jobconf/internal/model"
)

// parseFunc parses the tokens that follow a keyword.
type parseFunc func(raw string, args []string) (model.Schedule, error)

var parsers = map[string]parseFunc{
	"interval": parseInterval,
	"every":    parseInterval,
	"daily":    parseDaily,
	"constant": parseConstant,
	"cron":     parseCron,
}

// Parse returns the schedule described by s. Errors are ConfigErrors that
// quote s.
func Parse(s string) (model.Schedule, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return nil, model.Errorf("", "schedule is empty")
	}
	parse, ok := parsers[strings.ToLower(fields[0])]
	if !ok {
		return nil, model.Errorf("", "unknown schedule type %q in %q", fields[0], s)
	}
	return parse(s, fields[1:])
}

var intervalRegex = regexp.MustCompile(`^(\d+)\s*([a-zA-Z]+)$`)

var intervalUnits = map[string]time.Duration{
	"s": time.Second, "sec": time.Second, "secs": time.Second, "second": time.Second, "seconds": time.Second,
	"m": time.Minute, "min": time.Minute, "mins": time.Minute, "minute": time.Minute, "minutes": time.Minute,
	"h": time.Hour, "hr": time.Hour, "hrs": time.Hour, "hour": time.Hour, "hours": time.Hour,
	"d": 24 * time.Hour, "day": 24 * time.Hour, "days": 24 * time.Hour,
}

func parseInterval(raw string, args []string) (model.Schedule, error) {
	if len(args) == 0 {
		return nil, model.Errorf("", "interval schedule %q is missing a period", raw)
	}
	if len(args) > 2 {
		return nil, model.Errorf("", "unexpected trailing input in schedule %q", raw)
	}
	matches := intervalRegex.FindStringSubmatch(strings.Join(args, " "))
	if matches == nil {
		return nil, model.Errorf("", "invalid interval period in schedule %q", raw)
	}
	n, err := strconv.ParseInt(matches[1], 10, 64)
	if err != nil || n <= 0 {
		return nil, model.Errorf("", "interval in schedule %q must be a positive number", raw)
	}
	unit, ok := intervalUnits[strings.ToLower(matches[2])]
	if !ok {
		return nil, model.Errorf("", "unknown interval unit %q in schedule %q", matches[2], raw)
	}
	if n > int64((1<<63-1)/unit) {
		return nil, model.Errorf("", "interval in schedule %q is too large", raw)
	}
	return model.IntervalSchedule{Period: time.Duration(n) * unit}, nil
}

var timeOfDayRegex = regexp.MustCompile(`^(\d{1,2}):(\d{2})(?::(\d{2}))?$`)

func parseDaily(raw string, args []string) (model.Schedule, error) {
	sched := model.DailySchedule{}
	rest := args
	if len(rest) > 0 && strings.Contains(rest[0], ":") {
		t, err := parseTimeOfDay(raw, rest[0])
		if err != nil {
			return nil, err
		}
		sched.StartTime = t
		sched.HasStartTime = true
		rest = rest[1:]
	}
	if len(rest) > 0 {
		days, err := parseDays(raw, rest[0])
		if err != nil {
			return nil, err
		}
		sched.Days = days
		rest = rest[1:]
	}
	if len(rest) > 0 {
		return nil, model.Errorf("", "unexpected trailing input %q in schedule %q", strings.Join(rest, " "), raw)
	}
	return sched, nil
}

func parseTimeOfDay(raw, token string) (model.TimeOfDay, error) {
	matches := timeOfDayRegex.FindStringSubmatch(token)
	if matches == nil {
		return model.TimeOfDay{}, model.Errorf("", "invalid start time %q in schedule %q", token, raw)
	}
	hour, _ := strconv.Atoi(matches[1])
	minute, _ := strconv.Atoi(matches[2])
	second := 0
	if matches[3] != "" {
		second, _ = strconv.Atoi(matches[3])
	}
	if hour > 23 || minute > 59 || second > 59 {
		return model.TimeOfDay{}, model.Errorf("", "start time %q out of range in schedule %q", token, raw)
	}
	return model.TimeOfDay{Hour: hour, Minute: minute, Second: second}, nil
}

func parseDays(raw, token string) (model.Weekdays, error) {
	var days model.Weekdays
	for _, r := range strings.ToUpper(token) {
		day, ok := model.WeekdayForLetter(r)
		if !ok {
			return 0, model.Errorf("", "invalid day %q in schedule %q (expected letters from %s)", string(r), raw, model.WeekdayLetters)
		}
		bit := model.NewWeekdays(day)
		if days&bit != 0 {
			return 0, model.Errorf("", "day %q repeated in schedule %q", string(r), raw)
		}
		days |= bit
	}
	return days, nil
}

func parseConstant(raw string, args []string) (model.Schedule, error) {
	if len(args) > 0 {
		return nil, model.Errorf("", "unexpected trailing input %q in schedule %q", strings.Join(args, " "), raw)
	}
	return model.ConstantSchedule{}, nil
}

func parseCron(raw string, args []string) (model.Schedule, error) {
	if len(args) == 0 {
		return nil, model.Errorf("", "cron schedule %q is missing an expression", raw)
	}
	expr := strings.Join(args, " ")
	spec, err := cron.ParseStandard(expr)
	if err != nil {
		return nil, model.Wrap("", err, "invalid cron expression in schedule "+strconv.Quote(raw))
	}
	return model.NewCronSchedule(expr, spec), nil
}
