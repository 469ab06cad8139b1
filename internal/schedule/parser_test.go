package schedule

import (
	"testing"
	"time"

	"github.com/sourceplane/jobconf/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		name      string
		input     string
		expectErr string
		expected  model.Schedule
	}{
		{
			name:     "interval seconds",
			input:    "interval 20s",
			expected: model.IntervalSchedule{Period: 20 * time.Second},
		},
		{
			name:     "interval with long unit and space",
			input:    "interval 5 minutes",
			expected: model.IntervalSchedule{Period: 5 * time.Minute},
		},
		{
			name:     "every is an interval",
			input:    "every 2h",
			expected: model.IntervalSchedule{Period: 2 * time.Hour},
		},
		{
			name:     "interval days",
			input:    "interval 1d",
			expected: model.IntervalSchedule{Period: 24 * time.Hour},
		},
		{
			name:     "keyword is case-insensitive",
			input:    "INTERVAL 20S",
			expected: model.IntervalSchedule{Period: 20 * time.Second},
		},
		{
			name:  "daily with time and days",
			input: "daily 00:30:00 MWF",
			expected: model.DailySchedule{
				StartTime:    model.TimeOfDay{Hour: 0, Minute: 30},
				HasStartTime: true,
				Days:         model.NewWeekdays(time.Monday, time.Wednesday, time.Friday),
			},
		},
		{
			name:  "daily with time only",
			input: "daily 16:30:00",
			expected: model.DailySchedule{
				StartTime:    model.TimeOfDay{Hour: 16, Minute: 30},
				HasStartTime: true,
			},
		},
		{
			name:     "daily bare",
			input:    "daily",
			expected: model.DailySchedule{},
		},
		{
			name:     "daily with days only",
			input:    "daily su",
			expected: model.DailySchedule{Days: model.NewWeekdays(time.Saturday, time.Sunday)},
		},
		{
			name:  "daily with hours and minutes",
			input: "daily 7:05",
			expected: model.DailySchedule{
				StartTime:    model.TimeOfDay{Hour: 7, Minute: 5},
				HasStartTime: true,
			},
		},
		{
			name:     "constant",
			input:    "constant",
			expected: model.ConstantSchedule{},
		},
		{
			name:     "surrounding whitespace",
			input:    "  constant  ",
			expected: model.ConstantSchedule{},
		},
		{
			name:      "error - empty",
			input:     "",
			expectErr: "schedule is empty",
		},
		{
			name:      "error - unknown keyword",
			input:     "hourly 5",
			expectErr: `unknown schedule type "hourly"`,
		},
		{
			name:      "error - interval without period",
			input:     "interval",
			expectErr: "missing a period",
		},
		{
			name:      "error - interval non-numeric",
			input:     "interval xs",
			expectErr: "invalid interval period",
		},
		{
			name:      "error - interval unknown unit",
			input:     "interval 20y",
			expectErr: `unknown interval unit "y"`,
		},
		{
			name:      "error - interval zero",
			input:     "interval 0s",
			expectErr: "must be a positive number",
		},
		{
			name:      "error - interval trailing garbage",
			input:     "interval 20 s now",
			expectErr: "unexpected trailing input",
		},
		{
			name:      "error - interval digits split across tokens",
			input:     "interval 2 0s",
			expectErr: "invalid interval period",
		},
		{
			name:      "error - interval number split from unit number",
			input:     "interval 12 34m",
			expectErr: "invalid interval period",
		},
		{
			name:      "error - daily bad time",
			input:     "daily 25:00:00",
			expectErr: "out of range",
		},
		{
			name:      "error - daily malformed time",
			input:     "daily 12:3x",
			expectErr: "invalid start time",
		},
		{
			name:      "error - daily invalid day letter",
			input:     "daily MXF",
			expectErr: `invalid day "X"`,
		},
		{
			name:      "error - daily duplicate day",
			input:     "daily MWM",
			expectErr: `day "M" repeated`,
		},
		{
			name:      "error - daily trailing garbage",
			input:     "daily 00:30:00 MWF extra",
			expectErr: `unexpected trailing input "extra"`,
		},
		{
			name:      "error - constant with arguments",
			input:     "constant 5s",
			expectErr: "unexpected trailing input",
		},
		{
			name:      "error - cron without expression",
			input:     "cron",
			expectErr: "missing an expression",
		},
		{
			name:      "error - cron malformed",
			input:     "cron 61 * * * *",
			expectErr: "invalid cron expression",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			sched, err := Parse(tc.input)

			if tc.expectErr != "" {
				require.Error(t, err)
				assert.True(t, model.IsConfigError(err))
				assert.Contains(t, err.Error(), tc.expectErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.expected, sched)
		})
	}
}

func TestParseErrorNamesInput(t *testing.T) {
	_, err := Parse("daily 99:99")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"daily 99:99"`)
}

func TestParseCron(t *testing.T) {
	sched, err := Parse("cron */15 * * * *")
	require.NoError(t, err)

	c, ok := sched.(model.CronSchedule)
	require.True(t, ok, "expected a cron schedule, got %T", sched)
	assert.Equal(t, "*/15 * * * *", c.Expr)
	assert.Equal(t, model.KindCron, c.Kind())

	from := time.Date(2024, 3, 1, 10, 7, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 3, 1, 10, 15, 0, 0, time.UTC), c.Next(from))
}

func TestParseIsDeterministic(t *testing.T) {
	for _, input := range []string{"interval 20s", "daily 00:30:00 MWF", "constant", "daily 7"} {
		first, firstErr := Parse(input)
		second, secondErr := Parse(input)
		assert.Equal(t, first, second, input)
		assert.Equal(t, firstErr, secondErr, input)
	}
}

func TestScheduleStringRoundTrip(t *testing.T) {
	for _, input := range []string{"interval 20s", "interval 5m", "daily 00:30:00 MWF", "daily 16:30:00", "daily", "constant", "cron 0 3 * * 1"} {
		sched, err := Parse(input)
		require.NoError(t, err, input)
		assert.Equal(t, input, sched.String())

		again, err := Parse(sched.String())
		require.NoError(t, err, input)
		assert.Equal(t, sched.String(), again.String())
	}
}

func TestNext(t *testing.T) {
	// A Wednesday.
	from := time.Date(2024, 3, 6, 12, 0, 0, 0, time.UTC)

	testCases := []struct {
		name     string
		input    string
		expected time.Time
		ok       bool
	}{
		{
			name:     "interval",
			input:    "interval 20s",
			expected: from.Add(20 * time.Second),
			ok:       true,
		},
		{
			name:     "daily later today",
			input:    "daily 16:30:00",
			expected: time.Date(2024, 3, 6, 16, 30, 0, 0, time.UTC),
			ok:       true,
		},
		{
			name:     "daily already passed today",
			input:    "daily 00:30:00",
			expected: time.Date(2024, 3, 7, 0, 30, 0, 0, time.UTC),
			ok:       true,
		},
		{
			name:     "daily restricted to friday",
			input:    "daily 00:30:00 F",
			expected: time.Date(2024, 3, 8, 0, 30, 0, 0, time.UTC),
			ok:       true,
		},
		{
			name:     "daily wraps to next week",
			input:    "daily 09:00 W",
			expected: time.Date(2024, 3, 13, 9, 0, 0, 0, time.UTC),
			ok:       true,
		},
		{
			name:  "constant has no run times",
			input: "constant",
			ok:    false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			sched, err := Parse(tc.input)
			require.NoError(t, err)

			next, ok := Next(sched, from)
			require.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.Equal(t, tc.expected, next)
			}
		})
	}
}

func TestUpcoming(t *testing.T) {
	sched, err := Parse("interval 1h")
	require.NoError(t, err)

	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	runs := Upcoming(sched, from, 3)
	require.Len(t, runs, 3)
	assert.Equal(t, from.Add(3*time.Hour), runs[2])

	assert.Empty(t, Upcoming(model.ConstantSchedule{}, from, 3))
}
