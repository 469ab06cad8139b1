package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/sourceplane/jobconf/internal/schedule"
	"github.com/spf13/cobra"
)

var (
	scheduleNext int
	scheduleTZ   string
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule <expression>",
	Short: "Parse a schedule expression and show its next runs",
	Example: `  jobconf schedule "interval 20s"
  jobconf schedule "daily 00:30:00 MWF" --next 5
  jobconf schedule "cron */15 * * * *" --tz Europe/Berlin`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return showSchedule(strings.Join(args, " "))
	},
}

func registerScheduleCommand(root *cobra.Command) {
	root.AddCommand(scheduleCmd)

	scheduleCmd.Flags().IntVarP(&scheduleNext, "next", "n", 3, "Number of upcoming runs to show")
	scheduleCmd.Flags().StringVar(&scheduleTZ, "tz", "", "Time zone for upcoming runs (default local)")
}

func showSchedule(expr string) error {
	sched, err := schedule.Parse(expr)
	if err != nil {
		return err
	}

	loc := time.Local
	if scheduleTZ != "" {
		if loc, err = time.LoadLocation(scheduleTZ); err != nil {
			return fmt.Errorf("unknown time zone %q: %w", scheduleTZ, err)
		}
	}

	fmt.Printf("✓ %s (%s)\n", sched, sched.Kind())
	runs := schedule.Upcoming(sched, time.Now().In(loc), scheduleNext)
	if len(runs) == 0 && scheduleNext > 0 {
		fmt.Println("  runs continuously, relaunched as soon as it completes")
	}
	for _, t := range runs {
		fmt.Printf("  %s\n", t.Format("Mon 2006-01-02 15:04:05 MST"))
	}
	return nil
}
