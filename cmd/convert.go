package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"timecircuits/internal/timecodec"
)

var dateLayouts = []string{"2006-01-02T15:04", "2006-01-02 15:04", "2006-01-02"}

// newConvertCmd converts between calendar dates and epoch minutes, which is
// handy when reading stored offsets.
func newConvertCmd() *cobra.Command {
	var fromMinutes bool

	cmd := &cobra.Command{
		Use:   "convert <date|minutes>",
		Short: "Convert a date to epoch minutes, or back with --minutes",
		Example: `  timecircuits convert "1985-10-26 01:21"
  timecircuits convert --minutes 1043912241`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if fromMinutes {
				m, err := strconv.ParseUint(args[0], 10, 64)
				if err != nil {
					return fmt.Errorf("minutes: %w", err)
				}
				if timecodec.EpochMinutes(m) > timecodec.MaxMinutes {
					return fmt.Errorf("minutes must be at most %d", timecodec.MaxMinutes)
				}
				cal := timecodec.ToCalendar(timecodec.EpochMinutes(m))
				fmt.Fprintf(cmd.OutOrStdout(), "%s (weekday %d)\n", cal, timecodec.Weekday(cal.Year, cal.Month, cal.Day))
				return nil
			}

			cal, err := parseCalendar(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), timecodec.CalendarMinutes(cal))
			return nil
		},
	}
	cmd.Flags().BoolVar(&fromMinutes, "minutes", false, "treat the argument as epoch minutes")
	return cmd
}

func parseCalendar(s string) (timecodec.Calendar, error) {
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		if t.Year() < timecodec.MinYear {
			return timecodec.Calendar{}, fmt.Errorf("year must be at least %d", timecodec.MinYear)
		}
		return timecodec.Calendar{Year: t.Year(), Month: int(t.Month()), Day: t.Day(), Hour: t.Hour(), Minute: t.Minute()}, nil
	}
	return timecodec.Calendar{}, fmt.Errorf("invalid date %q, use YYYY-MM-DD[ HH:MM]", s)
}
