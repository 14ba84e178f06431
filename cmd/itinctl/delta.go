package main

import (
	"fmt"
	"route-itinerary-service/internal/domain"

	"github.com/spf13/cobra"
)

var deltaCmd = &cobra.Command{
	Use:   "delta",
	Short: "Convert a stop time into seconds after the route start",
	Example: `  itinctl delta --start "06:00 AM" --time "07:15 AM"
  itinctl delta --start "11:00 PM" --time "12:30 AM" --day 1 --offset +05:30`,
	RunE: func(cmd *cobra.Command, args []string) error {
		startText, _ := cmd.Flags().GetString("start")
		stopText, _ := cmd.Flags().GetString("time")
		day, _ := cmd.Flags().GetInt("day")

		offset, err := offsetFlag(cmd)
		if err != nil {
			return err
		}

		startCivil, err := domain.ParseCivilTime(startText, 0)
		if err != nil {
			return fmt.Errorf("--start: %w", err)
		}
		stopCivil, err := domain.ParseCivilTime(stopText, day)
		if err != nil {
			return fmt.Errorf("--time: %w", err)
		}

		start := domain.StartInstant(startCivil, offset)
		stop := domain.ToInstant(stopCivil, offset)
		delta := domain.Delta(start, stop)

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "start         %s  (starting_time %s)\n", startCivil, domain.FormatStartingTime(start))
		fmt.Fprintf(out, "stop          %s\n", stopCivil)
		fmt.Fprintf(out, "delta         %d s\n", delta)
		if stop.Before(start) {
			fmt.Fprintln(out, "note          stop is before start; the delta was clamped to 0")
		}
		return nil
	},
}

func init() {
	deltaCmd.Flags().String("start", "", "route starting time, e.g. \"06:00 AM\"")
	deltaCmd.Flags().String("time", "", "stop arrival or departure time")
	deltaCmd.Flags().Int("day", 0, "civil days after the start day")
	deltaCmd.Flags().String("offset", "", "civil UTC offset (default from CIVIL_OFFSET or +05:30)")
	_ = deltaCmd.MarkFlagRequired("start")
	_ = deltaCmd.MarkFlagRequired("time")
}
