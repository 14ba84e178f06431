package main

import (
	"fmt"
	"os"
	"route-itinerary-service/internal/adapters/export"
	"time"

	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export <routeID>",
	Short: "Export a route's itinerary as an .ics calendar",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		routeID, err := parseRouteID(args[0])
		if err != nil {
			return err
		}
		dateText, _ := cmd.Flags().GetString("date")
		output, _ := cmd.Flags().GetString("output")

		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		date := time.Now().UTC().Add(time.Duration(a.Config.CivilOffset))
		if dateText != "" {
			if date, err = time.Parse(time.DateOnly, dateText); err != nil {
				return fmt.Errorf("--date must be YYYY-MM-DD: %w", err)
			}
		}

		it, err := a.Committer.Itinerary(cmd.Context(), routeID)
		if err != nil {
			return err
		}

		if output == "" {
			output = fmt.Sprintf("route-%d-%s.ics", routeID, date.Format("20060102"))
		}
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("create %s: %w", output, err)
		}
		defer f.Close()

		if err := export.WriteItineraryICS(it, date, f); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %d stops to %s\n", len(it.Stops), output)
		return nil
	},
}

func init() {
	exportCmd.Flags().String("date", "", "service date, YYYY-MM-DD (default today)")
	exportCmd.Flags().StringP("output", "o", "", "output file")
}
