package main

import (
	"fmt"
	"route-itinerary-service/internal/domain"
	"route-itinerary-service/internal/tui"

	"github.com/charmbracelet/huh/spinner"
	"github.com/spf13/cobra"
)

var itineraryCmd = &cobra.Command{
	Use:   "itinerary <routeID>",
	Short: "Show a persisted route's stops in distance order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		routeID, err := parseRouteID(args[0])
		if err != nil {
			return err
		}

		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		var it domain.Itinerary
		var fetchErr error
		_ = spinner.New().
			Title(fmt.Sprintf("Fetching route %d...", routeID)).
			Action(func() {
				it, fetchErr = a.Committer.Itinerary(cmd.Context(), routeID)
			}).
			Run()
		if fetchErr != nil {
			return fetchErr
		}

		fmt.Fprint(cmd.OutOrStdout(), tui.RenderItinerary(it))
		return nil
	},
}
