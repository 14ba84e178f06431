package main

import (
	"route-itinerary-service/internal/tui"

	"github.com/spf13/cobra"
)

var authorCmd = &cobra.Command{
	Use:   "author",
	Short: "Interactively build a new route stop by stop",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		return tui.RunAuthor(cmd.Context(), a.Drafts)
	},
}
