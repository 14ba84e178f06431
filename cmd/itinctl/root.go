package main

import (
	"fmt"
	"route-itinerary-service/internal/app"
	"route-itinerary-service/internal/config"
	"route-itinerary-service/internal/domain"
	"strconv"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "itinctl",
	Short: "Author, inspect and export bus route itineraries",
	Long: `itinctl works against the same operator backend as the console.
Configuration is read from the environment and .env, as for the server.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(deltaCmd, itineraryCmd, exportCmd, commitCmd, authorCmd)
}

// openApp loads configuration and wires the adapters for one command run.
func openApp() (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return app.New(cfg)
}

func parseRouteID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("route id must be a positive integer, got %q", s)
	}
	return id, nil
}

func offsetFlag(cmd *cobra.Command) (domain.CivilOffset, error) {
	v, _ := cmd.Flags().GetString("offset")
	if v == "" {
		v = config.Get("CIVIL_OFFSET", domain.DefaultCivilOffset.String())
	}
	return domain.ParseCivilOffset(v)
}
