package main

import (
	"fmt"
	"route-itinerary-service/internal/adapters/drafts"
	"route-itinerary-service/internal/tui"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var commitCmd = &cobra.Command{
	Use:   "commit",
	Short: "Validate a draft file and create its route on the backend",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("file")
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		d, err := drafts.LoadDraftFile(path, uuid.NewString(), a.Config.CivilOffset)
		if err != nil {
			return err
		}
		if err := d.CheckCommittable(); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprint(out, tui.RenderDraft(d))
		if dryRun {
			return nil
		}

		rec, err := a.Committer.Commit(cmd.Context(), d)
		if rec != nil {
			fmt.Fprint(out, tui.RenderCommit(rec))
		}
		return err
	},
}

func init() {
	commitCmd.Flags().StringP("file", "f", "", "draft JSON file")
	commitCmd.Flags().Bool("dry-run", false, "validate and print the draft without committing")
	_ = commitCmd.MarkFlagRequired("file")
}
