package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Kalfadda/scythe/internal/state"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Inspect persisted application settings",
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current settings.json contents",
	RunE: withState(func(cmd *cobra.Command, args []string, app *state.AppState) error {
		return printJSON(app.Settings())
	}),
}

func init() {
	rootCmd.AddCommand(settingsCmd)
	settingsCmd.AddCommand(settingsShowCmd)
}
