package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Kalfadda/scythe/internal/settings"
	"github.com/Kalfadda/scythe/internal/state"
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage the current project root and output folder",
}

var projectSetRootCmd = &cobra.Command{
	Use:   "set-root <path>",
	Short: "Set the project root directory to scan",
	Args:  cobra.ExactArgs(1),
	RunE: withState(func(cmd *cobra.Command, args []string, app *state.AppState) error {
		if err := app.UpdateSettings(func(s *settings.Settings) { s.ProjectRoot = args[0] }); err != nil {
			return fmt.Errorf("update settings: %w", err)
		}
		return printJSON(app.Settings())
	}),
}

var projectSetOutputCmd = &cobra.Command{
	Use:   "set-output <path>",
	Short: "Set the default bundle-export output folder",
	Args:  cobra.ExactArgs(1),
	RunE: withState(func(cmd *cobra.Command, args []string, app *state.AppState) error {
		if err := app.UpdateSettings(func(s *settings.Settings) { s.OutputFolder = args[0] }); err != nil {
			return fmt.Errorf("update settings: %w", err)
		}
		return printJSON(app.Settings())
	}),
}

var projectCurrentCmd = &cobra.Command{
	Use:   "current",
	Short: "Show the project bound to the current root",
	RunE: withState(func(cmd *cobra.Command, args []string, app *state.AppState) error {
		project, err := resolveProject(cmd.Context(), app)
		if err != nil {
			return err
		}
		return printJSON(project)
	}),
}

func init() {
	rootCmd.AddCommand(projectCmd)
	projectCmd.AddCommand(projectSetRootCmd)
	projectCmd.AddCommand(projectSetOutputCmd)
	projectCmd.AddCommand(projectCurrentCmd)
}
