package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Kalfadda/scythe/internal/state"
)

var depsCmd = &cobra.Command{
	Use:   "deps",
	Short: "Inspect an asset's dependency edges",
}

var depsListCmd = &cobra.Command{
	Use:   "list <asset-id>",
	Short: "List the outgoing dependencies of an asset",
	Args:  cobra.ExactArgs(1),
	RunE: withState(func(cmd *cobra.Command, args []string, app *state.AppState) error {
		deps, err := app.Catalog.GetDependencies(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(deps)
	}),
}

var depsDependentsCmd = &cobra.Command{
	Use:   "dependents <asset-id>",
	Short: "List the assets that depend on an asset",
	Args:  cobra.ExactArgs(1),
	RunE: withState(func(cmd *cobra.Command, args []string, app *state.AppState) error {
		deps, err := app.Catalog.GetDependents(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(deps)
	}),
}

func init() {
	rootCmd.AddCommand(depsCmd)
	depsCmd.AddCommand(depsListCmd)
	depsCmd.AddCommand(depsDependentsCmd)
}
