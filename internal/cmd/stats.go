package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Kalfadda/scythe/internal/state"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Aggregate statistics over the catalog",
}

var statsTypesCmd = &cobra.Command{
	Use:   "types",
	Short: "Count assets in the current project by kind",
	RunE: withState(func(cmd *cobra.Command, args []string, app *state.AppState) error {
		project, err := resolveProject(cmd.Context(), app)
		if err != nil {
			return err
		}
		counts, err := app.Catalog.GetTypeCounts(cmd.Context(), project.ID)
		if err != nil {
			return err
		}
		return printJSON(counts)
	}),
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.AddCommand(statsTypesCmd)
}
