package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Kalfadda/scythe/internal/exporter"
	"github.com/Kalfadda/scythe/internal/resolver"
	"github.com/Kalfadda/scythe/internal/state"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export an asset, with or without its dependency closure",
}

var exportDepth int

var exportFileCmd = &cobra.Command{
	Use:   "file <asset-id> <dest-dir>",
	Short: "Copy a single asset (and its sidecar .meta) to dest-dir",
	Args:  cobra.ExactArgs(2),
	RunE: withState(func(cmd *cobra.Command, args []string, app *state.AppState) error {
		exp := newExporter(app)
		result := exp.ExportFile(cmd.Context(), args[0], args[1])
		return printExportResult(result)
	}),
}

var exportBundleCmd = &cobra.Command{
	Use:   "bundle <asset-id> <dest-dir>",
	Short: "Copy an asset plus its transitive dependency closure to dest-dir",
	Args:  cobra.ExactArgs(2),
	RunE: withState(func(cmd *cobra.Command, args []string, app *state.AppState) error {
		exp := newExporter(app)
		result := exp.ExportBundle(cmd.Context(), args[0], args[1], exportDepth)
		return printExportResult(result)
	}),
}

func printExportResult(result exporter.Result) error {
	if !result.Success {
		return result.Error
	}
	return printJSON(result)
}

func newExporter(app *state.AppState) *exporter.Exporter {
	res := resolver.New(app.Catalog, logger)
	return exporter.New(app.Catalog, res, logger)
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.AddCommand(exportFileCmd)
	exportCmd.AddCommand(exportBundleCmd)
	exportBundleCmd.Flags().IntVar(&exportDepth, "depth", exporter.DefaultDepth, "maximum dependency-closure depth")
}
