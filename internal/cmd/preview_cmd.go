package cmd

import (
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Kalfadda/scythe/internal/exporter"
	"github.com/Kalfadda/scythe/internal/preview"
	"github.com/Kalfadda/scythe/internal/resolver"
	"github.com/Kalfadda/scythe/internal/state"
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Inspect material/model metadata and thumbnail state for an asset",
}

var previewMaterialCmd = &cobra.Command{
	Use:   "material <asset-id>",
	Short: "Print a material asset's shader and texture-slot summary",
	Args:  cobra.ExactArgs(1),
	RunE: withState(func(cmd *cobra.Command, args []string, app *state.AppState) error {
		info, err := newPreview(app).GetMaterialInfo(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(info)
	}),
}

var previewModelCmd = &cobra.Command{
	Use:   "model <asset-id>",
	Short: "Print a model asset's geometry-count summary",
	Args:  cobra.ExactArgs(1),
	RunE: withState(func(cmd *cobra.Command, args []string, app *state.AppState) error {
		info, ok, err := newPreview(app).GetModelInfo(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if !ok {
			return errStr("no model parser for this asset's format")
		}
		return printJSON(info)
	}),
}

var previewThumbnailCmd = &cobra.Command{
	Use:   "thumbnail <asset-id>",
	Short: "Print an asset's thumbnail as a base64 data URI (or sentinel)",
	Args:  cobra.ExactArgs(1),
	RunE: withState(func(cmd *cobra.Command, args []string, app *state.AppState) error {
		thumb, ok, err := newPreview(app).GetThumbnail(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(map[string]any{"thumbnail": thumb, "available": ok})
	}),
}

var previewBundleDepth int

var previewBundleCmd = &cobra.Command{
	Use:   "bundle <asset-id>",
	Short: "Preview the size and membership of an asset's export bundle, without copying",
	Args:  cobra.ExactArgs(1),
	RunE: withState(func(cmd *cobra.Command, args []string, app *state.AppState) error {
		res := resolver.New(app.Catalog, logger)
		exp := exporter.New(app.Catalog, res, logger)
		bundlePreview, err := exp.GetBundlePreview(cmd.Context(), args[0], previewBundleDepth)
		if err != nil {
			return err
		}
		return printJSON(map[string]any{
			"root_asset":       bundlePreview.RootAsset,
			"dependencies":     bundlePreview.Dependencies,
			"total_size_bytes": bundlePreview.TotalSizeBytes,
			"total_size_human": humanize.Bytes(uint64(bundlePreview.TotalSizeBytes)),
		})
	}),
}

func newPreview(app *state.AppState) *preview.Coordinator {
	return preview.New(app.Catalog, logger)
}

func init() {
	rootCmd.AddCommand(previewCmd)
	previewCmd.AddCommand(previewMaterialCmd)
	previewCmd.AddCommand(previewModelCmd)
	previewCmd.AddCommand(previewThumbnailCmd)
	previewCmd.AddCommand(previewBundleCmd)
	previewBundleCmd.Flags().IntVar(&previewBundleDepth, "depth", exporter.DefaultDepth, "maximum dependency-closure depth")
}
