package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/Kalfadda/scythe/internal/catalog"
	"github.com/Kalfadda/scythe/internal/state"
)

var assetsCmd = &cobra.Command{
	Use:   "assets",
	Short: "List and inspect catalog assets",
}

var (
	assetsSearch   string
	assetsKinds    string
	assetsPage     int
	assetsPageSize int
)

var assetsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List assets in the current project, optionally filtered by search/kind",
	RunE: withState(func(cmd *cobra.Command, args []string, app *state.AppState) error {
		project, err := resolveProject(cmd.Context(), app)
		if err != nil {
			return err
		}

		var kinds []catalog.AssetKind
		if assetsKinds != "" {
			for _, k := range strings.Split(assetsKinds, ",") {
				kinds = append(kinds, catalog.AssetKind(strings.TrimSpace(k)))
			}
		}

		page, err := app.Catalog.GetAssets(cmd.Context(), project.ID, assetsSearch, kinds, assetsPage, assetsPageSize)
		if err != nil {
			return err
		}
		return printJSON(page)
	}),
}

var assetsGetCmd = &cobra.Command{
	Use:   "get <asset-id>",
	Short: "Fetch a single asset by id",
	Args:  cobra.ExactArgs(1),
	RunE: withState(func(cmd *cobra.Command, args []string, app *state.AppState) error {
		a, ok, err := app.Catalog.GetAsset(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if !ok {
			return errAssetNotFound
		}
		return printJSON(a)
	}),
}

type errStr string

func (e errStr) Error() string { return string(e) }

var errAssetNotFound = errStr("asset not found")

func init() {
	rootCmd.AddCommand(assetsCmd)
	assetsCmd.AddCommand(assetsListCmd)
	assetsCmd.AddCommand(assetsGetCmd)

	assetsListCmd.Flags().StringVar(&assetsSearch, "search", "", "FTS prefix search over file name/relative path")
	assetsListCmd.Flags().StringVar(&assetsKinds, "kinds", "", "comma-separated asset kinds to filter by")
	assetsListCmd.Flags().IntVar(&assetsPage, "page", 1, "page number, 1-indexed")
	assetsListCmd.Flags().IntVar(&assetsPageSize, "page-size", 50, "results per page")
}
