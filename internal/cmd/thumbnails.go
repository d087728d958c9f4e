package cmd

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Kalfadda/scythe/internal/preview"
	"github.com/Kalfadda/scythe/internal/state"
)

var thumbnailsCmd = &cobra.Command{
	Use:   "thumbnails",
	Short: "Manage thumbnail generation for the current project",
}

var thumbnailsRegenerateCmd = &cobra.Command{
	Use:   "regenerate",
	Short: "(Re)generate thumbnails for textures and materials missing one, emitting NDJSON progress events",
	RunE: withState(func(cmd *cobra.Command, args []string, app *state.AppState) error {
		project, err := resolveProject(cmd.Context(), app)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		go func() {
			<-ctx.Done()
			app.RequestCancel()
		}()
		app.ResetCancel()

		co := preview.New(app.Catalog, logger)
		settings := app.Settings()
		events, done := co.RegenerateThumbnails(ctx, project.ID, app.ThumbnailDir, settings.ThumbnailSize, &app.Cancel)

		for ev := range events {
			if err := printNDJSON(ev); err != nil {
				return err
			}
		}
		return <-done
	}),
}

func init() {
	rootCmd.AddCommand(thumbnailsCmd)
	thumbnailsCmd.AddCommand(thumbnailsRegenerateCmd)
}
