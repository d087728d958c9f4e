package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Kalfadda/scythe/internal/orchestrator"
	"github.com/Kalfadda/scythe/internal/state"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run or cancel the scan-and-resolve pipeline",
}

var scanStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Scan the current project root, emitting NDJSON progress events",
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

		orch := orchestrator.New(app.Catalog, logger)
		events, done, started := orch.StartBackground(context.Background(), app, project, app.Settings())
		if !started {
			return errScanAlreadyRunning
		}

		for ev := range events {
			if err := printNDJSON(ev); err != nil {
				return err
			}
		}
		return <-done
	}),
}

var scanCancelCmd = &cobra.Command{
	Use:   "cancel",
	Short: "Request cancellation of the in-progress scan",
	RunE: withState(func(cmd *cobra.Command, args []string, app *state.AppState) error {
		app.RequestCancel()
		return printJSON(map[string]bool{"cancelled": true})
	}),
}

var errScanAlreadyRunning = errScan("a scan is already running")

type errScan string

func (e errScan) Error() string { return string(e) }

func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.AddCommand(scanStartCmd)
	scanCmd.AddCommand(scanCancelCmd)
}
