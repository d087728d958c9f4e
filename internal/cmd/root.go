// Package cmd is scythectl's Cobra command tree: one AppState per command
// invocation, opened lazily from ambient config, with subcommands mapping 1:1 onto
// spec.md §5's command surface. Structure grounded on internal/cmd/root.go's
// plain-rootCmd-plus-init()-registration pattern.
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Kalfadda/scythe/internal/catalog"
	"github.com/Kalfadda/scythe/internal/config"
	"github.com/Kalfadda/scythe/internal/orchestrator"
	"github.com/Kalfadda/scythe/internal/state"
)

var rootCmd = &cobra.Command{
	Use:   "scythectl",
	Short: "Catalog, resolve, and export game-asset dependencies",
	Long:  `scythectl indexes a game-engine asset tree, resolves its GUID-based dependency graph, and exports assets together with their transitive closure.`,
}

var logger zerolog.Logger

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
}

// withState lazily opens a fresh AppState for the duration of one command
// invocation and closes it on return, so every subcommand's RunE gets a
// ready *state.AppState without repeating the open/close boilerplate.
func withState(run func(cmd *cobra.Command, args []string, app *state.AppState) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		level := zerolog.InfoLevel
		if debug, _ := cmd.Flags().GetBool("debug"); debug {
			level = zerolog.DebugLevel
		} else if parsed, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
			level = parsed
		}
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
			Level(level).
			With().Timestamp().Logger()

		app, err := state.New(cfg.DBPath, cfg.SettingsPath, cfg.ThumbnailDir)
		if err != nil {
			return fmt.Errorf("initialize application state: %w", err)
		}
		defer app.Close()

		return run(cmd, args, app)
	}
}

// printJSON writes v to stdout as indented JSON, the one output format every
// subcommand uses, matching the command surface's "arguments and results are
// JSON-serialisable" contract.
func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

// printNDJSON writes v as a single compact JSON line, for the streaming
// subcommands (scan start, thumbnails regenerate) whose events form an
// NDJSON stream rather than a one-shot result.
func printNDJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

// resolveProject returns the project bound to the current settings root,
// creating the catalog entry on first use, matching get_current_project's
// auto-vivify behavior.
func resolveProject(ctx context.Context, app *state.AppState) (catalog.Project, error) {
	root := app.Settings().ProjectRoot
	if root == "" {
		return catalog.Project{}, fmt.Errorf("no project root set; run 'scythectl project set-root <path>' first")
	}
	return app.Catalog.GetOrCreateProject(ctx, root, orchestrator.ProjectDisplayName(root))
}
