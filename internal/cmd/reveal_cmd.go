package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Kalfadda/scythe/internal/reveal"
)

var revealCmd = &cobra.Command{
	Use:   "reveal <path>",
	Short: "Reveal a file in the host OS's file manager",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := reveal.InExplorer(args[0]); err != nil {
			return err
		}
		return printJSON(map[string]bool{"revealed": true})
	},
}

func init() {
	rootCmd.AddCommand(revealCmd)
}
