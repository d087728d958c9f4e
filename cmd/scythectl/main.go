// Command scythectl is the CLI entry point for the asset cataloging and
// dependency-export tool.
package main

import (
	"fmt"
	"os"

	"github.com/Kalfadda/scythe/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
