// Command doctreedemo is a small illustrative host for the doctree engine:
// it builds a fixture document in memory and prints it, either as a
// colorized tree dump or as a flat inspection table. It is not a service
// and holds no state between invocations - persistence and transport are
// the embedding host's job, not the engine's.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/go-crdt/doctree/cmd/doctreedemo/commands"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "doctreedemo",
		Short: "Demo CLI for the doctree collaborative document engine",
	}

	rootCmd.AddCommand(commands.NewBuildCommand())
	rootCmd.AddCommand(commands.NewInspectCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "doctreedemo: %v\n", err)
		os.Exit(1)
	}
}
