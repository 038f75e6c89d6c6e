package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "wordmetrics",
		Short: "Turn annotated statements into per-statement and per-identity tactic metrics",
	}

	rootCmd.AddCommand(
		newProcessCmd(),
		newColumnsCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
