package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "agency",
	Short: "Recruitment agency funnel service",
	Long:  "Backend for the recruitment agency funnel: payment sessions, manual payment review, and submission relay jobs.",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
