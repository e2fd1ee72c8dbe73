package main

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "vmsim",
	Short: "Vmsim simulates demand-paged virtual memory translation.",
	Long: `Vmsim replays recorded address streams through a simulated ` +
		`translation stack with a TLB, a page table, and a bounded frame ` +
		`pool, and validates every access against a reference oracle.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
