package main

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use: "memsim",
	Short: "memsim simulates the timing of a multi-core memory hierarchy " +
		"with TLBs, coherent caches, and main memory.",
	Long: `memsim simulates the timing of a multi-core memory hierarchy. ` +
		`Each core owns an ITLB, a DTLB, and two L1 caches over a shared ` +
		`inclusive L2 kept coherent with a MESI directory. A synthetic ` +
		`access stream drives the hierarchy and the collected statistics ` +
		`are recorded to a database.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
