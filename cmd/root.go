package cmd

import (
	"fmt"
	"os"

	"riseup/server"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "riseup_server",
	Short: "RiseUp Creators is a music streaming and creator marketplace service.",
	Run: func(cmd *cobra.Command, args []string) {
		server.Start()
	},
}

// Execute executes the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
