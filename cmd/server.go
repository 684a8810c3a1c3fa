package cmd

import (
	"riseup/server"

	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the RiseUp Creators API server",
	Long:  `Start the HTTP server that serves the RiseUp Creators REST API.`,
	Run: func(cmd *cobra.Command, args []string) {
		server.Start()
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
