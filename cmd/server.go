package cmd

import (
	"kedoo/server"

	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the kedoo server",
	Long:  `Start the kedoo HTTP server: release submission, moderation queue, support tickets and the admin event feed.`,
	Run: func(cmd *cobra.Command, args []string) {
		server.Start()
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
