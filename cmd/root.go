package cmd

import (
	"fmt"
	"log"
	"os"

	"kedoo/server"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "kedoo_server",
	Short: "kedoo is a music release submission and moderation service.",
	Run: func(cmd *cobra.Command, args []string) {
		log.Println("Starting kedoo server...")
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
