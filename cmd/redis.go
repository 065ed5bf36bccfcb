package cmd

import (
	"fmt"
	"log"

	"kedoo/config"
	"kedoo/db"

	"github.com/spf13/cobra"
)

var redisCmd = &cobra.Command{
	Use:   "redis",
	Short: "Test the Redis connection",
	Long:  `Check that Redis is reachable with the configured credentials and run a basic set/get/del round trip.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("Testing Redis connection...")

		cfg := config.Load()
		fmt.Printf("Redis config: %s:%s, DB: %d\n", cfg.RedisHost, cfg.RedisPort, cfg.RedisDB)

		if err := db.ConnectRedis(cfg); err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		fmt.Println("Redis connection successful.")

		if err := db.TestRedis(); err != nil {
			log.Fatalf("Redis operation test failed: %v", err)
		}
		fmt.Println("Redis basic operations OK.")

		if err := db.CloseRedis(); err != nil {
			log.Printf("Error closing Redis connection: %v", err)
		}
		fmt.Println("Redis test finished, connection closed.")
	},
}

func init() {
	rootCmd.AddCommand(redisCmd)
}
