package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"kedoo/config"
	"kedoo/db"
	"kedoo/store"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/spf13/cobra"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Inspect the snapshot store",
	Long:  `Read every slot from the configured snapshot store and print its size, to verify the backend is reachable and holds data.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()
		fmt.Printf("Store backend: %s\n", cfg.StoreBackend)

		st := mustOpenStore(cfg)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		for _, slot := range store.Slots {
			value, ok, err := st.Load(ctx, slot)
			if err != nil {
				log.Fatalf("Failed to load slot %s: %v", slot, err)
			}
			if !ok {
				fmt.Printf("  %-16s (empty)\n", slot)
				continue
			}
			fmt.Printf("  %-16s %d bytes\n", slot, len(value))
		}
	},
}

func mustOpenStore(cfg *config.Config) store.Store {
	switch cfg.StoreBackend {
	case "memory":
		return store.NewMemoryStore()
	case "redis":
		if err := db.ConnectRedis(cfg); err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		return store.NewRedisStore(db.RedisClient)
	case "mysql":
		if err := db.ConnectGormDB(cfg); err != nil {
			log.Fatalf("Failed to connect to MySQL: %v", err)
		}
		st, err := store.NewMySQLStore(db.GormDB)
		if err != nil {
			log.Fatalf("Failed to initialize MySQL store: %v", err)
		}
		return st
	case "minio":
		client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
			Secure: cfg.MinioUseSSL,
			Region: cfg.MinioRegion,
		})
		if err != nil {
			log.Fatalf("Failed to create MinIO client: %v", err)
		}
		st, err := store.NewMinioStore(client, cfg.MinioBucket, cfg.MinioRegion)
		if err != nil {
			log.Fatalf("Failed to initialize MinIO store: %v", err)
		}
		return st
	default:
		log.Fatalf("Unknown store backend: %s", cfg.StoreBackend)
		return nil
	}
}

func init() {
	rootCmd.AddCommand(storeCmd)
}
