package db

import (
	"database/sql"
	"fmt"
	"log"

	"kedoo/config"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
)

var DB *sql.DB

// ConnectDB establishes the raw database/sql connection used by the
// repository layer (the snapshot store uses GORM separately).
func ConnectDB(cfg *config.Config) error {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)

	var err error
	DB, err = sql.Open("mysql", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}

	if err = DB.Ping(); err != nil {
		DB.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("Successfully connected to the database.")
	return nil
}

// CloseDB closes the raw connection if one was opened.
func CloseDB() error {
	if DB == nil {
		return nil
	}
	return DB.Close()
}

// InitDB creates the tables the repository layer needs.
func InitDB() error {
	if err := createAuditTable(); err != nil {
		return err
	}
	log.Println("Database initialization completed.")
	return nil
}

func createAuditTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS moderation_audit (
		id VARCHAR(36) PRIMARY KEY,
		moderator_id VARCHAR(36) NOT NULL,
		release_id VARCHAR(36) NOT NULL,
		verdict VARCHAR(20) NOT NULL,
		reason TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		INDEX idx_release (release_id),
		INDEX idx_created (created_at)
	);
	`
	_, err := DB.Exec(query)
	if err != nil {
		return fmt.Errorf("failed to create moderation_audit table: %w", err)
	}
	return nil
}
