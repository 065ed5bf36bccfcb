package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StoreSlot is the GORM model for a persisted slot.
type StoreSlot struct {
	Name  string `gorm:"primaryKey;size:100"`
	Value string `gorm:"type:longtext"`
}

// TableName keeps the table name stable regardless of GORM pluralization.
func (StoreSlot) TableName() string {
	return "store_slots"
}

// MySQLStore keeps each slot in a row of the store_slots table.
type MySQLStore struct {
	db *gorm.DB
}

// NewMySQLStore wraps an already-connected GORM handle and ensures the
// slots table exists.
func NewMySQLStore(db *gorm.DB) (*MySQLStore, error) {
	if err := db.AutoMigrate(&StoreSlot{}); err != nil {
		return nil, fmt.Errorf("failed to migrate store_slots table: %w", err)
	}
	return &MySQLStore{db: db}, nil
}

func (s *MySQLStore) Load(ctx context.Context, slot string) (string, bool, error) {
	var row StoreSlot
	err := s.db.WithContext(ctx).First(&row, "name = ?", slot).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to load slot %s from MySQL: %w", slot, err)
	}
	return row.Value, true, nil
}

func (s *MySQLStore) Save(ctx context.Context, slot, value string) error {
	row := StoreSlot{Name: slot, Value: value}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to save slot %s to MySQL: %w", slot, err)
	}
	return nil
}
