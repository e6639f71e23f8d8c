package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"juaconnect-server/models"
)

// GormStore persists state as rows of the state_entries table through GORM.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore migrates the state_entries table and returns a store backed by db.
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&models.StateEntry{}); err != nil {
		return nil, fmt.Errorf("migrating state_entries: %w", err)
	}
	return &GormStore{db: db}, nil
}

func upsert(tx *gorm.DB, key string, value []byte, now time.Time) error {
	entry := models.StateEntry{Key: key, Value: value, UpdatedAt: now}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
}

func (s *GormStore) Save(ctx context.Context, key string, value []byte) error {
	if err := upsert(s.db.WithContext(ctx), key, value, time.Now().UTC()); err != nil {
		return fmt.Errorf("saving %s: %w", key, err)
	}
	return nil
}

func (s *GormStore) SaveMany(ctx context.Context, entries map[string][]byte) error {
	now := time.Now().UTC()
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for key, value := range entries {
			if err := upsert(tx, key, value, now); err != nil {
				return fmt.Errorf("saving %s: %w", key, err)
			}
		}
		return nil
	})
}

func (s *GormStore) Load(ctx context.Context, key string) ([]byte, bool, error) {
	var entry models.StateEntry
	err := s.db.WithContext(ctx).Where("key = ?", key).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("loading %s: %w", key, err)
	}
	return entry.Value, true, nil
}
