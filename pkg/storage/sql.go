package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// KVRecord represents one stored key-value document in the database
type KVRecord struct {
	ID    uint   `gorm:"primaryKey;autoIncrement"`
	Key   string `gorm:"column:record_key;uniqueIndex;not null;size:191"`
	Value string `gorm:"column:record_value;type:text"`
}

// TableName sets the table name for GORM
func (KVRecord) TableName() string {
	return "kv_records"
}

// SQLStore persists key-value records in MySQL using GORM
type SQLStore struct {
	db *gorm.DB
}

// NewSQLStore creates a new SQL-backed store with a GORM connection
func NewSQLStore(databaseURL string) (*SQLStore, error) {
	db, err := gorm.Open(mysql.Open(databaseURL), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &SQLStore{db: db}

	// Auto-migrate tables
	if err := db.AutoMigrate(&KVRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate tables: %w", err)
	}

	return store, nil
}

// Get retrieves the value stored under a key, or nil if the key is absent
func (s *SQLStore) Get(ctx context.Context, key string) (json.RawMessage, error) {
	var record KVRecord
	result := s.db.WithContext(ctx).Where("record_key = ?", key).First(&record)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get record: %w", result.Error)
	}

	return json.RawMessage(record.Value), nil
}

// Set stores or replaces the value under a key
func (s *SQLStore) Set(ctx context.Context, key string, value json.RawMessage) error {
	result := s.db.WithContext(ctx).Where("record_key = ?", key).First(&KVRecord{})
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			record := &KVRecord{Key: key, Value: string(value)}
			if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
				return fmt.Errorf("failed to create record: %w", err)
			}
			return nil
		}
		return fmt.Errorf("failed to check existing record: %w", result.Error)
	}

	if err := s.db.WithContext(ctx).Model(&KVRecord{}).Where("record_key = ?", key).Updates(map[string]interface{}{
		"record_value": string(value),
	}).Error; err != nil {
		return fmt.Errorf("failed to update record: %w", err)
	}

	return nil
}

// Delete removes the record stored under a key
func (s *SQLStore) Delete(ctx context.Context, key string) error {
	result := s.db.WithContext(ctx).Where("record_key = ?", key).Delete(&KVRecord{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete record: %w", result.Error)
	}

	return nil
}

// Close closes the database connection
func (s *SQLStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB from gorm.DB: %w", err)
	}
	return sqlDB.Close()
}
