package db

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Entry is one row of the key-value table
type Entry struct {
	Key       string `gorm:"primaryKey;column:storage_key"`
	Value     []byte `gorm:"not null"`
	UpdatedAt time.Time
}

// TableName pins the table name independent of gorm's pluralisation.
func (Entry) TableName() string {
	return "kv_entries"
}

// ErrNotFound is returned by Get for a key that was never written.
var ErrNotFound = errors.New("key not found")

// Repository stores blobs by key in a SQLite database
type Repository struct {
	db *gorm.DB
}

// Open sets up the database connection and runs migrations
func Open(dbPath string) (*Repository, error) {
	// Ensure the directory exists
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	gdb, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent), // Quiet by default
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := gdb.AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Repository{db: gdb}, nil
}

// Get returns the blob stored under key.
func (r *Repository) Get(ctx context.Context, key string) ([]byte, error) {
	var entry Entry
	err := r.db.WithContext(ctx).Where("storage_key = ?", key).Take(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return entry.Value, nil
}

// Put creates or replaces the blob stored under key.
func (r *Repository) Put(ctx context.Context, key string, value []byte) error {
	entry := Entry{Key: key, Value: value, UpdatedAt: time.Now()}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&entry).Error
	if err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// Keys lists every stored key in lexical order.
func (r *Repository) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	if err := r.db.WithContext(ctx).Model(&Entry{}).Order("storage_key ASC").Pluck("storage_key", &keys).Error; err != nil {
		return nil, err
	}
	return keys, nil
}

// Close closes the database connection
func (r *Repository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
