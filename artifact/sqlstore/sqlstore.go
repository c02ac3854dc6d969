// Package sqlstore persists artifacts in a SQLite database through gorm.
//
// It is only used when a run explicitly exports its references (CLI
// --persist). The database file is created on first use.
package sqlstore

import (
	"errors"
	"fmt"
	"time"

	_ "github.com/ncruces/go-sqlite3/embed" // bundled sqlite wasm build
	"github.com/ncruces/go-sqlite3/gormlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/Chan-Developer/ReAct-agent/artifact"
	"github.com/Chan-Developer/ReAct-agent/core"
	"github.com/Chan-Developer/ReAct-agent/logging"
)

// Record is the row stored per artifact.
type Record struct {
	Scope     string `gorm:"primaryKey;size:128"`
	Key       string `gorm:"column:name;primaryKey;size:256"`
	Data      []byte
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName pins the table name independent of gorm naming strategy.
func (Record) TableName() string { return "artifacts" }

// Options configures a Store.
type Options struct {
	Logger logging.Logger
}

// Store is a core.ArtifactStore backed by SQLite.
type Store struct {
	db     *gorm.DB
	logger logging.Logger
}

// Interface compliance (compile-time assertion)
var _ core.ArtifactStore = (*Store)(nil)

// Open opens (or creates) the database at path and migrates the schema.
// Use ":memory:" for a throwaway database.
func Open(path string, optFns ...func(o *Options)) (*Store, error) {
	opts := Options{
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	db, err := gorm.Open(gormlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open artifact db %q: %w", path, err)
	}

	if err := db.AutoMigrate(&Record{}); err != nil {
		return nil, fmt.Errorf("migrate artifact db: %w", err)
	}

	opts.Logger.Debug("artifact.sqlstore.opened", "path", path)

	return &Store{db: db, logger: opts.Logger}, nil
}

// Save upserts the payload for scope/key.
func (s *Store) Save(scope, key string, data []byte) error {
	cp := make([]byte, len(data))
	copy(cp, data)

	rec := Record{Scope: scope, Key: key, Data: cp}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "scope"}, {Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(&rec).Error
	if err != nil {
		return fmt.Errorf("save artifact %s/%s: %w", scope, key, err)
	}
	return nil
}

// Get returns the payload or artifact.ErrNotFound.
func (s *Store) Get(scope, key string) ([]byte, error) {
	var rec Record
	err := s.db.Where("scope = ? AND name = ?", scope, key).Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, artifact.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get artifact %s/%s: %w", scope, key, err)
	}
	return rec.Data, nil
}

// List returns the sorted keys stored for scope.
func (s *Store) List(scope string) ([]string, error) {
	var keys []string
	err := s.db.Model(&Record{}).Where("scope = ?", scope).Order("name").Pluck("name", &keys).Error
	if err != nil {
		return nil, fmt.Errorf("list artifacts %s: %w", scope, err)
	}
	return keys, nil
}

// Delete removes scope/key or returns artifact.ErrNotFound.
func (s *Store) Delete(scope, key string) error {
	res := s.db.Where("scope = ? AND name = ?", scope, key).Delete(&Record{})
	if res.Error != nil {
		return fmt.Errorf("delete artifact %s/%s: %w", scope, key, res.Error)
	}
	if res.RowsAffected == 0 {
		return artifact.ErrNotFound
	}
	return nil
}

// Scopes lists every scope with at least one artifact.
func (s *Store) Scopes() ([]string, error) {
	var scopes []string
	if err := s.db.Model(&Record{}).Distinct("scope").Order("scope").Pluck("scope", &scopes).Error; err != nil {
		return nil, err
	}
	return scopes, nil
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
