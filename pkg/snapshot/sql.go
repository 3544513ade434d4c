package snapshot

import (
	"context"
	"errors"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// snapshotRow is the single-row table backing SQLStore.
type snapshotRow struct {
	ID        uint   `gorm:"primaryKey"`
	Data      []byte `gorm:"type:blob"`
	UpdatedAt time.Time
}

func (snapshotRow) TableName() string {
	return "state_snapshots"
}

// singletonRowID keeps Save an upsert against one well-known row.
const singletonRowID = 1

// SQLStore persists the snapshot in a SQLite database. It is the
// backend to pick when the host application already keeps a local
// database file around.
type SQLStore struct {
	db *gorm.DB
}

// NewSQLStore opens (or creates) the SQLite database at path and
// migrates the snapshot table.
func NewSQLStore(path string) (*SQLStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&snapshotRow{}); err != nil {
		return nil, err
	}
	return &SQLStore{db: db}, nil
}

// Save upserts the singleton snapshot row.
func (s *SQLStore) Save(ctx context.Context, data []byte) error {
	cp := make([]byte, len(data))
	copy(cp, data)

	row := snapshotRow{ID: singletonRowID, Data: cp, UpdatedAt: time.Now().UTC()}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
		}).
		Create(&row).Error
}

// Load reads the singleton row, returning (nil, nil) when absent.
func (s *SQLStore) Load(ctx context.Context) ([]byte, error) {
	var row snapshotRow
	err := s.db.WithContext(ctx).First(&row, singletonRowID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return row.Data, nil
}

// Delete removes the singleton row.
func (s *SQLStore) Delete(ctx context.Context) error {
	return s.db.WithContext(ctx).Delete(&snapshotRow{}, singletonRowID).Error
}

// Close closes the underlying database handle.
func (s *SQLStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
