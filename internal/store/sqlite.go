package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Xevion/go-buzz/types"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// clipID is the primary key of the single clip row.
const clipID = 1

type timeRow struct {
	Time      string `gorm:"primaryKey;size:5"`
	CreatedAt time.Time
}

func (timeRow) TableName() string { return "buzz_times" }

type clipRow struct {
	ID        uint `gorm:"primaryKey"`
	Name      string
	Data      []byte
	UpdatedAt time.Time
}

func (clipRow) TableName() string { return "buzz_clips" }

// SQLite is a Backend on a gorm sqlite database.
type SQLite struct {
	db *gorm.DB
}

// OpenSQLite opens (creating if needed) the database at path and migrates it.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// sqlite allows a single writer
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&timeRow{}, &clipRow{}); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return &SQLite{db: db}, nil
}

func (s *SQLite) Name() string { return "sqlite" }

func (s *SQLite) LoadTimes(ctx context.Context) ([]types.BuzzTime, error) {
	var rows []timeRow
	if err := s.db.WithContext(ctx).Order("time").Find(&rows).Error; err != nil {
		return nil, err
	}

	times := make([]types.BuzzTime, 0, len(rows))
	for _, row := range rows {
		t, err := types.ParseBuzzTime(row.Time)
		if err != nil {
			return nil, fmt.Errorf("row %q: %w", row.Time, err)
		}
		times = append(times, t)
	}
	return times, nil
}

func (s *SQLite) SaveTimes(ctx context.Context, times []types.BuzzTime) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&timeRow{}).Error; err != nil {
			return err
		}
		if len(times) == 0 {
			return nil
		}

		rows := make([]timeRow, 0, len(times))
		for _, t := range times {
			rows = append(rows, timeRow{Time: t.String()})
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
	})
}

func (s *SQLite) LoadClip(ctx context.Context) (types.Clip, error) {
	var row clipRow
	err := s.db.WithContext(ctx).First(&row, clipID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return types.Clip{}, ErrNoClip
	}
	if err != nil {
		return types.Clip{}, err
	}
	return types.Clip{Name: row.Name, Data: row.Data}, nil
}

func (s *SQLite) SaveClip(ctx context.Context, clip types.Clip) error {
	row := clipRow{ID: clipID, Name: clip.Name, Data: clip.Data}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&row).Error
}

func (s *SQLite) DeleteClip(ctx context.Context) error {
	return s.db.WithContext(ctx).Delete(&clipRow{}, clipID).Error
}

func (s *SQLite) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
