// Package store keeps the results of pipeline runs in a SQLite database so
// that runs over the same logs can be compared later.
package store

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	"github.com/jt05610/pmeval/pipeline"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var ErrNoRun = errors.New("store: run not found")

type Run struct {
	ID        string `gorm:"primaryKey"`
	StartedAt time.Time
	Files     int
	Failed    int
}

// Timing is one execution time line.
type Timing struct {
	ID        uint   `gorm:"primaryKey"`
	RunID     string `gorm:"index"`
	File      string
	Algorithm string
	Seconds   float64
}

// Score is one cell of a metrics report. Value is nil when the metric
// failed.
type Score struct {
	ID        uint   `gorm:"primaryKey"`
	RunID     string `gorm:"index"`
	File      string
	Algorithm string
	Metric    string
	Value     *float64
}

type Store struct {
	db *gorm.DB
}

// Open opens or creates the database at path and migrates its schema.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&Run{}, &Timing{}, &Score{}); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Save records a finished run in one transaction.
func (s *Store) Save(ctx context.Context, started time.Time, sum *pipeline.Summary) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		run := &Run{
			ID:        sum.RunID,
			StartedAt: started,
			Files:     len(sum.Files),
			Failed:    len(sum.Failed),
		}
		if err := tx.Create(run).Error; err != nil {
			return err
		}
		var timings []Timing
		var scores []Score
		for _, res := range sum.Processed {
			file := filepath.Base(res.File)
			for _, t := range res.Times {
				timings = append(timings, Timing{
					RunID:     run.ID,
					File:      file,
					Algorithm: t.Miner,
					Seconds:   t.Elapsed.Seconds(),
				})
			}
			for _, row := range res.Rows {
				for i, name := range res.Metrics {
					var v *float64
					if i < len(row.Values) {
						v = row.Values[i]
					}
					scores = append(scores, Score{
						RunID:     run.ID,
						File:      file,
						Algorithm: row.Algorithm,
						Metric:    name,
						Value:     v,
					})
				}
			}
		}
		if len(timings) > 0 {
			if err := tx.Create(&timings).Error; err != nil {
				return err
			}
		}
		if len(scores) > 0 {
			if err := tx.Create(&scores).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) Run(ctx context.Context, id string) (*Run, error) {
	var run Run
	err := s.db.WithContext(ctx).First(&run, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoRun
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// Runs lists the stored runs, newest first.
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	var runs []Run
	err := s.db.WithContext(ctx).Order("started_at desc").Find(&runs).Error
	return runs, err
}

func (s *Store) Timings(ctx context.Context, runID string) ([]Timing, error) {
	var ret []Timing
	err := s.db.WithContext(ctx).Where("run_id = ?", runID).Order("id").Find(&ret).Error
	return ret, err
}

func (s *Store) Scores(ctx context.Context, runID string) ([]Score, error) {
	var ret []Score
	err := s.db.WithContext(ctx).Where("run_id = ?", runID).Order("id").Find(&ret).Error
	return ret, err
}
