package backups

import (
	"fmt"
	"log"
	"strings"
	"time"

	"gorm.io/gorm"
)

type RunnerConfig struct {
	DBPath string
	Feeds  FeedsConfig
	Debug  bool
}

// Runner loads the feed files, unifies them, and archives each run to the
// SQLite history. The pipeline itself stays a pure projection; persistence
// lives here.
type Runner struct {
	cfg RunnerConfig
	db  *gorm.DB
}

func NewRunner(cfg RunnerConfig) (*Runner, error) {
	if strings.TrimSpace(cfg.DBPath) == "" {
		return nil, fmt.Errorf("DBPath is required")
	}
	if cfg.Feeds.empty() {
		return nil, fmt.Errorf("at least one backup feed is required")
	}
	db, err := OpenDB(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	return &Runner{cfg: cfg, db: db}, nil
}

func (r *Runner) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	err = sqlDB.Close()
	r.db = nil
	return err
}

func (r *Runner) debugf(format string, args ...any) {
	if r == nil || !r.cfg.Debug {
		return
	}
	log.Printf(format, args...)
}

// RunOnce loads the feeds, recomputes the unified list from scratch, and
// archives it under a new run. Returns the unified list.
func (r *Runner) RunOnce() ([]UnifiedBackup, error) {
	start := time.Now()
	run := UnifyRun{StartedAt: start}

	feeds, err := LoadFeeds(r.cfg.Feeds)
	if err != nil {
		run.FinishedAt = time.Now()
		run.LastError = err.Error()
		_ = r.db.Create(&run).Error
		return nil, err
	}
	r.debugf("run_once feeds: snapshots=%d storage=%d pbs=%d pmg=%d guests=%d",
		len(feeds.Snapshots), len(feeds.Storage), len(feeds.PBS), len(feeds.PMG), len(feeds.Guests))

	unified := Unify(feeds)

	raw := len(feeds.Snapshots) + len(feeds.Storage) + len(feeds.PBS) + len(feeds.PMG)
	run.Records = len(unified)
	run.Dropped = raw - len(unified)
	for _, rec := range unified {
		switch rec.Category {
		case CategorySnapshot:
			run.Snapshots++
		case CategoryLocal:
			run.Local++
		case CategoryRemote:
			run.Remote++
		}
	}
	run.FinishedAt = time.Now()

	err = r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&run).Error; err != nil {
			return err
		}
		if len(unified) == 0 {
			return nil
		}
		rows := make([]BackupRow, 0, len(unified))
		for _, rec := range unified {
			rows = append(rows, rowFromUnified(run.ID, rec, run.FinishedAt))
		}
		return tx.CreateInBatches(rows, 500).Error
	})
	if err != nil {
		return nil, fmt.Errorf("archive run: %w", err)
	}

	r.debugf("run_once done: records=%d snapshots=%d local=%d remote=%d dropped=%d took=%s",
		run.Records, run.Snapshots, run.Local, run.Remote, run.Dropped, time.Since(start))
	return unified, nil
}

// LatestRun returns the most recent archived run and its rows.
func (r *Runner) LatestRun() (*UnifyRun, []BackupRow, error) {
	var run UnifyRun
	if err := r.db.Order("id desc").First(&run).Error; err != nil {
		return nil, nil, err
	}
	var rows []BackupRow
	if err := r.db.Where("run_id = ?", run.ID).Order("id asc").Find(&rows).Error; err != nil {
		return nil, nil, err
	}
	return &run, rows, nil
}
