package backups

import (
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

// UnifyRun is one archived run of the pipeline.
type UnifyRun struct {
	ID         uint      `gorm:"primaryKey"`
	StartedAt  time.Time `gorm:"index"`
	FinishedAt time.Time
	Records    int
	Snapshots  int
	Local      int
	Remote     int
	// Dropped counts raw records that did not make it into the unified list
	// (dedup suppressions plus template/ISO skips).
	Dropped   int
	LastError string `gorm:"type:text"`
}

// BackupRow is one unified record as archived by an ingest run.
type BackupRow struct {
	ID          uint   `gorm:"primaryKey"`
	RunID       uint   `gorm:"index"`
	Category    string `gorm:"index;size:16"`
	VMID        int    `gorm:"index"`
	Kind        string `gorm:"size:16"`
	Name        string `gorm:"size:256"`
	BackupName  string `gorm:"size:512"`
	Node        string `gorm:"index;size:128"`
	Instance    string `gorm:"index;size:128"`
	BackupTime  int64  `gorm:"index"`
	SizeBytes   *int64
	Storage     string `gorm:"size:128"`
	Datastore   string `gorm:"size:128"`
	Namespace   string `gorm:"size:256"`
	Verified    *bool
	Protected   bool
	Encrypted   bool
	Owner       string    `gorm:"size:256"`
	Comment     string    `gorm:"type:text"`
	Description string    `gorm:"type:text"`
	ArchivedAt  time.Time `gorm:"index"`
}

func OpenDB(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&UnifyRun{}, &BackupRow{}); err != nil {
		return nil, err
	}
	return db, nil
}

func rowFromUnified(runID uint, r UnifiedBackup, at time.Time) BackupRow {
	return BackupRow{
		RunID:       runID,
		Category:    string(r.Category),
		VMID:        r.VMID,
		Kind:        string(r.Kind),
		Name:        r.Name,
		BackupName:  r.BackupName,
		Node:        r.Node,
		Instance:    r.Instance,
		BackupTime:  r.Time,
		SizeBytes:   r.Size,
		Storage:     r.Storage,
		Datastore:   r.Datastore,
		Namespace:   r.Namespace,
		Verified:    r.Verified,
		Protected:   r.Protected,
		Encrypted:   r.Encrypted,
		Owner:       r.Owner,
		Comment:     r.Comment,
		Description: r.Description,
		ArchivedAt:  at,
	}
}
