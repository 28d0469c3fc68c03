package domain

import (
	"time"

	"gorm.io/datatypes"
)

// ImportRun is the audit row kept for every catalog import, dry runs included.
type ImportRun struct {
	ID          int64          `gorm:"primaryKey"`
	Source      string         `gorm:"type:varchar(255);not null"`
	Mode        Mode           `gorm:"type:varchar(20);not null"`
	DryRun      bool           `gorm:"column:dry_run;not null;default:false"`
	TotalRows   int            `gorm:"column:total_rows;not null;default:0"`
	CreatedRows int            `gorm:"column:created_rows;not null;default:0"`
	UpdatedRows int            `gorm:"column:updated_rows;not null;default:0"`
	SkippedRows int            `gorm:"column:skipped_rows;not null;default:0"`
	Report      datatypes.JSON `gorm:"not null"`
	StartedBy   *string        `gorm:"column:started_by;type:varchar(150)"`
	StartedAt   time.Time      `gorm:"column:started_at;not null;index"`
	FinishedAt  time.Time      `gorm:"column:finished_at;not null"`
}

func (ImportRun) TableName() string { return "import_runs" }
