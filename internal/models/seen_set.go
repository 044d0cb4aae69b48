package models

import (
	"time"

	"github.com/lib/pq"
)

// SeenSetRecord persists the IDs of unattended complaints already surfaced
// to an admin, one row per browser profile.
type SeenSetRecord struct {
	Profile      string         `gorm:"primaryKey;size:64"`
	ComplaintIDs pq.StringArray `gorm:"type:text[]"`
	UpdatedAt    time.Time
}

func (SeenSetRecord) TableName() string { return "seen_sets" }
