package state

import (
	"time"
)

// Stats is the operator-visible summary of relay activity.
type Stats struct {
	LastRunAt      *time.Time `json:"last_run_at,omitempty"`
	LastPublished  int        `json:"last_published"`
	TotalPublished int64      `json:"total_published"`
	RecentErrors   []string   `json:"recent_errors,omitempty"`
}

// snapshot is the on-disk shape of the pipeline state. Cache insertion
// order is persisted so FIFO eviction survives restarts.
type snapshot struct {
	Translations     map[string]string `json:"translations"`
	TranslationOrder []string          `json:"translation_order"`
	Reports          map[string]string `json:"reports"`
	ReportOrder      []string          `json:"report_order"`
	Stats            Stats             `json:"stats"`
	SavedAt          time.Time         `json:"saved_at"`
}
