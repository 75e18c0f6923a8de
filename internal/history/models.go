package history

import "time"

// Run statuses stored in the runs table.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusPartial   = "partial"
)

// Run is one recorded batch conversion.
type Run struct {
	ID         string
	InputDir   string
	OutputDir  string
	Camera     string
	Format     string
	Total      int
	Completed  int
	Failed     int
	Status     string
	StartedAt  time.Time
	FinishedAt time.Time
}

// Duration returns the wall-clock time the run took.
func (r Run) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// FileRecord is the stored outcome for one source file within a run.
type FileRecord struct {
	Source      string
	Destination string
	Error       string
}
