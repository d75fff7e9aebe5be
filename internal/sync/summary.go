package sync

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// maxSummaryErrors bounds the error list carried back to the caller.
const maxSummaryErrors = 25

// State is the terminal outcome of one article in a run.
type State string

const (
	StatePersisted State = "PERSISTED"
	StateSkipped   State = "SKIPPED"
	StateFailed    State = "FAILED"
)

// Summary is the structured run result returned to the trigger caller. The
// caller always gets one, even when the run aborted: this pipeline is
// operated by humans reading the counts, not by machines parsing error codes.
type Summary struct {
	RunID      string    `json:"runId"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
	Success    bool      `json:"success"`

	Fetched  int `json:"fetched"`
	Imported int `json:"imported"`
	Failed   int `json:"failed"`
	Skipped  int `json:"skipped"`

	Errors []string `json:"errors,omitempty"`

	mu sync.Mutex
}

// NewSummary starts a summary for a fresh run.
func NewSummary() *Summary {
	return &Summary{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
	}
}

// AddError appends an error string, keeping the list bounded.
func (s *Summary) AddError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.Errors) < maxSummaryErrors {
		s.Errors = append(s.Errors, msg)
	}
}

// Finish stamps the end time and computes the success flag: a run succeeds
// when nothing failed outright.
func (s *Summary) Finish() {
	s.FinishedAt = time.Now().UTC()
	s.Success = s.Failed == 0
}
