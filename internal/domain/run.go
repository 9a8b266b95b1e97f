package domain

import (
	"fmt"
	"sync"
	"time"
)

// RunOptions are the per-invocation knobs accepted in the request body.
// A zero Limit means the function's configured default.
type RunOptions struct {
	Limit int `json:"limit" validate:"omitempty,min=1,max=100"`
}

// RunSummary is the JSON body every function answers with.
// Counters are safe to bump from concurrent workers.
type RunSummary struct {
	mu sync.Mutex

	Function   string   `json:"function"`
	RunID      string   `json:"run_id"`
	Processed  int      `json:"processed"`
	Notified   int      `json:"notified"`
	Updated    int      `json:"updated"`
	Skipped    int      `json:"skipped"`
	Errors     []string `json:"errors"`
	DurationMS int64    `json:"duration_ms"`

	started time.Time
}

func NewRunSummary(function, runID string) *RunSummary {
	return &RunSummary{Function: function, RunID: runID, Errors: []string{}, started: time.Now()}
}

func (s *RunSummary) AddProcessed(n int) { s.add(&s.Processed, n) }
func (s *RunSummary) AddNotified(n int)  { s.add(&s.Notified, n) }
func (s *RunSummary) AddUpdated(n int)   { s.add(&s.Updated, n) }
func (s *RunSummary) AddSkipped(n int)   { s.add(&s.Skipped, n) }

// Fail records a per-unit error. unit identifies what failed, e.g. "user 42".
func (s *RunSummary) Fail(unit string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Errors = append(s.Errors, fmt.Sprintf("%s: %v", unit, err))
}

// Finish stamps the elapsed time and returns the summary.
func (s *RunSummary) Finish() *RunSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.DurationMS = time.Since(s.started).Milliseconds()
	return s
}

func (s *RunSummary) add(field *int, n int) {
	s.mu.Lock()
	*field += n
	s.mu.Unlock()
}
