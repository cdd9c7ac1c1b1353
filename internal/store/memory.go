package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/i474232898/weather-notifier/internal/scheduler"
	"github.com/i474232898/weather-notifier/internal/weather"
)

var (
	// ErrNotFound is returned when a dataset has not been received yet.
	ErrNotFound = errors.New("no dataset received yet")
)

// CycleSummary is the bookkeeping kept for a finished cycle.
type CycleSummary struct {
	ID           string                  `json:"id"`
	Provider     string                  `json:"provider"`
	StartedAt    time.Time               `json:"startedAt"`
	Duration     time.Duration           `json:"duration"`
	Datasets     []weather.DatasetName   `json:"datasets"`
	Failures     []weather.BranchFailure `json:"failures,omitempty"`
	ResolveError string                  `json:"resolveError,omitempty"`
	NextDelay    time.Duration           `json:"nextDelay"`
	Manual       bool                    `json:"manual,omitempty"`
}

// MemoryStore is a concurrency-safe in-memory store of the latest dataset per
// name and of recent cycle summaries. Older datasets are overwritten, never
// kept.
type MemoryStore struct {
	mu sync.RWMutex

	latest map[weather.DatasetName]weather.Dataset
	cycles []CycleSummary
	state  scheduler.State

	// retention configuration
	maxCycles int // max number of cycle summaries (0 = unlimited)
}

// NewMemoryStore creates a new MemoryStore.
func NewMemoryStore(maxCycles int) *MemoryStore {
	return &MemoryStore{
		latest:    make(map[weather.DatasetName]weather.Dataset),
		maxCycles: maxCycles,
	}
}

// Emit stores ds as the latest dataset of its name.
func (s *MemoryStore) Emit(_ context.Context, ds weather.Dataset) error {
	s.SaveDataset(ds)
	return nil
}

// SaveDataset replaces the latest dataset of ds.Name.
func (s *MemoryStore) SaveDataset(ds weather.Dataset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest[ds.Name] = ds
}

// GetLatest returns the most recent dataset with the given name.
func (s *MemoryStore) GetLatest(name weather.DatasetName) (weather.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ds, ok := s.latest[name]
	if !ok {
		return weather.Dataset{}, ErrNotFound
	}
	return ds, nil
}

// List returns the latest dataset of every name received so far, in
// weather.DatasetNames order.
func (s *MemoryStore) List() []weather.Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]weather.Dataset, 0, len(s.latest))
	for _, name := range weather.DatasetNames {
		if ds, ok := s.latest[name]; ok {
			out = append(out, ds)
		}
	}
	return out
}

// ObserveCycle records a finished cycle and enforces retention.
func (s *MemoryStore) ObserveCycle(r scheduler.Report) {
	summary := CycleSummary{
		ID:        r.Result.ID,
		Provider:  r.Result.Provider,
		StartedAt: r.Result.StartedAt,
		Duration:  r.Result.Duration,
		Datasets:  r.Result.Names(),
		Failures:  r.Result.Failures,
		NextDelay: r.NextDelay,
		Manual:    r.Manual,
	}
	if r.Result.ResolveErr != nil {
		summary.ResolveError = r.Result.ResolveErr.Error()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = r.State
	s.cycles = append(s.cycles, summary)

	// Enforce retention by count.
	if s.maxCycles > 0 && len(s.cycles) > s.maxCycles {
		over := len(s.cycles) - s.maxCycles
		s.cycles = s.cycles[over:]
	}
}

// RecentCycles returns the retained cycle summaries, oldest first.
func (s *MemoryStore) RecentCycles() []CycleSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]CycleSummary, len(s.cycles))
	copy(out, s.cycles)
	return out
}

// State returns the scheduler state reported with the most recent cycle.
func (s *MemoryStore) State() scheduler.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}
