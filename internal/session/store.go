package session

import (
	"sync"
	"time"

	"autoclass/app"
	"autoclass/domain/core"
	"autoclass/domain/dataset"
)

// DefaultTTL is how long uploaded datasets and finished runs stay resident
// before cleanup reclaims them. Everything here is in-process state; nothing
// survives a restart.
const DefaultTTL = 2 * time.Hour

type datasetEntry struct {
	ds       *dataset.Dataset
	uploaded time.Time
}

type runEntry struct {
	outcome  *app.RunOutcome
	finished time.Time
}

// Store holds uploaded datasets and completed run outcomes for the HTTP API.
type Store struct {
	mu       sync.RWMutex
	ttl      time.Duration
	now      func() time.Time
	datasets map[core.DatasetID]datasetEntry
	runs     map[core.RunID]runEntry
}

// NewStore creates an in-memory store with the default TTL.
func NewStore() *Store {
	return NewStoreWithTTL(DefaultTTL)
}

// NewStoreWithTTL creates a store with an explicit TTL, for tests.
func NewStoreWithTTL(ttl time.Duration) *Store {
	return &Store{
		ttl:      ttl,
		now:      time.Now,
		datasets: make(map[core.DatasetID]datasetEntry),
		runs:     make(map[core.RunID]runEntry),
	}
}

// PutDataset registers an uploaded dataset and returns its new ID.
func (s *Store) PutDataset(ds *dataset.Dataset) core.DatasetID {
	id := core.NewDatasetID()
	s.mu.Lock()
	s.datasets[id] = datasetEntry{ds: ds, uploaded: s.now()}
	s.mu.Unlock()
	return id
}

// Dataset looks up a dataset by ID.
func (s *Store) Dataset(id core.DatasetID) (*dataset.Dataset, bool) {
	s.mu.RLock()
	entry, ok := s.datasets[id]
	s.mu.RUnlock()
	return entry.ds, ok
}

// DeleteDataset removes a dataset.
func (s *Store) DeleteDataset(id core.DatasetID) {
	s.mu.Lock()
	delete(s.datasets, id)
	s.mu.Unlock()
}

// PutRun registers a finished run outcome under its run ID.
func (s *Store) PutRun(outcome *app.RunOutcome) core.RunID {
	s.mu.Lock()
	s.runs[outcome.RunID] = runEntry{outcome: outcome, finished: s.now()}
	s.mu.Unlock()
	return outcome.RunID
}

// Run looks up a run outcome by ID.
func (s *Store) Run(id core.RunID) (*app.RunOutcome, bool) {
	s.mu.RLock()
	entry, ok := s.runs[id]
	s.mu.RUnlock()
	return entry.outcome, ok
}

// CleanupExpired drops entries older than the TTL and reports how many were
// removed.
func (s *Store) CleanupExpired() int {
	cutoff := s.now().Add(-s.ttl)
	removed := 0

	s.mu.Lock()
	for id, entry := range s.datasets {
		if entry.uploaded.Before(cutoff) {
			delete(s.datasets, id)
			removed++
		}
	}
	for id, entry := range s.runs {
		if entry.finished.Before(cutoff) {
			delete(s.runs, id)
			removed++
		}
	}
	s.mu.Unlock()
	return removed
}

// StartJanitor runs CleanupExpired on the given interval until stop is
// closed.
func (s *Store) StartJanitor(interval time.Duration, stop <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.CleanupExpired()
			case <-stop:
				return
			}
		}
	}()
}
