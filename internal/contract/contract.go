// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/huangsam/transit/schema"
)

// CacheManager defines the interface for managing cache stores.
// This allows the cache layer to be mocked for testing.
type CacheManager interface {
	GetResultStore() CacheStore
	GetRunStore() RunStore
}

// CacheStore defines the interface for cache data storage.
// This allows mocking the store for testing.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// RunStore defines the interface for tracking search runs and their candidates.
type RunStore interface {
	// BeginRun creates a new search run and returns its unique ID
	BeginRun(inputPath string, startTime time.Time, configParams map[string]any) (int64, error)

	// EndRun updates the search run with completion data
	EndRun(runID int64, endTime time.Time, nSamples, nPeriods int, best *schema.BestCandidate) error

	// RecordCandidates stores the ranked periodogram peaks of a run
	RecordCandidates(runID int64, peaks []schema.Peak) error

	// GetStatus returns status information about the run store
	GetStatus() (schema.RunStatus, error)

	// GetAllRuns returns every tracked run, oldest first
	GetAllRuns() ([]schema.RunRecord, error)

	// GetAllCandidates returns every recorded candidate ordered by run and rank
	GetAllCandidates() ([]schema.CandidateRecord, error)

	// Close closes the underlying connection
	Close() error
}

// Uploader ships a written artifact somewhere durable and returns its location.
type Uploader interface {
	Upload(ctx context.Context, path string) (string, error)
}
