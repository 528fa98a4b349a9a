package schema

import "time"

// RunRecord represents a row from the transit_search_runs table.
type RunRecord struct {
	RunID        int64
	RunUUID      string
	InputPath    string
	StartTime    time.Time
	EndTime      *time.Time
	RunDuration  *int64 // milliseconds
	NSamples     int32
	NPeriods     int32
	BestPeriod   *float64
	BestPower    *float64
	ConfigParams *string
}

// CandidateRecord represents a row from the transit_candidates table.
type CandidateRecord struct {
	RunID    int64
	Rank     int32
	Period   float64
	Power    float64
	Duration float64
	SDE      float64
}
