package aiusage

import (
	"context"
	"time"
)

// Recorder accepts usage log entries. Recording is best-effort.
type Recorder interface {
	// Record buffers a usage log entry for batch insertion
	Record(ctx context.Context, log *UsageLog) error
}

// Repository extends Recorder with aggregate cost queries
type Repository interface {
	Recorder

	// GetUserDailyCost returns total cost for a user on a specific day
	GetUserDailyCost(ctx context.Context, userID string, date time.Time) (float64, error)

	// GetProviderCosts returns costs grouped by provider for a time range
	GetProviderCosts(ctx context.Context, from, to time.Time) (map[string]float64, error)

	// GetAgentCosts returns costs grouped by agent kind for a time range
	GetAgentCosts(ctx context.Context, from, to time.Time) (map[string]float64, error)
}

// NoopRecorder discards all usage entries
type NoopRecorder struct{}

func (NoopRecorder) Record(ctx context.Context, log *UsageLog) error { return nil }
