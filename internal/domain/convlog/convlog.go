package convlog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TurnRecord is the per-turn conversation log entry emitted by the
// coaching front. The front only writes these; it never reads them back
// within a turn.
type TurnRecord struct {
	SessionID       string          `json:"session_id"`
	UserID          uuid.UUID       `json:"user_id"`
	ManuscriptID    uuid.UUID       `json:"manuscript_id,omitempty"`
	UserMessage     string          `json:"user_message"`
	AssistantReply  string          `json:"assistant_reply"`
	AgentsConsulted []string        `json:"agents_consulted,omitempty"`
	Intent          string          `json:"intent,omitempty"`
	ConflictCount   int             `json:"conflict_count"`
	TotalTokens     int             `json:"total_tokens"`
	TotalCost       decimal.Decimal `json:"total_cost"`
	LatencyMs       int64           `json:"latency_ms"`
	CreatedAt       time.Time       `json:"created_at"`
}

// Logger emits turn records to an external sink (Kafka in production,
// a buffer in tests). Emission is best-effort; a failed emit never fails
// the turn.
type Logger interface {
	Emit(ctx context.Context, record *TurnRecord) error
}

// Noop discards all records
type Noop struct{}

func (Noop) Emit(ctx context.Context, record *TurnRecord) error { return nil }
