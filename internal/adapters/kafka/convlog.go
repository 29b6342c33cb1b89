package kafka

import (
	"context"

	"maxwell/internal/domain/convlog"
)

// Compile-time check
var _ convlog.Logger = (*ConversationLogger)(nil)

// ConversationLogger publishes per-turn conversation records to Kafka
type ConversationLogger struct {
	producer *Producer
}

// NewConversationLogger creates a conversation logger backed by the producer
func NewConversationLogger(producer *Producer) *ConversationLogger {
	return &ConversationLogger{producer: producer}
}

// Emit publishes one turn record, keyed by session for per-conversation ordering
func (l *ConversationLogger) Emit(ctx context.Context, record *convlog.TurnRecord) error {
	return l.producer.Publish(ctx, TopicConversationTurns, record.SessionID, record)
}
