package dialogue

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Role identifies who authored a dialogue turn
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message in a coaching conversation
type Turn struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Session holds the short-term dialogue history for one conversation
type Session struct {
	ID           string    `json:"id"`
	UserID       uuid.UUID `json:"user_id"`
	ManuscriptID uuid.UUID `json:"manuscript_id"`
	Turns        []Turn    `json:"turns"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Append adds a turn and bumps the update timestamp
func (s *Session) Append(role Role, content string) {
	now := time.Now()
	s.Turns = append(s.Turns, Turn{Role: role, Content: content, CreatedAt: now})
	s.UpdatedAt = now
}

// Recent returns up to n most recent turns in chronological order
func (s *Session) Recent(n int) []Turn {
	if n <= 0 || n >= len(s.Turns) {
		return s.Turns
	}
	return s.Turns[len(s.Turns)-n:]
}

// Store persists dialogue sessions between turns
type Store interface {
	// Get loads a session by id, returning errors.ErrNotFound when absent
	Get(ctx context.Context, sessionID string) (*Session, error)

	// Save persists the session, refreshing its TTL
	Save(ctx context.Context, session *Session) error

	// Delete removes a session
	Delete(ctx context.Context, sessionID string) error
}
