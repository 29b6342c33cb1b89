package personalization

import (
	"time"

	"github.com/google/uuid"
)

// Insights is the opaque personalization blob attached to a merged
// analysis when requested. The pipeline passes it through unchanged.
type Insights struct {
	UserID          uuid.UUID `json:"user_id" db:"user_id"`
	WritingLevel    string    `json:"writing_level" db:"writing_level"`
	PreferredTone   string    `json:"preferred_tone" db:"preferred_tone"`
	FocusAreas      []string  `json:"focus_areas"`
	RecurringHabits []string  `json:"recurring_habits"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// Suppression records that a user has dismissed a suggestion kind often
// enough that low and medium severity findings of that kind are muted.
type Suppression struct {
	UserID       uuid.UUID `db:"user_id"`
	Kind         string    `db:"kind"`
	DismissCount int       `db:"dismiss_count"`
	UpdatedAt    time.Time `db:"updated_at"`
}
