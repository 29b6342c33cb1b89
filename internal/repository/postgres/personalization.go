package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"maxwell/internal/domain/personalization"
	"maxwell/internal/metrics"
	"maxwell/pkg/errors"
)

// Suppression kicks in after this many dismissals of the same kind.
const suppressionThreshold = 3

// Compile-time check
var _ personalization.Store = (*PersonalizationRepository)(nil)

// PersonalizationRepository implements personalization.Store using sqlx
type PersonalizationRepository struct {
	db *sqlx.DB
}

// NewPersonalizationRepository creates a new personalization repository
func NewPersonalizationRepository(db *sqlx.DB) *PersonalizationRepository {
	return &PersonalizationRepository{db: db}
}

// SuppressedKinds returns suggestion kinds dismissed past the threshold
func (r *PersonalizationRepository) SuppressedKinds(ctx context.Context, userID uuid.UUID) ([]string, error) {
	var kinds []string

	query := `
		SELECT kind FROM suggestion_dismissals
		WHERE user_id = $1 AND dismiss_count >= $2
		ORDER BY kind`

	err := r.db.SelectContext(ctx, &kinds, query, userID, suppressionThreshold)
	metrics.ObserveDBQuery("postgres", "suppressed_kinds", err)
	if err != nil {
		return nil, err
	}

	return kinds, nil
}

// RecordDismissal increments the dismiss counter for a kind
func (r *PersonalizationRepository) RecordDismissal(ctx context.Context, userID uuid.UUID, kind string) error {
	query := `
		INSERT INTO suggestion_dismissals (user_id, kind, dismiss_count, updated_at)
		VALUES ($1, $2, 1, NOW())
		ON CONFLICT (user_id, kind) DO UPDATE SET
			dismiss_count = suggestion_dismissals.dismiss_count + 1,
			updated_at = NOW()`

	_, err := r.db.ExecContext(ctx, query, userID, kind)
	metrics.ObserveDBQuery("postgres", "record_dismissal", err)
	return err
}

// GetInsights loads the user's personalization profile
func (r *PersonalizationRepository) GetInsights(ctx context.Context, userID uuid.UUID) (*personalization.Insights, error) {
	var row struct {
		UserID          uuid.UUID      `db:"user_id"`
		WritingLevel    string         `db:"writing_level"`
		PreferredTone   string         `db:"preferred_tone"`
		FocusAreas      pq.StringArray `db:"focus_areas"`
		RecurringHabits pq.StringArray `db:"recurring_habits"`
		UpdatedAt       sql.NullTime   `db:"updated_at"`
	}

	query := `
		SELECT user_id, writing_level, preferred_tone, focus_areas, recurring_habits, updated_at
		FROM author_insights
		WHERE user_id = $1`

	err := r.db.GetContext(ctx, &row, query, userID)
	if err == sql.ErrNoRows {
		metrics.ObserveDBQuery("postgres", "get_insights", nil)
		return nil, errors.Wrapf(errors.ErrNotFound, "no insights for user %s", userID)
	}
	metrics.ObserveDBQuery("postgres", "get_insights", err)
	if err != nil {
		return nil, err
	}

	insights := &personalization.Insights{
		UserID:          row.UserID,
		WritingLevel:    row.WritingLevel,
		PreferredTone:   row.PreferredTone,
		FocusAreas:      row.FocusAreas,
		RecurringHabits: row.RecurringHabits,
	}
	if row.UpdatedAt.Valid {
		insights.UpdatedAt = row.UpdatedAt.Time
	}

	return insights, nil
}
