package wiki

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// BlockKind identifies the hierarchy level a context block belongs to.
type BlockKind string

const (
	BlockAuthorProfile BlockKind = "author_profile"
	BlockWorld         BlockKind = "world"
	BlockSeries        BlockKind = "series"
	BlockManuscript    BlockKind = "manuscript"
	BlockChapter       BlockKind = "chapter"
	BlockEntity        BlockKind = "entity"
)

// Block is one weighted, rendered context fact. Agents consume blocks as
// opaque text; the weight drives context-budget ordering.
type Block struct {
	ID      uuid.UUID `db:"id"`
	UserID  uuid.UUID `db:"user_id"`
	Kind    BlockKind `db:"kind"`
	ScopeID uuid.UUID `db:"scope_id"` // world/series/manuscript/chapter/entity id

	Title   string  `db:"title"`
	Content string  `db:"content"`
	Weight  float64 `db:"weight"`

	// Embedding metadata for semantic entity search
	Embedding      pgvector.Vector `db:"embedding"`
	EmbeddingModel string          `db:"embedding_model"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// ScopeRef identifies which slice of the hierarchy a request cares about.
// Zero-valued IDs mean "not scoped to that level".
type ScopeRef struct {
	UserID       uuid.UUID
	WorldID      uuid.UUID
	SeriesID     uuid.UUID
	ManuscriptID uuid.UUID
	ChapterID    uuid.UUID
}
