package wiki

import (
	"context"

	"github.com/pgvector/pgvector-go"
)

// Repository defines persistence operations for wiki context blocks
type Repository interface {
	// BlocksForScope returns all blocks relevant to the given scope,
	// ordered by weight descending
	BlocksForScope(ctx context.Context, scope ScopeRef) ([]*Block, error)

	// SearchEntities performs semantic search over entity blocks using
	// pgvector cosine similarity
	SearchEntities(ctx context.Context, scope ScopeRef, embedding pgvector.Vector, limit int) ([]*Block, error)

	// UpsertBlock inserts or updates a block by (user_id, kind, scope_id, title)
	UpsertBlock(ctx context.Context, block *Block) error
}
