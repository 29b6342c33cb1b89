package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pgvector/pgvector-go"

	"maxwell/internal/domain/wiki"
	"maxwell/internal/metrics"
)

// Compile-time check
var _ wiki.Repository = (*WikiRepository)(nil)

// WikiRepository implements wiki.Repository using sqlx and pgvector
type WikiRepository struct {
	db *sqlx.DB
}

// NewWikiRepository creates a new wiki repository
func NewWikiRepository(db *sqlx.DB) *WikiRepository {
	return &WikiRepository{db: db}
}

// BlocksForScope returns all blocks relevant to the scope ordered by
// weight descending. A zero-valued scope id matches nothing at that level;
// author-profile blocks are always included for the user.
func (r *WikiRepository) BlocksForScope(ctx context.Context, scope wiki.ScopeRef) ([]*wiki.Block, error) {
	var blocks []*wiki.Block

	query := `
		SELECT * FROM wiki_blocks
		WHERE user_id = $1
		  AND (
			kind = 'author_profile'
			OR (kind = 'world' AND scope_id = $2)
			OR (kind = 'series' AND scope_id = $3)
			OR (kind = 'manuscript' AND scope_id = $4)
			OR (kind = 'chapter' AND scope_id = $5)
		  )
		ORDER BY weight DESC, updated_at DESC`

	err := r.db.SelectContext(ctx, &blocks, query,
		scope.UserID, scope.WorldID, scope.SeriesID, scope.ManuscriptID, scope.ChapterID,
	)
	metrics.ObserveDBQuery("postgres", "wiki_blocks_for_scope", err)
	if err != nil {
		return nil, err
	}

	return blocks, nil
}

// SearchEntities performs semantic search over entity blocks using
// pgvector cosine similarity
func (r *WikiRepository) SearchEntities(ctx context.Context, scope wiki.ScopeRef, embedding pgvector.Vector, limit int) ([]*wiki.Block, error) {
	var blocks []*wiki.Block

	query := `
		SELECT * FROM wiki_blocks
		WHERE user_id = $1 AND kind = 'entity'
		ORDER BY embedding <=> $2
		LIMIT $3`

	err := r.db.SelectContext(ctx, &blocks, query, scope.UserID, embedding, limit)
	metrics.ObserveDBQuery("postgres", "wiki_search_entities", err)
	if err != nil {
		return nil, err
	}

	return blocks, nil
}

// UpsertBlock inserts or updates a block by (user_id, kind, scope_id, title)
func (r *WikiRepository) UpsertBlock(ctx context.Context, block *wiki.Block) error {
	if block.ID == uuid.Nil {
		block.ID = uuid.New()
	}

	query := `
		INSERT INTO wiki_blocks (
			id, user_id, kind, scope_id, title, content, weight,
			embedding, embedding_model, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW()
		)
		ON CONFLICT (user_id, kind, scope_id, title) DO UPDATE SET
			content = EXCLUDED.content,
			weight = EXCLUDED.weight,
			embedding = EXCLUDED.embedding,
			embedding_model = EXCLUDED.embedding_model,
			updated_at = NOW()`

	_, err := r.db.ExecContext(ctx, query,
		block.ID, block.UserID, block.Kind, block.ScopeID, block.Title,
		block.Content, block.Weight, block.Embedding, block.EmbeddingModel,
	)
	metrics.ObserveDBQuery("postgres", "wiki_upsert_block", err)

	return err
}
