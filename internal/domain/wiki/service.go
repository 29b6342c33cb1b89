package wiki

import (
	"context"

	"github.com/pgvector/pgvector-go"

	"maxwell/pkg/errors"
	"maxwell/pkg/logger"
)

// Embedder generates vector embeddings for semantic entity lookup
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
	Name() string
}

// Service is the read-mostly fact store surface consumed by the analysis
// pipeline. It hides the repository schema: scope in, weighted text out.
type Service struct {
	repo     Repository
	embedder Embedder
	log      *logger.Logger
}

// NewService creates a wiki service. embedder may be nil, in which case
// semantic entity search is unavailable and only scope lookups work.
func NewService(repo Repository, embedder Embedder) *Service {
	return &Service{
		repo:     repo,
		embedder: embedder,
		log:      logger.Get().With("component", "wiki"),
	}
}

// ContextBlocks returns the weighted context blocks for a scope, ordered
// by weight descending.
func (s *Service) ContextBlocks(ctx context.Context, scope ScopeRef) ([]*Block, error) {
	blocks, err := s.repo.BlocksForScope(ctx, scope)
	if err != nil {
		return nil, errors.Wrap(err, "load context blocks")
	}
	return blocks, nil
}

// LookupEntities finds entity blocks semantically similar to the query
// text within the given scope.
func (s *Service) LookupEntities(ctx context.Context, scope ScopeRef, query string, limit int) ([]*Block, error) {
	if s.embedder == nil {
		return nil, errors.Wrap(errors.ErrUnavailable, "no embedder configured for entity search")
	}
	if query == "" {
		return nil, errors.Wrap(errors.ErrInvalidInput, "empty entity query")
	}
	if limit <= 0 {
		limit = 5
	}

	vec, err := s.embedder.GenerateEmbedding(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, "embed entity query")
	}

	blocks, err := s.repo.SearchEntities(ctx, scope, pgvector.NewVector(vec), limit)
	if err != nil {
		return nil, errors.Wrap(err, "search entities")
	}

	s.log.Debugw("Entity lookup", "query_len", len(query), "results", len(blocks))
	return blocks, nil
}

// SaveBlock embeds (when an embedder is configured and the block is an
// entity) and upserts a context block.
func (s *Service) SaveBlock(ctx context.Context, block *Block) error {
	if block.Content == "" {
		return errors.Wrap(errors.ErrInvalidInput, "empty block content")
	}

	if s.embedder != nil && block.Kind == BlockEntity {
		vec, err := s.embedder.GenerateEmbedding(ctx, block.Content)
		if err != nil {
			return errors.Wrap(err, "embed block content")
		}
		block.Embedding = pgvector.NewVector(vec)
		block.EmbeddingModel = s.embedder.Name()
	}

	return s.repo.UpsertBlock(ctx, block)
}
