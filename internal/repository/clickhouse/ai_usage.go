package clickhouse

import (
	"context"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"maxwell/internal/domain/aiusage"
	"maxwell/internal/metrics"
	"maxwell/pkg/clickhouse"
	"maxwell/pkg/errors"
	"maxwell/pkg/logger"
)

// Compile-time check
var _ aiusage.Repository = (*AIUsageRepository)(nil)

// AIUsageRepository implements aiusage.Repository for ClickHouse.
// Inserts go through a batch writer; single row inserts are inefficient.
type AIUsageRepository struct {
	conn        driver.Conn
	batchWriter *clickhouse.BatchWriter
}

// NewAIUsageRepository creates a new AI usage repository with batch writer
func NewAIUsageRepository(conn driver.Conn) *AIUsageRepository {
	repo := &AIUsageRepository{conn: conn}

	repo.batchWriter = clickhouse.NewBatchWriter(clickhouse.BatchWriterConfig{
		FlushFunc:    repo.flushBatch,
		TableName:    "ai_usage",
		MaxBatchSize: 500,
		MaxAge:       5 * time.Second,
	})

	return repo
}

// Start begins the background flush loop
func (r *AIUsageRepository) Start(ctx context.Context) {
	r.batchWriter.Start(ctx)
}

// Stop gracefully shuts down the batch writer
func (r *AIUsageRepository) Stop(ctx context.Context) error {
	return r.batchWriter.Stop(ctx)
}

// Record buffers a usage log entry for batch insertion
func (r *AIUsageRepository) Record(ctx context.Context, log *aiusage.UsageLog) error {
	return r.batchWriter.Add(ctx, log)
}

// flushBatch performs one batch INSERT for all accumulated rows
func (r *AIUsageRepository) flushBatch(ctx context.Context, batch []interface{}) error {
	if len(batch) == 0 {
		return nil
	}

	log := logger.Get().With("component", "ai_usage_batch")

	query := `
		INSERT INTO ai_usage (
			timestamp, event_id, user_id, session_id, agent_kind,
			provider, model_id, model_family,
			prompt_tokens, completion_tokens, total_tokens,
			input_cost_usd, output_cost_usd, total_cost_usd,
			tool_calls_count, latency_ms, created_at
		) VALUES (
			?, ?, ?, ?, ?,
			?, ?, ?,
			?, ?, ?,
			?, ?, ?,
			?, ?, ?
		)
	`

	start := time.Now()

	stmt, err := r.conn.PrepareBatch(ctx, query)
	if err != nil {
		return errors.Wrap(err, "failed to prepare batch")
	}
	defer stmt.Close()

	validItems := 0
	for _, item := range batch {
		usageLog, ok := item.(*aiusage.UsageLog)
		if !ok {
			log.Warnf("Skipping invalid item type: %T", item)
			continue
		}

		err := stmt.Append(
			usageLog.Timestamp, usageLog.EventID, usageLog.UserID, usageLog.SessionID, usageLog.AgentKind,
			usageLog.Provider, usageLog.ModelID, usageLog.ModelFamily,
			usageLog.PromptTokens, usageLog.CompletionTokens, usageLog.TotalTokens,
			usageLog.InputCostUSD, usageLog.OutputCostUSD, usageLog.TotalCostUSD,
			usageLog.ToolCallsCount, usageLog.LatencyMs, usageLog.CreatedAt,
		)
		if err != nil {
			return errors.Wrap(err, "failed to append to batch")
		}
		validItems++
	}

	err = stmt.Send()
	metrics.ObserveDBQuery("clickhouse", "usage_insert", err)
	if err != nil {
		return errors.Wrap(err, "failed to send batch")
	}

	log.Infof("Batch inserted %d AI usage records in %v", validItems, time.Since(start))
	return nil
}

// GetUserDailyCost returns total cost for a user on a specific day
func (r *AIUsageRepository) GetUserDailyCost(ctx context.Context, userID string, date time.Time) (float64, error) {
	query := `
		SELECT sum(total_cost_usd) as total_cost
		FROM ai_usage
		WHERE user_id = ? AND toDate(timestamp) = toDate(?)
	`

	var totalCost float64
	err := r.conn.QueryRow(ctx, query, userID, date).Scan(&totalCost)
	metrics.ObserveDBQuery("clickhouse", "user_daily_cost", err)
	if err != nil {
		return 0, errors.Wrap(err, "failed to get user daily cost")
	}

	return totalCost, nil
}

// GetProviderCosts returns costs grouped by provider for a time range
func (r *AIUsageRepository) GetProviderCosts(ctx context.Context, from, to time.Time) (map[string]float64, error) {
	return r.groupedCosts(ctx, "provider", from, to)
}

// GetAgentCosts returns costs grouped by agent kind for a time range
func (r *AIUsageRepository) GetAgentCosts(ctx context.Context, from, to time.Time) (map[string]float64, error) {
	return r.groupedCosts(ctx, "agent_kind", from, to)
}

func (r *AIUsageRepository) groupedCosts(ctx context.Context, column string, from, to time.Time) (map[string]float64, error) {
	query := `
		SELECT ` + column + `, sum(total_cost_usd) as total_cost
		FROM ai_usage
		WHERE timestamp BETWEEN ? AND ?
		GROUP BY ` + column + `
		ORDER BY total_cost DESC
	`

	rows, err := r.conn.Query(ctx, query, from, to)
	metrics.ObserveDBQuery("clickhouse", "costs_by_"+column, err)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to query costs by %s", column)
	}
	defer rows.Close()

	costs := make(map[string]float64)
	for rows.Next() {
		var key string
		var cost float64
		if err := rows.Scan(&key, &cost); err != nil {
			return nil, errors.Wrap(err, "failed to scan cost row")
		}
		costs[key] = cost
	}

	return costs, nil
}
