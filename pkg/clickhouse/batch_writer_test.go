package clickhouse

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flushRecorder struct {
	mu      sync.Mutex
	batches [][]interface{}
	err     error
}

func (f *flushRecorder) flush(ctx context.Context, batch []interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batches = append(f.batches, batch)
	return f.err
}

func (f *flushRecorder) batchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.batches)
}

func TestBatchWriter_FlushDrainsBuffer(t *testing.T) {
	rec := &flushRecorder{}
	bw := NewBatchWriter(BatchWriterConfig{FlushFunc: rec.flush, TableName: "usage"})

	ctx := context.Background()
	require.NoError(t, bw.Add(ctx, "a"))
	require.NoError(t, bw.Add(ctx, "b"))
	assert.Equal(t, 2, bw.BufferSize())

	require.NoError(t, bw.Flush(ctx))
	assert.Equal(t, 0, bw.BufferSize())
	require.Equal(t, 1, rec.batchCount())
	assert.Equal(t, []interface{}{"a", "b"}, rec.batches[0])
}

func TestBatchWriter_FlushEmptyIsNoop(t *testing.T) {
	rec := &flushRecorder{}
	bw := NewBatchWriter(BatchWriterConfig{FlushFunc: rec.flush, TableName: "usage"})

	require.NoError(t, bw.Flush(context.Background()))
	assert.Equal(t, 0, rec.batchCount())
}

func TestBatchWriter_SizeTriggerFlushesImmediately(t *testing.T) {
	rec := &flushRecorder{}
	bw := NewBatchWriter(BatchWriterConfig{
		FlushFunc:    rec.flush,
		TableName:    "usage",
		MaxBatchSize: 3,
	})

	ctx := context.Background()
	require.NoError(t, bw.Add(ctx, 1))
	require.NoError(t, bw.Add(ctx, 2))
	assert.Equal(t, 0, rec.batchCount(), "below threshold, nothing flushed")

	require.NoError(t, bw.Add(ctx, 3))
	require.Equal(t, 1, rec.batchCount())
	assert.Len(t, rec.batches[0], 3)
	assert.Equal(t, 0, bw.BufferSize())
}

func TestBatchWriter_FlushErrorIsReturned(t *testing.T) {
	rec := &flushRecorder{err: assert.AnError}
	bw := NewBatchWriter(BatchWriterConfig{FlushFunc: rec.flush, TableName: "usage"})

	ctx := context.Background()
	require.NoError(t, bw.Add(ctx, "x"))
	assert.Error(t, bw.Flush(ctx))
}

func TestBatchWriter_StopFlushesRemaining(t *testing.T) {
	rec := &flushRecorder{}
	bw := NewBatchWriter(BatchWriterConfig{
		FlushFunc: rec.flush,
		TableName: "usage",
		MaxAge:    time.Hour, // ticker must not fire during the test
	})

	ctx := context.Background()
	bw.Start(ctx)
	require.NoError(t, bw.Add(ctx, "pending"))

	require.NoError(t, bw.Stop(ctx))
	require.Equal(t, 1, rec.batchCount())
	assert.Equal(t, []interface{}{"pending"}, rec.batches[0])

	// Stop is idempotent.
	require.NoError(t, bw.Stop(ctx))
}

func TestBatchWriter_Defaults(t *testing.T) {
	bw := NewBatchWriter(BatchWriterConfig{TableName: "usage"})
	assert.Equal(t, 500, bw.maxBatchSize)
	assert.Equal(t, 5*time.Second, bw.maxAge)
}
