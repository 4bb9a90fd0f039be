package core

import (
	"context"
	"log/slog"
)

// Context keys for analysis runs
type contextKey string

const (
	analysisIDKey contextKey = "analysisID"
	batchKey      contextKey = "batchPosition"
)

// batchPosition is the place of a persona in a multi-persona batch.
type batchPosition struct {
	index int
	total int
}

// withAnalysisID records the tracking ID of the current analysis run
func withAnalysisID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, analysisIDKey, id)
}

// analysisIDFrom returns the tracking ID of the current run, or 0 when untracked
func analysisIDFrom(ctx context.Context) int64 {
	id, _ := ctx.Value(analysisIDKey).(int64)
	return id
}

// withBatchPosition marks the context as part of a batch
func withBatchPosition(ctx context.Context, index, total int) context.Context {
	return context.WithValue(ctx, batchKey, batchPosition{index: index, total: total})
}

// logAttrs returns the run attributes carried by the context for structured logs.
func logAttrs(ctx context.Context) []any {
	var attrs []any
	if id := analysisIDFrom(ctx); id > 0 {
		attrs = append(attrs, slog.Int64("analysis_id", id))
	}
	if pos, ok := ctx.Value(batchKey).(batchPosition); ok {
		attrs = append(attrs, slog.Int("batch_index", pos.index+1), slog.Int("batch_total", pos.total))
	}
	return attrs
}
