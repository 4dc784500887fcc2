package dbmanager

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/talx-hub/gopher-users/internal/model"
	"github.com/talx-hub/gopher-users/internal/observability"
	"github.com/talx-hub/gopher-users/internal/utils/logger"
)

type traceKey struct{}

type traceData struct {
	start     time.Time
	queryType string
}

type queryTracer struct {
	log     *slog.Logger
	metrics *observability.Metrics
}

func (t *queryTracer) TraceQueryStart(
	ctx context.Context,
	_ *pgx.Conn,
	data pgx.TraceQueryStartData,
) context.Context {
	logger.FromContextOr(ctx, t.log).LogAttrs(ctx,
		slog.LevelDebug,
		"Running query",
		slog.String("query", data.SQL),
		slog.Int("args", len(data.Args)),
	)
	return context.WithValue(ctx, traceKey{}, traceData{
		start:     time.Now(),
		queryType: observability.QueryType(data.SQL),
	})
}

func (t *queryTracer) TraceQueryEnd(
	ctx context.Context,
	_ *pgx.Conn,
	data pgx.TraceQueryEndData,
) {
	td, ok := ctx.Value(traceKey{}).(traceData)
	if !ok {
		return
	}
	elapsed := time.Since(td.start)
	if t.metrics != nil {
		t.metrics.DBQueryDuration.WithLabelValues(td.queryType).Observe(elapsed.Seconds())
	}

	if data.Err != nil {
		logger.FromContextOr(ctx, t.log).LogAttrs(ctx,
			slog.LevelDebug,
			"query failed",
			slog.Duration("elapsed", elapsed),
			slog.Any(model.KeyLoggerError, data.Err),
		)
		return
	}
	logger.FromContextOr(ctx, t.log).LogAttrs(ctx,
		slog.LevelDebug,
		"query done",
		slog.Duration("elapsed", elapsed),
		slog.String("tag", data.CommandTag.String()),
	)
}
