package database

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/mkarlsen/kontor/internal/metrics"
)

// MetricsTracer implements pgx.QueryTracer to collect database metrics.
type MetricsTracer struct{}

var _ pgx.QueryTracer = (*MetricsTracer)(nil)

type queryContextKey struct{}

type queryContext struct {
	startTime time.Time
	queryName string
}

func (t *MetricsTracer) TraceQueryStart(ctx context.Context, conn *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	qctx := queryContext{
		startTime: time.Now(),
		queryName: extractQueryName(data.SQL),
	}
	return context.WithValue(ctx, queryContextKey{}, qctx)
}

func (t *MetricsTracer) TraceQueryEnd(ctx context.Context, conn *pgx.Conn, data pgx.TraceQueryEndData) {
	qctx, ok := ctx.Value(queryContextKey{}).(queryContext)
	if !ok {
		return
	}

	duration := time.Since(qctx.startTime).Seconds()
	metrics.DBQueryDuration.WithLabelValues(qctx.queryName).Observe(duration)

	status := "ok"
	if data.Err != nil {
		status = "error"
	}
	metrics.DBQueriesTotal.WithLabelValues(qctx.queryName, status).Inc()
}

// extractQueryName reduces SQL to its leading verb so metric labels stay
// low-cardinality.
func extractQueryName(sql string) string {
	sql = strings.TrimSpace(sql)
	if sql == "" {
		return "unknown"
	}

	if i := strings.IndexAny(sql, " \n\t"); i > 0 {
		return strings.ToLower(sql[:i])
	}
	if len(sql) > 20 {
		return strings.ToLower(sql[:20])
	}
	return strings.ToLower(sql)
}
