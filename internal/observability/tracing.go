package observability

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// StartSpan starts a new span from context
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return otel.Tracer(instrumentationName).Start(ctx, name, opts...)
}

// StartClientSpan starts a span for an outbound call to a remote API
func StartClientSpan(ctx context.Context, peer, method string) (context.Context, trace.Span) {
	return StartSpan(ctx, fmt.Sprintf("%s %s", peer, method),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("peer.service", peer),
			attribute.String("rpc.method", method),
		),
	)
}

// StartServiceSpan starts a span for service operations
func StartServiceSpan(ctx context.Context, service, operation string) (context.Context, trace.Span) {
	return StartSpan(ctx, fmt.Sprintf("%s.%s", service, operation),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("service.component", service),
			attribute.String("service.operation", operation),
		),
	)
}

// RecordError records an error on the span
func RecordError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// SetSuccess marks the span as successful
func SetSuccess(span trace.Span) {
	span.SetStatus(codes.Ok, "")
}

// AddEvent adds an event to the span
func AddEvent(span trace.Span, name string, attrs ...attribute.KeyValue) {
	span.AddEvent(name, trace.WithAttributes(attrs...))
}

// TraceDB wraps sql.DB with tracing. System is the db.system attribute
// ("sqlite" or "postgresql").
type TraceDB struct {
	db     *sql.DB
	system string
}

// NewTraceDB creates a traced database wrapper
func NewTraceDB(db *sql.DB, system string) *TraceDB {
	return &TraceDB{db: db, system: system}
}

// start names the span "<system>.<op>", e.g. sqlite.exec
func (t *TraceDB) start(ctx context.Context, op, query string) (context.Context, trace.Span) {
	return StartSpan(ctx, t.system+"."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", t.system),
			attribute.String("db.statement", truncateQuery(query)),
		),
	)
}

// QueryContext executes a query with tracing
func (t *TraceDB) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	ctx, span := t.start(ctx, "query", query)
	defer span.End()

	start := time.Now()
	rows, err := t.db.QueryContext(ctx, query, args...)
	if err != nil {
		RecordError(span, err)
	} else {
		SetSuccess(span)
	}
	span.SetAttributes(attribute.Int64("db.query_duration_ms", time.Since(start).Milliseconds()))

	return rows, err
}

// ExecContext executes a statement with tracing
func (t *TraceDB) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	ctx, span := t.start(ctx, "exec", query)
	defer span.End()

	start := time.Now()
	result, err := t.db.ExecContext(ctx, query, args...)
	if err != nil {
		RecordError(span, err)
	} else {
		SetSuccess(span)
		if n, raErr := result.RowsAffected(); raErr == nil {
			span.SetAttributes(attribute.Int64("db.rows_affected", n))
		}
	}
	span.SetAttributes(attribute.Int64("db.query_duration_ms", time.Since(start).Milliseconds()))

	return result, err
}

// QueryRowContext executes a query that returns a single row with tracing.
// The span ends before the row is scanned.
func (t *TraceDB) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	ctx, span := t.start(ctx, "query_row", query)
	defer span.End()
	return t.db.QueryRowContext(ctx, query, args...)
}

// BeginTx starts a transaction; statements inside it are not individually traced
func (t *TraceDB) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	return t.db.BeginTx(ctx, opts)
}

// DB returns the underlying database connection
func (t *TraceDB) DB() *sql.DB {
	return t.db
}

// System returns the db.system name
func (t *TraceDB) System() string {
	return t.system
}

// Close closes the underlying database
func (t *TraceDB) Close() error {
	return t.db.Close()
}

func truncateQuery(query string) string {
	if len(query) > 500 {
		return query[:500] + "..."
	}
	return query
}
