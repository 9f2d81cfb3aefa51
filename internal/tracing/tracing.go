// Package tracing wraps the three span-worthy operations in the
// analysis pipeline (ingest, chain-close, report assembly) with
// OpenTelemetry spans, following the teacher's own OpenTelemetry
// middleware: resolve a tracer from the global provider by name, start
// one span per unit of work, and record errors on it.
package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const defaultTracerName = "reactcheck"

// Tracer wraps a trace.Tracer resolved from the global provider. The
// zero value is unusable; use New.
type Tracer struct {
	t trace.Tracer
}

// New resolves a Tracer named name from the global TracerProvider. If
// the caller never calls otel.SetTracerProvider, this resolves to
// OpenTelemetry's no-op implementation, so tracing is always safe to
// call unconditionally.
func New(name string) *Tracer {
	if name == "" {
		name = defaultTracerName
	}
	return &Tracer{t: otel.Tracer(name)}
}

// Ingest spans one render-event ingest through the stats collector and
// chain analyzer.
func (t *Tracer) Ingest(ctx context.Context, component string) (context.Context, trace.Span) {
	return t.t.Start(ctx, "reactcheck.ingest", trace.WithAttributes(
		attribute.String("reactcheck.component", component),
	))
}

// ChainClose spans the attribution work done when a render-chain window
// closes.
func (t *Tracer) ChainClose(ctx context.Context) (context.Context, trace.Span) {
	return t.t.Start(ctx, "reactcheck.chain_close")
}

// ReportAssembly spans the `stop` sequence's report-assembly step.
func (t *Tracer) ReportAssembly(ctx context.Context, sessionID string) (context.Context, trace.Span) {
	return t.t.Start(ctx, "reactcheck.report_assembly", trace.WithAttributes(
		attribute.String("reactcheck.session_id", sessionID),
	))
}

// End records err (if any) on span and ends it, mirroring the teacher's
// span error-recording convention.
func End(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
