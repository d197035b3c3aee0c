// Package tracing starts child spans for internal layers. Spans are only
// opened beneath an existing, valid parent, so untraced requests (health
// probes, background sweeps without a root) never grow orphan roots.
package tracing

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var noop = trace.SpanFromContext(context.Background())

type Tracer struct {
	name string
	keep func(spanName string) bool
}

// New returns a Tracer for one instrumentation scope. keep filters span
// names; nil keeps every non-blank name.
func New(scope string, keep func(spanName string) bool) Tracer {
	return Tracer{name: scope, keep: keep}
}

// Prefix keeps only span names beginning with p.
func Prefix(p string) func(string) bool {
	return func(name string) bool { return strings.HasPrefix(name, p) }
}

// Start opens a child span, or returns ctx with a no-op span when there is
// no parent or the name is filtered out.
func (t Tracer) Start(ctx context.Context, spanName string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if strings.TrimSpace(spanName) == "" || !trace.SpanContextFromContext(ctx).IsValid() {
		return ctx, noop
	}
	if t.keep != nil && !t.keep(spanName) {
		return ctx, noop
	}
	// Resolved per call so a provider installed after package init is used.
	return otel.Tracer(t.name).Start(ctx, spanName, trace.WithAttributes(attrs...))
}
