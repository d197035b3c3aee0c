package httpapi

import (
	"context"

	"go.opentelemetry.io/otel/trace"

	"github.com/riskibarqy/roster-engine/internal/platform/tracing"
)

// Only handler entry points get spans; middleware and helpers stay inside them.
var apiTracer = tracing.New("roster-engine/internal/interfaces/httpapi", tracing.Prefix("httpapi.Handler."))

func startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return apiTracer.Start(ctx, name)
}
