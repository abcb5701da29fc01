package usecase

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var usecaseTracer = otel.Tracer("starleague/internal/usecase")
var usecaseNoopSpan = trace.SpanFromContext(context.Background())

// startUsecaseSpan opens a child span tagged with the collections the operation touches. Calls
// without a traced parent get no span.
func startUsecaseSpan(ctx context.Context, name string, collections ...string) (context.Context, trace.Span) {
	if strings.TrimSpace(name) == "" {
		return ctx, usecaseNoopSpan
	}
	parent := trace.SpanFromContext(ctx)
	if !parent.SpanContext().IsValid() {
		return ctx, usecaseNoopSpan
	}
	var opts []trace.SpanStartOption
	if len(collections) > 0 {
		opts = append(opts, trace.WithAttributes(attribute.StringSlice("starleague.collections", collections)))
	}
	return usecaseTracer.Start(ctx, name, opts...)
}
