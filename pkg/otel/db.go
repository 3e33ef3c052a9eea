package otel

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// StoreSpan wraps one document store operation in a client span.
func StoreSpan(ctx context.Context, driver, operation, collection string, fn func(context.Context) error) error {
	ctx, span := Tracer().Start(ctx, "store."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", driver),
			attribute.String("db.operation", operation),
			attribute.String("db.collection", collection),
		),
	)
	defer span.End()

	err := fn(ctx)
	RecordError(span, err)
	return err
}

// RecordError marks span as failed when err is non-nil.
func RecordError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}
	span.SetStatus(codes.Ok, "")
}
