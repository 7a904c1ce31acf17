package ports

import "context"

// Span represents one traced unit of work.
//
//go:generate mockgen -source=tracer.go -destination=mocks/mock_tracer.go -package=mocks
type Span interface {
	// End completes the span.
	End()

	// RecordError attaches an error to the span and marks it failed.
	RecordError(err error)

	// SetAttribute attaches a key/value pair to the span.
	SetAttribute(key string, value any)
}

// Tracer creates spans for scheduled tasks.
type Tracer interface {
	// Start begins a span with the given name, returning a context
	// carrying it.
	Start(ctx context.Context, name string) (context.Context, Span)
}
