package ports

import (
	"context"
	"io"
)

//go:generate mockgen -source=telemetry.go -destination=mocks/mock_telemetry.go -package=mocks

// Tracer is the entry point for creating spans.
type Tracer interface {
	// Start creates a new span.
	Start(ctx context.Context, name string, opts ...SpanOption) (context.Context, Span)
	// EmitPlan signals that a set of module tasks is planned for execution.
	// deps maps each task to the tasks it waits for; targets are the requested task names.
	EmitPlan(ctx context.Context, taskNames []string, deps map[string][]string, targets []string)
}

// Span represents a unit of work.
type Span interface {
	io.Writer
	// End completes the span.
	End()
	// RecordError records an error for the span.
	RecordError(err error)
	// SetAttribute adds a key-value pair to the span.
	SetAttribute(key string, value any)
}

// SpanConfig holds configuration for a starting span.
type SpanConfig struct {
	// Silent spans are recorded but not forwarded to the renderer.
	Silent bool
}

// SpanOption is a functional option for configuring a span.
type SpanOption func(*SpanConfig)

// WithSilent marks a span as internal bookkeeping that renderers should not display.
func WithSilent() SpanOption {
	return func(c *SpanConfig) {
		c.Silent = true
	}
}
