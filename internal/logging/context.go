package logging

import (
	"context"
	"log/slog"
	"strings"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldInvocationID identifies one CLI invocation across all of its log lines.
	FieldInvocationID = "invocation_id"
	// FieldParset is the path of the parset being processed.
	FieldParset = "parset"
	// FieldSection is a parset section name.
	FieldSection = "section"
	// FieldKey is a parameter name within a section.
	FieldKey = "key"
	// FieldTemplate is a template name.
	FieldTemplate = "template"
	// FieldOutput is the path a command writes to.
	FieldOutput = "output"
)

type invocationKey struct{}

// ContextWithInvocationID stores id on ctx for WithContext.
func ContextWithInvocationID(ctx context.Context, id string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, invocationKey{}, id)
}

// InvocationIDFromContext returns the id stored by ContextWithInvocationID.
func InvocationIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(invocationKey{}).(string)
	if !ok || strings.TrimSpace(id) == "" {
		return "", false
	}
	return id, true
}

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	var fields []slog.Attr
	if id, ok := InvocationIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldInvocationID, id))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(Args(fields...)...)
}
