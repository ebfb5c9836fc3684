package domain

import "context"

// Argins are the named input values supplied by the caller for one execution.
// The runner never looks inside them.
type Argins map[string]any

// Metadata holds call-scoped contextual values for one execution.
type Metadata map[string]any

// metadataKey is unexported to prevent collisions with context keys from other packages.
type metadataKey struct{}

// WithMetadata returns a context carrying meta.
func WithMetadata(ctx context.Context, meta Metadata) context.Context {
	return context.WithValue(ctx, metadataKey{}, meta)
}

// MetadataFrom extracts the execution metadata from ctx.
// It returns an empty Metadata if none is attached.
func MetadataFrom(ctx context.Context) Metadata {
	if meta, ok := ctx.Value(metadataKey{}).(Metadata); ok {
		return meta
	}
	return Metadata{}
}
