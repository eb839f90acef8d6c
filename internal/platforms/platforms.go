// Package platforms defines the converter contract shared by every
// platform integration and the registry the HTTP layer dispatches on.
package platforms

import (
	"context"
	"sort"
)

// Converter turns a platform-specific identifier (article slug, video ID
// or URL) into a finished Markdown document.
type Converter interface {
	ToMarkdown(ctx context.Context, identifier string) (string, error)
}

// Registry maps platform keys to converters. Populated once at startup,
// read-only afterwards.
type Registry struct {
	entries map[string]Converter
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Converter)}
}

// Register adds a converter under the given platform key.
func (r *Registry) Register(key string, c Converter) {
	r.entries[key] = c
}

// Lookup returns the converter for key, or nil when unknown.
func (r *Registry) Lookup(key string) Converter {
	return r.entries[key]
}

// Keys returns the registered platform keys, sorted.
func (r *Registry) Keys() []string {
	keys := make([]string, 0, len(r.entries))
	for k := range r.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
