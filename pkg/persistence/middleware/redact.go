package middleware

import (
	"context"
	"regexp"

	"github.com/aretw0/machine/pkg/domain"
	"github.com/aretw0/machine/pkg/ports"
)

// Mask replaces redacted values.
const Mask = "***"

type redactMiddleware struct {
	next     ports.Journal
	patterns []*regexp.Regexp
}

// NewRedactMiddleware creates a middleware that masks result values whose
// keys match any of the patterns before a record is persisted.
// It panics if a pattern does not compile.
func NewRedactMiddleware(patternStrings []string) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.Journal) ports.Journal {
		return &redactMiddleware{next: next, patterns: patterns}
	}
}

func (m *redactMiddleware) Record(ctx context.Context, rec domain.Record) error {
	// The result may still be referenced by the caller; mask a copy.
	if result, ok := asMap(rec.Result); ok {
		masked := deepCopyMap(result)
		maskMap(masked, m.patterns)
		rec.Result = masked
	}
	return m.next.Record(ctx, rec)
}

func (m *redactMiddleware) Get(ctx context.Context, id string) (domain.Record, error) {
	return m.next.Get(ctx, id)
}

func (m *redactMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func (m *redactMiddleware) Delete(ctx context.Context, id string) error {
	return m.next.Delete(ctx, id)
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case domain.Argins:
		return m, true
	case domain.Metadata:
		return m, true
	default:
		return nil, false
	}
}

func deepCopyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if sub, ok := asMap(v); ok {
			out[k] = deepCopyMap(sub)
			continue
		}
		if list, ok := v.([]any); ok {
			out[k] = deepCopySlice(list)
			continue
		}
		out[k] = v
	}
	return out
}

func deepCopySlice(s []any) []any {
	out := make([]any, len(s))
	for i, v := range s {
		if sub, ok := asMap(v); ok {
			out[i] = deepCopyMap(sub)
			continue
		}
		out[i] = v
	}
	return out
}

func maskMap(m map[string]any, patterns []*regexp.Regexp) {
	for k, v := range m {
		if matchesAny(k, patterns) {
			m[k] = Mask
			continue
		}
		switch sub := v.(type) {
		case map[string]any:
			maskMap(sub, patterns)
		case []any:
			for _, item := range sub {
				if nested, ok := item.(map[string]any); ok {
					maskMap(nested, patterns)
				}
			}
		}
	}
}

func matchesAny(key string, patterns []*regexp.Regexp) bool {
	for _, p := range patterns {
		if p.MatchString(key) {
			return true
		}
	}
	return false
}
