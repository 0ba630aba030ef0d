package hydrate

import (
	"context"
	"fmt"
	"strings"
)

const (
	// ReferencePrefix marks a value as an indirect secret reference.
	ReferencePrefix = "op://"

	// MaxReferenceDepth bounds how many references are followed for one value.
	// A depth bound stands in for cycle detection.
	MaxReferenceDepth = 9
)

// ReferenceResolver dereferences a single op:// reference.
type ReferenceResolver interface {
	ResolveReference(ctx context.Context, ref string) (string, error)
}

// IsReference reports whether raw is an indirect reference.
func IsReference(raw string) bool {
	return strings.HasPrefix(raw, ReferencePrefix)
}

// ResolveLink follows a chain of references until it reaches a value that is
// not a reference. Plain values are returned unchanged without any call to
// the resolver.
func ResolveLink(ctx context.Context, resolver ReferenceResolver, raw string) (string, error) {
	start := raw
	hops := 0
	for IsReference(raw) {
		next, err := resolver.ResolveReference(ctx, raw)
		if err != nil {
			return "", fmt.Errorf("failed to resolve reference %q: %w", raw, err)
		}
		hops++
		observeReferenceHop()
		if hops > MaxReferenceDepth {
			return "", fmt.Errorf("%w: more than %d hops following %q", ErrReferenceChainTooDeep, MaxReferenceDepth, start)
		}
		raw = next
	}
	return raw, nil
}
