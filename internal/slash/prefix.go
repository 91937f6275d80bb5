package slash

import (
	"context"

	"github.com/keshon/slashbridge/internal/dispatch"
)

// PrefixOverride answers Sentinel for synthetic invocations and defers to
// Fallback for everything else.
type PrefixOverride struct {
	Fallback dispatch.PrefixResolver
}

func (p PrefixOverride) Prefixes(ctx context.Context, src dispatch.Source) ([]string, error) {
	if _, ok := src.(*Invocation); ok {
		return []string{Sentinel}, nil
	}
	if p.Fallback == nil {
		return nil, nil
	}
	return p.Fallback.Prefixes(ctx, src)
}
