package dispatch

import "context"

// PrefixResolver decides which prefixes a source may use. The dispatcher
// takes one at construction; wrap it to change resolution for some sources.
type PrefixResolver interface {
	Prefixes(ctx context.Context, src Source) ([]string, error)
}

// PrefixFunc adapts a function to PrefixResolver.
type PrefixFunc func(ctx context.Context, src Source) ([]string, error)

func (f PrefixFunc) Prefixes(ctx context.Context, src Source) ([]string, error) {
	return f(ctx, src)
}

// StaticPrefix accepts the same prefixes everywhere.
type StaticPrefix []string

func (p StaticPrefix) Prefixes(context.Context, Source) ([]string, error) {
	out := make([]string, len(p))
	copy(out, p)
	return out, nil
}

// WhenMentioned adds the bot mention forms in front of the fallback prefixes.
func WhenMentioned(botID func() string, fallback PrefixResolver) PrefixResolver {
	return PrefixFunc(func(ctx context.Context, src Source) ([]string, error) {
		var out []string
		if id := botID(); id != "" {
			out = append(out, "<@"+id+"> ", "<@!"+id+"> ")
		}
		if fallback == nil {
			return out, nil
		}
		rest, err := fallback.Prefixes(ctx, src)
		if err != nil {
			return nil, err
		}
		return append(out, rest...), nil
	})
}
