package cmd

import (
	"context"
	"slices"
)

// Capability is a structured tag attached to a guard check. Adapters that
// publish command schemas translate recognized capabilities into their own
// restrictions; unknown capabilities are ignored.
type Capability string

const (
	CapAdultContent Capability = "adult-content-required"
	CapOwner        Capability = "owner-required"
)

// Capabilities is a sorted, duplicate-free set of capability tags.
type Capabilities []Capability

// Has reports whether c is in the set.
func (cs Capabilities) Has(c Capability) bool {
	_, ok := slices.BinarySearch(cs, c)
	return ok
}

func (cs Capabilities) with(add ...Capability) Capabilities {
	out := slices.Clone(cs)
	for _, c := range add {
		if i, ok := slices.BinarySearch(out, c); !ok {
			out = slices.Insert(out, i, c)
		}
	}
	return out
}

// CheckFunc returns nil when the invocation may proceed.
type CheckFunc func(ctx context.Context, inv *Invocation) error

// Check is a named guard predicate with an optional capability record.
type Check struct {
	Name string
	Fn   CheckFunc
	caps Capabilities
}

// NewCheck returns an untagged check.
func NewCheck(name string, fn CheckFunc) Check {
	return Check{Name: name, Fn: fn}
}

// Tag returns a copy of c carrying caps in addition to its existing tags.
// This is the only way capabilities get attached; nothing is shared.
func Tag(c Check, caps ...Capability) Check {
	c.caps = c.caps.with(caps...)
	return c
}

// Capabilities returns the tags attached with Tag.
func (c Check) Capabilities() Capabilities {
	return slices.Clone(c.caps)
}

// Run evaluates the predicate. A check without a function always passes.
func (c Check) Run(ctx context.Context, inv *Invocation) error {
	if c.Fn == nil {
		return nil
	}
	return c.Fn(ctx, inv)
}
