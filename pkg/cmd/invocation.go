// Package cmd provides a transport-agnostic command core: a command is something
// with a name, description, and Run(ctx, invocation). How it is registered and
// dispatched (text prefix, Discord slash, CLI) is defined by adapters that wrap this.
//
// Everything beyond identity and execution is optional and discovered through
// provider interfaces on the root command (see Root): help text, declared
// parameters, guard checks, subcommands and visibility.
package cmd

import "context"

// Invocation carries the input any command runner can pass: raw arguments,
// converted values, and an opaque payload. Adapters set Data to their context
// (e.g. *dispatch.Context for text and slash invocations).
//
// Chain is the resolved command path, top-level command first and the leaf
// last. Groups use it to hand the invocation down to the selected child.
type Invocation struct {
	Args   []string
	Values []any
	Data   interface{}
	Chain  []Command
}

// Value returns the converted value at position i, or nil when absent.
func (inv *Invocation) Value(i int) any {
	if inv == nil || i < 0 || i >= len(inv.Values) {
		return nil
	}
	return inv.Values[i]
}

// Command is the universal contract: identity plus execution. Permissions, flags,
// subcommands, and transport-specific registration stay in provider interfaces.
type Command interface {
	Name() string
	Description() string
	Run(ctx context.Context, inv *Invocation) error
}

// RunFunc is the execution half of a Command.
type RunFunc func(ctx context.Context, inv *Invocation) error

// HelpProvider exposes free-form help text. A Google-style "Args:" section in
// the text documents parameters in declaration order.
type HelpProvider interface {
	Help() string
}

// ParamProvider exposes the declared parameters in order.
type ParamProvider interface {
	Params() []Param
}

// CheckProvider exposes the guard predicates that must pass before Run.
type CheckProvider interface {
	Checks() []Check
}

// GroupProvider is implemented by commands whose children are commands.
type GroupProvider interface {
	Subcommands() []Command
}

// HiddenProvider marks commands that should not be advertised.
type HiddenProvider interface {
	Hidden() bool
}

// SourceProvider reports where a command was defined (file:line).
type SourceProvider interface {
	Source() string
}

// HelpOf returns c's help text or "".
func HelpOf(c Command) string {
	if hp, ok := Root(c).(HelpProvider); ok {
		return hp.Help()
	}
	return ""
}

// ParamsOf returns c's declared parameters or nil.
func ParamsOf(c Command) []Param {
	if pp, ok := Root(c).(ParamProvider); ok {
		return pp.Params()
	}
	return nil
}

// ChecksOf returns c's guard checks or nil.
func ChecksOf(c Command) []Check {
	if cp, ok := Root(c).(CheckProvider); ok {
		return cp.Checks()
	}
	return nil
}

// SubcommandsOf returns c's children and whether c is a group.
func SubcommandsOf(c Command) ([]Command, bool) {
	if gp, ok := Root(c).(GroupProvider); ok {
		return gp.Subcommands(), true
	}
	return nil, false
}

// IsHidden reports whether c is hidden.
func IsHidden(c Command) bool {
	if hp, ok := Root(c).(HiddenProvider); ok {
		return hp.Hidden()
	}
	return false
}

// SourceOf returns where c was defined, or "unknown".
func SourceOf(c Command) string {
	if sp, ok := Root(c).(SourceProvider); ok {
		if s := sp.Source(); s != "" {
			return s
		}
	}
	return "unknown"
}
