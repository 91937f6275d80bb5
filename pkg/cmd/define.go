package cmd

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
)

// ErrNotInvocable is returned when a group is run directly instead of one of
// its subcommands.
var ErrNotInvocable = errors.New("group is not directly invocable")

// Option configures a command built with New or NewGroup.
type Option func(*definition)

// WithDescription sets the one-line description.
func WithDescription(s string) Option { return func(d *definition) { d.description = s } }

// WithHelp sets the free-form help text.
func WithHelp(s string) Option { return func(d *definition) { d.help = s } }

// WithParams declares parameters in order.
func WithParams(ps ...Param) Option {
	return func(d *definition) { d.params = append(d.params, ps...) }
}

// WithChecks appends guard checks.
func WithChecks(cs ...Check) Option {
	return func(d *definition) { d.checks = append(d.checks, cs...) }
}

// AsHidden keeps the command out of published schemas and listings.
func AsHidden() Option { return func(d *definition) { d.hidden = true } }

type definition struct {
	name        string
	description string
	help        string
	params      []Param
	checks      []Check
	hidden      bool
	source      string
}

func (d *definition) Name() string        { return d.name }
func (d *definition) Description() string { return d.description }
func (d *definition) Help() string        { return d.help }
func (d *definition) Params() []Param     { return d.params }
func (d *definition) Checks() []Check     { return d.checks }
func (d *definition) Hidden() bool        { return d.hidden }
func (d *definition) Source() string      { return d.source }

func newDefinition(name string, opts []Option) definition {
	d := definition{name: name, source: callerSource(3)}
	for _, o := range opts {
		o(&d)
	}
	return d
}

func callerSource(skip int) string {
	_, file, line, ok := runtime.Caller(skip)
	if !ok {
		return ""
	}
	return fmt.Sprintf("%s:%d", filepath.Base(file), line)
}

// Func is a leaf command backed by a function.
type Func struct {
	definition
	run RunFunc
}

// New defines a leaf command.
func New(name string, run RunFunc, opts ...Option) *Func {
	return &Func{definition: newDefinition(name, opts), run: run}
}

// Run executes the command.
func (f *Func) Run(ctx context.Context, inv *Invocation) error {
	if f.run == nil {
		return nil
	}
	return f.run(ctx, inv)
}

// Group is a command whose children are commands.
type Group struct {
	definition
	children []Command
}

// NewGroup defines a group with children in declaration order.
func NewGroup(name string, children []Command, opts ...Option) *Group {
	return &Group{definition: newDefinition(name, opts), children: children}
}

// Add appends children.
func (g *Group) Add(children ...Command) { g.children = append(g.children, children...) }

// Subcommands returns the children in declaration order.
func (g *Group) Subcommands() []Command { return g.children }

// Child returns the direct child with the given name, or nil.
func (g *Group) Child(name string) Command {
	for _, c := range g.children {
		if c.Name() == name {
			return c
		}
	}
	return nil
}

// Run hands the invocation to the next command in inv.Chain. Without a
// selected child it fails with ErrNotInvocable.
func (g *Group) Run(ctx context.Context, inv *Invocation) error {
	if inv != nil {
		for i, c := range inv.Chain {
			if Root(c) == Command(g) && i+1 < len(inv.Chain) {
				return inv.Chain[i+1].Run(ctx, inv)
			}
		}
	}
	return fmt.Errorf("%s: %w", g.name, ErrNotInvocable)
}
