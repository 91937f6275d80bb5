package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anmitsu/go-shlex"

	"github.com/keshon/slashbridge/pkg/cmd"
)

// Dispatcher resolves sources to commands and runs them.
type Dispatcher struct {
	registry   *cmd.Registry
	prefix     PrefixResolver
	converters map[cmd.ParamType]Converter
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithConverter registers or replaces the converter for a parameter type.
func WithConverter(t cmd.ParamType, conv Converter) Option {
	return func(d *Dispatcher) { d.converters[t] = conv }
}

// New returns a dispatcher over reg using prefix to recognize invocations.
func New(reg *cmd.Registry, prefix PrefixResolver, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		registry:   reg,
		prefix:     prefix,
		converters: defaultConverters(),
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// GetContext builds the invocation context for src. The context is returned
// even when nothing matched; check Valid before invoking.
func (d *Dispatcher) GetContext(ctx context.Context, src Source) (*Context, error) {
	c := &Context{Source: src}

	var prefixes []string
	if d.prefix != nil {
		var err error
		prefixes, err = d.prefix.Prefixes(ctx, src)
		if err != nil {
			return c, fmt.Errorf("resolve prefix: %w", err)
		}
	}

	content := src.Content()
	prefix, ok := matchPrefix(content, prefixes)
	if !ok {
		return c, nil
	}
	c.Prefix = prefix

	tokens := Tokenize(strings.TrimPrefix(content, prefix))
	if len(tokens) == 0 {
		return c, nil
	}

	current := d.registry.Get(tokens[0])
	if current == nil {
		return c, nil
	}
	c.Chain = []cmd.Command{current}
	c.Invoked = []string{tokens[0]}
	rest := tokens[1:]

	for len(rest) > 0 {
		children, isGroup := cmd.SubcommandsOf(current)
		if !isGroup {
			break
		}
		next := findChild(children, rest[0])
		if next == nil {
			break
		}
		current = next
		c.Chain = append(c.Chain, current)
		c.Invoked = append(c.Invoked, rest[0])
		rest = rest[1:]
	}
	c.Args = rest
	return c, nil
}

// Invoke runs the checks of every command along the resolved path, converts
// arguments, then runs the top-level command, which hands off to the leaf.
func (d *Dispatcher) Invoke(ctx context.Context, c *Context) error {
	if c == nil || !c.Valid() {
		return ErrNoCommand
	}
	leaf := c.Command()
	if _, isGroup := cmd.SubcommandsOf(leaf); isGroup {
		return fmt.Errorf("%s: %w", c.QualifiedName(), cmd.ErrNotInvocable)
	}

	inv := &cmd.Invocation{Args: c.Args, Data: c, Chain: c.Chain}
	for _, node := range c.Chain {
		for _, check := range cmd.ChecksOf(node) {
			if err := check.Run(ctx, inv); err != nil {
				return &CheckError{Command: c.QualifiedName(), Check: check.Name, Err: err}
			}
		}
	}

	values, err := d.convert(ctx, c, cmd.ParamsOf(leaf))
	if err != nil {
		return err
	}
	inv.Values = values

	return c.Chain[0].Run(ctx, inv)
}

// Process is GetContext followed by Invoke. Sources that are not command
// invocations are ignored.
func (d *Dispatcher) Process(ctx context.Context, src Source) error {
	c, err := d.GetContext(ctx, src)
	if err != nil {
		return err
	}
	if !c.Valid() {
		return nil
	}
	err = d.Invoke(ctx, c)
	if errors.Is(err, ErrNoCommand) {
		return nil
	}
	return err
}

// Tokenize splits a command line with POSIX shell quoting. Unbalanced quotes
// fall back to plain whitespace splitting.
func Tokenize(line string) []string {
	tokens, err := shlex.Split(line, true)
	if err != nil {
		return strings.Fields(line)
	}
	return tokens
}

func matchPrefix(content string, prefixes []string) (string, bool) {
	for _, p := range prefixes {
		if strings.HasPrefix(content, p) {
			return p, true
		}
	}
	return "", false
}

func findChild(children []cmd.Command, name string) cmd.Command {
	for _, c := range children {
		if c.Name() == name {
			return c
		}
	}
	return nil
}
