package slash

import (
	"context"
	"regexp"
	"slices"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/slashbridge/internal/dispatch"
	"github.com/keshon/slashbridge/pkg/cmd"
)

// Platform limits.
const (
	MaxChildren = 25
	MaxOptions  = 25
	maxDepth    = 2
)

var nameRe = regexp.MustCompile(`^[-_\p{Ll}\p{Lm}\p{Lo}\p{N}]{1,32}$`)

// Compiler turns command trees into descriptors.
type Compiler struct {
	owners        dispatch.OwnerResolver
	includeHidden bool
}

// CompilerOption configures a Compiler.
type CompilerOption func(*Compiler)

// IncludeHidden compiles hidden commands too, for scopes such as a
// development guild.
func IncludeHidden() CompilerOption {
	return func(c *Compiler) { c.includeHidden = true }
}

// NewCompiler returns a compiler that resolves owner overrides with owners.
func NewCompiler(owners dispatch.OwnerResolver, opts ...CompilerOption) *Compiler {
	c := &Compiler{owners: owners}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Compile builds the descriptor for one top-level command, or nil when the
// command is hidden, empty, or structurally invalid. Problems are recorded in
// diags and never abort compilation of other commands.
func (c *Compiler) Compile(ctx context.Context, command cmd.Command, diags *Diagnostics) *Descriptor {
	return c.compile(ctx, command, nil, diags)
}

// CompileAll compiles commands in order, skipping the ones that drop out.
func (c *Compiler) CompileAll(ctx context.Context, commands []cmd.Command, diags *Diagnostics) []*Descriptor {
	out := make([]*Descriptor, 0, len(commands))
	for _, command := range commands {
		if d := c.Compile(ctx, command, diags); d != nil {
			out = append(out, d)
		}
	}
	return out
}

func (c *Compiler) compile(ctx context.Context, command cmd.Command, parents []string, diags *Diagnostics) *Descriptor {
	if cmd.IsHidden(command) && !c.includeHidden {
		return nil
	}

	path := append(slices.Clone(parents), command.Name())
	qualified := strings.Join(path, " ")
	if !nameRe.MatchString(command.Name()) {
		diags.Errorf(qualified, "invalid name %q: use 1-32 lowercase letters, digits, - or _", command.Name())
		return nil
	}

	if children, isGroup := cmd.SubcommandsOf(command); isGroup {
		return c.compileGroup(ctx, command, children, path, diags)
	}
	return c.compileLeaf(ctx, command, path, diags)
}

func (c *Compiler) compileGroup(ctx context.Context, command cmd.Command, children []cmd.Command, path []string, diags *Diagnostics) *Descriptor {
	qualified := strings.Join(path, " ")
	depth := len(path) - 1

	if len(children) > MaxChildren {
		diags.Errorf(qualified, "group declares %d subcommands, the limit is %d", len(children), MaxChildren)
		return nil
	}
	if depth >= maxDepth {
		diags.Errorf(qualified, "groups cannot be nested more than %d levels deep", maxDepth)
		return nil
	}

	var options []*Option
	for _, child := range children {
		if d := c.compile(ctx, child, path, diags); d != nil {
			options = append(options, d.asOption())
		}
	}
	if len(options) == 0 {
		return nil
	}

	desc := newDescriptor(command)
	desc.Options = options
	desc.group = true
	if !c.applyCapabilities(ctx, command, desc, depth, qualified, diags) {
		return nil
	}
	return desc
}

func (c *Compiler) compileLeaf(ctx context.Context, command cmd.Command, path []string, diags *Diagnostics) *Descriptor {
	qualified := strings.Join(path, " ")
	depth := len(path) - 1

	params := cmd.Exposed(cmd.ParamsOf(command))
	if len(params) > MaxOptions {
		diags.Errorf(qualified, "command declares %d parameters, the limit is %d", len(params), MaxOptions)
		return nil
	}

	desc := newDescriptor(command)
	if !c.applyCapabilities(ctx, command, desc, depth, qualified, diags) {
		return nil
	}

	seenOptional := false
	for i, p := range params {
		if !nameRe.MatchString(p.Name) {
			diags.Errorf(qualified, "invalid parameter name %q", p.Name)
			return nil
		}
		required := !p.HasDefault()
		if required && seenOptional {
			diags.Warnf(qualified, "required parameter %q follows an optional one", p.Name)
		}
		seenOptional = seenOptional || !required

		desc.Options = append(desc.Options, &Option{
			Name:        p.Name,
			Description: describeParam(command, i, qualified, diags),
			Type:        OptionType(p.Type),
			Required:    required,
		})
	}
	return desc
}

// applyCapabilities reports false when the command must be dropped.
func (c *Compiler) applyCapabilities(ctx context.Context, command cmd.Command, desc *Descriptor, depth int, qualified string, diags *Diagnostics) bool {
	caps, err := Scan(ctx, command, c.owners)
	if err != nil {
		diags.Errorf(qualified, "%v", err)
		return false
	}
	if !caps.Restricted() {
		return true
	}
	if depth > 0 {
		diags.Warnf(qualified, "restrictions cannot be published on subcommands; they are enforced at invocation only")
		return true
	}
	if caps.NSFW {
		nsfw := true
		desc.NSFW = &nsfw
	}
	if caps.OwnerOnly {
		desc.DefaultPermission = false
		desc.Permissions = caps.Overrides
	}
	return true
}

func newDescriptor(command cmd.Command) *Descriptor {
	return &Descriptor{
		Name:              command.Name(),
		Description:       Describe(command),
		Options:           []*Option{},
		Type:              discordgo.ChatApplicationCommand,
		DefaultPermission: true,
		Permissions:       []PermissionOverride{},
	}
}
