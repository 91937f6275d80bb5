package dispatch

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/keshon/slashbridge/pkg/cmd"
)

// Converter turns one raw argument into a value for a parameter type.
type Converter func(ctx context.Context, c *Context, raw string) (any, error)

var (
	errNotBool      = errors.New("expected yes/no")
	errNotSnowflake = errors.New("expected a mention or an ID")

	mentionRe = regexp.MustCompile(`^<(?:@!?|@&|#)(\d+)>$`)
	idRe      = regexp.MustCompile(`^\d+$`)
)

func defaultConverters() map[cmd.ParamType]Converter {
	return map[cmd.ParamType]Converter{
		cmd.Text:    convertText,
		cmd.Integer: convertInteger,
		cmd.Float:   convertFloat,
		cmd.Boolean: convertBool,
		cmd.User:    convertSnowflake,
		cmd.Channel: convertSnowflake,
		cmd.Role:    convertSnowflake,
	}
}

func convertText(_ context.Context, _ *Context, raw string) (any, error) { return raw, nil }

func convertInteger(_ context.Context, _ *Context, raw string) (any, error) {
	return strconv.ParseInt(raw, 10, 64)
}

func convertFloat(_ context.Context, _ *Context, raw string) (any, error) {
	return strconv.ParseFloat(raw, 64)
}

func convertBool(_ context.Context, _ *Context, raw string) (any, error) {
	switch strings.ToLower(raw) {
	case "yes", "y", "true", "t", "1", "enable", "on":
		return true, nil
	case "no", "n", "false", "f", "0", "disable", "off":
		return false, nil
	}
	return nil, errNotBool
}

// convertSnowflake accepts <@id>, <@!id>, <@&id>, <#id> or a bare ID.
func convertSnowflake(_ context.Context, _ *Context, raw string) (any, error) {
	if m := mentionRe.FindStringSubmatch(raw); m != nil {
		return m[1], nil
	}
	if idRe.MatchString(raw) {
		return raw, nil
	}
	return nil, errNotSnowflake
}

// convert fills one value per declared parameter (implicit ones included),
// consuming c.Args in order. A trailing text parameter absorbs extra words.
func (d *Dispatcher) convert(ctx context.Context, c *Context, params []cmd.Param) ([]any, error) {
	values := make([]any, len(params))
	lastExposed := -1
	for i, p := range params {
		if !p.Implicit {
			lastExposed = i
		}
	}

	next := 0
	for i, p := range params {
		if p.Implicit {
			values[i] = c.Source.Author()
			continue
		}
		if next >= len(c.Args) {
			if p.HasDefault() {
				values[i] = p.Default
				continue
			}
			return nil, &ArgumentError{Command: c.QualifiedName(), Param: p.Name, Err: errMissing}
		}

		raw := c.Args[next]
		next++
		if i == lastExposed && p.Type == cmd.Text && next < len(c.Args) {
			raw = strings.Join(c.Args[next-1:], " ")
			next = len(c.Args)
		}

		v, err := d.converter(p.Type)(ctx, c, raw)
		if err != nil {
			return nil, &ArgumentError{Command: c.QualifiedName(), Param: p.Name, Raw: raw, Err: err}
		}
		values[i] = v
	}
	return values, nil
}

func (d *Dispatcher) converter(t cmd.ParamType) Converter {
	if conv, ok := d.converters[t]; ok {
		return conv
	}
	return convertText
}
