package cmd

// ParamType is the declared type of a command parameter. Values outside the
// known set are allowed for custom converters and are advertised as text.
type ParamType int

const (
	Text ParamType = iota
	Integer
	Boolean
	User
	Channel
	Role
	Float
)

func (t ParamType) String() string {
	switch t {
	case Text:
		return "text"
	case Integer:
		return "integer"
	case Boolean:
		return "boolean"
	case User:
		return "user"
	case Channel:
		return "channel"
	case Role:
		return "role"
	case Float:
		return "float"
	default:
		return "custom"
	}
}

// Param is one declared command parameter.
//
// Implicit parameters are supplied by the dispatcher (the invoking user) and
// never consume an argument nor appear in any published schema.
type Param struct {
	Name     string
	Type     ParamType
	Default  any
	Optional bool
	Implicit bool
}

// HasDefault reports whether the parameter may be omitted.
func (p Param) HasDefault() bool {
	return p.Optional || p.Default != nil
}

// Arg declares a required parameter.
func Arg(name string, t ParamType) Param {
	return Param{Name: name, Type: t}
}

// OptArg declares a parameter that falls back to def when omitted.
func OptArg(name string, t ParamType, def any) Param {
	return Param{Name: name, Type: t, Default: def, Optional: true}
}

// Author declares an implicit parameter filled with the invoking user.
func Author(name string) Param {
	return Param{Name: name, Type: User, Implicit: true}
}

// Exposed filters out implicit parameters, preserving order.
func Exposed(params []Param) []Param {
	out := make([]Param, 0, len(params))
	for _, p := range params {
		if !p.Implicit {
			out = append(out, p)
		}
	}
	return out
}
