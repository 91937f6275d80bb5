package cmd

// Middleware wraps a command (e.g. logging, recovery, metrics).
// The wrapped type remains Command; use Root to reach provider interfaces.
type Middleware func(Command) Command

// Apply applies middlewares in order; the last in the list is the outermost.
func Apply(c Command, mws ...Middleware) Command {
	for _, mw := range mws {
		c = mw(c)
	}
	return c
}

// ApplyAll wraps every command in cs.
func ApplyAll(cs []Command, mws ...Middleware) []Command {
	out := make([]Command, len(cs))
	for i, c := range cs {
		out[i] = Apply(c, mws...)
	}
	return out
}
