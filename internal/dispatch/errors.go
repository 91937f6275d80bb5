package dispatch

import (
	"errors"
	"fmt"
)

// ErrNoCommand is returned when a context does not resolve to a command.
var ErrNoCommand = errors.New("no command")

// CheckError reports a failed guard check.
type CheckError struct {
	Command string
	Check   string
	Err     error
}

func (e *CheckError) Error() string {
	return fmt.Sprintf("check %q failed for %s: %v", e.Check, e.Command, e.Err)
}

func (e *CheckError) Unwrap() error { return e.Err }

// ArgumentError reports a missing or unconvertible argument.
type ArgumentError struct {
	Command string
	Param   string
	Raw     string
	Err     error
}

func (e *ArgumentError) Error() string {
	if e.Raw == "" {
		return fmt.Sprintf("%s: argument %q: %v", e.Command, e.Param, e.Err)
	}
	return fmt.Sprintf("%s: argument %q (%q): %v", e.Command, e.Param, e.Raw, e.Err)
}

func (e *ArgumentError) Unwrap() error { return e.Err }

var errMissing = errors.New("missing required argument")

// UserMessage renders err for the person who invoked the command.
func UserMessage(err error) string {
	var ce *CheckError
	var ae *ArgumentError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &ce):
		if errors.Is(ce.Err, ErrNotOwner) {
			return "⚠️ Only the bot owner can use this command."
		}
		if errors.Is(ce.Err, ErrNSFWChannel) {
			return "⚠️ This command can only be used in age-restricted channels."
		}
		if errors.Is(ce.Err, ErrGuildOnly) {
			return "⚠️ This command cannot be used in direct messages."
		}
		return "⚠️ You cannot use this command here."
	case errors.As(err, &ae):
		if errors.Is(ae.Err, errMissing) {
			return fmt.Sprintf("⚠️ Missing argument `%s`.", ae.Param)
		}
		return fmt.Sprintf("⚠️ Invalid value for `%s`: %v", ae.Param, ae.Err)
	case errors.Is(err, ErrNoCommand):
		return "⚠️ Unknown command."
	default:
		return "⚠️ Something went wrong while running this command."
	}
}
