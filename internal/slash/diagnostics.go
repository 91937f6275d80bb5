package slash

import (
	"fmt"
	"log"
	"sync"
)

// Severity of a compile diagnostic.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

// Diagnostic is one non-fatal finding about a command.
type Diagnostic struct {
	Severity Severity
	Command  string
	Message  string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: /%s: %s", d.Severity, d.Command, d.Message)
}

// Diagnostics collects findings during compilation. The zero value is ready
// to use and a nil *Diagnostics discards everything.
type Diagnostics struct {
	mu    sync.Mutex
	items []Diagnostic
}

func (d *Diagnostics) add(sev Severity, command, format string, args ...any) {
	if d == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.items = append(d.items, Diagnostic{Severity: sev, Command: command, Message: fmt.Sprintf(format, args...)})
}

// Warnf records a warning.
func (d *Diagnostics) Warnf(command, format string, args ...any) {
	d.add(SeverityWarning, command, format, args...)
}

// Errorf records a structural error.
func (d *Diagnostics) Errorf(command, format string, args ...any) {
	d.add(SeverityError, command, format, args...)
}

// All returns every diagnostic in the order recorded.
func (d *Diagnostics) All() []Diagnostic {
	if d == nil {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Diagnostic(nil), d.items...)
}

func (d *Diagnostics) filter(sev Severity) []Diagnostic {
	var out []Diagnostic
	for _, it := range d.All() {
		if it.Severity == sev {
			out = append(out, it)
		}
	}
	return out
}

// Errors returns the structural errors.
func (d *Diagnostics) Errors() []Diagnostic { return d.filter(SeverityError) }

// Warnings returns the warnings.
func (d *Diagnostics) Warnings() []Diagnostic { return d.filter(SeverityWarning) }

// Log writes every diagnostic to the standard logger.
func (d *Diagnostics) Log() {
	for _, it := range d.All() {
		if it.Severity == SeverityError {
			log.Printf("[ERR] Slash command /%s dropped: %s", it.Command, it.Message)
		} else {
			log.Printf("[WARN] Slash command /%s: %s", it.Command, it.Message)
		}
	}
}
