package slash

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/keshon/slashbridge/pkg/cmd"
)

const (
	maxDescription      = 100
	fallbackDescription = "Un-described command"
	ellipsis            = "…"
)

var (
	docHeaderRe = regexp.MustCompile(`(?i)^(args|arguments|params|parameters)\s*:\s*$`)
	docEntryRe  = regexp.MustCompile(`^\*{0,2}([A-Za-z_][\w-]*)\s*(?:\([^)]*\))?\s*:\s*(.*)$`)
)

// Describe returns the published description of c: the explicit description,
// else the first line of its help text, else a fixed fallback. Only the first
// line is kept and the result never exceeds 100 characters.
func Describe(c cmd.Command) string {
	desc := firstLine(c.Description())
	if desc == "" {
		desc = firstLine(cmd.HelpOf(c))
	}
	if desc == "" {
		desc = fallbackDescription
	}
	return truncate(desc)
}

// DescribeParam returns the description of the index-th published parameter
// of c, taken positionally from the "Args:" section of its help text. A
// missing entry yields "<name> argument" and a warning in diags.
func DescribeParam(c cmd.Command, index int, diags *Diagnostics) string {
	return describeParam(c, index, c.Name(), diags)
}

func describeParam(c cmd.Command, index int, path string, diags *Diagnostics) string {
	params := cmd.Exposed(cmd.ParamsOf(c))
	if index < 0 || index >= len(params) {
		return ""
	}
	name := params[index].Name

	docs := parseParamDocs(cmd.HelpOf(c))
	if index < len(docs) && docs[index].text != "" {
		return truncate(docs[index].text)
	}

	diags.Warnf(path, "parameter %q is undocumented (%s)", name, cmd.SourceOf(c))
	return truncate(fmt.Sprintf("%s argument", name))
}

type paramDoc struct {
	name string
	text string
}

// parseParamDocs reads a Google-style parameter section:
//
//	Args:
//	    count (int): how many dice
//	    sides: faces per die,
//	        continued on the next line
func parseParamDocs(help string) []paramDoc {
	var (
		docs        []paramDoc
		inSection   bool
		headerDepth int
		entryDepth  = -1
	)
	for _, raw := range strings.Split(help, "\n") {
		line := strings.TrimRight(raw, " \t\r")
		trimmed := strings.TrimSpace(line)
		depth := indentOf(line)

		if !inSection {
			if docHeaderRe.MatchString(trimmed) {
				inSection = true
				headerDepth = depth
			}
			continue
		}
		if trimmed == "" {
			continue
		}
		if depth <= headerDepth {
			break
		}
		if entryDepth < 0 {
			entryDepth = depth
		}
		if depth > entryDepth && len(docs) > 0 {
			last := &docs[len(docs)-1]
			last.text = strings.TrimSpace(last.text + " " + trimmed)
			continue
		}
		if m := docEntryRe.FindStringSubmatch(trimmed); m != nil {
			docs = append(docs, paramDoc{name: m[1], text: strings.TrimSpace(m[2])})
		}
	}
	return docs
}

func indentOf(line string) int {
	n := 0
	for _, r := range line {
		switch r {
		case ' ':
			n++
		case '\t':
			n += 4
		default:
			return n
		}
	}
	return n
}

func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if t := strings.TrimSpace(line); t != "" {
			return t
		}
	}
	return ""
}

// truncate caps s at maxDescription runes, replacing the last kept rune with
// an ellipsis when it had to cut.
func truncate(s string) string {
	if utf8.RuneCountInString(s) <= maxDescription {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxDescription-1]) + ellipsis
}
