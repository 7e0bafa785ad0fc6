package program

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/roach88/turing/internal/ir"
)

// Parse reads a text transition table from r.
//
// Each non-blank line holds one rule as five whitespace-separated fields:
//
//	state read write move next
//
// Reading stops at the first line that is not five fields with one-character
// symbol fields; the rest of the source is ignored and the position is
// available from Table.Stopped. A move field other than l, r or * is a
// LoadError.
func Parse(r io.Reader) (*Table, error) {
	var rules []ir.Rule
	var stop *Stop

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if strings.TrimSpace(text) == "" {
			continue
		}

		rule, ok, err := parseRule(text, line)
		if err != nil {
			return nil, err
		}
		if !ok {
			stop = &Stop{Line: line, Text: text}
			slog.Debug("table parsing stopped", "line", line, "text", text)
			break
		}
		rules = append(rules, rule)
	}
	if err := scanner.Err(); err != nil {
		return nil, &LoadError{Code: ErrCodeRead, Message: err.Error(), Line: line}
	}

	t, err := NewTable(rules)
	if err != nil {
		return nil, err
	}
	t.stop = stop
	return t, nil
}

// ParseString reads a text transition table from s.
func ParseString(s string) (*Table, error) {
	return Parse(strings.NewReader(s))
}

// parseRule parses one line. ok is false when the line is not a rule.
func parseRule(text string, line int) (rule ir.Rule, ok bool, err error) {
	fields := strings.Fields(text)
	if len(fields) != 5 {
		return ir.Rule{}, false, nil
	}

	read, okRead := ir.ParseSymbol(fields[1])
	write, okWrite := ir.ParseSymbol(fields[2])
	if !okRead || !okWrite {
		return ir.Rule{}, false, nil
	}

	move, err := ir.ParseDirection(fields[3])
	if err != nil {
		return ir.Rule{}, false, &LoadError{
			Code:    ErrCodeBadDirection,
			Message: fmt.Sprintf("moving symbols are only 'l', 'r' and '*', got %q", fields[3]),
			Line:    line,
		}
	}

	return ir.Rule{
		State: fields[0],
		Read:  read,
		Write: write,
		Move:  move,
		Next:  fields[4],
		Line:  line,
	}, true, nil
}
