package program

import (
	"fmt"
	"slices"
	"strings"
	"unicode"

	"github.com/roach88/turing/internal/ir"
)

// Stop records where the text parser stopped reading rules.
type Stop struct {
	Line int    // 1-based line number
	Text string // The line that did not parse
}

// span is the [lo, hi) range of a state's rules in the sorted table.
type span struct {
	lo, hi int
}

// Table is a sorted, immutable transition table.
type Table struct {
	rules []ir.Rule
	index map[string]span
	stop  *Stop
	hash  string
}

// NewTable validates rules and sorts them into lookup order: by state name,
// then exact reads before wildcard reads, keeping source order otherwise.
// The rules slice is copied.
func NewTable(rules []ir.Rule) (*Table, error) {
	sorted := make([]ir.Rule, len(rules))
	copy(sorted, rules)

	for _, r := range sorted {
		if err := validateRule(r); err != nil {
			return nil, err
		}
	}

	slices.SortStableFunc(sorted, compareRules)

	index := make(map[string]span)
	for i := 0; i < len(sorted); {
		j := i
		for j < len(sorted) && sorted[j].State == sorted[i].State {
			j++
		}
		index[sorted[i].State] = span{lo: i, hi: j}
		i = j
	}

	hash, err := ir.TableHash(sorted)
	if err != nil {
		return nil, err
	}

	return &Table{rules: sorted, index: index, hash: hash}, nil
}

// compareRules orders rules by state, then exact reads before wildcards.
func compareRules(a, b ir.Rule) int {
	if c := strings.Compare(a.State, b.State); c != 0 {
		return c
	}
	switch {
	case !a.Read.IsWildcard() && b.Read.IsWildcard():
		return -1
	case a.Read.IsWildcard() && !b.Read.IsWildcard():
		return 1
	}
	return 0
}

func validateRule(r ir.Rule) error {
	if r.State == ir.WildcardState {
		return &LoadError{
			Code:    ErrCodeReservedState,
			Message: fmt.Sprintf("state name %q is reserved for \"keep the current state\"", r.State),
			Line:    r.Line,
		}
	}
	for _, name := range []string{r.State, r.Next} {
		if !validStateName(name) {
			return &LoadError{
				Code:    ErrCodeBadState,
				Message: fmt.Sprintf("invalid state name %q: must be non-empty without whitespace", name),
				Line:    r.Line,
			}
		}
	}
	for _, sym := range []ir.Symbol{r.Read, r.Write} {
		if unicode.IsSpace(rune(sym)) {
			return &LoadError{
				Code:    ErrCodeBadSymbol,
				Message: fmt.Sprintf("invalid symbol %q: whitespace cannot be written in a table", sym.String()),
				Line:    r.Line,
			}
		}
	}
	if r.Move != ir.Left && r.Move != ir.Right && r.Move != ir.Stay {
		return &LoadError{
			Code:    ErrCodeBadDirection,
			Message: fmt.Sprintf("invalid direction %d", r.Move),
			Line:    r.Line,
		}
	}
	return nil
}

func validStateName(name string) bool {
	return name != "" && !strings.ContainsFunc(name, unicode.IsSpace)
}

// Lookup returns the rule for state reading sym: the first exact-symbol
// rule of the state if any, otherwise its first wildcard rule.
func (t *Table) Lookup(state string, sym ir.Symbol) (ir.Rule, bool) {
	s, ok := t.index[state]
	if !ok {
		return ir.Rule{}, false
	}
	for _, r := range t.rules[s.lo:s.hi] {
		if r.Matches(state, sym) {
			return r, true
		}
	}
	return ir.Rule{}, false
}

// Rules returns a copy of the sorted rules.
func (t *Table) Rules() []ir.Rule {
	return slices.Clone(t.rules)
}

// Len returns the number of rules.
func (t *Table) Len() int {
	return len(t.rules)
}

// States returns the distinct source states in sorted order.
func (t *Table) States() []string {
	states := make([]string, 0, len(t.index))
	for s := range t.index {
		states = append(states, s)
	}
	slices.Sort(states)
	return states
}

// Targets returns the distinct explicit next states, excluding the
// wildcard, in sorted order.
func (t *Table) Targets() []string {
	seen := make(map[string]bool)
	var targets []string
	for _, r := range t.rules {
		if r.Next == ir.WildcardState || seen[r.Next] {
			continue
		}
		seen[r.Next] = true
		targets = append(targets, r.Next)
	}
	slices.Sort(targets)
	return targets
}

// Hash returns the content hash of the sorted table.
func (t *Table) Hash() string {
	return t.hash
}

// Stopped reports where text parsing stopped before the end of the source.
func (t *Table) Stopped() (Stop, bool) {
	if t.stop == nil {
		return Stop{}, false
	}
	return *t.stop, true
}

// Text renders the sorted table in the text format, one rule per line.
// Parsing the result yields an identical table.
func (t *Table) Text() string {
	var sb strings.Builder
	for _, r := range t.rules {
		sb.WriteString(r.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}
