package ir

import (
	"fmt"
	"unicode/utf8"
)

// Symbol is a single tape character.
type Symbol rune

const (
	// Blank fills every cell that has never been written.
	Blank Symbol = '_'

	// Wildcard means "any" when read, "unchanged" when written.
	Wildcard Symbol = '*'
)

// WildcardState as a next state keeps the current state name.
const WildcardState = "*"

// HaltState is the reserved terminal state.
const HaltState = "halt"

// DefaultStartState is the state a run starts in unless configured otherwise.
const DefaultStartState = "0"

// String returns the symbol as a one-character string.
func (s Symbol) String() string {
	return string(rune(s))
}

// IsWildcard reports whether s is the wildcard symbol.
func (s Symbol) IsWildcard() bool {
	return s == Wildcard
}

// MarshalText implements encoding.TextMarshaler.
func (s Symbol) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Symbol) UnmarshalText(text []byte) error {
	sym, ok := ParseSymbol(string(text))
	if !ok {
		return fmt.Errorf("symbol must be a single character, got %q", text)
	}
	*s = sym
	return nil
}

// ParseSymbol converts a one-character field to a Symbol. A byte that is
// not valid UTF-8 is not a character.
func ParseSymbol(field string) (Symbol, bool) {
	if utf8.RuneCountInString(field) != 1 {
		return 0, false
	}
	r, size := utf8.DecodeRuneInString(field)
	if r == utf8.RuneError && size == 1 {
		return 0, false
	}
	return Symbol(r), true
}

// Direction is a carriage move.
type Direction int

const (
	Stay Direction = iota
	Left
	Right
)

// ParseDirection maps the source notation l, r and * to a Direction.
func ParseDirection(field string) (Direction, error) {
	switch field {
	case "l":
		return Left, nil
	case "r":
		return Right, nil
	case "*":
		return Stay, nil
	}
	return Stay, fmt.Errorf("invalid direction %q: must be one of 'l', 'r' or '*'", field)
}

// Notation returns the source notation of the direction.
func (d Direction) Notation() string {
	switch d {
	case Left:
		return "l"
	case Right:
		return "r"
	}
	return "*"
}

// String implements fmt.Stringer.
func (d Direction) String() string {
	switch d {
	case Left:
		return "left"
	case Right:
		return "right"
	}
	return "stay"
}

// MarshalText implements encoding.TextMarshaler.
func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.Notation()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Direction) UnmarshalText(text []byte) error {
	dir, err := ParseDirection(string(text))
	if err != nil {
		return err
	}
	*d = dir
	return nil
}

// Rule is one row of a transition table.
type Rule struct {
	State string    `json:"state" yaml:"state"`
	Read  Symbol    `json:"read" yaml:"read"`
	Write Symbol    `json:"write" yaml:"write"`
	Move  Direction `json:"move" yaml:"move"`
	Next  string    `json:"next" yaml:"next"`

	// Line is the 1-based source line, 0 when the rule was not read from text.
	Line int `json:"-" yaml:"-"`
}

// Matches reports whether the rule applies to the given state and symbol.
func (r Rule) Matches(state string, sym Symbol) bool {
	return r.State == state && (r.Read == sym || r.Read.IsWildcard())
}

// Resolve returns the state that follows current under this rule.
func (r Rule) Resolve(current string) string {
	if r.Next == WildcardState {
		return current
	}
	return r.Next
}

// String renders the rule in the text table notation.
func (r Rule) String() string {
	return fmt.Sprintf("%s %c %c %s %s", r.State, r.Read, r.Write, r.Move.Notation(), r.Next)
}

// Step records one applied transition.
type Step struct {
	Seq   int64  `json:"seq"`   // Logical clock, 1 for the first transition
	State string `json:"state"` // State the transition was taken from
	Read  Symbol `json:"read"`  // Symbol under the carriage before writing
	Rule  Rule   `json:"rule"`  // Matched rule
	Head  int    `json:"head"`  // Carriage offset after moving
	Next  string `json:"next"`  // Resolved next state
}

// RunStatus is the lifecycle status of a recorded run.
type RunStatus string

const (
	RunRunning RunStatus = "running"
	RunHalted  RunStatus = "halted"
	RunFailed  RunStatus = "failed"
)

// RunRecord describes one execution of a table against an input.
type RunRecord struct {
	ID            string    `json:"id"`
	TableHash     string    `json:"table_hash"`
	TableSource   string    `json:"table_source"`
	StartState    string    `json:"start_state"`
	Input         string    `json:"input"`
	MaxSteps      int64     `json:"max_steps,omitempty"` // 0 means unlimited
	MaxCells      int       `json:"max_cells,omitempty"` // 0 means the tape default
	Status        RunStatus `json:"status"`
	Output        string    `json:"output"`
	Steps         int64     `json:"steps"`
	ErrorCode     string    `json:"error_code,omitempty"`
	ErrorMessage  string    `json:"error_message,omitempty"`
	EngineVersion string    `json:"engine_version"`
	IRVersion     string    `json:"ir_version"`
}
