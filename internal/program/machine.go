package program

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"

	"github.com/roach88/turing/internal/ir"
)

// Machine is a loaded transition table together with the optional start
// state and tape input carried by YAML and CUE documents.
type Machine struct {
	Table *Table
	Start string // Empty when the source does not name one
	Input string // Empty when the source carries no input
}

// StartState returns the machine's start state, or def when unset.
func (m *Machine) StartState(def string) string {
	if m.Start != "" {
		return m.Start
	}
	return def
}

// machineDoc is the document shape shared by YAML and CUE sources.
type machineDoc struct {
	Start string    `json:"start,omitempty" yaml:"start,omitempty"`
	Input string    `json:"input,omitempty" yaml:"input,omitempty"`
	Rules []ruleDoc `json:"rules" yaml:"rules"`
}

type ruleDoc struct {
	State string `json:"state" yaml:"state"`
	Read  string `json:"read" yaml:"read"`
	Write string `json:"write" yaml:"write"`
	Move  string `json:"move" yaml:"move"`
	Next  string `json:"next" yaml:"next"`
}

// machineSchema constrains CUE machine documents. Direction values are
// checked by NewTable so that they report the same error as text tables.
const machineSchema = `
#Rule: {
	state: string
	read:  string
	write: string
	move:  string
	next:  string
}

#Machine: {
	start?: string
	input?: string
	rules: [...#Rule]
}
`

// LoadFile loads a machine from path, choosing the format by extension:
// .cue for CUE, .yaml or .yml for YAML, anything else for the text format.
func LoadFile(path string) (*Machine, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeRead, Message: err.Error(), File: path}
	}

	var m *Machine
	switch strings.ToLower(filepath.Ext(path)) {
	case ".cue":
		m, err = ParseCUE(data, path)
	case ".yaml", ".yml":
		m, err = ParseYAML(data)
	default:
		var t *Table
		t, err = Parse(bytes.NewReader(data))
		m = &Machine{Table: t}
	}
	if err != nil {
		return nil, withFile(err, path)
	}
	return m, nil
}

// ParseYAML decodes a YAML machine document. Unknown fields are rejected.
func ParseYAML(data []byte) (*Machine, error) {
	var doc machineDoc
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, &LoadError{Code: ErrCodeSyntax, Message: fmt.Sprintf("failed to parse YAML: %v", err)}
	}
	return doc.machine()
}

// ParseCUE evaluates a CUE machine document and checks it against the
// machine schema. filename is used in error positions.
func ParseCUE(data []byte, filename string) (*Machine, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(machineSchema)
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile machine schema: %w", err)
	}

	value := ctx.CompileBytes(data, cue.Filename(filename))
	if err := value.Err(); err != nil {
		return nil, cueLoadError(err)
	}

	unified := schema.LookupPath(cue.ParsePath("#Machine")).Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, cueLoadError(err)
	}

	var doc machineDoc
	if err := unified.Decode(&doc); err != nil {
		return nil, cueLoadError(err)
	}
	return doc.machine()
}

// cueLoadError converts a CUE error to a LoadError with its first position.
func cueLoadError(err error) *LoadError {
	le := &LoadError{Code: ErrCodeSyntax, Message: err.Error()}
	if positions := cueerrors.Positions(err); len(positions) > 0 && positions[0].IsValid() {
		le.Line = positions[0].Line()
	}
	return le
}

func (doc machineDoc) machine() (*Machine, error) {
	rules := make([]ir.Rule, 0, len(doc.Rules))
	for i, rd := range doc.Rules {
		rule, err := rd.rule(i)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}

	t, err := NewTable(rules)
	if err != nil {
		return nil, err
	}
	return &Machine{Table: t, Start: doc.Start, Input: doc.Input}, nil
}

func (rd ruleDoc) rule(i int) (ir.Rule, error) {
	read, ok := ir.ParseSymbol(rd.Read)
	if !ok {
		return ir.Rule{}, &LoadError{
			Code:    ErrCodeBadSymbol,
			Message: fmt.Sprintf("rules[%d].read must be a single character, got %q", i, rd.Read),
		}
	}
	write, ok := ir.ParseSymbol(rd.Write)
	if !ok {
		return ir.Rule{}, &LoadError{
			Code:    ErrCodeBadSymbol,
			Message: fmt.Sprintf("rules[%d].write must be a single character, got %q", i, rd.Write),
		}
	}
	move, err := ir.ParseDirection(rd.Move)
	if err != nil {
		return ir.Rule{}, &LoadError{
			Code:    ErrCodeBadDirection,
			Message: fmt.Sprintf("rules[%d].move: %v", i, err),
		}
	}
	return ir.Rule{State: rd.State, Read: read, Write: write, Move: move, Next: rd.Next}, nil
}
