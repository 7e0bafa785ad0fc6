package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/turing/internal/program"
)

// Scenario defines a machine run and the outcome it must produce.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Table is an inline transition table in the text format.
	Table string `yaml:"table,omitempty"`

	// TableFile is a machine file in any supported format. Relative paths
	// are resolved against the scenario file's directory.
	TableFile string `yaml:"table_file,omitempty"`

	// Start overrides the start state. Empty means the machine's own start
	// state, or "0".
	Start string `yaml:"start,omitempty"`

	// Input is the initial tape content. Empty means the machine's own
	// input, if it carries one.
	Input string `yaml:"input,omitempty"`

	// MaxSteps bounds the run. 0 means unlimited.
	MaxSteps int64 `yaml:"max_steps,omitempty"`

	// MaxCells bounds the tape. 0 means the tape default.
	MaxCells int `yaml:"max_cells,omitempty"`

	// SingleSteps drives the machine through a debug session: this many
	// single steps, then continue to the end.
	SingleSteps int `yaml:"single_steps,omitempty"`

	// Expect specifies the outcome of the run.
	Expect Expect `yaml:"expect"`

	// Assertions validate the recorded trace and the final tape.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Expect specifies the expected outcome of a run. Unset fields are not
// checked, except Error: an empty Error means the run must succeed.
type Expect struct {
	// Output is the expected tape rendering.
	Output *string `yaml:"output,omitempty"`

	// Steps is the expected number of applied transitions.
	Steps *int64 `yaml:"steps,omitempty"`

	// State is the state the run ends in. For a failed lookup this is the
	// state without a rule.
	State string `yaml:"state,omitempty"`

	// Error is the expected error code, e.g. LOOKUP_MISSING_RULE.
	Error string `yaml:"error,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
// A relative table_file is resolved against the scenario's directory.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving a relative table_file against basePath.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	if scenario.TableFile != "" && !filepath.IsAbs(scenario.TableFile) && basePath != "" {
		scenario.TableFile = filepath.Join(basePath, scenario.TableFile)
	}
	return scenario, nil
}

// ParseScenario parses scenario YAML. Unknown fields are rejected.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	switch {
	case s.Table == "" && s.TableFile == "":
		return fmt.Errorf("one of table or table_file is required")
	case s.Table != "" && s.TableFile != "":
		return fmt.Errorf("table and table_file are mutually exclusive")
	}

	if s.MaxSteps < 0 {
		return fmt.Errorf("max_steps must not be negative, got %d", s.MaxSteps)
	}
	if s.MaxCells < 0 {
		return fmt.Errorf("max_cells must not be negative, got %d", s.MaxCells)
	}
	if s.SingleSteps < 0 {
		return fmt.Errorf("single_steps must not be negative, got %d", s.SingleSteps)
	}

	if s.Expect.Output == nil && s.Expect.Error == "" && len(s.Assertions) == 0 {
		return fmt.Errorf("expect.output, expect.error or assertions is required")
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(a); err != nil {
			return fmt.Errorf("assertion %d: %w", i, err)
		}
	}
	return nil
}

// machine loads the scenario's machine.
func (s *Scenario) machine() (*program.Machine, error) {
	if s.TableFile != "" {
		return program.LoadFile(s.TableFile)
	}
	table, err := program.ParseString(s.Table)
	if err != nil {
		return nil, err
	}
	return &program.Machine{Table: table}, nil
}
