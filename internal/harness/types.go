package harness

import "github.com/roach88/turing/internal/ir"

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if the expect clause and all assertions match.
	Pass bool `json:"pass"`

	// Output is the tape rendering with blanks elided.
	Output string `json:"output"`

	// Tape is the tape rendering with the carriage cell marked.
	Tape string `json:"tape"`

	// State is the machine state when the run ended.
	State string `json:"state"`

	// Steps is the number of applied transitions.
	Steps int64 `json:"steps"`

	// Trace contains every applied step in order, as read back from the
	// store.
	Trace []ir.Step `json:"trace"`

	// ErrorCode is the code of the load or run error, empty on success.
	ErrorCode string `json:"error_code,omitempty"`

	// Err is the load or run error itself.
	Err error `json:"-"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []ir.Step{},
		Errors: []string{},
	}
}

// AddError records a validation failure and marks the result failed.
func (r *Result) AddError(msg string) {
	r.Pass = false
	r.Errors = append(r.Errors, msg)
}
