package engine

import (
	"errors"
	"fmt"

	"github.com/roach88/turing/internal/ir"
	"github.com/roach88/turing/internal/program"
)

// RuntimeErrorCode categorizes errors that abort a run.
type RuntimeErrorCode string

const (
	// ErrCodeMissingRule indicates no rule matches the current configuration.
	ErrCodeMissingRule RuntimeErrorCode = "LOOKUP_MISSING_RULE"

	// ErrCodeTapeExhausted indicates the tape could not grow any further.
	ErrCodeTapeExhausted RuntimeErrorCode = "RESOURCE_TAPE_EXHAUSTED"

	// ErrCodeQuotaExceeded indicates the run exceeded its step quota.
	ErrCodeQuotaExceeded RuntimeErrorCode = "QUOTA_EXCEEDED"
)

// ErrHalted is returned by Step and Next when the machine is already in the
// halt state.
var ErrHalted = errors.New("machine has halted")

// LookupError reports a configuration for which the table has no rule.
// It indicates a malformed program rather than a runaway machine.
type LookupError struct {
	State  string
	Symbol ir.Symbol
	Seq    int64 // Number of transitions applied before the failure
}

// Error implements the error interface.
func (e *LookupError) Error() string {
	return fmt.Sprintf("%s: there is no state %s with symbol %c (after %d steps)",
		ErrCodeMissingRule, e.State, e.Symbol, e.Seq)
}

// Code returns the error category.
func (e *LookupError) Code() RuntimeErrorCode {
	return ErrCodeMissingRule
}

// ResourceError reports that the machine could not make progress because a
// resource ran out. For the tape this most likely means the machine never
// halts and keeps growing the tape.
type ResourceError struct {
	Resource string // "tape"
	State    string
	Seq      int64
	Err      error
}

// Error implements the error interface.
func (e *ResourceError) Error() string {
	return fmt.Sprintf("%s: %s in state %s after %d steps, most likely the machine does not halt: %v",
		ErrCodeTapeExhausted, e.Resource, e.State, e.Seq, e.Err)
}

// Unwrap returns the underlying resource failure.
func (e *ResourceError) Unwrap() error {
	return e.Err
}

// Code returns the error category.
func (e *ResourceError) Code() RuntimeErrorCode {
	return ErrCodeTapeExhausted
}

// IsLookupError returns true if the error is a LookupError.
// Uses errors.As to handle wrapped errors.
func IsLookupError(err error) bool {
	var le *LookupError
	return errors.As(err, &le)
}

// IsResourceError returns true if the error is a ResourceError.
// Uses errors.As to handle wrapped errors.
func IsResourceError(err error) bool {
	var re *ResourceError
	return errors.As(err, &re)
}

// ErrorCode returns the category code of a load or run error, or the empty
// string for anything else.
func ErrorCode(err error) string {
	var (
		le  *LookupError
		re  *ResourceError
		se  *StepsExceededError
		lde *program.LoadError
	)
	switch {
	case errors.As(err, &le):
		return string(le.Code())
	case errors.As(err, &re):
		return string(re.Code())
	case errors.As(err, &se):
		return string(ErrCodeQuotaExceeded)
	case errors.As(err, &lde):
		return string(lde.Code)
	}
	return ""
}
