package program

import (
	"errors"
	"fmt"
)

// LoadErrorCode categorizes load errors.
type LoadErrorCode string

const (
	// ErrCodeBadDirection indicates a move field other than l, r or *.
	ErrCodeBadDirection LoadErrorCode = "LOAD_BAD_DIRECTION"

	// ErrCodeReservedState indicates a rule for the state named "*".
	ErrCodeReservedState LoadErrorCode = "LOAD_RESERVED_STATE"

	// ErrCodeBadState indicates an empty state name or one containing whitespace.
	ErrCodeBadState LoadErrorCode = "LOAD_BAD_STATE"

	// ErrCodeBadSymbol indicates a read or write field that is not one
	// non-whitespace character.
	ErrCodeBadSymbol LoadErrorCode = "LOAD_BAD_SYMBOL"

	// ErrCodeSyntax indicates a YAML or CUE document that does not decode.
	ErrCodeSyntax LoadErrorCode = "LOAD_SYNTAX"

	// ErrCodeRead indicates the source could not be read.
	ErrCodeRead LoadErrorCode = "LOAD_READ"
)

// LoadError is a fatal problem found while building a transition table.
// No run starts once a LoadError has been reported.
type LoadError struct {
	Code    LoadErrorCode
	Message string
	File    string // Source file, empty when unknown
	Line    int    // 1-based line, 0 when unknown
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	switch {
	case e.File != "" && e.Line > 0:
		return fmt.Sprintf("%s:%d: %s: %s", e.File, e.Line, e.Code, e.Message)
	case e.Line > 0:
		return fmt.Sprintf("line %d: %s: %s", e.Line, e.Code, e.Message)
	case e.File != "":
		return fmt.Sprintf("%s: %s: %s", e.File, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsLoadError returns true if the error is a LoadError.
// Uses errors.As to handle wrapped errors.
func IsLoadError(err error) bool {
	var le *LoadError
	return errors.As(err, &le)
}

// withFile returns err with File set when it is a LoadError lacking one.
func withFile(err error, file string) error {
	var le *LoadError
	if errors.As(err, &le) && le.File == "" {
		le.File = file
	}
	return err
}
