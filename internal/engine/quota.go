package engine

import (
	"errors"
	"fmt"
)

// QuotaEnforcer bounds the number of transitions a run may apply.
//
// A Turing machine that never halts runs forever unless something stops
// it; the quota is an opt-in bound for callers that cannot wait, such as
// scenario tests. A limit of zero disables it. Applied transitions are
// read from the run's clock.
type QuotaEnforcer struct {
	maxSteps int64
	clock    *Clock
}

// NewQuotaEnforcer creates a quota enforcer with the given limit over the
// transitions stamped by clock.
func NewQuotaEnforcer(maxSteps int64, clock *Clock) *QuotaEnforcer {
	return &QuotaEnforcer{maxSteps: maxSteps, clock: clock}
}

// Check reports whether one more transition stays within the limit.
// It is called before each transition is applied.
func (q *QuotaEnforcer) Check(runID string) error {
	next := q.clock.Current() + 1
	if q.maxSteps > 0 && next > q.maxSteps {
		return &StepsExceededError{
			RunID: runID,
			Steps: next,
			Limit: q.maxSteps,
		}
	}
	return nil
}

// StepsExceededError is returned when a run would exceed its step quota.
// The transition that would exceed the quota is not applied.
type StepsExceededError struct {
	RunID string
	Steps int64
	Limit int64
}

// Error implements the error interface.
func (e *StepsExceededError) Error() string {
	if e.RunID == "" {
		return fmt.Sprintf("%s: run exceeded max steps quota: %d steps > %d limit",
			ErrCodeQuotaExceeded, e.Steps, e.Limit)
	}
	return fmt.Sprintf("%s: run %s exceeded max steps quota: %d steps > %d limit",
		ErrCodeQuotaExceeded, e.RunID, e.Steps, e.Limit)
}

// IsStepsExceededError returns true if the error is a StepsExceededError.
// Uses errors.As to handle wrapped errors.
func IsStepsExceededError(err error) bool {
	var se *StepsExceededError
	return errors.As(err, &se)
}
