// Package tape implements the unbounded single-track tape of the emulator.
//
// Cells are materialized lazily: moving the carriage past the leftmost or
// rightmost materialized cell creates one blank cell in that direction.
// Storage is two growable slices, one for non-negative offsets and one for
// negative offsets, so neighbor access stays O(1) amortized whichever way
// the machine wanders and no cell is ever owned outside the tape.
package tape

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/roach88/turing/internal/ir"
)

// DefaultMaxCells bounds tape growth unless overridden with WithMaxCells.
const DefaultMaxCells = 1 << 24

// ErrInvalidInput is returned by FromInput for input that is not UTF-8.
var ErrInvalidInput = errors.New("invalid tape input")

// LimitError is returned by Move when materializing another cell would
// exceed the tape's cell limit. A machine hitting it most likely diverges.
type LimitError struct {
	Limit int // Maximum number of materialized cells
	Head  int // Carriage offset at the time of the failed move
}

// Error implements the error interface.
func (e *LimitError) Error() string {
	return fmt.Sprintf("tape exhausted: cannot grow beyond %d cells (head at %d)", e.Limit, e.Head)
}

// IsLimitError returns true if the error is a LimitError.
func IsLimitError(err error) bool {
	var le *LimitError
	return errors.As(err, &le)
}

// Tape is a sequence of cells unbounded in both directions with a single
// read/write carriage. The carriage always points at a materialized cell.
type Tape struct {
	right    []ir.Symbol // offsets 0, 1, 2, ...
	left     []ir.Symbol // offsets -1, -2, -3, ...
	head     int
	maxCells int
}

// Option configures a Tape.
type Option func(*Tape)

// WithMaxCells sets the maximum number of cells the tape may materialize.
// Values below 1 are ignored.
func WithMaxCells(n int) Option {
	return func(t *Tape) {
		if n > 0 {
			t.maxCells = n
		}
	}
}

// New creates a tape holding one blank cell under the carriage.
func New(opts ...Option) *Tape {
	t := &Tape{
		right:    []ir.Symbol{ir.Blank},
		maxCells: DefaultMaxCells,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// FromString creates a tape whose cells hold the characters of s.
func FromString(s string, opts ...Option) (*Tape, error) {
	return FromInput(strings.NewReader(s), opts...)
}

// FromInput creates a tape from r. Every character becomes one cell in
// order, except line breaks which are skipped. Characters are stored with
// Write, so a wildcard in the input leaves its cell blank. The carriage is
// left on the first cell.
//
// Cells hold Unicode characters, not bytes: input that is not valid UTF-8
// is rejected with ErrInvalidInput.
func FromInput(r io.Reader, opts ...Option) (*Tape, error) {
	t := New(opts...)
	br := bufio.NewReader(r)

	first := true
	offset := 0
	for {
		ch, size, err := br.ReadRune()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read tape input: %w", err)
		}
		if ch == utf8.RuneError && size == 1 {
			return nil, fmt.Errorf("%w: byte offset %d is not valid UTF-8", ErrInvalidInput, offset)
		}
		offset += size
		if ch == '\n' || ch == '\r' {
			continue
		}

		if !first {
			if err := t.Move(ir.Right); err != nil {
				return nil, err
			}
		}
		t.Write(ir.Symbol(ch))
		first = false
	}

	t.Rewind()
	return t, nil
}

// Read returns the symbol under the carriage.
func (t *Tape) Read() ir.Symbol {
	if t.head >= 0 {
		return t.right[t.head]
	}
	return t.left[-t.head-1]
}

// Write stores sym under the carriage. Writing the wildcard is a no-op.
func (t *Tape) Write(sym ir.Symbol) {
	if sym.IsWildcard() {
		return
	}
	if t.head >= 0 {
		t.right[t.head] = sym
		return
	}
	t.left[-t.head-1] = sym
}

// Move shifts the carriage one cell. A missing neighbor is materialized as
// a blank cell; Stay does nothing.
func (t *Tape) Move(dir ir.Direction) error {
	switch dir {
	case ir.Right:
		if t.head+1 >= len(t.right) {
			if err := t.grow(); err != nil {
				return err
			}
			t.right = append(t.right, ir.Blank)
		}
		t.head++
	case ir.Left:
		if t.head-1 < -len(t.left) {
			if err := t.grow(); err != nil {
				return err
			}
			t.left = append(t.left, ir.Blank)
		}
		t.head--
	}
	return nil
}

func (t *Tape) grow() error {
	if t.Len() >= t.maxCells {
		return &LimitError{Limit: t.maxCells, Head: t.head}
	}
	return nil
}

// Rewind moves the carriage to the leftmost materialized cell.
func (t *Tape) Rewind() {
	t.head = -len(t.left)
}

// Head returns the carriage offset relative to the first input cell.
func (t *Tape) Head() int {
	return t.head
}

// Len returns the number of materialized cells.
func (t *Tape) Len() int {
	return len(t.left) + len(t.right)
}

// Bounds returns the offsets of the leftmost and rightmost materialized cells.
func (t *Tape) Bounds() (lo, hi int) {
	return -len(t.left), len(t.right) - 1
}

// Cells returns every materialized cell from left to right, blanks included.
func (t *Tape) Cells() []ir.Symbol {
	cells := make([]ir.Symbol, 0, t.Len())
	for i := len(t.left) - 1; i >= 0; i-- {
		cells = append(cells, t.left[i])
	}
	return append(cells, t.right...)
}

// Render returns the tape contents left to right with blank cells elided.
// This is the observable output of a run.
func (t *Tape) Render() string {
	var sb strings.Builder
	for _, sym := range t.Cells() {
		if sym != ir.Blank {
			sb.WriteRune(rune(sym))
		}
	}
	return sb.String()
}

// String renders every cell, blanks included, with the carriage cell in
// brackets.
func (t *Tape) String() string {
	var sb strings.Builder
	lo, _ := t.Bounds()
	for i, sym := range t.Cells() {
		if lo+i == t.head {
			sb.WriteByte('[')
			sb.WriteRune(rune(sym))
			sb.WriteByte(']')
			continue
		}
		sb.WriteRune(rune(sym))
	}
	return sb.String()
}
