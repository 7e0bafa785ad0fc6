package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/roach88/turing/internal/engine"
)

const debugGreeting = `Debug mode.
Enter 'n' to run the next step.
Enter 'c' to run the machine until the end.
`

// debugTerminal reads step decisions line by line. It keeps the terminal
// in whatever mode it started, so editing is left to the line discipline.
type debugTerminal struct {
	input     *bufio.Reader
	output    io.Writer
	realInput bool
}

// newDebugTerminal creates a terminal over in and out. The prompt is only
// printed when in is an interactive terminal.
func newDebugTerminal(in io.Reader, out io.Writer) *debugTerminal {
	dt := &debugTerminal{
		input:  bufio.NewReader(in),
		output: out,
	}
	if f, ok := in.(*os.File); ok {
		dt.realInput = term.IsTerminal(int(f.Fd()))
	}
	return dt
}

// readDecision reads lines until one holds a valid decision. Empty lines
// are ignored; anything else is answered with a hint and read again.
func (dt *debugTerminal) readDecision() (engine.Decision, error) {
	for {
		if dt.realInput {
			fmt.Fprint(dt.output, "> ")
		}

		line, err := dt.input.ReadString('\n')
		if strings.TrimSpace(line) != "" {
			d, parseErr := engine.ParseDecision(line)
			if parseErr == nil {
				return d, nil
			}
			fmt.Fprintf(dt.output, "* %v\n", parseErr)
		}
		if err != nil {
			return 0, err
		}
	}
}

// debugRun drives eng one decision at a time. The tape is printed before
// the first decision and after every single step, followed by the rule
// that was applied. Running out of input continues to the end.
func debugRun(ctx context.Context, eng *engine.Engine, dt *debugTerminal) error {
	session := eng.Session()

	fmt.Fprint(dt.output, debugGreeting+"\n")
	fmt.Fprintln(dt.output, session.Snapshot().Tape)

	for !session.Done() {
		d, err := dt.readDecision()
		if errors.Is(err, io.EOF) {
			d, err = engine.DecisionContinue, nil
		}
		if err != nil {
			return fmt.Errorf("read decision: %w", err)
		}

		snap, err := session.Resume(ctx, d)
		if err != nil {
			return err
		}
		if d == engine.DecisionContinue {
			return nil
		}

		fmt.Fprintln(dt.output, snap.Tape)
		if snap.Last != nil {
			fmt.Fprintf(dt.output, "Last executed state: %s\n", snap.Last)
		}
	}
	return nil
}
