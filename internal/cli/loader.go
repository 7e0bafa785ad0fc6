package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/roach88/turing/internal/engine"
	"github.com/roach88/turing/internal/program"
	"github.com/roach88/turing/internal/tape"
)

// loadMachine loads a machine file and reports where text parsing stopped,
// if it stopped before the end of the file.
func loadMachine(path string, formatter *OutputFormatter) (*program.Machine, error) {
	m, err := program.LoadFile(path)
	if err != nil {
		return nil, err
	}

	if stop, ok := m.Table.Stopped(); ok {
		slog.Warn("table parsing stopped early", "file", path, "line", stop.Line, "text", stop.Text)
	}
	formatter.VerboseLog("Loaded %d rule(s) from %s", m.Table.Len(), path)
	return m, nil
}

// TapeSource selects where the initial tape comes from. At most one of
// Path and String is set; with neither the machine's own input is used.
type TapeSource struct {
	Path      string
	String    string
	HasString bool
	MaxCells  int
}

// load builds the tape and returns the input text it was built from.
func (src TapeSource) load(m *program.Machine, start string) (string, *tape.Tape, error) {
	var opts []tape.Option
	if src.MaxCells > 0 {
		opts = append(opts, tape.WithMaxCells(src.MaxCells))
	}

	var (
		text strings.Builder
		tp   *tape.Tape
		err  error
	)
	switch {
	case src.Path != "" && src.HasString:
		return "", nil, fmt.Errorf("input file and --input-string are mutually exclusive")
	case src.Path != "":
		f, openErr := os.Open(src.Path)
		if openErr != nil {
			return "", nil, fmt.Errorf("failed to open input: %w", openErr)
		}
		defer f.Close()
		tp, err = tape.FromInput(io.TeeReader(f, &text), opts...)
	case src.HasString:
		text.WriteString(src.String)
		tp, err = tape.FromString(src.String, opts...)
	default:
		text.WriteString(m.Input)
		tp, err = tape.FromString(m.Input, opts...)
	}

	if err != nil {
		if tape.IsLimitError(err) {
			return "", nil, &engine.ResourceError{Resource: "tape", State: start, Err: err}
		}
		return "", nil, err
	}
	return text.String(), tp, nil
}
