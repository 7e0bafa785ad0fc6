// Command turing runs single-tape Turing machine transition tables.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/turing/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
