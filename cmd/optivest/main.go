// Command optivest samples random long-only portfolios over a price history,
// traces the efficient frontier and recommends an allocation for a stated
// risk tolerance.
package main

import (
	"fmt"
	"os"

	"github.com/Bhoomi3044/optivest/internal/domain"
)

// Exit codes for different failure modes
const (
	ExitSuccess      = 0 // Run completed
	ExitFailure      = 1 // Runtime failure (I/O, cancellation, rendering)
	ExitInvalidInput = 2 // Bad price data, flags or configuration
)

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case domain.IsUserError(err):
		return ExitInvalidInput
	default:
		return ExitFailure
	}
}
