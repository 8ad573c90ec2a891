package latex

import (
	"errors"
	"fmt"
)

// Sentinel errors for request validation and resource limits.
var (
	ErrInvalidTitle     = errors.New("invalid title")
	ErrInvalidStyle     = errors.New("invalid style")
	ErrInvalidCompany   = errors.New("invalid company")
	ErrInputTooLarge    = errors.New("template and assets exceed size limit")
	ErrArtifactTooLarge = errors.New("generated PDF exceeds size limit")

	// ErrCompileTimeout marks a compilation aborted because the wall-clock
	// budget elapsed. Callers report it distinctly from a compiler failure.
	ErrCompileTimeout = errors.New("latex compilation timed out")
)

// CompileError carries a truncated excerpt of the compiler diagnostics for a
// failed pass, or for a run that exited cleanly without producing a PDF.
type CompileError struct {
	Pass    int
	Excerpt string
}

func (e *CompileError) Error() string {
	if e.Excerpt == "" {
		return fmt.Sprintf("latex compilation failed on pass %d", e.Pass)
	}
	return fmt.Sprintf("latex compilation failed on pass %d: %s", e.Pass, e.Excerpt)
}
