package latex

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

const maxExcerptLen = 400

// Compile runs the typesetting engine against the staged source. ctx carries
// the wall-clock deadline for the whole compilation; when it expires the
// subprocess is killed and ErrCompileTimeout is returned. LaTeX needs a
// second pass for internal references to resolve, so passes is usually 2.
// A non-zero exit or a missing output PDF is a failure carrying an excerpt
// of the compiler log.
func Compile(ctx context.Context, command, srcPath, jobName string, passes int) (string, error) {
	workDir := filepath.Dir(srcPath)

	for pass := 1; pass <= passes; pass++ {
		cmd := exec.CommandContext(ctx, command,
			"-interaction=nonstopmode",
			"-output-directory="+workDir,
			"-jobname="+jobName,
			srcPath,
		)
		cmd.Dir = workDir

		out, err := cmd.CombinedOutput()
		if ctx.Err() == context.DeadlineExceeded {
			return "", fmt.Errorf("%w (pass %d)", ErrCompileTimeout, pass)
		}
		if err != nil {
			return "", &CompileError{Pass: pass, Excerpt: logExcerpt(out)}
		}
	}

	pdfPath := filepath.Join(workDir, jobName+".pdf")
	if _, err := os.Stat(pdfPath); err != nil {
		return "", &CompileError{Pass: passes, Excerpt: "no output PDF was produced"}
	}
	return pdfPath, nil
}

// logExcerpt picks the first "!"-prefixed diagnostic line from the compiler
// log, falling back to the log tail, truncated to a size fit for an error
// response.
func logExcerpt(out []byte) string {
	for _, line := range strings.Split(string(out), "\n") {
		if after, ok := strings.CutPrefix(line, "! "); ok {
			return truncate(strings.TrimSpace(after))
		}
	}
	tail := strings.TrimSpace(string(out))
	if len(tail) > maxExcerptLen {
		tail = tail[len(tail)-maxExcerptLen:]
	}
	return tail
}

func truncate(s string) string {
	if len(s) > maxExcerptLen {
		return s[:maxExcerptLen]
	}
	return s
}
