// Command cvgen-cli generates a CV PDF from the command line, without the
// HTTP layer. Useful for cron jobs and for rebuilding the pre-baked fallback
// PDF the static site serves when the service is unreachable.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	flag "github.com/spf13/pflag"

	"cvgen/internal/latex"
	u "cvgen/internal/utils"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("cvgen-cli", flag.ContinueOnError)
	template := fs.String("template", "", "template name without .tex extension")
	title := fs.String("title", "", "CV title shown in the document header")
	style := fs.String("style", "", "visual style (modern, elegant, bold, luxe, slate)")
	company := fs.String("company", "", "target company label")
	output := fs.String("output", "", "output directory for the PDF")
	timeout := fs.Int("timeout", 0, "compilation timeout in seconds")

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}

	_ = godotenv.Load()

	cfg := u.LoadConfig()
	if v := os.Getenv("TEMPLATES_DIR"); v != "" {
		cfg.Latex.TemplatesDir = v
	}
	if *output != "" {
		cfg.Latex.OutputDir = *output
	}
	if *timeout > 0 {
		cfg.Latex.TimeoutSecs = *timeout
	}

	u.InitLogger("", 0, 0, 0, false, cfg.Logger.Level)

	artifact, err := latex.NewGenerator(cfg).Generate(context.Background(), latex.Params{
		Template: *template,
		Title:    *title,
		Style:    *style,
		Company:  *company,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}

	if err := os.MkdirAll(cfg.Latex.OutputDir, 0o755); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	dst := filepath.Join(cfg.Latex.OutputDir, artifact.Filename)
	if err := os.WriteFile(dst, artifact.Data, 0o644); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}

	fmt.Println(dst)
	return 0
}
