// Package latex turns a résumé template plus request parameters into a PDF
// by staging a scoped workspace and shelling out to the typesetting engine.
package latex

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"cvgen/internal/templates"
	"cvgen/internal/utils"
)

// Params are the request-scoped inputs for one generation. Zero values fall
// back to the configured defaults.
type Params struct {
	Template string
	Title    string
	Style    string
	Company  string
}

// Artifact is the produced PDF plus the download filename computed for it.
type Artifact struct {
	Data     []byte
	Filename string
}

// Generator holds the fixed configuration shared by all requests. It has no
// mutable state, so one instance serves concurrent requests without locking.
type Generator struct {
	cfg utils.Config
	now func() time.Time
}

func NewGenerator(cfg utils.Config) *Generator {
	return &Generator{cfg: cfg, now: time.Now}
}

// Generate runs the full pipeline: validate, stage a workspace, substitute
// the parameters, compile, and read the artifact back. The workspace is
// removed on every exit path; when a debug directory is configured, failed
// compilations keep theirs there for inspection.
func (g *Generator) Generate(ctx context.Context, p Params) (*Artifact, error) {
	lx := g.cfg.Latex

	if p.Template == "" {
		p.Template = lx.DefaultTemplate
	}
	if p.Title == "" {
		p.Title = lx.DefaultTitle
	}
	if p.Style == "" {
		p.Style = lx.DefaultStyle
	}

	title, err := validateTitle(p.Title)
	if err != nil {
		return nil, err
	}
	style, err := validateStyle(p.Style, lx.AllowedStyles)
	if err != nil {
		return nil, err
	}
	company, err := validateCompany(p.Company)
	if err != nil {
		return nil, err
	}

	// Allow-list gate. Nothing below runs for an unknown template, so a bad
	// request never creates a workspace.
	srcPath, err := templates.Resolve(lx.TemplatesDir, p.Template)
	if err != nil {
		return nil, err
	}
	src, err := os.ReadFile(srcPath)
	if err != nil {
		return nil, fmt.Errorf("read template %q: %w", p.Template, err)
	}

	ws, err := NewWorkspace(lx.WorkDir, g.cfg.Limits.MaxInputBytes)
	if err != nil {
		return nil, err
	}
	defer ws.Close()

	prepared := Substitute(string(src), title, style, company)
	stagedSrc, err := ws.StageSource(p.Template, prepared)
	if err != nil {
		return nil, err
	}
	if err := ws.CopyAssets(lx.TemplatesDir); err != nil {
		return nil, err
	}

	jobName := fmt.Sprintf("%s_%s_%s", lx.FilePrefix, slugify(title), g.now().Format("02.01.2006"))

	ctx, cancel := context.WithTimeout(ctx, lx.Timeout())
	defer cancel()

	pdfPath, err := Compile(ctx, lx.Command, stagedSrc, jobName, lx.Passes)
	if err != nil {
		var cerr *CompileError
		if lx.DebugDir != "" && errors.As(err, &cerr) {
			ws.PreserveIn(lx.DebugDir)
		}
		return nil, err
	}

	data, err := os.ReadFile(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("read artifact: %w", err)
	}
	if len(data) > g.cfg.Limits.MaxPDFBytes {
		return nil, fmt.Errorf("%w: %d bytes", ErrArtifactTooLarge, len(data))
	}

	return &Artifact{Data: data, Filename: jobName + ".pdf"}, nil
}
