package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	u "cvgen/internal/utils"
)

const testTemplate = `\documentclass{article}
\newcommand{\cvstyle}{modern}
\newcommand{\company}{}
\begin{document}
{\Large\color{text} Python Developer}
\end{document}
`

// okEngine stands in for pdflatex: it writes a PDF embedding the staged
// source so responses can be checked for what got compiled.
const okEngine = `#!/bin/sh
dir=""
job=""
src=""
for a in "$@"; do
  case "$a" in
    -output-directory=*) dir="${a#-output-directory=}" ;;
    -jobname=*) job="${a#-jobname=}" ;;
  esac
  src="$a"
done
{ printf '%%PDF-1.4\n'; cat "$src"; } > "$dir/$job.pdf"
`

const failEngine = `#!/bin/sh
echo '! Emergency stop.'
exit 1
`

const hangEngine = `#!/bin/sh
sleep 30
`

func testCVConfig(t *testing.T, engine string) u.Config {
	t.Helper()

	enginePath := filepath.Join(t.TempDir(), "engine.sh")
	require.NoError(t, os.WriteFile(enginePath, []byte(engine), 0o755))

	cfg := u.DefaultConfig()
	cfg.Latex.Command = enginePath
	cfg.Latex.TemplatesDir = filepath.Join(t.TempDir(), "templates")
	cfg.Latex.WorkDir = filepath.Join(t.TempDir(), "work")
	cfg.Latex.DefaultTemplate = "resume"
	cfg.Latex.TimeoutSecs = 5
	cfg.Latex.Passes = 2

	require.NoError(t, os.MkdirAll(cfg.Latex.TemplatesDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Latex.TemplatesDir, "resume.tex"), []byte(testTemplate), 0o644))
	return cfg
}

func newTestApp(cfg u.Config) *fiber.App {
	app := fiber.New()
	svc := NewCVService(cfg)
	app.Post("/generate-cv", svc.HandleGenerate)
	app.Get("/health", svc.HandleHealth)
	app.Get("/available-templates", svc.HandleTemplates)
	return app
}

func TestHandleGenerate_JSONSuccess(t *testing.T) {
	cfg := testCVConfig(t, okEngine)
	app := newTestApp(cfg)

	req := httptest.NewRequest("POST", "/generate-cv", strings.NewReader(`{"template":"resume","title":"Data Scientist"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, 10000)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	disposition := resp.Header.Get("Content-Disposition")
	wantDate := time.Now().Format("02.01.2006")
	assert.Equal(t, "attachment; filename=cv_Data_Scientist_"+wantDate+".pdf", disposition)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(body), "%PDF"))
	assert.Contains(t, string(body), "Data Scientist")
}

func TestHandleGenerate_FormBody(t *testing.T) {
	cfg := testCVConfig(t, okEngine)
	app := newTestApp(cfg)

	form := url.Values{}
	form.Set("template", "resume")
	form.Set("title", "Backend Engineer")
	req := httptest.NewRequest("POST", "/generate-cv", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := app.Test(req, 10000)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "cv_Backend_Engineer_")
}

func TestHandleGenerate_UnknownTemplate(t *testing.T) {
	cfg := testCVConfig(t, okEngine)
	app := newTestApp(cfg)

	req := httptest.NewRequest("POST", "/generate-cv", strings.NewReader(`{"template":"ghost"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	// No subprocess ran and no scoped directory was created.
	_, statErr := os.Stat(cfg.Latex.WorkDir)
	assert.True(t, os.IsNotExist(statErr))
}

func TestHandleGenerate_InvalidStyle(t *testing.T) {
	cfg := testCVConfig(t, okEngine)
	app := newTestApp(cfg)

	req := httptest.NewRequest("POST", "/generate-cv", strings.NewReader(`{"template":"resume","style":"baroque"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestHandleGenerate_SpecialCharsTitle(t *testing.T) {
	cfg := testCVConfig(t, okEngine)
	app := newTestApp(cfg)

	req := httptest.NewRequest("POST", "/generate-cv", strings.NewReader(`{"template":"resume","title":"50% C# Dev"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, 10000)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), `50\% C\# Dev`)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "cv_50_C_Dev_")
}

func TestHandleGenerate_CompilerFailure(t *testing.T) {
	cfg := testCVConfig(t, failEngine)
	app := newTestApp(cfg)

	req := httptest.NewRequest("POST", "/generate-cv", strings.NewReader(`{"template":"resume","title":"T"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, 10000)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	// Structured error with a diagnostic excerpt, no partial binary output.
	assert.Contains(t, string(body), "Emergency stop")
	assert.False(t, strings.HasPrefix(string(body), "%PDF"))
}

func TestHandleGenerate_Timeout(t *testing.T) {
	cfg := testCVConfig(t, hangEngine)
	cfg.Latex.TimeoutSecs = 1
	app := newTestApp(cfg)

	req := httptest.NewRequest("POST", "/generate-cv", strings.NewReader(`{"template":"resume","title":"T"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, 10000)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusGatewayTimeout, resp.StatusCode)

	// The killed subprocess must not leave its workspace behind.
	entries, readErr := os.ReadDir(cfg.Latex.WorkDir)
	if !os.IsNotExist(readErr) {
		require.NoError(t, readErr)
		assert.Empty(t, entries)
	}
}

func TestHandleGenerate_Concurrent(t *testing.T) {
	cfg := testCVConfig(t, okEngine)
	app := newTestApp(cfg)

	const n = 6
	bodies := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			payload := fmt.Sprintf(`{"template":"resume","title":"Engineer %d"}`, i)
			req := httptest.NewRequest("POST", "/generate-cv", strings.NewReader(payload))
			req.Header.Set("Content-Type", "application/json")
			resp, err := app.Test(req, 15000)
			if err != nil || resp.StatusCode != fiber.StatusOK {
				return
			}
			b, _ := io.ReadAll(resp.Body)
			bodies[i] = string(b)
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		require.NotEmpty(t, bodies[i], "request %d failed", i)
		assert.Contains(t, bodies[i], fmt.Sprintf("Engineer %d}", i), "cross-talk in request %d", i)
	}
}

func TestHandleHealth(t *testing.T) {
	cfg := testCVConfig(t, okEngine)
	app := newTestApp(cfg)

	before := time.Now().Add(-5 * time.Second)
	resp, err := app.Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var payload struct {
		Status    string `json:"status"`
		Timestamp string `json:"timestamp"`
		Service   string `json:"service"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Equal(t, "healthy", payload.Status)
	assert.Equal(t, "cv-generation-service", payload.Service)

	ts, err := time.Parse(time.RFC3339, payload.Timestamp)
	require.NoError(t, err)
	assert.True(t, ts.After(before) && ts.Before(time.Now().Add(5*time.Second)))
}

func TestHandleTemplates(t *testing.T) {
	cfg := testCVConfig(t, okEngine)
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Latex.TemplatesDir, "academic.tex"), []byte(testTemplate), 0o644))
	app := newTestApp(cfg)

	resp, err := app.Test(httptest.NewRequest("GET", "/available-templates", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var payload struct {
		Templates []string `json:"templates"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Equal(t, []string{"academic", "resume"}, payload.Templates)
}

func TestHandleTemplates_EmptyDir(t *testing.T) {
	cfg := testCVConfig(t, okEngine)
	cfg.Latex.TemplatesDir = filepath.Join(t.TempDir(), "nothing-here")
	app := newTestApp(cfg)

	resp, err := app.Test(httptest.NewRequest("GET", "/available-templates", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.JSONEq(t, `{"templates":[]}`, string(body))
}
