package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"cvgen/internal/latex"
	"cvgen/internal/templates"
	u "cvgen/internal/utils"
)

const serviceName = "cv-generation-service"

// GenerateRequest is the request body for CV generation. Both JSON and
// form-encoded payloads are accepted; the original service kept form support
// for direct downloads from mobile browsers.
type GenerateRequest struct {
	Template string `json:"template" form:"template"`
	Title    string `json:"title" form:"title"`
	Style    string `json:"style" form:"style"`
	Company  string `json:"company" form:"company"`
}

// CVService bundles configuration and the generator shared by all requests.
type CVService struct {
	Config *u.Config
	gen    *latex.Generator
}

// NewCVService creates a new CVService instance.
func NewCVService(cfg u.Config) *CVService {
	return &CVService{
		Config: &cfg, // convert value to pointer
		gen:    latex.NewGenerator(cfg),
	}
}

// HandleGenerate compiles the selected template with the request parameters
// and streams the PDF back as an attachment.
func (svc *CVService) HandleGenerate(c *fiber.Ctx) error {
	var req GenerateRequest
	if err := c.BodyParser(&req); err != nil && !errors.Is(err, fiber.ErrUnprocessableEntity) {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body: "+err.Error())
	}

	artifact, err := svc.gen.Generate(c.Context(), latex.Params{
		Template: req.Template,
		Title:    req.Title,
		Style:    req.Style,
		Company:  req.Company,
	})
	if err != nil {
		return svc.mapGenerateError(c, err)
	}

	requestID := c.Get("X-Request-ID")
	u.Info("CV generated", "filename", artifact.Filename, "bytes", len(artifact.Data), "request_id", requestID)

	c.Set("Content-Type", "application/pdf")
	c.Set("Content-Disposition", "attachment; filename="+artifact.Filename)
	return c.Send(artifact.Data)
}

func (svc *CVService) mapGenerateError(c *fiber.Ctx, err error) error {
	var cerr *latex.CompileError

	switch {
	case errors.Is(err, templates.ErrNotFound),
		errors.Is(err, templates.ErrInvalidName),
		errors.Is(err, latex.ErrInvalidTitle),
		errors.Is(err, latex.ErrInvalidStyle),
		errors.Is(err, latex.ErrInvalidCompany):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())

	case errors.Is(err, latex.ErrInputTooLarge),
		errors.Is(err, latex.ErrArtifactTooLarge):
		return fiber.NewError(fiber.StatusRequestEntityTooLarge, err.Error())

	case errors.Is(err, latex.ErrCompileTimeout),
		errors.Is(err, context.DeadlineExceeded):
		u.Error("CV generation timeout", "timeout_secs", svc.Config.Latex.TimeoutSecs, "error", err.Error())
		return fiber.NewError(fiber.StatusGatewayTimeout, "LaTeX compilation took too long")

	case errors.As(err, &cerr):
		u.Error("CV generation failed", "pass", cerr.Pass, "error", cerr.Excerpt)
		return fiber.NewError(fiber.StatusInternalServerError, "LaTeX compilation failed: "+cerr.Excerpt)

	default:
		u.Error("CV generation failed", "error", err.Error())
		return fiber.NewError(fiber.StatusInternalServerError, "CV generation failed")
	}
}

// HandleHealth reports process liveness. It deliberately has no dependency
// on the compiler or the templates.
func (svc *CVService) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"service":   serviceName,
	})
}

// HandleTemplates lists the installed template identifiers. The directory is
// rescanned on every call; the set only changes on redeploys.
func (svc *CVService) HandleTemplates(c *fiber.Ctx) error {
	names, err := templates.List(svc.Config.Latex.TemplatesDir)
	if err != nil {
		u.Error("Failed to list templates", "error", err.Error())
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to list templates")
	}
	return c.JSON(fiber.Map{"templates": names})
}
