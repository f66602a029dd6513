package inspect

import (
	"errors"

	"treesync/core/logger"
	"treesync/feature/document"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler serves the inspection API.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service, logger: service.logger}
}

// RegisterRoutes registers the session routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/sessions")
	group.Get("/", h.HandleList)
	group.Put("/:name/view", h.HandleApply)
	group.Get("/:name/view", h.HandleGetView)
	group.Get("/:name/html", h.HandleHTML)
	group.Get("/:name/styles", h.HandleStyles)
	group.Get("/:name/passes", h.HandlePasses)
	group.Delete("/:name", h.HandleDelete)
}

// HandleList returns a summary of every session.
func (h *Handler) HandleList(c *fiber.Ctx) error {
	return c.JSON(h.service.List())
}

// HandleApply decodes the request body as a YAML or JSON view and applies
// it to the session. With ?defer=true the view is only queued for the
// session's next frame.
func (h *Handler) HandleApply(c *fiber.Ctx) error {
	name := c.Params("name")
	l := logger.WithRayID(h.logger, c).With(zap.String("session", name))

	view, err := document.DecodeView(c.Body())
	if err != nil {
		l.Warn("Rejected view", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if c.QueryBool("defer") {
		h.service.Defer(name, view)
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"status": "queued"})
	}

	res, err := h.service.Apply(name, view)
	if err != nil {
		l.Error("Failed to apply view", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if res.Report.Err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(res)
	}
	return c.JSON(res)
}

// HandleGetView returns the current view of the session as YAML.
func (h *Handler) HandleGetView(c *fiber.Ctx) error {
	s, err := h.service.Get(c.Params("name"))
	if err != nil {
		return h.fail(c, err)
	}
	view, _ := s.View()
	data, err := document.EncodeView(view)
	if err != nil {
		return h.fail(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/yaml")
	return c.Send(data)
}

// HandleHTML renders the session's document.
func (h *Handler) HandleHTML(c *fiber.Ctx) error {
	s, err := h.service.Get(c.Params("name"))
	if err != nil {
		return h.fail(c, err)
	}
	out, err := s.HTML()
	if err != nil {
		return h.fail(c, err)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.SendString(out)
}

// HandleStyles returns the stylesheet of the session's view.
func (h *Handler) HandleStyles(c *fiber.Ctx) error {
	s, err := h.service.Get(c.Params("name"))
	if err != nil {
		return h.fail(c, err)
	}
	c.Set(fiber.HeaderContentType, "text/css; charset=utf-8")
	return c.SendString(s.Sheet().Bundle())
}

// HandlePasses returns the recent pass reports of the session.
func (h *Handler) HandlePasses(c *fiber.Ctx) error {
	s, err := h.service.Get(c.Params("name"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(s.Driver().History())
}

// HandleDelete stops and unmounts the session.
func (h *Handler) HandleDelete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.Params("name")); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) fail(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	if errors.Is(err, ErrNoSession) {
		status = fiber.StatusNotFound
	} else {
		logger.WithRayID(h.logger, c).Error("Inspection request failed", zap.Error(err))
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
