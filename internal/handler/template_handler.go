package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/navafv/digital-thread-tailor-app/internal/service"
)

// TemplateRequest is the body for creating a workflow template
type TemplateRequest struct {
	Name  string `json:"name"`
	Steps []struct {
		Name       string `json:"name"`
		OrderIndex int    `json:"order_index"`
	} `json:"steps"`
}

// CreateTemplate handles POST /api/templates
func (h *Handler) CreateTemplate(c echo.Context) error {
	var req TemplateRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(c, err)
	}
	in := service.TemplateInput{Name: req.Name}
	for _, s := range req.Steps {
		in.Steps = append(in.Steps, service.TaskDefinitionInput{Name: s.Name, OrderIndex: s.OrderIndex})
	}
	tpl, err := h.catalog.CreateTemplate(c.Request().Context(), identity(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, tpl)
}

// GetTemplate handles GET /api/templates/:id
func (h *Handler) GetTemplate(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "template id")
	}
	tpl, err := h.catalog.GetTemplate(c.Request().Context(), identity(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, tpl)
}

// ListTemplates handles GET /api/templates
func (h *Handler) ListTemplates(c echo.Context) error {
	templates, err := h.catalog.ListTemplates(c.Request().Context(), identity(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"templates": templates})
}

// DeleteTemplate handles DELETE /api/templates/:id
func (h *Handler) DeleteTemplate(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "template id")
	}
	if err := h.catalog.DeleteTemplate(c.Request().Context(), identity(c), id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
