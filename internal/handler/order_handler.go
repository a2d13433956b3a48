package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/navafv/digital-thread-tailor-app/internal/apperr"
	"github.com/navafv/digital-thread-tailor-app/internal/service"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// OrderRequest is the body for order create and update. due_date is YYYY-MM-DD.
type OrderRequest struct {
	Item          string          `json:"item"`
	FabricDetails string          `json:"fabric_details"`
	Notes         string          `json:"notes"`
	Status        string          `json:"status"`
	DueDate       string          `json:"due_date"`
	Price         decimal.Decimal `json:"price"`
	AmountPaid    decimal.Decimal `json:"amount_paid"`
}

func (r OrderRequest) input() (service.OrderInput, error) {
	in := service.OrderInput{
		Item:          r.Item,
		FabricDetails: r.FabricDetails,
		Notes:         r.Notes,
		Status:        r.Status,
		Price:         r.Price,
		AmountPaid:    r.AmountPaid,
	}
	if r.DueDate != "" {
		due, err := time.Parse(dateLayout, r.DueDate)
		if err != nil {
			return in, apperr.Invalid("due_date", "must be a date in YYYY-MM-DD format")
		}
		in.DueDate = due
	}
	return in, nil
}

// ImageRequest references an uploaded image
type ImageRequest struct {
	ImageURL string `json:"image_url"`
	Caption  string `json:"caption"`
}

// MaterialRequest consumes inventory for an order
type MaterialRequest struct {
	InventoryItemID uint            `json:"inventory_item_id"`
	QuantityUsed    decimal.Decimal `json:"quantity_used"`
}

// ApplyTemplateRequest names the template to instantiate
type ApplyTemplateRequest struct {
	TemplateID uint `json:"template_id"`
}

// TaskCompletionRequest sets a task's completion state
type TaskCompletionRequest struct {
	Completed bool `json:"completed"`
}

// CreateOrder handles POST /api/customers/:id/orders
func (h *Handler) CreateOrder(c echo.Context) error {
	customerID, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "customer id")
	}
	var req OrderRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(c, err)
	}
	in, err := req.input()
	if err != nil {
		return respondError(c, err)
	}
	order, err := h.orders.CreateOrder(c.Request().Context(), identity(c), customerID, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, order)
}

// UpdateOrder handles PUT /api/orders/:id
func (h *Handler) UpdateOrder(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "order id")
	}
	var req OrderRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(c, err)
	}
	in, err := req.input()
	if err != nil {
		return respondError(c, err)
	}
	order, err := h.orders.UpdateOrder(c.Request().Context(), identity(c), id, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, order)
}

// GetOrder handles GET /api/orders/:id
func (h *Handler) GetOrder(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "order id")
	}
	order, err := h.orders.GetOrder(c.Request().Context(), identity(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, order)
}

// ListOrders handles GET /api/orders?status=
func (h *Handler) ListOrders(c echo.Context) error {
	orders, err := h.orders.ListOrders(c.Request().Context(), identity(c), c.QueryParam("status"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"orders": orders,
		"count":  len(orders),
	})
}

// AttachImage handles POST /api/orders/:id/images
func (h *Handler) AttachImage(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "order id")
	}
	var req ImageRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(c, err)
	}
	img, err := h.orders.AttachImage(c.Request().Context(), identity(c), id, service.ImageInput{
		ImageURL: req.ImageURL,
		Caption:  req.Caption,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, img)
}

// DetachImage handles DELETE /api/images/:id
func (h *Handler) DetachImage(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "image id")
	}
	if err := h.orders.DetachImage(c.Request().Context(), identity(c), id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// AttachMaterial handles POST /api/orders/:id/materials
func (h *Handler) AttachMaterial(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "order id")
	}
	var req MaterialRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(c, err)
	}
	m, err := h.orders.AttachMaterial(c.Request().Context(), identity(c), id, req.InventoryItemID, req.QuantityUsed)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, m)
}

// DetachMaterial handles DELETE /api/materials/:id
func (h *Handler) DetachMaterial(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "material id")
	}
	if err := h.orders.DetachMaterial(c.Request().Context(), identity(c), id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ApplyTemplate handles POST /api/orders/:id/apply-template
func (h *Handler) ApplyTemplate(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "order id")
	}
	var req ApplyTemplateRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(c, err)
	}
	ids, err := h.tasks.ApplyTemplate(c.Request().Context(), identity(c), id, req.TemplateID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"task_ids": ids})
}

// ListTasks handles GET /api/orders/:id/tasks
func (h *Handler) ListTasks(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "order id")
	}
	tasks, err := h.tasks.ListTasks(c.Request().Context(), identity(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"tasks": tasks})
}

// SetTaskCompletion handles PUT /api/tasks/:id
func (h *Handler) SetTaskCompletion(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "task id")
	}
	var req TaskCompletionRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(c, err)
	}
	status, err := h.tasks.SetTaskCompletion(c.Request().Context(), identity(c), id, req.Completed)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"task_id":      id,
		"completed":    req.Completed,
		"order_status": status,
	})
}
