package handler

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/navafv/digital-thread-tailor-app/internal/service"
)

// CustomerRequest is the body for customer create and update
type CustomerRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

func (r CustomerRequest) input() service.CustomerInput {
	return service.CustomerInput{Name: r.Name, Phone: r.Phone, Email: r.Email, Address: r.Address}
}

// MeasurementRequest accepts the value as a JSON number or string
type MeasurementRequest struct {
	Name  string          `json:"name"`
	Value json.RawMessage `json:"value"`
}

func (r MeasurementRequest) input() service.MeasurementInput {
	var s string
	if err := json.Unmarshal(r.Value, &s); err != nil {
		s = string(r.Value)
	}
	return service.MeasurementInput{Name: r.Name, Value: s}
}

// CreateCustomer handles POST /api/customers
func (h *Handler) CreateCustomer(c echo.Context) error {
	var req CustomerRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(c, err)
	}
	customer, err := h.catalog.CreateCustomer(c.Request().Context(), identity(c), req.input())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, customer)
}

// UpdateCustomer handles PUT /api/customers/:id
func (h *Handler) UpdateCustomer(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "customer id")
	}
	var req CustomerRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(c, err)
	}
	customer, err := h.catalog.UpdateCustomer(c.Request().Context(), identity(c), id, req.input())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, customer)
}

// GetCustomer handles GET /api/customers/:id
func (h *Handler) GetCustomer(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "customer id")
	}
	customer, err := h.catalog.GetCustomer(c.Request().Context(), identity(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, customer)
}

// ListCustomers handles GET /api/customers
func (h *Handler) ListCustomers(c echo.Context) error {
	customers, err := h.catalog.ListCustomers(c.Request().Context(), identity(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"customers": customers,
		"count":     len(customers),
	})
}

// AddMeasurement handles POST /api/customers/:id/measurements
func (h *Handler) AddMeasurement(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "customer id")
	}
	var req MeasurementRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(c, err)
	}
	m, err := h.catalog.AddMeasurement(c.Request().Context(), identity(c), id, req.input())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, m)
}

// UpdateMeasurement handles PUT /api/measurements/:id
func (h *Handler) UpdateMeasurement(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "measurement id")
	}
	var req MeasurementRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(c, err)
	}
	m, err := h.catalog.UpdateMeasurement(c.Request().Context(), identity(c), id, req.input())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, m)
}

// DeleteMeasurement handles DELETE /api/measurements/:id
func (h *Handler) DeleteMeasurement(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "measurement id")
	}
	if err := h.catalog.DeleteMeasurement(c.Request().Context(), identity(c), id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
