package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// PortalDashboard handles GET /api/portal/dashboard
func (h *Handler) PortalDashboard(c echo.Context) error {
	dash, err := h.portal.Dashboard(c.Request().Context(), identity(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dash)
}

// PortalOrders handles GET /api/portal/orders
func (h *Handler) PortalOrders(c echo.Context) error {
	orders, err := h.portal.Orders(c.Request().Context(), identity(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"orders": orders,
		"count":  len(orders),
	})
}

// PortalOrder handles GET /api/portal/orders/:id
func (h *Handler) PortalOrder(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "order id")
	}
	order, err := h.portal.Order(c.Request().Context(), identity(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, order)
}

// PortalProfile handles GET /api/portal/profile
func (h *Handler) PortalProfile(c echo.Context) error {
	customer, err := h.portal.Profile(c.Request().Context(), identity(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, customer)
}
