package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/navafv/digital-thread-tailor-app/internal/apperr"
	"github.com/navafv/digital-thread-tailor-app/internal/service"
)

// queryInt reads an integer query parameter in [1, limit], falling back to def
func queryInt(c echo.Context, name string, def, limit int) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 || n > limit {
		return 0, apperr.Invalid(name, "must be an integer between 1 and %d", limit)
	}
	return n, nil
}

// Dashboard handles GET /api/dashboard?horizon_days=&months=
func (h *Handler) Dashboard(c echo.Context) error {
	opts := h.dashboardDefaults
	var err error
	if opts.HorizonDays, err = queryInt(c, "horizon_days", opts.HorizonDays, service.MaxHorizonDays); err != nil {
		return respondError(c, err)
	}
	if opts.TrendMonths, err = queryInt(c, "months", opts.TrendMonths, service.MaxTrendMonths); err != nil {
		return respondError(c, err)
	}

	dash, err := h.dashboard.ComputeDashboard(c.Request().Context(), identity(c), opts)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dash)
}

// MonthlyRevenue handles GET /api/dashboard/revenue?months=
func (h *Handler) MonthlyRevenue(c echo.Context) error {
	months, err := queryInt(c, "months", h.dashboardDefaults.TrendMonths, service.MaxTrendMonths)
	if err != nil {
		return respondError(c, err)
	}
	series, err := h.dashboard.MonthlyRevenue(c.Request().Context(), identity(c), months)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"series": series})
}

// CalendarEvents handles GET /api/calendar/events
func (h *Handler) CalendarEvents(c echo.Context) error {
	events, err := h.dashboard.CalendarEvents(c.Request().Context(), identity(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, events)
}
