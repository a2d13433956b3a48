package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/navafv/digital-thread-tailor-app/internal/service"
)

// AppointmentRequest is the body for booking or requesting an appointment.
// Times are RFC 3339.
type AppointmentRequest struct {
	CustomerID uint      `json:"customer_id"`
	Title      string    `json:"title"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	Notes      string    `json:"notes"`
}

func (r AppointmentRequest) input() service.AppointmentInput {
	return service.AppointmentInput{
		CustomerID: r.CustomerID,
		Title:      r.Title,
		StartTime:  r.StartTime,
		EndTime:    r.EndTime,
		Notes:      r.Notes,
	}
}

// AppointmentStatusRequest moves an appointment to a new status
type AppointmentStatusRequest struct {
	Status string `json:"status"`
}

// CreateAppointment handles POST /api/appointments
func (h *Handler) CreateAppointment(c echo.Context) error {
	var req AppointmentRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(c, err)
	}
	appt, err := h.appointments.CreateAppointment(c.Request().Context(), identity(c), req.input())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, appt)
}

// ListAppointments handles GET /api/appointments?status=
func (h *Handler) ListAppointments(c echo.Context) error {
	appts, err := h.appointments.ListAppointments(c.Request().Context(), identity(c), c.QueryParam("status"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"appointments": appts,
		"count":        len(appts),
	})
}

// UpdateAppointmentStatus handles PUT /api/appointments/:id/status
func (h *Handler) UpdateAppointmentStatus(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "appointment id")
	}
	var req AppointmentStatusRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(c, err)
	}
	appt, err := h.appointments.UpdateAppointmentStatus(c.Request().Context(), identity(c), id, req.Status)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, appt)
}

// RequestAppointment handles POST /api/portal/appointments
func (h *Handler) RequestAppointment(c echo.Context) error {
	var req AppointmentRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(c, err)
	}
	appt, err := h.appointments.RequestAppointment(c.Request().Context(), identity(c), req.input())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, appt)
}
