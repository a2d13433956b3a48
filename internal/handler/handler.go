package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/navafv/digital-thread-tailor-app/internal/apperr"
	"github.com/navafv/digital-thread-tailor-app/internal/middleware"
	"github.com/navafv/digital-thread-tailor-app/internal/model"
	"github.com/navafv/digital-thread-tailor-app/internal/service"
	"github.com/navafv/digital-thread-tailor-app/pkg/logger"
	"github.com/navafv/digital-thread-tailor-app/prometheus"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Handler serves the JSON API on top of the services
type Handler struct {
	db *gorm.DB

	catalog      *service.CatalogService
	orders       *service.OrderService
	tasks        *service.TaskService
	dashboard    *service.DashboardService
	appointments *service.AppointmentService
	accounts     *service.AccountService
	portal       *service.PortalService

	dashboardDefaults service.DashboardOptions
}

// New wires every service to db
func New(db *gorm.DB, tokens service.TokenIssuer, dashboardDefaults service.DashboardOptions, opts ...service.Option) *Handler {
	return &Handler{
		db:                db,
		catalog:           service.NewCatalogService(db, opts...),
		orders:            service.NewOrderService(db, opts...),
		tasks:             service.NewTaskService(db, opts...),
		dashboard:         service.NewDashboardService(db, opts...),
		appointments:      service.NewAppointmentService(db, opts...),
		accounts:          service.NewAccountService(db, tokens, opts...),
		portal:            service.NewPortalService(db, opts...),
		dashboardDefaults: dashboardDefaults,
	}
}

// errNotFoundBody is returned for both missing and foreign resources so a
// caller cannot probe other tenants for existence
var errNotFoundBody = echo.Map{"error": "resource not found"}

// respondError maps a service error to an HTTP response
func respondError(c echo.Context, err error) error {
	log := logger.FromEcho(c)
	kind := apperr.Kind(err)

	var verr *apperr.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": verr.Reason, "field": verr.Field})
	case errors.Is(err, apperr.ErrValidation):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, apperr.ErrForbidden), errors.Is(err, apperr.ErrNotFound):
		who, _ := middleware.IdentityFrom(c)
		log.Warn("Resource rejected",
			zap.String("kind", kind),
			zap.Uint("tenant_id", who.TenantID),
			zap.Error(err))
		prometheus.RecordTenantError(who.TenantID, kind)
		return c.JSON(http.StatusNotFound, errNotFoundBody)
	case errors.Is(err, apperr.ErrUnauthenticated):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	default:
		log.Error("Request failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}
}

// identity returns the acting identity set by AuthMiddleware. Without one
// the zero Identity is returned, which every service rejects.
func identity(c echo.Context) model.Identity {
	who, _ := middleware.IdentityFrom(c)
	return who
}

func paramID(c echo.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func invalidID(c echo.Context, name string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid " + name})
}

func invalidBody(c echo.Context, err error) error {
	logger.FromEcho(c).Warn("Invalid request data", zap.Error(err))
	return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
}
