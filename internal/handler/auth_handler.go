package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/navafv/digital-thread-tailor-app/internal/service"
	"github.com/navafv/digital-thread-tailor-app/pkg/logger"
	"github.com/navafv/digital-thread-tailor-app/prometheus"
	"go.uber.org/zap"
)

// RegisterRequest is the tailor sign-up body
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the login body
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register creates a tailor account
func (h *Handler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		prometheus.RecordAuthError("invalid_request")
		return invalidBody(c, err)
	}

	account, err := h.accounts.Register(c.Request().Context(), service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Tailor registered successfully",
		"account": account,
	})
}

// Login returns a token and the home path for the account's role
func (h *Handler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		prometheus.RecordAuthError("invalid_request")
		return invalidBody(c, err)
	}

	res, err := h.accounts.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		logger.FromEcho(c).Warn("Login failed", zap.String("username", req.Username), zap.Error(err))
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// InviteCustomer creates portal credentials for a customer
func (h *Handler) InviteCustomer(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "customer id")
	}
	inv, err := h.accounts.InviteCustomer(c.Request().Context(), identity(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, inv)
}
