package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/navafv/digital-thread-tailor-app/pkg/logger"
	"go.uber.org/zap"
)

// RequestIDHeader carries the request id on requests and responses
const RequestIDHeader = "X-Request-ID"

// RequestIDMiddleware tags each request with an id, echoes it in the
// response headers and adds it to the request logger
func RequestIDMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := c.Request().Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = uuid.New().String()
		}

		c.Set("request_id", requestID)
		c.Response().Header().Set(RequestIDHeader, requestID)

		log := logger.FromEcho(c).With(zap.String("request_id", requestID))
		logger.Attach(c, log)

		return next(c)
	}
}
