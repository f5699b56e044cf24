package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Health is the liveness probe.  It answers "ok" as plain text.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

// Ready answers 200 when the store is reachable and 503 otherwise.
func (h *BookingHandler) Ready(c echo.Context) error {
	if err := h.Svc.Ping(c.Request().Context()); err != nil {
		h.Log.Warn("readiness check failed", zap.Error(err))
		return fail(c, http.StatusServiceUnavailable, "store-unreachable")
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}
