package handler // handler contains the echo handlers for the room booking API

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/room-booking/internal/service"
)

// Every JSON response is either {ok:true, data|message} or {ok:false, error}.

func okData(c echo.Context, status int, data any) error {
	return c.JSON(status, echo.Map{"ok": true, "data": data})
}

func fail(c echo.Context, status int, msg string) error {
	return c.JSON(status, echo.Map{"ok": false, "error": msg})
}

// writeError maps a service error onto a status code and safe message.
// notFound and serverErr let each endpoint keep its own wording.
func writeError(c echo.Context, log *zap.Logger, err error, notFound, serverErr string) error {
	var (
		ve *service.ValidationError
		ce *service.ConflictError
	)
	switch {
	case errors.As(err, &ce):
		return c.JSON(http.StatusConflict, echo.Map{
			"ok":    false,
			"error": "conflict",
			"conflict": echo.Map{
				"message": ce.Message,
				"booking": ce.Booking,
			},
		})
	case errors.As(err, &ve):
		return fail(c, http.StatusBadRequest, ve.Error())
	case errors.Is(err, service.ErrInvalidDuration):
		return fail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNotFound):
		return fail(c, http.StatusNotFound, notFound)
	case errors.Is(err, service.ErrForbidden):
		return fail(c, http.StatusForbidden, "Invalid secret key")
	case errors.Is(err, service.ErrRoomExists):
		return fail(c, http.StatusConflict, "room already exists")
	}
	log.Error("request failed",
		zap.String("method", c.Request().Method),
		zap.String("route", c.Path()),
		zap.Error(err))
	return fail(c, http.StatusInternalServerError, serverErr)
}

// HTTPErrorHandler renders framework errors (unknown routes, bad methods,
// recovered panics) in the same envelope as handler errors.
func HTTPErrorHandler(log *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		status := http.StatusInternalServerError
		msg := http.StatusText(status)
		var he *echo.HTTPError
		if errors.As(err, &he) {
			status = he.Code
			if m, ok := he.Message.(string); ok {
				msg = m
			} else {
				msg = http.StatusText(status)
			}
		}
		if status >= http.StatusInternalServerError {
			log.Error("unhandled error", zap.String("path", c.Request().URL.Path), zap.Error(err))
		}

		var werr error
		if c.Request().Method == http.MethodHead {
			werr = c.NoContent(status)
		} else {
			werr = fail(c, status, msg)
		}
		if werr != nil {
			log.Warn("writing error response failed", zap.Error(werr))
		}
	}
}
