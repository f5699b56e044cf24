package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/room-booking/internal/export"
	"github.com/iliyamo/room-booking/internal/model"
	"github.com/iliyamo/room-booking/internal/service"
)

// RoomCache drops cached room listings.  *middleware.CachePurger
// implements it.
type RoomCache interface {
	Purge(ctx context.Context) error
}

// BookingHandler serves the public room and booking endpoints.
type BookingHandler struct {
	Svc   *service.BookingService
	Cache RoomCache // may be nil
	Log   *zap.Logger
}

// NewBookingHandler panics if svc is nil.  cache and log are optional.
func NewBookingHandler(svc *service.BookingService, cache RoomCache, log *zap.Logger) *BookingHandler {
	if svc == nil {
		panic("nil service passed to NewBookingHandler")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &BookingHandler{Svc: svc, Cache: cache, Log: log}
}

type statusReq struct {
	Status string `json:"status"`
}

type deleteReq struct {
	UserSecret    string `json:"userSecret"`
	BookingSecret string `json:"booking_secret"`
}

// ListRooms handles GET /rooms.
func (h *BookingHandler) ListRooms(c echo.Context) error {
	rooms, err := h.Svc.ListRooms(c.Request().Context())
	if err != nil {
		return fail(c, http.StatusServiceUnavailable, "store-unreachable")
	}
	return okData(c, http.StatusOK, rooms)
}

// ListBookings handles GET /bookings with optional room_id, date and status
// filters.
func (h *BookingHandler) ListBookings(c echo.Context) error {
	bookings, err := h.Svc.ListBookings(c.Request().Context(), bookingQuery(c))
	if err != nil {
		var ve *service.ValidationError
		if errors.As(err, &ve) {
			return fail(c, http.StatusBadRequest, ve.Error())
		}
		return fail(c, http.StatusServiceUnavailable, "store-unreachable")
	}
	return okData(c, http.StatusOK, bookings)
}

// ExportBookings handles GET /bookings/export and streams an .xlsx file with
// the same filters as ListBookings.
func (h *BookingHandler) ExportBookings(c echo.Context) error {
	bookings, err := h.Svc.ListBookings(c.Request().Context(), bookingQuery(c))
	if err != nil {
		var ve *service.ValidationError
		if errors.As(err, &ve) {
			return fail(c, http.StatusBadRequest, ve.Error())
		}
		return fail(c, http.StatusServiceUnavailable, "store-unreachable")
	}
	data, err := export.BookingsXLSX(bookings)
	if err != nil {
		h.Log.Error("export failed", zap.Error(err))
		return fail(c, http.StatusInternalServerError, "export failed")
	}
	name := "bookings-" + time.Now().UTC().Format("20060102-150405") + ".xlsx"
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+name+`"`)
	return c.Blob(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// CreateBooking handles POST /bookings.
func (h *BookingHandler) CreateBooking(c echo.Context) error {
	var req service.Candidate
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	b, err := h.Svc.Propose(c.Request().Context(), req)
	if err != nil {
		return writeError(c, h.Log, err, "room not found", "could not create booking")
	}
	h.purgeRooms(c.Request().Context())
	return okData(c, http.StatusCreated, b)
}

// UpdateStatus handles PATCH /bookings/:id.
func (h *BookingHandler) UpdateStatus(c echo.Context) error {
	var req statusReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	b, err := h.Svc.UpdateStatus(c.Request().Context(), c.Param("id"), model.Status(strings.TrimSpace(req.Status)))
	if err != nil {
		return writeError(c, h.Log, err, "Booking not found", "could not update booking")
	}
	return okData(c, http.StatusOK, b)
}

// DeleteBooking handles DELETE /bookings/:id.  The secret comes from the
// JSON body as userSecret (or booking_secret).
func (h *BookingHandler) DeleteBooking(c echo.Context) error {
	var req deleteReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	secret := req.UserSecret
	if secret == "" {
		secret = req.BookingSecret
	}
	if err := h.Svc.Delete(c.Request().Context(), c.Param("id"), secret); err != nil {
		return writeError(c, h.Log, err, "Booking not found", "could not delete booking")
	}
	return c.JSON(http.StatusOK, echo.Map{"ok": true, "message": "Booking deleted successfully"})
}

// purgeRooms drops cached room listings.  A booking can create a room, so
// bookings purge too.
func (h *BookingHandler) purgeRooms(ctx context.Context) {
	if h.Cache == nil {
		return
	}
	if err := h.Cache.Purge(ctx); err != nil {
		h.Log.Warn("room cache purge failed", zap.Error(err))
	}
}

func bookingQuery(c echo.Context) service.BookingQuery {
	return service.BookingQuery{
		RoomID: strings.TrimSpace(c.QueryParam("room_id")),
		Date:   strings.TrimSpace(c.QueryParam("date")),
		Status: model.Status(strings.TrimSpace(c.QueryParam("status"))),
	}
}
