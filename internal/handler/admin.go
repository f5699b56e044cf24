package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/room-booking/internal/middleware"
	"github.com/iliyamo/room-booking/internal/service"
	"github.com/iliyamo/room-booking/internal/utils"
)

// AdminHandler serves /admin routes.  Everything except CreateSession sits
// behind JWTAuth and RequireRole(ADMIN).
type AdminHandler struct {
	Svc        *service.BookingService
	Gate       service.Authorizer
	JWTSecret  string
	SessionTTL int // minutes
	Cache      RoomCache // may be nil
	Log        *zap.Logger
}

// NewAdminHandler wires an AdminHandler.  The gate is taken from svc.
func NewAdminHandler(svc *service.BookingService, jwtSecret string, sessionTTL int, cache RoomCache, log *zap.Logger) *AdminHandler {
	if svc == nil {
		panic("nil service passed to NewAdminHandler")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &AdminHandler{
		Svc:        svc,
		Gate:       svc.Authorizer(),
		JWTSecret:  jwtSecret,
		SessionTTL: sessionTTL,
		Cache:      cache,
		Log:        log,
	}
}

type sessionReq struct {
	Token string `json:"token"`
}

type sessionResp struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

// CreateSession handles POST /admin/session.  It trades the admin override
// token for a short-lived HS256 session JWT.
func (h *AdminHandler) CreateSession(c echo.Context) error {
	var req sessionReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	if !h.Gate.IsAdmin(req.Token) {
		h.Log.Info("admin session refused", zap.String("remote_ip", c.RealIP()))
		return fail(c, http.StatusForbidden, "invalid admin token")
	}
	at, err := utils.NewAccessToken(h.JWTSecret, "admin", utils.RoleAdmin, h.SessionTTL)
	if err != nil {
		h.Log.Error("sign admin session failed", zap.Error(err))
		return fail(c, http.StatusInternalServerError, "could not issue token")
	}
	return okData(c, http.StatusOK, sessionResp{Token: at.Token, Expires: at.Exp})
}

// CreateOverrideBooking handles POST /admin/bookings.  The overlap check is
// skipped.
func (h *AdminHandler) CreateOverrideBooking(c echo.Context) error {
	var req service.Candidate
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	b, err := h.Svc.ProposeOverride(c.Request().Context(), req)
	if err != nil {
		return writeError(c, h.Log, err, "room not found", "could not create booking")
	}
	h.Log.Info("override booking created", zap.String("booking_id", b.ID), zap.String("admin", middleware.Subject(c)))
	h.purge(c)
	return okData(c, http.StatusCreated, b)
}

// CreateRoom handles POST /admin/rooms.
func (h *AdminHandler) CreateRoom(c echo.Context) error {
	var req service.RoomInput
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	room, err := h.Svc.CreateRoom(c.Request().Context(), req)
	if err != nil {
		return writeError(c, h.Log, err, "room not found", "could not create room")
	}
	h.purge(c)
	return okData(c, http.StatusCreated, room)
}

// UpsertRoom handles PUT /admin/rooms/:id.
func (h *AdminHandler) UpsertRoom(c echo.Context) error {
	var req service.RoomInput
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	room, err := h.Svc.UpsertRoom(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		return writeError(c, h.Log, err, "room not found", "could not save room")
	}
	h.purge(c)
	return okData(c, http.StatusOK, room)
}

// DeleteRoom handles DELETE /admin/rooms/:id.  Bookings of the room are kept
// with a null room_id.
func (h *AdminHandler) DeleteRoom(c echo.Context) error {
	if err := h.Svc.DeleteRoom(c.Request().Context(), c.Param("id")); err != nil {
		return writeError(c, h.Log, err, "room not found", "could not delete room")
	}
	h.purge(c)
	return c.JSON(http.StatusOK, echo.Map{"ok": true, "message": "Room deleted successfully"})
}

func (h *AdminHandler) purge(c echo.Context) {
	if h.Cache == nil {
		return
	}
	if err := h.Cache.Purge(c.Request().Context()); err != nil {
		h.Log.Warn("room cache purge failed", zap.Error(err))
	}
}
