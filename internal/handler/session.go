package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/yonetake/cafe-pos/internal/metrics"
	"github.com/yonetake/cafe-pos/internal/service"
)

// SessionHandler exposes the seat session lifecycle.
type SessionHandler struct {
	Sessions *service.SessionService
}

func NewSessionHandler(s *service.SessionService) *SessionHandler {
	return &SessionHandler{Sessions: s}
}

type startSessionReq struct {
	OrderID    uint64  `json:"order_id"`    // 0 opens a fresh order
	CustomerID *uint64 `json:"customer_id"` // optional
	Timed      bool    `json:"timed"`
}

// Start handles POST /v1/seats/:id/session.
func (h *SessionHandler) Start(c echo.Context) error {
	seatID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	actor, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req startSessionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	sess, err := h.Sessions.Start(c.Request().Context(), service.StartParams{
		SeatID:     seatID,
		OrderID:    req.OrderID,
		CustomerID: req.CustomerID,
		Timed:      req.Timed,
		ActorID:    actor,
	})
	if err != nil {
		return serviceError(c, err)
	}
	mode := "untimed"
	if req.Timed {
		mode = "timed"
	}
	metrics.SessionsStarted.WithLabelValues(mode).Inc()
	return c.JSON(http.StatusCreated, sess)
}

// Stop handles POST /v1/seats/:id/session/stop.
func (h *SessionHandler) Stop(c echo.Context) error {
	seatID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	actor, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	res, err := h.Sessions.Stop(c.Request().Context(), seatID, actor)
	if err != nil {
		return serviceError(c, err)
	}
	metrics.SessionsStopped.Inc()
	return c.JSON(http.StatusOK, echo.Map{
		"session":       res.Session,
		"item":          res.Item,
		"charge_minor":  res.ChargeMinor,
		"covered_hours": res.CoveredHours,
		"overage_hours": res.OverageHours,
	})
}

type editTimesReq struct {
	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at"`
}

// EditTimes handles PATCH /v1/sessions/:id/times. Admin only.
func (h *SessionHandler) EditTimes(c echo.Context) error {
	sessionID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	actor, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req editTimesReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.StartedAt.IsZero() || req.EndedAt.IsZero() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "started_at and ended_at required"})
	}

	sess, err := h.Sessions.Edit(c.Request().Context(), sessionID, req.StartedAt, req.EndedAt, actor)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, sess)
}

type transferReq struct {
	TargetSeatID uint64 `json:"target_seat_id"`
}

// Transfer handles POST /v1/seats/:id/transfer.
func (h *SessionHandler) Transfer(c echo.Context) error {
	seatID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	actor, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req transferReq
	if err := c.Bind(&req); err != nil || req.TargetSeatID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "target_seat_id required"})
	}

	sess, err := h.Sessions.Transfer(c.Request().Context(), seatID, req.TargetSeatID, actor)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, sess)
}
