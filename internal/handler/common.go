// Package handler contains the HTTP surface of the POS. Handlers
// bind and validate requests, call the engine services and map the
// engine's error taxonomy onto HTTP statuses.
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/yonetake/cafe-pos/internal/service"
)

// getUserID extracts the acting staff user from the JWT claims that
// JWTAuth stored in the context.
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// pathID parses a positive numeric path parameter.
func pathID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid " + name)
	}
	return id, nil
}

// serviceError maps the engine error taxonomy onto HTTP responses.
// Shortfall errors carry the exact amounts so the register UI can
// display what is missing.
func serviceError(c echo.Context, err error) error {
	var payShort *service.InsufficientPaymentError
	var ptsShort *service.InsufficientPointsError
	switch {
	case errors.As(err, &payShort):
		return c.JSON(http.StatusPaymentRequired, echo.Map{
			"error":          "insufficient_payment",
			"total_minor":    payShort.TotalMinor,
			"tendered_minor": payShort.TenderedMinor,
		})
	case errors.As(err, &ptsShort):
		return c.JSON(http.StatusPaymentRequired, echo.Map{
			"error":    "insufficient_points",
			"required": ptsShort.Required,
			"balance":  ptsShort.Balance,
		})
	case errors.Is(err, service.ErrTenderDeclined):
		return c.JSON(http.StatusPaymentRequired, echo.Map{"error": "tender_declined"})
	case errors.Is(err, service.ErrCustomerRequired):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "customer_required"})
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not_found", "detail": err.Error()})
	case errors.Is(err, service.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "conflict", "detail": err.Error()})
	case errors.Is(err, service.ErrInvalidState):
		return c.JSON(http.StatusConflict, echo.Map{"error": "invalid_state", "detail": err.Error()})
	default:
		c.Logger().Errorf("internal error: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}
