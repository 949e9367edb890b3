package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/yonetake/cafe-pos/internal/repository"
	"github.com/yonetake/cafe-pos/internal/service"
)

// FloorHandler serves the floor plan and table game checkout.
type FloorHandler struct {
	Store    *repository.Store
	Sessions *service.SessionService
}

func NewFloorHandler(store *repository.Store, sessions *service.SessionService) *FloorHandler {
	return &FloorHandler{Store: store, Sessions: sessions}
}

// Tables handles GET /v1/tables: every table with its seats and the
// sessions currently tied to them.
func (h *FloorHandler) Tables(c echo.Context) error {
	view, err := h.Store.FloorView(c.Request().Context())
	if err != nil {
		c.Logger().Errorf("floor view: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"tables": view})
}

type startGameReq struct {
	GameID uint64 `json:"game_id"`
}

// StartGame handles POST /v1/tables/:id/games.
func (h *FloorHandler) StartGame(c echo.Context) error {
	tableID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	var req startGameReq
	if err := c.Bind(&req); err != nil || req.GameID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "game_id required"})
	}

	gs, err := h.Sessions.StartTableGame(c.Request().Context(), tableID, req.GameID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusCreated, gs)
}
