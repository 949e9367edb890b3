package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/yonetake/cafe-pos/internal/metrics"
	"github.com/yonetake/cafe-pos/internal/model"
	"github.com/yonetake/cafe-pos/internal/service"
)

// OrderHandler exposes order items, bill consolidation and
// settlement.
type OrderHandler struct {
	Orders        *service.OrderService
	Consolidation *service.ConsolidationService
	Settlement    *service.SettlementService
}

func NewOrderHandler(o *service.OrderService, cons *service.ConsolidationService, settle *service.SettlementService) *OrderHandler {
	return &OrderHandler{Orders: o, Consolidation: cons, Settlement: settle}
}

// Detail handles GET /v1/orders/:id.
func (h *OrderHandler) Detail(c echo.Context) error {
	orderID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	det, err := h.Orders.Detail(c.Request().Context(), orderID)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, det)
}

type addItemReq struct {
	Kind           string `json:"kind"`
	Name           string `json:"name"`
	Qty            int    `json:"qty"`
	UnitPriceMinor int64  `json:"unit_price_minor"`
}

// AddItem handles POST /v1/orders/:id/items.
func (h *OrderHandler) AddItem(c echo.Context) error {
	orderID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	var req addItemReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Kind == "" || req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "kind and name required"})
	}

	item, err := h.Orders.AddItem(c.Request().Context(), orderID, req.Kind, req.Name, req.Qty, req.UnitPriceMinor)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusCreated, item)
}

type mergeReq struct {
	PrimaryOrderID uint64   `json:"primary_order_id"`
	OrderIDs       []uint64 `json:"order_ids"`
}

// Merge handles POST /v1/orders/merge.
func (h *OrderHandler) Merge(c echo.Context) error {
	actor, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req mergeReq
	if err := c.Bind(&req); err != nil || req.PrimaryOrderID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "primary_order_id required"})
	}

	groupID, err := h.Consolidation.Merge(c.Request().Context(), req.PrimaryOrderID, req.OrderIDs, actor)
	if err != nil {
		return serviceError(c, err)
	}
	metrics.BillMerges.WithLabelValues("merge").Inc()
	return c.JSON(http.StatusOK, echo.Map{"payment_group_id": groupID})
}

// Unmerge handles POST /v1/orders/:id/unmerge.
func (h *OrderHandler) Unmerge(c echo.Context) error {
	orderID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	actor, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	if err := h.Consolidation.Unmerge(c.Request().Context(), orderID, actor); err != nil {
		return serviceError(c, err)
	}
	metrics.BillMerges.WithLabelValues("unmerge").Inc()
	return c.NoContent(http.StatusNoContent)
}

type settleReq struct {
	Tenders []model.Tender `json:"tenders"`
}

// Settle handles POST /v1/orders/:id/settle.
func (h *OrderHandler) Settle(c echo.Context) error {
	orderID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	actor, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req settleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	res, err := h.Settlement.Settle(c.Request().Context(), orderID, req.Tenders, actor)
	if err != nil {
		metrics.Settlements.WithLabelValues("rejected").Inc()
		return serviceError(c, err)
	}
	metrics.Settlements.WithLabelValues("completed").Inc()
	metrics.SettledAmountMinor.Add(float64(res.TotalMinor))
	return c.JSON(http.StatusOK, res)
}
