package service

import (
	"context"
	"fmt"

	"github.com/yonetake/cafe-pos/internal/billing"
	"github.com/yonetake/cafe-pos/internal/model"
)

// OrderService covers the order-item surface around the billing
// core: adding catalog lines to an open tab and reading a bill back
// for display.  Prices arrive from the catalog layer; the core does
// not validate stock.
type OrderService struct {
	store          Store
	taxRatePercent int
}

// NewOrderService builds an OrderService with the default tax rate.
func NewOrderService(store Store) *OrderService {
	return &OrderService{store: store, taxRatePercent: DefaultTaxRatePercent}
}

// WithTaxRate overrides the tax rate included in item prices.
func (s *OrderService) WithTaxRate(percent int) *OrderService {
	if percent > 0 {
		s.taxRatePercent = percent
	}
	return s
}

var addableKinds = map[string]bool{
	model.ItemFnB:           true,
	model.ItemRetail:        true,
	model.ItemRentalFee:     true,
	model.ItemRentalDeposit: true,
	model.ItemMembership:    true,
}

// AddItem appends a line to an order.  The customer may keep adding
// items after the timer stopped, right up until payment; seat_time
// and game lines are written by the engine only and are rejected
// here.
func (s *OrderService) AddItem(ctx context.Context, orderID uint64, kind, name string, qty int, unitPriceMinor int64) (*model.OrderItem, error) {
	if !addableKinds[kind] {
		return nil, fmt.Errorf("%w: item kind %q cannot be added directly", ErrInvalidState, kind)
	}
	if qty <= 0 || unitPriceMinor < 0 {
		return nil, fmt.Errorf("%w: invalid quantity or price", ErrInvalidState)
	}
	var out *model.OrderItem
	err := s.store.InTx(ctx, func(tx Tx) error {
		order, err := tx.OrderByID(ctx, orderID)
		if err != nil {
			return err
		}
		if order.Status != model.OrderOpen && order.Status != model.OrderAwaitingPayment {
			return fmt.Errorf("%w: order %d is %s", ErrInvalidState, orderID, order.Status)
		}
		total := unitPriceMinor * int64(qty)
		item := &model.OrderItem{
			OrderID:        orderID,
			Kind:           kind,
			Name:           name,
			Qty:            qty,
			UnitPriceMinor: unitPriceMinor,
			TaxMinor:       billing.IncludedTax(total, s.taxRatePercent),
			TotalMinor:     total,
		}
		if err := tx.CreateItem(ctx, item); err != nil {
			return err
		}
		out = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// OrderDetail is the bill as displayed: the order, its lines and
// sessions, and, when the order is merged, the whole payment group
// with the combined total.
type OrderDetail struct {
	Order         *model.Order        `json:"order"`
	Items         []model.OrderItem   `json:"items"`
	Sessions      []model.SeatSession `json:"sessions"`
	TotalMinor    int64               `json:"total_minor"`
	Group         []model.Order       `json:"group,omitempty"`
	GroupTotal    int64               `json:"group_total_minor,omitempty"`
	PrimaryPayerID uint64             `json:"primary_payer_id,omitempty"`
}

// Detail loads an order with its items, sessions and payment group.
func (s *OrderService) Detail(ctx context.Context, orderID uint64) (*OrderDetail, error) {
	var det OrderDetail
	err := s.store.InTx(ctx, func(tx Tx) error {
		order, err := tx.OrderByID(ctx, orderID)
		if err != nil {
			return err
		}
		det.Order = order
		if det.Items, err = tx.ItemsByOrder(ctx, orderID); err != nil {
			return err
		}
		if det.Sessions, err = tx.SessionsByOrder(ctx, orderID); err != nil {
			return err
		}
		for _, it := range det.Items {
			det.TotalMinor += it.TotalMinor
		}
		if order.PaymentGroupID == nil {
			return nil
		}
		members, err := tx.OrdersByPaymentGroup(ctx, *order.PaymentGroupID)
		if err != nil {
			return err
		}
		det.Group = members
		for _, m := range members {
			if m.IsPrimaryPayer {
				det.PrimaryPayerID = m.ID
			}
			items, err := tx.ItemsByOrder(ctx, m.ID)
			if err != nil {
				return err
			}
			for _, it := range items {
				det.GroupTotal += it.TotalMinor
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &det, nil
}

// groupTotal sums item totals across all orders of a settlement
// scope.  Game lines are zero-priced informational rows, so a plain
// sum matches the payable amount.
func groupTotal(ctx context.Context, tx Tx, orders []model.Order) (int64, []model.OrderItem, error) {
	var total int64
	var all []model.OrderItem
	for _, o := range orders {
		items, err := tx.ItemsByOrder(ctx, o.ID)
		if err != nil {
			return 0, nil, err
		}
		for _, it := range items {
			total += it.TotalMinor
		}
		all = append(all, items...)
	}
	return total, all, nil
}

// settlementScope resolves the set of orders one settlement pays
// for: the order itself, or its whole payment group when merged.
// Only the primary payer may settle a group.
func settlementScope(ctx context.Context, tx Tx, order *model.Order) ([]model.Order, error) {
	if order.PaymentGroupID == nil {
		return []model.Order{*order}, nil
	}
	if !order.IsPrimaryPayer {
		return nil, fmt.Errorf("%w: order %d is not the primary payer of group %s", ErrInvalidState, order.ID, *order.PaymentGroupID)
	}
	members, err := tx.OrdersByPaymentGroup(ctx, *order.PaymentGroupID)
	if err != nil {
		return nil, err
	}
	return members, nil
}
