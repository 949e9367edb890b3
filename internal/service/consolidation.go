package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yonetake/cafe-pos/internal/model"
)

// ConsolidationService merges several independently timed, unpaid
// orders into one payable bill and reverses the merge.  It uses
// payment-group linking: items stay on their orders, the group
// shares one uuid and exactly one order is the payer of record.
// Combined totals are summed across the group at settlement time, so
// unmerging loses nothing.
type ConsolidationService struct {
	store      Store
	newGroupID func() string
	now        func() time.Time
}

// NewConsolidationService builds a ConsolidationService with uuid
// group ids and the wall clock.
func NewConsolidationService(store Store) *ConsolidationService {
	return &ConsolidationService{store: store, newGroupID: uuid.NewString, now: time.Now}
}

// Merge links the primary order and every member order under one
// payment group.  All referenced orders must be awaiting payment and
// not already grouped; everything is validated before any row is
// touched, so a rejected merge has zero side effects.
func (s *ConsolidationService) Merge(ctx context.Context, primaryID uint64, memberIDs []uint64, actorID uint64) (string, error) {
	ids := []uint64{primaryID}
	seen := map[uint64]bool{primaryID: true}
	for _, id := range memberIDs {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	if len(ids) < 2 {
		return "", fmt.Errorf("%w: a merge needs at least two distinct orders", ErrInvalidState)
	}

	groupID := s.newGroupID()
	err := s.store.InTx(ctx, func(tx Tx) error {
		// Validate every order first; mutate only when all pass.
		for _, id := range ids {
			order, err := tx.OrderByID(ctx, id)
			if err != nil {
				return err
			}
			if order.Status != model.OrderAwaitingPayment {
				return fmt.Errorf("%w: order %d is %s, not awaiting payment", ErrInvalidState, id, order.Status)
			}
			if order.PaymentGroupID != nil {
				return fmt.Errorf("%w: order %d already belongs to payment group %s", ErrInvalidState, id, *order.PaymentGroupID)
			}
		}
		for _, id := range ids {
			if err := tx.SetPaymentGroup(ctx, id, groupID, id == primaryID); err != nil {
				return err
			}
		}
		detail, _ := json.Marshal(map[string]any{
			"payment_group_id": groupID,
			"primary_order_id": primaryID,
			"order_ids":        ids,
		})
		ev := model.AuditEvent{
			Kind:        model.AuditBillsMerged,
			ActorUserID: actorID,
			OrderID:     &primaryID,
			Detail:      string(detail),
			RecordedAt:  s.now().UTC(),
		}
		return tx.InsertAuditEvent(ctx, ev)
	})
	if err != nil {
		return "", err
	}
	return groupID, nil
}

// Unmerge dissolves the payment group the given order belongs to,
// restoring every member to independent payability.  It fails with
// ErrNotFound when the order has no group or the group holds no
// unpaid member left to restore.
func (s *ConsolidationService) Unmerge(ctx context.Context, orderID, actorID uint64) error {
	return s.store.InTx(ctx, func(tx Tx) error {
		order, err := tx.OrderByID(ctx, orderID)
		if err != nil {
			return err
		}
		if order.PaymentGroupID == nil {
			return fmt.Errorf("%w: order %d is not part of a payment group", ErrNotFound, orderID)
		}
		groupID := *order.PaymentGroupID
		members, err := tx.OrdersByPaymentGroup(ctx, groupID)
		if err != nil {
			return err
		}
		unpaid := make([]model.Order, 0, len(members))
		for _, m := range members {
			if m.Status == model.OrderOpen || m.Status == model.OrderAwaitingPayment {
				unpaid = append(unpaid, m)
			}
		}
		if len(unpaid) == 0 {
			return fmt.Errorf("%w: payment group %s has no unpaid members", ErrNotFound, groupID)
		}
		memberIDs := make([]uint64, 0, len(unpaid))
		for _, m := range unpaid {
			if err := tx.ClearPaymentGroup(ctx, m.ID); err != nil {
				return err
			}
			memberIDs = append(memberIDs, m.ID)
		}
		detail, _ := json.Marshal(map[string]any{
			"payment_group_id": groupID,
			"order_ids":        memberIDs,
		})
		ev := model.AuditEvent{
			Kind:        model.AuditBillsUnmerged,
			ActorUserID: actorID,
			OrderID:     &orderID,
			Detail:      string(detail),
			RecordedAt:  s.now().UTC(),
		}
		return tx.InsertAuditEvent(ctx, ev)
	})
}
