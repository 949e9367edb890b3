package service

import (
	"context"
	"errors"
	"testing"

	"github.com/yonetake/cafe-pos/internal/model"
)

func TestAddItemComputesIncludedTax(t *testing.T) {
	st := newMemStore()
	orderID := st.addOrder(model.Order{Status: model.OrderOpen})
	svc := NewOrderService(st)

	item, err := svc.AddItem(context.Background(), orderID, model.ItemFnB, "Latte", 2, 55000)
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if item.TotalMinor != 110000 {
		t.Fatalf("total = %d, want 110000", item.TotalMinor)
	}
	if item.TaxMinor != 10000 {
		t.Fatalf("included tax = %d, want 10000", item.TaxMinor)
	}
}

func TestAddItemAllowedAfterTimerStopped(t *testing.T) {
	st := newMemStore()
	orderID := st.addOrder(model.Order{Status: model.OrderAwaitingPayment})
	svc := NewOrderService(st)

	if _, err := svc.AddItem(context.Background(), orderID, model.ItemRetail, "Beans 200g", 1, 120000); err != nil {
		t.Fatalf("AddItem on awaiting_payment order: %v", err)
	}
}

func TestAddItemRejectsEngineKindsAndClosedOrders(t *testing.T) {
	st := newMemStore()
	open := st.addOrder(model.Order{Status: model.OrderOpen})
	paid := st.addOrder(model.Order{Status: model.OrderPaid})
	svc := NewOrderService(st)

	if _, err := svc.AddItem(context.Background(), open, model.ItemSeatTime, "Seat time", 1, 100); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("seat_time kind error = %v, want ErrInvalidState", err)
	}
	if _, err := svc.AddItem(context.Background(), open, model.ItemGame, "Catan", 1, 0); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("game kind error = %v, want ErrInvalidState", err)
	}
	if _, err := svc.AddItem(context.Background(), paid, model.ItemFnB, "Latte", 1, 55000); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("paid order error = %v, want ErrInvalidState", err)
	}
	if _, err := svc.AddItem(context.Background(), open, model.ItemFnB, "Latte", 0, 55000); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("zero quantity error = %v, want ErrInvalidState", err)
	}
}

func TestDetailIncludesSessionsAndGroup(t *testing.T) {
	st := newMemStore()
	tableID := st.addTable(model.TableAvailable)
	seatID := st.addSeat(tableID, model.SeatOpen)
	sessions := NewSessionService(st).WithClock(newFakeClock().Now)
	orders := NewOrderService(st)

	sess, err := sessions.Start(context.Background(), StartParams{SeatID: seatID, Timed: true})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := orders.AddItem(context.Background(), sess.OrderID, model.ItemFnB, "Latte", 1, 55000); err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	det, err := orders.Detail(context.Background(), sess.OrderID)
	if err != nil {
		t.Fatalf("Detail: %v", err)
	}
	if len(det.Sessions) != 1 || det.Sessions[0].ID != sess.ID {
		t.Fatalf("detail sessions = %+v", det.Sessions)
	}
	if det.TotalMinor != 55000 {
		t.Fatalf("total = %d, want 55000", det.TotalMinor)
	}
	if det.Group != nil {
		t.Fatalf("ungrouped order must not report a group")
	}
}
