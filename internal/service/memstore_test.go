package service

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sort"
	"time"

	"github.com/yonetake/cafe-pos/internal/model"
)

// memStore is an in-memory Store used by the engine tests.  It keeps
// every entity in plain maps and implements InTx by snapshotting the
// whole state before fn runs and restoring it when fn fails, which
// mirrors the rollback behaviour of the MySQL implementation.
type memStore struct {
	seats        map[uint64]model.Seat
	tables       map[uint64]model.Table
	sessions     map[uint64]model.SeatSession
	orders       map[uint64]model.Order
	items        map[uint64]model.OrderItem
	customers    map[uint64]model.Customer
	memberships  map[uint64]model.CustomerMembership
	usage        []model.MembershipUsage
	points       []model.PointsEntry
	attempts     []model.PaymentAttempt
	games        map[uint64]model.Game
	gameSessions map[uint64]model.GameSession
	history      []model.GameHistory
	audits       []model.AuditEvent
	nextID       uint64
}

func newMemStore() *memStore {
	return &memStore{
		seats:        map[uint64]model.Seat{},
		tables:       map[uint64]model.Table{},
		sessions:     map[uint64]model.SeatSession{},
		orders:       map[uint64]model.Order{},
		items:        map[uint64]model.OrderItem{},
		customers:    map[uint64]model.Customer{},
		memberships:  map[uint64]model.CustomerMembership{},
		games:        map[uint64]model.Game{},
		gameSessions: map[uint64]model.GameSession{},
	}
}

func (m *memStore) id() uint64 {
	m.nextID++
	return m.nextID
}

func (m *memStore) snapshot() memStore {
	c := *m
	c.seats = maps.Clone(m.seats)
	c.tables = maps.Clone(m.tables)
	c.sessions = maps.Clone(m.sessions)
	c.orders = maps.Clone(m.orders)
	c.items = maps.Clone(m.items)
	c.customers = maps.Clone(m.customers)
	c.memberships = maps.Clone(m.memberships)
	c.usage = slices.Clone(m.usage)
	c.points = slices.Clone(m.points)
	c.attempts = slices.Clone(m.attempts)
	c.games = maps.Clone(m.games)
	c.gameSessions = maps.Clone(m.gameSessions)
	c.history = slices.Clone(m.history)
	c.audits = slices.Clone(m.audits)
	return c
}

func (m *memStore) InTx(ctx context.Context, fn func(Tx) error) error {
	saved := m.snapshot()
	if err := fn(m); err != nil {
		*m = saved
		return err
	}
	return nil
}

// --- seats and tables ---

func (m *memStore) SeatByID(ctx context.Context, id uint64) (*model.Seat, error) {
	s, ok := m.seats[id]
	if !ok {
		return nil, fmt.Errorf("%w: seat %d", ErrNotFound, id)
	}
	return &s, nil
}

func (m *memStore) UpdateSeatStatus(ctx context.Context, seatID uint64, status string) error {
	s, ok := m.seats[seatID]
	if !ok {
		return fmt.Errorf("%w: seat %d", ErrNotFound, seatID)
	}
	s.Status = status
	m.seats[seatID] = s
	return nil
}

func (m *memStore) TableByID(ctx context.Context, id uint64) (*model.Table, error) {
	t, ok := m.tables[id]
	if !ok {
		return nil, fmt.Errorf("%w: table %d", ErrNotFound, id)
	}
	return &t, nil
}

func (m *memStore) UpdateTableStatus(ctx context.Context, tableID uint64, status string) error {
	t, ok := m.tables[tableID]
	if !ok {
		return fmt.Errorf("%w: table %d", ErrNotFound, tableID)
	}
	t.Status = status
	m.tables[tableID] = t
	return nil
}

func (m *memStore) CountOccupiedSeats(ctx context.Context, tableID uint64) (int, error) {
	n := 0
	for _, s := range m.seats {
		if s.TableID == tableID && s.Status == model.SeatOccupied {
			n++
		}
	}
	return n, nil
}

func (m *memStore) SeatsByTable(ctx context.Context, tableID uint64) ([]model.Seat, error) {
	var out []model.Seat
	for _, s := range m.seats {
		if s.TableID == tableID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// --- seat sessions ---

func (m *memStore) UnterminatedSessionBySeat(ctx context.Context, seatID uint64) (*model.SeatSession, error) {
	for _, s := range m.sessions {
		if s.SeatID == seatID && s.EndedAt == nil {
			return &s, nil
		}
	}
	return nil, fmt.Errorf("%w: no active session on seat %d", ErrNotFound, seatID)
}

func (m *memStore) CurrentSessionBySeat(ctx context.Context, seatID uint64) (*model.SeatSession, error) {
	var best *model.SeatSession
	for id := range m.sessions {
		s := m.sessions[id]
		if s.SeatID != seatID {
			continue
		}
		current := s.EndedAt == nil
		if !current && s.BilledItemID != nil {
			if o, ok := m.orders[s.OrderID]; ok && o.Status == model.OrderAwaitingPayment {
				current = true
			}
		}
		if !current {
			continue
		}
		if best == nil || s.ID > best.ID {
			c := s
			best = &c
		}
	}
	if best == nil {
		return nil, fmt.Errorf("%w: no current session on seat %d", ErrNotFound, seatID)
	}
	return best, nil
}

func (m *memStore) SessionByID(ctx context.Context, id uint64) (*model.SeatSession, error) {
	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: session %d", ErrNotFound, id)
	}
	return &s, nil
}

func (m *memStore) CreateSession(ctx context.Context, s *model.SeatSession) error {
	s.ID = m.id()
	m.sessions[s.ID] = *s
	return nil
}

func (m *memStore) UpdateSession(ctx context.Context, s *model.SeatSession) error {
	if _, ok := m.sessions[s.ID]; !ok {
		return fmt.Errorf("%w: session %d", ErrNotFound, s.ID)
	}
	m.sessions[s.ID] = *s
	return nil
}

func (m *memStore) SessionsByOrder(ctx context.Context, orderID uint64) ([]model.SeatSession, error) {
	var out []model.SeatSession
	for _, s := range m.sessions {
		if s.OrderID == orderID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// --- orders and items ---

func (m *memStore) OrderByID(ctx context.Context, id uint64) (*model.Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, fmt.Errorf("%w: order %d", ErrNotFound, id)
	}
	return &o, nil
}

func (m *memStore) CreateOrder(ctx context.Context, o *model.Order) error {
	o.ID = m.id()
	m.orders[o.ID] = *o
	return nil
}

func (m *memStore) UpdateOrderStatus(ctx context.Context, orderID uint64, status string) error {
	o, ok := m.orders[orderID]
	if !ok {
		return fmt.Errorf("%w: order %d", ErrNotFound, orderID)
	}
	o.Status = status
	m.orders[orderID] = o
	return nil
}

func (m *memStore) MarkOrderPaid(ctx context.Context, orderID uint64, closedAt time.Time, closedBy uint64, paidByOrderID *uint64) error {
	o, ok := m.orders[orderID]
	if !ok {
		return fmt.Errorf("%w: order %d", ErrNotFound, orderID)
	}
	o.Status = model.OrderPaid
	o.ClosedAt = &closedAt
	o.ClosedByUserID = &closedBy
	o.PaidByOrderID = paidByOrderID
	m.orders[orderID] = o
	return nil
}

func (m *memStore) SetPaymentGroup(ctx context.Context, orderID uint64, groupID string, primary bool) error {
	o, ok := m.orders[orderID]
	if !ok {
		return fmt.Errorf("%w: order %d", ErrNotFound, orderID)
	}
	o.PaymentGroupID = &groupID
	o.IsPrimaryPayer = primary
	m.orders[orderID] = o
	return nil
}

func (m *memStore) ClearPaymentGroup(ctx context.Context, orderID uint64) error {
	o, ok := m.orders[orderID]
	if !ok {
		return fmt.Errorf("%w: order %d", ErrNotFound, orderID)
	}
	o.PaymentGroupID = nil
	o.IsPrimaryPayer = false
	m.orders[orderID] = o
	return nil
}

func (m *memStore) OrdersByPaymentGroup(ctx context.Context, groupID string) ([]model.Order, error) {
	var out []model.Order
	for _, o := range m.orders {
		if o.PaymentGroupID != nil && *o.PaymentGroupID == groupID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) ItemsByOrder(ctx context.Context, orderID uint64) ([]model.OrderItem, error) {
	var out []model.OrderItem
	for _, it := range m.items {
		if it.OrderID == orderID {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) CreateItem(ctx context.Context, it *model.OrderItem) error {
	it.ID = m.id()
	m.items[it.ID] = *it
	return nil
}

func (m *memStore) UpdateItem(ctx context.Context, it *model.OrderItem) error {
	if _, ok := m.items[it.ID]; !ok {
		return fmt.Errorf("%w: item %d", ErrNotFound, it.ID)
	}
	m.items[it.ID] = *it
	return nil
}

// --- customers, memberships, loyalty ---

func (m *memStore) CustomerByID(ctx context.Context, id uint64) (*model.Customer, error) {
	c, ok := m.customers[id]
	if !ok {
		return nil, fmt.Errorf("%w: customer %d", ErrNotFound, id)
	}
	return &c, nil
}

func (m *memStore) ActiveMembership(ctx context.Context, customerID uint64, at time.Time) (*model.CustomerMembership, error) {
	for _, cm := range m.memberships {
		if cm.CustomerID == customerID && cm.ActiveAt(at) {
			c := cm
			return &c, nil
		}
	}
	return nil, fmt.Errorf("%w: no active membership for customer %d", ErrNotFound, customerID)
}

func (m *memStore) AddMembershipHours(ctx context.Context, membershipID uint64, deltaHours float64) error {
	cm, ok := m.memberships[membershipID]
	if !ok {
		return fmt.Errorf("%w: membership %d", ErrNotFound, membershipID)
	}
	cm.HoursUsed += deltaHours
	m.memberships[membershipID] = cm
	return nil
}

func (m *memStore) InsertMembershipUsage(ctx context.Context, u model.MembershipUsage) error {
	u.ID = m.id()
	m.usage = append(m.usage, u)
	return nil
}

func (m *memStore) LatestUsageBySession(ctx context.Context, sessionID uint64) (*model.MembershipUsage, error) {
	for i := len(m.usage) - 1; i >= 0; i-- {
		if m.usage[i].SessionID == sessionID {
			u := m.usage[i]
			return &u, nil
		}
	}
	return nil, fmt.Errorf("%w: no usage for session %d", ErrNotFound, sessionID)
}

func (m *memStore) PointsBalance(ctx context.Context, customerID uint64) (int64, error) {
	var bal int64
	for _, e := range m.points {
		if e.CustomerID != customerID {
			continue
		}
		switch e.Kind {
		case model.PointsEarned:
			bal += e.Points
		case model.PointsRedeemed:
			bal -= e.Points
		}
	}
	return bal, nil
}

func (m *memStore) InsertPointsEntry(ctx context.Context, e model.PointsEntry) error {
	e.ID = m.id()
	m.points = append(m.points, e)
	return nil
}

// --- payments ---

func (m *memStore) InsertPaymentAttempt(ctx context.Context, a *model.PaymentAttempt) error {
	a.ID = m.id()
	m.attempts = append(m.attempts, *a)
	return nil
}

// --- games ---

func (m *memStore) GameByID(ctx context.Context, id uint64) (*model.Game, error) {
	g, ok := m.games[id]
	if !ok {
		return nil, fmt.Errorf("%w: game %d", ErrNotFound, id)
	}
	return &g, nil
}

func (m *memStore) UpdateGameStatus(ctx context.Context, gameID uint64, status string) error {
	g, ok := m.games[gameID]
	if !ok {
		return fmt.Errorf("%w: game %d", ErrNotFound, gameID)
	}
	g.Status = status
	m.games[gameID] = g
	return nil
}

func (m *memStore) ActiveGameSessionsByTable(ctx context.Context, tableID uint64) ([]model.GameSession, error) {
	var out []model.GameSession
	for _, gs := range m.gameSessions {
		if gs.TableID == tableID && gs.EndedAt == nil {
			out = append(out, gs)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) CreateGameSession(ctx context.Context, gs *model.GameSession) error {
	gs.ID = m.id()
	m.gameSessions[gs.ID] = *gs
	return nil
}

func (m *memStore) EndGameSession(ctx context.Context, gameSessionID uint64, at time.Time) error {
	gs, ok := m.gameSessions[gameSessionID]
	if !ok {
		return fmt.Errorf("%w: game session %d", ErrNotFound, gameSessionID)
	}
	gs.EndedAt = &at
	m.gameSessions[gameSessionID] = gs
	return nil
}

func (m *memStore) InsertGameHistory(ctx context.Context, h model.GameHistory) error {
	for _, have := range m.history {
		if have.CustomerID == h.CustomerID && have.GameSessionID == h.GameSessionID && have.OrderID == h.OrderID {
			return nil
		}
	}
	h.ID = m.id()
	m.history = append(m.history, h)
	return nil
}

// --- audit ---

func (m *memStore) InsertAuditEvent(ctx context.Context, ev model.AuditEvent) error {
	ev.ID = m.id()
	m.audits = append(m.audits, ev)
	return nil
}

// --- fixture helpers ---

func (m *memStore) addTable(status string) uint64 {
	id := m.id()
	m.tables[id] = model.Table{ID: id, Name: fmt.Sprintf("T%d", id), Status: status}
	return id
}

func (m *memStore) addSeat(tableID uint64, status string) uint64 {
	id := m.id()
	m.seats[id] = model.Seat{ID: id, TableID: tableID, Label: fmt.Sprintf("S%d", id), Status: status}
	return id
}

func (m *memStore) addOrder(o model.Order) uint64 {
	o.ID = m.id()
	m.orders[o.ID] = o
	return o.ID
}

func (m *memStore) addItem(it model.OrderItem) uint64 {
	it.ID = m.id()
	m.items[it.ID] = it
	return it.ID
}

func (m *memStore) addCustomer(tier string) uint64 {
	id := m.id()
	m.customers[id] = model.Customer{ID: id, Name: fmt.Sprintf("C%d", id), Tier: tier}
	return id
}

func (m *memStore) addMembership(cm model.CustomerMembership) uint64 {
	cm.ID = m.id()
	m.memberships[cm.ID] = cm
	return cm.ID
}

func (m *memStore) addGame(name, status string) uint64 {
	id := m.id()
	m.games[id] = model.Game{ID: id, Name: name, Status: status}
	return id
}

func (m *memStore) addPoints(customerID uint64, kind string, pts int64) {
	m.points = append(m.points, model.PointsEntry{ID: m.id(), CustomerID: customerID, Kind: kind, Points: pts})
}

// fakeClock is a controllable time source for the services.
type fakeClock struct{ t time.Time }

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }
