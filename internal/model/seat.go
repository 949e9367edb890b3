package model

import "time"

// Seat status values.  A seat is open when nobody sits on it,
// occupied while a session (timed or not) is attached to it and
// closed when it is taken out of service.
const (
	SeatOpen     = "open"
	SeatOccupied = "occupied"
	SeatClosed   = "closed"
)

// Table status values.  Table status is derived from the occupancy
// of its seats by the session and settlement engines; it is never
// written directly by handlers.
const (
	TableAvailable = "available"
	TableSeated    = "seated"
	TableDirty     = "dirty"
	TableReserved  = "reserved"
	TableOffline   = "offline"
)

// Seat describes a physical seat at a table.  Seats are never
// deleted while historical sessions reference them.
//
// Fields:
//  ID        – primary key identifier.
//  TableID   – table to which this seat belongs.
//  Label     – short designation printed on the floor plan (A1, B2).
//  Status    – open, occupied or closed.
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type Seat struct {
	ID        uint64    // seats.id
	TableID   uint64    // seats.table_id
	Label     string    // seats.label
	Status    string    // seats.status
	CreatedAt time.Time // seats.created_at
	UpdatedAt time.Time // seats.updated_at
}

// Table groups an ordered set of seats.  Its status mirrors the
// aggregate seat occupancy: seated while any seat is occupied,
// available once every seat is vacated through settlement, dirty
// when a walk-up tab ends and the table needs cleaning.
type Table struct {
	ID        uint64    // tables.id
	Name      string    // tables.name
	Status    string    // tables.status
	CreatedAt time.Time // tables.created_at
	UpdatedAt time.Time // tables.updated_at
}
