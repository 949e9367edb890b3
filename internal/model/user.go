package model

import "time"

// Staff roles accepted by the role middleware.
const (
	RoleAdmin = "ADMIN"
	RoleStaff = "STAFF"
)

// User is a staff account.  Only the bcrypt hash of the password is
// stored.  The user id from the JWT becomes the actor recorded on
// audit events.
type User struct {
	ID           uint64    // users.id
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	Role         string    // users.role
	CreatedAt    time.Time // users.created_at
}
