package domain

import "time"

type Role string

const (
	Role_Customer Role = "customer"
	Role_Admin    Role = "admin"
)

// Actor is the authenticated identity performing an action. Authentication
// itself happens upstream; this core trusts the supplied id and role.
type Actor struct {
	ID   int64
	Role Role
}

func (a Actor) IsAdmin() bool {
	return a.Role == Role_Admin
}

type User struct {
	ID        int64     `db:"id"`
	PublicID  string    `db:"public_id"`
	Email     string    `db:"email"`
	Role      Role      `db:"role"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
