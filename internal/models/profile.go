package models

import "time"

// Profile is the read-only identity projection. Authentication itself
// happens upstream; the core only needs id, display data and role.
type Profile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Role      string    `json:"role"` // user, admin
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Actor identifies who is performing an operation. It is passed
// explicitly into every lifecycle call instead of being read from
// ambient context, so authorization stays testable.
type Actor struct {
	ID   string
	Role string
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

func (p *Profile) Actor() Actor {
	return Actor{ID: p.ID, Role: p.Role}
}
