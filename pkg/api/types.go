package api

import "time"

// User is the server-owned profile. The client only ever holds a read-only
// cached copy of it.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username,omitempty"`
	FirstName string    `json:"first_name,omitempty"`
	LastName  string    `json:"last_name,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// Credentials is the canonical result of a successful login or registration:
// the bearer token plus the user it was issued for, regardless of which of
// the backend's response shapes carried them.
type Credentials struct {
	Token string
	User  *User
}

// Registration carries the fields accepted by the register endpoint.
type Registration struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	Username  string `json:"username,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}
