package domain

import "time"

// Role names a coarse permission level attached to a user.
type Role string

const (
	RoleUser   Role = "user"
	RoleEditor Role = "editor"
	RoleAdmin  Role = "admin"
)

// User is the canonical account record. Every lookup path (login, bearer-token
// resolution, admin listing) returns this same shape.
type User struct {
	ID           string
	Email        string
	Username     string
	PasswordHash string
	FullName     string
	IsActive     bool
	IsVerified   bool
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
