// Package models defines server-side data models persisted in the database.
package models

import "time"

// Role is the coarse permission level carried in access tokens.
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

type User struct {
	ID            string
	Email         string
	Name          string
	Role          Role
	PasswordHash  string
	EmailVerified bool
	Deleted       bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// UserFilter narrows admin user listings. Empty or nil fields do not filter.
type UserFilter struct {
	Name          string
	Email         string
	Role          Role
	EmailVerified *bool
	Page          Page
}
