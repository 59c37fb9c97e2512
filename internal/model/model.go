package model

// Package model contains domain models/data structures.
// No business logic here.

// Roles known to the archive. Anything unrecognized is handled as the
// least-privilege role by the policy table.
const (
	RoleDirector = "DIRECTOR"
	RoleManager  = "MANAGER"
	RoleStaff    = "STAFF"
)

// Principal is the caller identity resolved per request from a bearer
// credential. It is never persisted.
type Principal struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}
