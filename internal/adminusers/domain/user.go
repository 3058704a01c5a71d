package domain

import "time"

// User is an administrative account. Username is case-sensitive; Email is
// stored lower-cased. Disabled is the lockout flag and stays set until an
// administrator resets the login attempts.
type User struct {
	ID              string
	Username        string
	Email           string
	PasswordHash    string
	OTPKey          string
	TelephoneNumber string
	Disabled        bool
	LoginCounter    int
	SessionVersion  int
	Version         int // optimistic concurrency counter, bumped on every update
	ServiceRoles    []ServiceRole
	CreatedAt       time.Time
	UpdatedAt       time.Time
	Links           []Link
}

// ServiceRole grants a role on one service. An empty ServiceID is a role that
// is not yet bound to a service.
type ServiceRole struct {
	ServiceID string
	Role      Role
}

// Role is seeded reference data; Ranking orders roles for display.
type Role struct {
	ID          int
	Name        string
	Description string
	Ranking     int
}
