package domain

import "time"

type InviteType string

const (
	// InviteTypeService onboards the owner of a brand new service.
	InviteTypeService InviteType = "service"
	// InviteTypeUser invites someone to join an existing service.
	InviteTypeUser InviteType = "user"
)

// Invite is an onboarding invitation. The raw Code is only known when the
// invite was just created or looked up by it; storage keys on CodeHash.
type Invite struct {
	ID              string
	Code            string
	CodeHash        string
	Email           string
	TelephoneNumber string
	Type            InviteType
	Role            Role
	ServiceID       string
	Sender          string
	PasswordHash    string
	OTPKey          string
	Disabled        bool
	LoginCounter    int
	Version         int
	ExpiresAt       time.Time
	CreatedAt       time.Time
	Links           []Link
}

// Expired reports whether the invite is past its expiry at now.
func (i Invite) Expired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}

// Active reports whether the invite can still be redeemed.
func (i Invite) Active(now time.Time) bool {
	return !i.Disabled && !i.Expired(now)
}

// InviteActivation carries what is needed to create the account for a
// redeemed invite.
type InviteActivation struct {
	InviteID        string
	Email           string
	TelephoneNumber string
	PasswordHash    string
	OTPKey          string
	Role            Role
	ServiceID       string
	Type            InviteType
}
