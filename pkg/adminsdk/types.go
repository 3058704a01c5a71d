package adminsdk

import (
	"encoding/json"
	"time"
)

// ============================================================================
// Shared Types
// ============================================================================

// Link is a hypermedia reference carried in the "_links" array of a resource.
type Link struct {
	Rel    string `json:"rel"`
	Method string `json:"method"`
	Href   string `json:"href"`
}

// Role is a named permission set. Roles are seeded reference data.
type Role struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type ListRolesResponse struct {
	Roles []Role `json:"roles"`
}

// Passcode is a numeric one-time code. It accepts both a JSON number and a
// JSON string so callers that send codes as integers keep working; numbers
// shorter than six digits are left-padded with zeros.
type Passcode string

func (p *Passcode) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*p = Passcode(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	s = n.String()
	for len(s) < 6 {
		s = "0" + s
	}
	*p = Passcode(s)
	return nil
}

// ============================================================================
// User Types
// ============================================================================

// ServiceRole is a role held on one service.
type ServiceRole struct {
	ServiceID string `json:"service_id"`
	Role      Role   `json:"role"`
}

// User is the representation of an account returned by every user endpoint.
type User struct {
	ExternalID      string        `json:"external_id"`
	Username        string        `json:"username"`
	Email           string        `json:"email"`
	TelephoneNumber string        `json:"telephone_number"`
	OTPKey          string        `json:"otp_key"`
	Disabled        bool          `json:"disabled"`
	LoginCounter    int           `json:"login_counter"`
	SessionVersion  int           `json:"session_version"`
	ServiceRoles    []ServiceRole `json:"service_roles"`
	Links           []Link        `json:"_links"`
}

// CreateUserRequest is the body of POST /v1/api/users.
type CreateUserRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	TelephoneNumber string `json:"telephone_number"`
	OTPKey          string `json:"otp_key,omitempty"`
	RoleName        string `json:"role_name"`
	ServiceID       string `json:"service_id,omitempty"`
}

// AuthenticateRequest is the body of POST /v1/api/users/authenticate.
type AuthenticateRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// PatchRequest is a single JSON-patch style operation. Only "replace" is
// supported, on the "disabled" and "telephone_number" paths.
type PatchRequest struct {
	Op    string `json:"op"`
	Path  string `json:"path"`
	Value any    `json:"value"`
}

// SessionVersionRequest is the body of POST /v1/api/users/{username}/session-version.
type SessionVersionRequest struct {
	ExpectedVersion *int `json:"expected_version"`
}

// SecondFactorRequest is the body of POST /v1/api/users/{username}/second-factor/authenticate.
type SecondFactorRequest struct {
	Code Passcode `json:"code"`
}

// ============================================================================
// Forgotten Password Types
// ============================================================================

// ForgottenPasswordRequest is the body of POST /v1/api/forgotten-passwords.
type ForgottenPasswordRequest struct {
	Username string `json:"username"`
}

// ForgottenPassword is a password reset token.
type ForgottenPassword struct {
	Code      string    `json:"code"`
	Username  string    `json:"username"`
	Date      time.Time `json:"date"`
	ExpiresAt time.Time `json:"expires_at"`
	Links     []Link    `json:"_links"`
}

// ResetPasswordRequest is the body of POST /v1/api/reset-password.
type ResetPasswordRequest struct {
	ForgottenPasswordCode string `json:"forgotten_password_code"`
	NewPassword           string `json:"new_password"`
}

// ============================================================================
// Invite Types
// ============================================================================

// ServiceInviteRequest is the body of POST /v1/api/invites/service.
type ServiceInviteRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password,omitempty"`
	TelephoneNumber string `json:"telephone_number,omitempty"`
}

// UserInviteRequest is the body of POST /v1/api/invites/user.
type UserInviteRequest struct {
	Sender    string `json:"sender"`
	Email     string `json:"email"`
	RoleName  string `json:"role_name"`
	ServiceID string `json:"service_id"`
}

// Invite is an onboarding invitation. The invite code only appears in Links
// and expired invites are never returned.
type Invite struct {
	Email           string    `json:"email"`
	TelephoneNumber string    `json:"telephone_number,omitempty"`
	Type            string    `json:"type"`
	Role            Role      `json:"role"`
	Disabled        bool      `json:"disabled"`
	AttemptCounter  int       `json:"attempt_counter"`
	PasswordSet     bool      `json:"password_set"`
	ExpiresAt       time.Time `json:"expires_at"`
	Links           []Link    `json:"_links"`
}

// InviteOTPRequest is the body of POST /v1/api/invites/{code}/otp/generate.
// Both fields are stored on the invite and used when the account is created.
type InviteOTPRequest struct {
	TelephoneNumber string `json:"telephone_number"`
	Password        string `json:"password"`
}

// InviteValidateRequest is the body of POST /v1/api/invites/otp/validate.
type InviteValidateRequest struct {
	Code string   `json:"code"`
	OTP  Passcode `json:"otp"`
}

// ============================================================================
// Health Types
// ============================================================================

// HealthResponse represents the response structure for health check endpoints.
// Used by both livez and readyz (readyz includes additional Checks field).
type HealthResponse struct {
	// Status indicates the overall health status (e.g., "ok")
	Status string `json:"status"`

	// Uptime is the service uptime duration as a string (e.g., "1h23m45s")
	Uptime string `json:"uptime,omitempty"`

	// Version is the service version string
	Version string `json:"version,omitempty"`

	// Checks contains readiness check results for critical dependencies (only for readyz)
	Checks *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks represents the status of critical service dependencies.
type HealthChecks struct {
	// Database indicates the database connection status
	Database string `json:"database"`

	// Throttle indicates the Redis throttle status, "disabled" when not configured
	Throttle string `json:"throttle"`
}
