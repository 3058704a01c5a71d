package adminsdk

import (
	"context"
	"net/http"
	"net/url"
)

func invitePath(code, suffix string) string {
	return "/v1/api/invites/" + url.PathEscape(code) + suffix
}

// CreateServiceInvite invites the owner of a new service.
func (c *Client) CreateServiceInvite(ctx context.Context, req ServiceInviteRequest) (*Invite, error) {
	var inv Invite
	if err := c.call(ctx, http.MethodPost, "/v1/api/invites/service", req, &inv, http.StatusCreated); err != nil {
		return nil, err
	}
	return &inv, nil
}

// CreateUserInvite invites someone to an existing service.
func (c *Client) CreateUserInvite(ctx context.Context, req UserInviteRequest) (*Invite, error) {
	var inv Invite
	if err := c.call(ctx, http.MethodPost, "/v1/api/invites/user", req, &inv, http.StatusCreated); err != nil {
		return nil, err
	}
	return &inv, nil
}

// GetInvite fetches an invite by code. Disabled invites are returned with
// Disabled set; expired ones are not found.
func (c *Client) GetInvite(ctx context.Context, code string) (*Invite, error) {
	var inv Invite
	if err := c.call(ctx, http.MethodGet, invitePath(code, ""), nil, &inv, http.StatusOK); err != nil {
		return nil, err
	}
	return &inv, nil
}

// CancelInvite disables an invite.
func (c *Client) CancelInvite(ctx context.Context, code string) error {
	resp, err := c.doRequest(ctx, http.MethodDelete, invitePath(code, ""), nil)
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}

// GenerateInviteOTP stores the invitee's telephone and password and texts
// them a passcode.
func (c *Client) GenerateInviteOTP(ctx context.Context, code string, req InviteOTPRequest) error {
	return c.call(ctx, http.MethodPost, invitePath(code, "/otp/generate"), req, nil, http.StatusOK)
}

// ValidateInviteOTP redeems the invite with a passcode and returns the new account.
func (c *Client) ValidateInviteOTP(ctx context.Context, code, otp string) (*User, error) {
	var user User
	req := InviteValidateRequest{Code: code, OTP: Passcode(otp)}
	if err := c.call(ctx, http.MethodPost, "/v1/api/invites/otp/validate", req, &user, http.StatusCreated); err != nil {
		return nil, err
	}
	return &user, nil
}
