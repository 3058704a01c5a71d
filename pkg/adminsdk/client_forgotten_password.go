package adminsdk

import (
	"context"
	"net/http"
	"net/url"
)

// CreateForgottenPassword issues a reset token and emails the reset link to
// the account owner.
func (c *Client) CreateForgottenPassword(ctx context.Context, username string) (*ForgottenPassword, error) {
	var fp ForgottenPassword
	req := ForgottenPasswordRequest{Username: username}
	if err := c.call(ctx, http.MethodPost, "/v1/api/forgotten-passwords", req, &fp, http.StatusCreated); err != nil {
		return nil, err
	}
	return &fp, nil
}

// GetForgottenPassword fetches a token that has not expired.
func (c *Client) GetForgottenPassword(ctx context.Context, code string) (*ForgottenPassword, error) {
	var fp ForgottenPassword
	path := "/v1/api/forgotten-passwords/" + url.PathEscape(code)
	if err := c.call(ctx, http.MethodGet, path, nil, &fp, http.StatusOK); err != nil {
		return nil, err
	}
	return &fp, nil
}

// ResetPassword sets a new password with a forgotten-password code.
func (c *Client) ResetPassword(ctx context.Context, code, newPassword string) error {
	req := ResetPasswordRequest{ForgottenPasswordCode: code, NewPassword: newPassword}
	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/api/reset-password", req)
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}
