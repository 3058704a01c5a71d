package adminsdk

import (
	"context"
	"net/http"
	"net/url"
)

func userPath(username string, suffix string) string {
	return "/v1/api/users/" + url.PathEscape(username) + suffix
}

// CreateUser creates an account.
func (c *Client) CreateUser(ctx context.Context, req CreateUserRequest) (*User, error) {
	var user User
	if err := c.call(ctx, http.MethodPost, "/v1/api/users", req, &user, http.StatusCreated); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUser fetches an account by username.
func (c *Client) GetUser(ctx context.Context, username string) (*User, error) {
	var user User
	if err := c.call(ctx, http.MethodGet, userPath(username, ""), nil, &user, http.StatusOK); err != nil {
		return nil, err
	}
	return &user, nil
}

// PatchUser applies one replace operation to an account.
func (c *Client) PatchUser(ctx context.Context, username string, req PatchRequest) (*User, error) {
	var user User
	if err := c.call(ctx, http.MethodPatch, userPath(username, ""), req, &user, http.StatusOK); err != nil {
		return nil, err
	}
	return &user, nil
}

// Authenticate checks a username and password. Wrong credentials and locked
// accounts are both reported as 401 APIErrors.
func (c *Client) Authenticate(ctx context.Context, username, password string) (*User, error) {
	var user User
	req := AuthenticateRequest{Username: username, Password: password}
	if err := c.call(ctx, http.MethodPost, "/v1/api/users/authenticate", req, &user, http.StatusOK); err != nil {
		return nil, err
	}
	return &user, nil
}

// RecordLoginAttempt counts a failed login made elsewhere.
func (c *Client) RecordLoginAttempt(ctx context.Context, username string) (*User, error) {
	var user User
	if err := c.call(ctx, http.MethodPost, userPath(username, "/attempt-login"), nil, &user, http.StatusOK); err != nil {
		return nil, err
	}
	return &user, nil
}

// ResetLoginAttempts zeroes the counter and unlocks the account.
func (c *Client) ResetLoginAttempts(ctx context.Context, username string) (*User, error) {
	var user User
	if err := c.call(ctx, http.MethodDelete, userPath(username, "/attempt-login"), nil, &user, http.StatusOK); err != nil {
		return nil, err
	}
	return &user, nil
}

// IncrementSessionVersion bumps the session version if it still equals expected.
func (c *Client) IncrementSessionVersion(ctx context.Context, username string, expected int) (*User, error) {
	var user User
	req := SessionVersionRequest{ExpectedVersion: &expected}
	if err := c.call(ctx, http.MethodPost, userPath(username, "/session-version"), req, &user, http.StatusOK); err != nil {
		return nil, err
	}
	return &user, nil
}

// SendSecondFactor texts a sign-in passcode to the account's telephone number.
func (c *Client) SendSecondFactor(ctx context.Context, username string) error {
	resp, err := c.doRequest(ctx, http.MethodPost, userPath(username, "/second-factor"), nil)
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}

// AuthenticateSecondFactor checks a sign-in passcode.
func (c *Client) AuthenticateSecondFactor(ctx context.Context, username, code string) (*User, error) {
	var user User
	req := SecondFactorRequest{Code: Passcode(code)}
	if err := c.call(ctx, http.MethodPost, userPath(username, "/second-factor/authenticate"), req, &user, http.StatusOK); err != nil {
		return nil, err
	}
	return &user, nil
}
