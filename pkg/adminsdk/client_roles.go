package adminsdk

import (
	"context"
	"net/http"
)

// ListRoles returns the roles that can be granted.
func (c *Client) ListRoles(ctx context.Context) ([]Role, error) {
	var resp ListRolesResponse
	if err := c.call(ctx, http.MethodGet, "/v1/api/roles", nil, &resp, http.StatusOK); err != nil {
		return nil, err
	}
	return resp.Roles, nil
}
