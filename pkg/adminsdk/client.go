package adminsdk

import (
	"net/http"
	"strings"
	"time"
)

// Client is a client for the adminusers API.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	// Token is sent as a bearer token on every request when set. Deployments
	// that configure a service token secret reject requests without one.
	Token string
}

// NewClient creates a new API client. token may be empty.
func NewClient(baseURL, token string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		Token: token,
	}
}
