package service

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/aussiebroadwan/adminusers/internal/adminusers/domain"
)

const (
	UsersResource              = "/v1/api/users"
	ForgottenPasswordsResource = "/v1/api/forgotten-passwords"
	InvitesResource            = "/v1/api/invites"
)

// LinksBuilder produces the canonical references attached to results.
// BaseURL points at this service; SelfServiceURL at the frontend that
// renders invite pages.
type LinksBuilder struct {
	BaseURL        string
	SelfServiceURL string
}

func (b LinksBuilder) UserSelf(username string) domain.Link {
	return domain.Link{
		Rel:    "self",
		Method: http.MethodGet,
		Href:   join(b.BaseURL, UsersResource, url.PathEscape(username)),
	}
}

func (b LinksBuilder) ForgottenPasswordSelf(code string) domain.Link {
	return domain.Link{
		Rel:    "self",
		Method: http.MethodGet,
		Href:   join(b.BaseURL, ForgottenPasswordsResource, code),
	}
}

// InviteLinks returns the frontend invite page first, then the API self link.
func (b LinksBuilder) InviteLinks(code string) []domain.Link {
	return []domain.Link{
		{Rel: "invite", Method: http.MethodGet, Href: b.InviteURL(code)},
		{Rel: "self", Method: http.MethodGet, Href: join(b.BaseURL, InvitesResource, code)},
	}
}

func (b LinksBuilder) InviteURL(code string) string {
	return join(b.SelfServiceURL, "invites", code)
}

// ResetPasswordURL is the frontend page linked from the forgotten-password email.
func (b LinksBuilder) ResetPasswordURL(code string) string {
	return join(b.SelfServiceURL, "reset-password", code)
}

func join(base string, parts ...string) string {
	out := strings.TrimSuffix(base, "/")
	for _, p := range parts {
		out += "/" + strings.Trim(p, "/")
	}
	return out
}
