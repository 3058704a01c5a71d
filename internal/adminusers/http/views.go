package http

import (
	"github.com/aussiebroadwan/adminusers/internal/adminusers/domain"
	"github.com/aussiebroadwan/adminusers/pkg/adminsdk"
)

func toLinks(links []domain.Link) []adminsdk.Link {
	out := make([]adminsdk.Link, 0, len(links))
	for _, l := range links {
		out = append(out, adminsdk.Link{Rel: l.Rel, Method: l.Method, Href: l.Href})
	}
	return out
}

func toRole(r domain.Role) adminsdk.Role {
	return adminsdk.Role{Name: r.Name, Description: r.Description}
}

func toUser(u domain.User) adminsdk.User {
	roles := make([]adminsdk.ServiceRole, 0, len(u.ServiceRoles))
	for _, sr := range u.ServiceRoles {
		roles = append(roles, adminsdk.ServiceRole{ServiceID: sr.ServiceID, Role: toRole(sr.Role)})
	}
	return adminsdk.User{
		ExternalID:      u.ID,
		Username:        u.Username,
		Email:           u.Email,
		TelephoneNumber: u.TelephoneNumber,
		OTPKey:          u.OTPKey,
		Disabled:        u.Disabled,
		LoginCounter:    u.LoginCounter,
		SessionVersion:  u.SessionVersion,
		ServiceRoles:    roles,
		Links:           toLinks(u.Links),
	}
}

func toForgottenPassword(fp domain.ForgottenPassword) adminsdk.ForgottenPassword {
	return adminsdk.ForgottenPassword{
		Code:      fp.Code,
		Username:  fp.Username,
		Date:      fp.CreatedAt,
		ExpiresAt: fp.ExpiresAt,
		Links:     toLinks(fp.Links),
	}
}

func toInvite(inv domain.Invite) adminsdk.Invite {
	return adminsdk.Invite{
		Email:           inv.Email,
		TelephoneNumber: inv.TelephoneNumber,
		Type:            string(inv.Type),
		Role:            toRole(inv.Role),
		Disabled:        inv.Disabled,
		AttemptCounter:  inv.LoginCounter,
		PasswordSet:     inv.PasswordHash != "",
		ExpiresAt:       inv.ExpiresAt,
		Links:           toLinks(inv.Links),
	}
}
