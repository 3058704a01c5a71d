package http

import (
	"net/http"

	"github.com/aussiebroadwan/adminusers/internal/adminusers/service"
	"github.com/aussiebroadwan/adminusers/pkg/adminsdk"
	"github.com/aussiebroadwan/adminusers/pkg/httpx"
	"github.com/aussiebroadwan/adminusers/pkg/slogx"
)

// InvitesHandler handles the onboarding endpoints.
type InvitesHandler struct {
	InviteService *service.InviteService
}

// HandleCreateService handles POST /v1/api/invites/service
//
//	@Summary		Invite Service Owner
//	@Description	Invites the owner of a new service with the default role and emails the invite link.
//	@Tags			Invites
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		adminsdk.ServiceInviteRequest	true	"Invitee"
//	@Success		201		{object}	adminsdk.Invite
//	@Failure		400		{object}	adminsdk.ErrorResponse
//	@Failure		409		{object}	adminsdk.ErrorResponse	"email in use or active invite exists"
//	@Router			/v1/api/invites/service [post].
func (h *InvitesHandler) HandleCreateService(w http.ResponseWriter, r *http.Request) {
	var req adminsdk.ServiceInviteRequest
	if !decodeJSON(w, r, &req) || invalid(w, validateServiceInvite(&req)) {
		return
	}

	inv, err := h.InviteService.CreateServiceInvite(r.Context(), service.ServiceInviteRequest{
		Email:           req.Email,
		Password:        req.Password,
		TelephoneNumber: req.TelephoneNumber,
	})
	if err != nil {
		writeServiceError(w, r, err, "Failed to create invite")
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toInvite(inv))
}

// HandleCreateUser handles POST /v1/api/invites/user
//
//	@Summary		Invite User
//	@Description	Invites someone to join an existing service with the given role.
//	@Tags			Invites
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		adminsdk.UserInviteRequest	true	"Invitee"
//	@Success		201		{object}	adminsdk.Invite
//	@Failure		400		{object}	adminsdk.ErrorResponse
//	@Failure		409		{object}	adminsdk.ErrorResponse
//	@Failure		422		{object}	adminsdk.ErrorResponse	"unknown sender or role"
//	@Router			/v1/api/invites/user [post].
func (h *InvitesHandler) HandleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req adminsdk.UserInviteRequest
	if !decodeJSON(w, r, &req) || invalid(w, validateUserInvite(&req)) {
		return
	}

	inv, err := h.InviteService.CreateUserInvite(r.Context(), service.UserInviteRequest{
		Sender:    req.Sender,
		Email:     req.Email,
		RoleName:  req.RoleName,
		ServiceID: req.ServiceID,
	})
	if err != nil {
		writeServiceError(w, r, err, "Failed to create invite")
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toInvite(inv))
}

// HandleGet handles GET /v1/api/invites/{code}
//
//	@Summary		Get Invite
//	@Tags			Invites
//	@Produce		json
//	@Security		BearerAuth
//	@Param			code	path		string	true	"Invite code"
//	@Success		200		{object}	adminsdk.Invite
//	@Failure		404		{object}	adminsdk.ErrorResponse
//	@Router			/v1/api/invites/{code} [get].
func (h *InvitesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	inv, err := h.InviteService.FindInvite(r.Context(), r.PathValue("code"))
	if err != nil {
		writeServiceError(w, r, err, "Failed to fetch invite")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toInvite(inv))
}

// HandleCancel handles DELETE /v1/api/invites/{code}
//
//	@Summary		Cancel Invite
//	@Tags			Invites
//	@Security		BearerAuth
//	@Param			code	path	string	true	"Invite code"
//	@Success		204
//	@Failure		404	{object}	adminsdk.ErrorResponse
//	@Router			/v1/api/invites/{code} [delete].
func (h *InvitesHandler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	if err := h.InviteService.CancelInvite(r.Context(), r.PathValue("code")); err != nil {
		writeServiceError(w, r, err, "Failed to cancel invite")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleGenerateOTP handles POST /v1/api/invites/{code}/otp/generate
//
//	@Summary		Send Invite Passcode
//	@Description	Stores the invitee's telephone number and password and texts a passcode.
//	@Tags			Invites
//	@Accept			json
//	@Security		BearerAuth
//	@Param			code	path	string						true	"Invite code"
//	@Param			request	body	adminsdk.InviteOTPRequest	true	"Telephone number and password"
//	@Success		200
//	@Failure		400	{object}	adminsdk.ErrorResponse
//	@Failure		404	{object}	adminsdk.ErrorResponse	"no redeemable invite"
//	@Failure		429	{object}	adminsdk.ErrorResponse
//	@Router			/v1/api/invites/{code}/otp/generate [post].
func (h *InvitesHandler) HandleGenerateOTP(w http.ResponseWriter, r *http.Request) {
	var req adminsdk.InviteOTPRequest
	if !decodeJSON(w, r, &req) || invalid(w, validateInviteOTP(&req)) {
		return
	}

	ok, err := h.InviteService.DispatchOTP(r.Context(), r.PathValue("code"), service.OTPRequest{
		TelephoneNumber: req.TelephoneNumber,
		Password:        req.Password,
	})
	if err != nil {
		writeServiceError(w, r, err, "Failed to send invite passcode")
		return
	}
	if !ok {
		httpx.WriteErrors(w, http.StatusNotFound, "invite not found")
		return
	}
	w.WriteHeader(http.StatusOK)
}

// HandleValidateOTP handles POST /v1/api/invites/otp/validate
//
//	@Summary		Redeem Invite
//	@Description	Redeems the invite with its passcode and creates the account in one step.
//	@Tags			Invites
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		adminsdk.InviteValidateRequest	true	"Invite code and passcode"
//	@Success		201		{object}	adminsdk.User
//	@Failure		400		{object}	adminsdk.ErrorResponse
//	@Failure		401		{object}	adminsdk.ErrorResponse	"invalid passcode"
//	@Failure		404		{object}	adminsdk.ErrorResponse
//	@Failure		409		{object}	adminsdk.ErrorResponse	"account already exists"
//	@Failure		422		{object}	adminsdk.ErrorResponse	"no password set yet"
//	@Router			/v1/api/invites/otp/validate [post].
func (h *InvitesHandler) HandleValidateOTP(w http.ResponseWriter, r *http.Request) {
	var req adminsdk.InviteValidateRequest
	if !decodeJSON(w, r, &req) || invalid(w, validateInviteValidate(&req)) {
		return
	}

	user, err := h.InviteService.CompleteInvite(r.Context(), req.Code, string(req.OTP))
	if err != nil {
		writeServiceError(w, r, err, "Failed to redeem invite")
		return
	}

	slogx.FromContext(r.Context()).Info("account created from invite", "username", user.Username)
	httpx.WriteJSON(w, http.StatusCreated, toUser(user))
}
