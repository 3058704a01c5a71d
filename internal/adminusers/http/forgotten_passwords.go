package http

import (
	"net/http"

	"github.com/aussiebroadwan/adminusers/internal/adminusers/service"
	"github.com/aussiebroadwan/adminusers/pkg/adminsdk"
	"github.com/aussiebroadwan/adminusers/pkg/httpx"
)

type ForgottenPasswordsHandler struct {
	ForgottenPasswordService *service.ForgottenPasswordService
}

// HandleCreate handles POST /v1/api/forgotten-passwords and its v2 alias
//
//	@Summary		Create Forgotten Password
//	@Description	Issues a reset code and emails the reset link to the account owner.
//	@Tags			Forgotten Passwords
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		adminsdk.ForgottenPasswordRequest	true	"Username"
//	@Success		201		{object}	adminsdk.ForgottenPassword
//	@Failure		400		{object}	adminsdk.ErrorResponse
//	@Failure		404		{object}	adminsdk.ErrorResponse
//	@Failure		429		{object}	adminsdk.ErrorResponse
//	@Router			/v1/api/forgotten-passwords [post].
func (h *ForgottenPasswordsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req adminsdk.ForgottenPasswordRequest
	if !decodeJSON(w, r, &req) || invalid(w, validateForgottenPassword(&req)) {
		return
	}

	fp, err := h.ForgottenPasswordService.Create(r.Context(), req.Username)
	if err != nil {
		writeServiceError(w, r, err, "Failed to create forgotten password")
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toForgottenPassword(fp))
}

// HandleGet handles GET /v1/api/forgotten-passwords/{code}
//
//	@Summary		Get Forgotten Password
//	@Description	Expired codes are not found.
//	@Tags			Forgotten Passwords
//	@Produce		json
//	@Security		BearerAuth
//	@Param			code	path		string	true	"Forgotten password code"
//	@Success		200		{object}	adminsdk.ForgottenPassword
//	@Failure		404		{object}	adminsdk.ErrorResponse
//	@Router			/v1/api/forgotten-passwords/{code} [get].
func (h *ForgottenPasswordsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")
	if len(code) > maxFieldLength {
		httpx.WriteErrors(w, http.StatusNotFound, "forgotten password code not found")
		return
	}

	fp, err := h.ForgottenPasswordService.FindNonExpired(r.Context(), code)
	if err != nil {
		writeServiceError(w, r, err, "Failed to fetch forgotten password")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toForgottenPassword(fp))
}

// HandleReset handles POST /v1/api/reset-password
//
//	@Summary		Reset Password
//	@Description	Sets a new password with a forgotten-password code. The code is consumed and existing sessions end.
//	@Tags			Forgotten Passwords
//	@Accept			json
//	@Security		BearerAuth
//	@Param			request	body	adminsdk.ResetPasswordRequest	true	"Code and new password"
//	@Success		204
//	@Failure		400	{object}	adminsdk.ErrorResponse
//	@Failure		404	{object}	adminsdk.ErrorResponse
//	@Router			/v1/api/reset-password [post].
func (h *ForgottenPasswordsHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	var req adminsdk.ResetPasswordRequest
	if !decodeJSON(w, r, &req) || invalid(w, validateResetPassword(&req)) {
		return
	}

	if err := h.ForgottenPasswordService.ResetPassword(r.Context(), req.ForgottenPasswordCode, req.NewPassword); err != nil {
		writeServiceError(w, r, err, "Failed to reset password")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
