package http

import (
	"net/http"

	"github.com/aussiebroadwan/adminusers/internal/adminusers/service"
	"github.com/aussiebroadwan/adminusers/pkg/adminsdk"
	"github.com/aussiebroadwan/adminusers/pkg/httpx"
)

type SecondFactorHandler struct {
	SecondFactorService *service.SecondFactorService
}

// HandleSend handles POST /v1/api/users/{username}/second-factor
//
//	@Summary		Send Sign-in Passcode
//	@Description	Texts a passcode derived from the account's OTP key to its telephone number.
//	@Tags			Second Factor
//	@Security		BearerAuth
//	@Param			username	path	string	true	"Username"
//	@Success		204
//	@Failure		401	{object}	adminsdk.ErrorResponse	"account locked"
//	@Failure		404	{object}	adminsdk.ErrorResponse
//	@Failure		422	{object}	adminsdk.ErrorResponse	"no telephone number"
//	@Failure		429	{object}	adminsdk.ErrorResponse
//	@Router			/v1/api/users/{username}/second-factor [post].
func (h *SecondFactorHandler) HandleSend(w http.ResponseWriter, r *http.Request) {
	if err := h.SecondFactorService.SendPasscode(r.Context(), r.PathValue("username")); err != nil {
		writeServiceError(w, r, err, "Failed to send passcode")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleAuthenticate handles POST /v1/api/users/{username}/second-factor/authenticate
//
//	@Summary		Verify Sign-in Passcode
//	@Description	Wrong passcodes count towards the same lockout cap as wrong passwords.
//	@Tags			Second Factor
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			username	path		string							true	"Username"
//	@Param			request		body		adminsdk.SecondFactorRequest	true	"Passcode"
//	@Success		200			{object}	adminsdk.User
//	@Failure		400			{object}	adminsdk.ErrorResponse
//	@Failure		401			{object}	adminsdk.ErrorResponse	"invalid code or account locked"
//	@Failure		404			{object}	adminsdk.ErrorResponse
//	@Router			/v1/api/users/{username}/second-factor/authenticate [post].
func (h *SecondFactorHandler) HandleAuthenticate(w http.ResponseWriter, r *http.Request) {
	var req adminsdk.SecondFactorRequest
	if !decodeJSON(w, r, &req) || invalid(w, validateSecondFactor(&req)) {
		return
	}

	user, err := h.SecondFactorService.Authenticate(r.Context(), r.PathValue("username"), string(req.Code))
	if err != nil {
		writeServiceError(w, r, err, "Failed to verify passcode")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toUser(user))
}
