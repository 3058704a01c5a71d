package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/adminusers/internal/adminusers/service"
	"github.com/aussiebroadwan/adminusers/pkg/adminsdk"
	"github.com/aussiebroadwan/adminusers/pkg/httpx"
	"github.com/aussiebroadwan/adminusers/pkg/slogx"
)

// UsersHandler handles the account endpoints.
type UsersHandler struct {
	UserService *service.UserService
}

// HandleCreate handles POST /v1/api/users
//
//	@Summary		Create User
//	@Description	Creates an account with one role on one service. The OTP key is generated when not supplied.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		adminsdk.CreateUserRequest	true	"User creation request"
//	@Success		201		{object}	adminsdk.User
//	@Failure		400		{object}	adminsdk.ErrorResponse	"validation errors"
//	@Failure		409		{object}	adminsdk.ErrorResponse	"username or email already exists"
//	@Failure		422		{object}	adminsdk.ErrorResponse	"role not recognised"
//	@Router			/v1/api/users [post].
func (h *UsersHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req adminsdk.CreateUserRequest
	if !decodeJSON(w, r, &req) || invalid(w, validateCreateUser(&req)) {
		return
	}

	user, err := h.UserService.CreateUser(r.Context(), service.NewUser{
		Username:        req.Username,
		Email:           req.Email,
		Password:        req.Password,
		TelephoneNumber: req.TelephoneNumber,
		OTPKey:          req.OTPKey,
		RoleName:        req.RoleName,
		ServiceID:       req.ServiceID,
	})
	if err != nil {
		writeServiceError(w, r, err, "Failed to create user")
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toUser(user))
}

// HandleGet handles GET /v1/api/users/{username}
//
//	@Summary		Get User
//	@Tags			Users
//	@Produce		json
//	@Security		BearerAuth
//	@Param			username	path		string	true	"Username"
//	@Success		200			{object}	adminsdk.User
//	@Failure		404			{object}	adminsdk.ErrorResponse
//	@Router			/v1/api/users/{username} [get].
func (h *UsersHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	user, err := h.UserService.GetUser(r.Context(), r.PathValue("username"))
	if err != nil {
		writeServiceError(w, r, err, "Failed to fetch user")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toUser(user))
}

// HandlePatch handles PATCH /v1/api/users/{username}
//
//	@Summary		Patch User
//	@Description	Replaces the disabled flag or the telephone number. Disabling an account ends its sessions; enabling it also resets the login counter.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			username	path		string					true	"Username"
//	@Param			request		body		adminsdk.PatchRequest	true	"Replace operation"
//	@Success		200			{object}	adminsdk.User
//	@Failure		400			{object}	adminsdk.ErrorResponse
//	@Failure		404			{object}	adminsdk.ErrorResponse
//	@Failure		409			{object}	adminsdk.ErrorResponse
//	@Router			/v1/api/users/{username} [patch].
func (h *UsersHandler) HandlePatch(w http.ResponseWriter, r *http.Request) {
	var req adminsdk.PatchRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	op, err := validatePatch(&req)
	if invalid(w, err) {
		return
	}

	user, err := h.UserService.PatchUser(r.Context(), r.PathValue("username"), service.Patch{Path: op.path, Value: op.value})
	if err != nil {
		writeServiceError(w, r, err, "Failed to update user")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toUser(user))
}

// HandleAuthenticate handles POST /v1/api/users/authenticate
//
//	@Summary		Authenticate User
//	@Description	Checks a username and password. Every failure counts towards the lockout cap.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		adminsdk.AuthenticateRequest	true	"Credentials"
//	@Success		200		{object}	adminsdk.User
//	@Failure		400		{object}	adminsdk.ErrorResponse
//	@Failure		401		{object}	adminsdk.ErrorResponse	"invalid credentials or account locked"
//	@Router			/v1/api/users/authenticate [post].
func (h *UsersHandler) HandleAuthenticate(w http.ResponseWriter, r *http.Request) {
	var req adminsdk.AuthenticateRequest
	if !decodeJSON(w, r, &req) || invalid(w, validateAuthenticate(&req)) {
		return
	}

	user, err := h.UserService.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		// Unknown usernames answer like wrong passwords.
		if errors.Is(err, service.ErrNotFound) {
			slogx.FromContext(r.Context()).Info("authentication for unknown user")
			httpx.WriteErrors(w, http.StatusUnauthorized, "invalid username and/or password")
			return
		}
		writeServiceError(w, r, err, "Failed to authenticate user")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toUser(user))
}

// HandleAttemptLogin handles POST /v1/api/users/{username}/attempt-login
//
//	@Summary		Record Failed Login
//	@Description	Counts a failed login made through another channel.
//	@Tags			Users
//	@Produce		json
//	@Security		BearerAuth
//	@Param			username	path		string	true	"Username"
//	@Success		200			{object}	adminsdk.User
//	@Failure		401			{object}	adminsdk.ErrorResponse	"account locked"
//	@Failure		404			{object}	adminsdk.ErrorResponse
//	@Router			/v1/api/users/{username}/attempt-login [post].
func (h *UsersHandler) HandleAttemptLogin(w http.ResponseWriter, r *http.Request) {
	user, err := h.UserService.RecordLoginAttempt(r.Context(), r.PathValue("username"))
	if err != nil {
		writeServiceError(w, r, err, "Failed to record login attempt")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toUser(user))
}

// HandleResetAttempts handles DELETE /v1/api/users/{username}/attempt-login
//
//	@Summary		Reset Login Attempts
//	@Description	Zeroes the login counter and unlocks the account.
//	@Tags			Users
//	@Produce		json
//	@Security		BearerAuth
//	@Param			username	path		string	true	"Username"
//	@Success		200			{object}	adminsdk.User
//	@Failure		404			{object}	adminsdk.ErrorResponse
//	@Router			/v1/api/users/{username}/attempt-login [delete].
func (h *UsersHandler) HandleResetAttempts(w http.ResponseWriter, r *http.Request) {
	user, err := h.UserService.ResetLoginAttempts(r.Context(), r.PathValue("username"))
	if err != nil {
		writeServiceError(w, r, err, "Failed to reset login attempts")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toUser(user))
}

// HandleSessionVersion handles POST /v1/api/users/{username}/session-version
//
//	@Summary		Increment Session Version
//	@Description	Invalidates outstanding sessions. The caller must pass the session version it last saw.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			username	path		string							true	"Username"
//	@Param			request		body		adminsdk.SessionVersionRequest	true	"Expected version"
//	@Success		200			{object}	adminsdk.User
//	@Failure		400			{object}	adminsdk.ErrorResponse
//	@Failure		404			{object}	adminsdk.ErrorResponse
//	@Failure		409			{object}	adminsdk.ErrorResponse	"session version is not current"
//	@Router			/v1/api/users/{username}/session-version [post].
func (h *UsersHandler) HandleSessionVersion(w http.ResponseWriter, r *http.Request) {
	var req adminsdk.SessionVersionRequest
	if !decodeJSON(w, r, &req) || invalid(w, validateSessionVersion(&req)) {
		return
	}

	user, err := h.UserService.IncrementSessionVersion(r.Context(), r.PathValue("username"), *req.ExpectedVersion)
	if err != nil {
		writeServiceError(w, r, err, "Failed to increment session version")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toUser(user))
}
