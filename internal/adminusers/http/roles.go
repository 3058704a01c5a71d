package http

import (
	"net/http"

	"github.com/aussiebroadwan/adminusers/internal/adminusers/service"
	"github.com/aussiebroadwan/adminusers/pkg/adminsdk"
	"github.com/aussiebroadwan/adminusers/pkg/httpx"
)

type RolesHandler struct {
	RolesService *service.RolesService
}

// ServeHTTP handles GET /v1/api/roles
//
//	@Summary		List Roles
//	@Description	Returns the roles that can be granted, ordered by ranking.
//	@Tags			Roles
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	adminsdk.ListRolesResponse
//	@Failure		500	{object}	adminsdk.ErrorResponse
//	@Router			/v1/api/roles [get].
func (h *RolesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	roles, err := h.RolesService.ListAll(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "Failed to retrieve roles")
		return
	}

	response := adminsdk.ListRolesResponse{Roles: make([]adminsdk.Role, len(roles))}
	for i, role := range roles {
		response.Roles[i] = toRole(role)
	}
	httpx.WriteJSON(w, http.StatusOK, response)
}
