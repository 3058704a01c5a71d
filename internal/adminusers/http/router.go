package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/adminusers/internal/adminusers/service"
	"github.com/aussiebroadwan/adminusers/internal/adminusers/store"
	"github.com/aussiebroadwan/adminusers/pkg/httpx"
	"github.com/aussiebroadwan/adminusers/pkg/slogx"

	_ "github.com/aussiebroadwan/adminusers/api/docs" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// RateLimits are the per-IP limits applied to each class of endpoint.
type RateLimits struct {
	Strict   httpx.RateLimitConfig
	Moderate httpx.RateLimitConfig
	Lenient  httpx.RateLimitConfig
}

// DefaultRateLimits uses the httpx profiles.
var DefaultRateLimits = RateLimits{
	Strict:   httpx.StrictLimit,
	Moderate: httpx.ModerateLimit,
	Lenient:  httpx.LenientLimit,
}

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store

	// ServiceAuth guards every API route when set. Health and docs stay open.
	ServiceAuth httpx.Middleware
	// Throttle is reported by readyz when set.
	Throttle Pinger
	Limits   RateLimits

	UserService              *service.UserService
	SecondFactorService      *service.SecondFactorService
	ForgottenPasswordService *service.ForgottenPasswordService
	InviteService            *service.InviteService
	RolesService             *service.RolesService
}

func NewRouter(buildVersion string, st store.Store, logger *slog.Logger) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
		Limits:       DefaultRateLimits,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.RecoverPanic(),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerUsers()
	r.registerSecondFactor()
	r.registerForgottenPasswords()
	r.registerInvites()
	r.registerRoles()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Admin Users API
//	@version		0.1.0
//	@description	Identity backend for the payments platform administration tools: accounts, credentials,
//	@description	lockout, second-factor passcodes, password resets and onboarding invites.
//	@description
//	@description				Every error response has the shape {"errors": ["..."]}.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/adminusers
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				HS256 service token. Format: "Bearer {token}". Only enforced when a secret is configured.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// api chains a handler with the service token check and a rate limit.
func (r *Router) api(h http.HandlerFunc, limit httpx.Middleware) http.Handler {
	return httpx.Chain(h, r.ServiceAuth, limit)
}

func (r *Router) registerUsers() {
	h := &UsersHandler{UserService: r.UserService}

	// Reads and admin mutations - moderate/lenient limits by caller
	r.Mux.Handle("POST /v1/api/users", r.api(h.HandleCreate, httpx.RateLimitByCaller(r.Limits.Moderate)))
	r.Mux.Handle("GET /v1/api/users/{username}", r.api(h.HandleGet, httpx.RateLimitByCaller(r.Limits.Lenient)))
	r.Mux.Handle("PATCH /v1/api/users/{username}", r.api(h.HandlePatch, httpx.RateLimitByCaller(r.Limits.Moderate)))
	r.Mux.Handle("POST /v1/api/users/{username}/session-version", r.api(h.HandleSessionVersion, httpx.RateLimitByCaller(r.Limits.Moderate)))
	r.Mux.Handle("DELETE /v1/api/users/{username}/attempt-login", r.api(h.HandleResetAttempts, httpx.RateLimitByCaller(r.Limits.Moderate)))

	// Credential checks - strict limit, keyed per account where the path names one
	r.Mux.Handle("POST /v1/api/users/authenticate", r.api(h.HandleAuthenticate, httpx.RateLimitByIP(r.Limits.Strict)))
	r.Mux.Handle("POST /v1/api/users/{username}/attempt-login",
		r.api(h.HandleAttemptLogin, httpx.RateLimitByIPAndPathValue(r.Limits.Moderate, "username")),
	)
}

func (r *Router) registerSecondFactor() {
	h := &SecondFactorHandler{SecondFactorService: r.SecondFactorService}

	r.Mux.Handle("POST /v1/api/users/{username}/second-factor",
		r.api(h.HandleSend, httpx.RateLimitByIPAndPathValue(r.Limits.Strict, "username")),
	)
	r.Mux.Handle("POST /v1/api/users/{username}/second-factor/authenticate",
		r.api(h.HandleAuthenticate, httpx.RateLimitByIPAndPathValue(r.Limits.Strict, "username")),
	)
}

func (r *Router) registerForgottenPasswords() {
	h := &ForgottenPasswordsHandler{ForgottenPasswordService: r.ForgottenPasswordService}

	create := r.api(h.HandleCreate, httpx.RateLimitByIP(r.Limits.Strict))
	r.Mux.Handle("POST /v1/api/forgotten-passwords", create)
	r.Mux.Handle("POST /v2/api/forgotten-passwords", create)

	r.Mux.Handle("GET /v1/api/forgotten-passwords/{code}", r.api(h.HandleGet, httpx.RateLimitByIP(r.Limits.Strict)))
	r.Mux.Handle("POST /v1/api/reset-password", r.api(h.HandleReset, httpx.RateLimitByIP(r.Limits.Strict)))
}

func (r *Router) registerInvites() {
	h := &InvitesHandler{InviteService: r.InviteService}

	r.Mux.Handle("POST /v1/api/invites/service", r.api(h.HandleCreateService, httpx.RateLimitByCaller(r.Limits.Moderate)))
	r.Mux.Handle("POST /v1/api/invites/user", r.api(h.HandleCreateUser, httpx.RateLimitByCaller(r.Limits.Moderate)))
	r.Mux.Handle("GET /v1/api/invites/{code}", r.api(h.HandleGet, httpx.RateLimitByIP(r.Limits.Strict)))
	r.Mux.Handle("DELETE /v1/api/invites/{code}", r.api(h.HandleCancel, httpx.RateLimitByCaller(r.Limits.Moderate)))

	// Passcode dispatch and redemption - strict limits (SMS cost and guessing)
	r.Mux.Handle("POST /v1/api/invites/{code}/otp/generate",
		r.api(h.HandleGenerateOTP, httpx.RateLimitByIPAndPathValue(r.Limits.Strict, "code")),
	)
	r.Mux.Handle("POST /v1/api/invites/otp/validate", r.api(h.HandleValidateOTP, httpx.RateLimitByIP(r.Limits.Strict)))
}

func (r *Router) registerRoles() {
	h := &RolesHandler{RolesService: r.RolesService}
	r.Mux.Handle("GET /v1/api/roles", r.api(h.ServeHTTP, httpx.RateLimitByCaller(r.Limits.Lenient)))
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /healthcheck/livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(r.Limits.Lenient),
		),
	)
	r.Mux.Handle("GET /healthcheck/readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.Throttle),
			httpx.RateLimitByIP(r.Limits.Lenient),
		),
	)
}
