package httpx

import (
	"net/http"
	"runtime/debug"

	"github.com/aussiebroadwan/adminusers/pkg/slogx"
)

// Middleware wraps an HTTP handler.
type Middleware func(http.Handler) http.Handler

// Chain applies middleware in declaration order, so the first middleware is
// the outermost one. Nil entries are skipped.
func Chain(handler http.Handler, middleware ...Middleware) http.Handler {
	wrapped := handler
	for i := len(middleware) - 1; i >= 0; i-- {
		if middleware[i] == nil {
			continue
		}
		wrapped = middleware[i](wrapped)
	}
	return wrapped
}

// RecoverPanic turns a panicking handler into a 500 response and logs the stack.
func RecoverPanic() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if recovered := recover(); recovered != nil {
					slogx.FromContext(r.Context()).Error("panic recovered",
						"panic", recovered,
						"stack", string(debug.Stack()),
					)
					WriteErrors(w, http.StatusInternalServerError, "Internal server error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
