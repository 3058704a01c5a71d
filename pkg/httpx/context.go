package httpx

import "context"

type ctxKey string

const CtxKeyCaller ctxKey = "caller"

// CallerFromContext returns the subject of the verified service token, or ""
// when the request was not authenticated.
func CallerFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeyCaller).(string); ok {
		return v
	}
	return ""
}
