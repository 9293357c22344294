package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"userhub.org/internal/obs"
)

const throttleMessage = "Too many requests from this IP, please try again after a minute"

// rateLimited guards a route with the shared fixed-window counter. The
// counter lives in Redis so horizontally scaled replicas see one global
// count per client. On throttle the request is answered here: the downstream
// handler never runs and no other state is touched.
func (a *API) rateLimited(next http.Handler) http.Handler {
	if a.limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := clientIP(r)
		if key == "" {
			key = "unknown"
		}

		lctx, err := a.limiter.Get(r.Context(), key)
		if err != nil {
			obs.Logger().Error("rate limiter store failure",
				zap.String("request_id", RequestIDFromContext(r.Context())),
				zap.Error(err))
			writeError(w, r, http.StatusInternalServerError, "internal error")
			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(lctx.Limit, 10))
		w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(lctx.Remaining, 10))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(lctx.Reset, 10))

		if lctx.Reached {
			obs.Throttled()
			retryAfter := lctx.Reset - time.Now().Unix()
			if retryAfter < 1 {
				retryAfter = 1
			}
			w.Header().Set("Retry-After", strconv.FormatInt(retryAfter, 10))
			writeError(w, r, http.StatusTooManyRequests, throttleMessage)
			return
		}

		next.ServeHTTP(w, r)
	})
}
