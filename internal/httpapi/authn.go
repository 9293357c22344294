package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"userhub.org/internal/audit"
	"userhub.org/internal/auth"
)

const (
	authHeader = "Authorization"
	bearer     = "Bearer "
)

// withAuth verifies the bearer token and attaches the decoded claims to the
// context. A missing or invalid token is Unauthenticated (401); role checks
// happen later and fail with 403, so the two remain distinguishable.
func (a *API) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := extractBearerToken(r.Header.Get(authHeader))
		if err != nil {
			unauthenticated(w, r, err.Error())
			return
		}

		claims, err := a.tokens.Parse(token)
		if err != nil {
			// Uniform message for expired, tampered and malformed tokens.
			unauthenticated(w, r, "invalid token")
			return
		}

		ctx := auth.ContextWithClaims(r.Context(), claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole allows the request only when the verified claims carry the
// given role. It runs strictly after withAuth.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := auth.ClaimsFromContext(r.Context())
			if !ok {
				unauthenticated(w, r, "authentication required")
				return
			}
			if claims.Role != role {
				w.Header().Set("WWW-Authenticate", `Bearer error="insufficient_scope"`)
				_ = audit.LogEvent(r.Context(), "auth.denied", map[string]any{
					"required_role": role,
					"actual_role":   claims.Role,
					"path":          r.URL.Path,
				})
				writeError(w, r, http.StatusForbidden, "insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func unauthenticated(w http.ResponseWriter, r *http.Request, msg string) {
	w.Header().Set("WWW-Authenticate", `Bearer`)
	writeError(w, r, http.StatusUnauthorized, msg)
}

func extractBearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", errors.New("missing bearer token")
	}
	if !strings.HasPrefix(strings.ToLower(header), strings.ToLower(bearer)) {
		return "", errors.New("invalid authorization scheme")
	}
	token := strings.TrimSpace(header[len(bearer):])
	if token == "" {
		return "", errors.New("missing bearer token")
	}
	return token, nil
}
