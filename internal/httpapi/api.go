package httpapi

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/ulule/limiter/v3"

	"userhub.org/internal/auth"
	"userhub.org/internal/config"
	"userhub.org/internal/obs"
	"userhub.org/internal/user"
)

// ReadyProbe checks external collaborators for the readiness endpoint.
type ReadyProbe struct {
	DB    *sql.DB
	Redis user.RedisClient
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB != nil {
		if err := rp.DB.PingContext(ctx); err != nil {
			return err
		}
	}
	if rp.Redis != nil {
		if err := rp.Redis.Ping(ctx).Err(); err != nil {
			return err
		}
	}
	return nil
}

// API is the HTTP layer: it owns the route table and composes the
// per-route pipeline (rate limit -> validate -> handler, with
// authenticate -> authorize on the protected routes).
type API struct {
	mux        *http.ServeMux
	cfg        *config.Config
	users      *user.Service
	tokens     *auth.TokenManager
	limiter    *limiter.Limiter
	readyProbe ReadyProbe
	version    string
}

// New wires the route table. lim may be nil to disable rate limiting
// (tests only; production always passes a limiter).
func New(cfg *config.Config, users *user.Service, tokens *auth.TokenManager, lim *limiter.Limiter, rp ReadyProbe, version string) *API {
	a := &API{
		mux:        http.NewServeMux(),
		cfg:        cfg,
		users:      users,
		tokens:     tokens,
		limiter:    lim,
		readyProbe: rp,
		version:    version,
	}

	// Pipeline order per route is fixed: the limiter runs before the body is
	// even decoded, validation before any handler logic begins.
	a.mux.Handle("/register", a.rateLimited(http.HandlerFunc(a.handleRegister)))
	a.mux.Handle("/login", a.rateLimited(http.HandlerFunc(a.handleLogin)))
	a.mux.HandleFunc("/users", a.handleUsers)
	a.mux.Handle("/admin", a.withAuth(RequireRole(string(user.RoleAdmin))(http.HandlerFunc(a.handleAdmin))))
	a.mux.Handle("/protected", a.withAuth(http.HandlerFunc(a.handleProtected)))

	a.mux.Handle("/metrics", obs.Handler())
	a.mux.HandleFunc("/healthz", a.handleHealthz)
	a.mux.HandleFunc("/readyz", a.handleReady)

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "resource not found")
	})

	return a
}

// Handler returns the fully wrapped handler for the server.
func (a *API) Handler() http.Handler {
	h := obs.Instrument(a.mux)
	h = MaxBodyBytes(h, 1<<20)
	h = SecurityHeaders(h)
	h = a.Recover(h)
	h = LoggingJSON(h)
	h = RequestID(h)
	return h
}

func (a *API) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "userhub-api",
		"version": a.version,
	})
}

func (a *API) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	if err := a.readyProbe.Check(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
	})
}
