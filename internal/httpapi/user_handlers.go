package httpapi

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"userhub.org/internal/audit"
	"userhub.org/internal/auth"
	"userhub.org/internal/obs"
	"userhub.org/internal/user"
)

type registerRequest struct {
	Name     string `json:"name" validate:"required,min=2"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"omitempty,oneof=user admin"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token string `json:"token"`
}

func (a *API) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if !checkValid(w, r, req) {
		return
	}

	u, err := a.users.Register(r.Context(), req.Name, req.Email, req.Password, req.Role)
	if err != nil {
		a.handleUserError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "user.registered", map[string]any{
		"user_id": u.ID,
		"email":   u.Email,
		"role":    string(u.Role),
	})

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "User registered successfully",
	})
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if !checkValid(w, r, req) {
		return
	}

	token, u, err := a.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, user.ErrInvalidCredentials) {
			_ = audit.LogEvent(r.Context(), "auth.denied", map[string]any{
				"email":  req.Email,
				"reason": "bad_credentials",
			})
		}
		a.handleUserError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "auth.login", map[string]any{
		"user_id": u.ID,
		"role":    string(u.Role),
	})

	writeJSON(w, http.StatusOK, loginResponse{Token: token})
}

func (a *API) handleUsers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	users, err := a.users.List(r.Context())
	if err != nil {
		a.handleUserError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (a *API) handleAdmin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Welcome to the admin panel!",
	})
}

func (a *API) handleProtected(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		unauthenticated(w, r, "authentication required")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Access granted",
		"decoded": claims,
	})
}

// handleUserError maps domain failures onto the response taxonomy. Anything
// untyped is logged and rendered as a uniform internal error.
func (a *API) handleUserError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, user.ErrEmailTaken):
		writeError(w, r, http.StatusBadRequest, "This email address have been used")
	case errors.Is(err, user.ErrNotFound):
		writeError(w, r, http.StatusBadRequest, "User not found")
	case errors.Is(err, user.ErrInvalidCredentials):
		writeError(w, r, http.StatusBadRequest, "Invalid credentials")
	case errors.Is(err, user.ErrInvalidRole):
		writeError(w, r, http.StatusBadRequest, "Invalid role")
	default:
		obs.Logger().Error("request failed",
			zap.String("request_id", RequestIDFromContext(r.Context())),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}
