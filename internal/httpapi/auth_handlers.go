package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/dp2426-NAU/Burnout-Risk-Prediction-sub002/internal/audit"
	"github.com/dp2426-NAU/Burnout-Risk-Prediction-sub002/internal/auth"
)

type tokenRequest struct {
	User     string `json:"user"`
	Role     string `json:"role"`
	Password string `json:"password"`
}

// Credential is a stored login the token endpoint verifies against. The
// role is granted from the credential, never from the request body.
type Credential struct {
	PasswordHash string
	Role         auth.Role
}

type tokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

const tokenTTL = 15 * time.Minute

func (a *API) handleAuthToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var req tokenRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	user := strings.TrimSpace(req.User)
	if user == "" {
		writeError(w, r, http.StatusBadRequest, "user is required")
		return
	}

	var role auth.Role
	if a.creds != nil {
		cred, ok := a.creds[user]
		if !ok || auth.VerifyPassword(cred.PasswordHash, req.Password) != nil {
			writeError(w, r, http.StatusUnauthorized, "invalid credentials")
			return
		}
		role = cred.Role
		if req.Role != "" {
			requested, err := auth.ParseRole(req.Role)
			if err != nil {
				writeError(w, r, http.StatusBadRequest, err.Error())
				return
			}
			if requested != role {
				writeError(w, r, http.StatusForbidden, "role not granted to user")
				return
			}
		}
	} else {
		// No credential store configured: open demo issuance.
		var err error
		role, err = auth.ParseRole(req.Role)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
	}

	token, err := auth.GenerateToken(user, role, tokenTTL)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "token generation failed")
		return
	}

	expiresAt := time.Now().UTC().Add(tokenTTL)
	_ = audit.LogEvent(r.Context(), "auth.token.issued", map[string]any{
		"user":       user,
		"role":       string(role),
		"expires_at": expiresAt.Format(time.RFC3339),
	})

	writeJSON(w, http.StatusOK, tokenResponse{
		Token:     token,
		ExpiresAt: expiresAt,
	})
}
