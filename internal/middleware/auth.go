package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/magolabs/aimaster/internal/auth"
	"github.com/magolabs/aimaster/internal/store"
)

// SessionCookieName is the cookie set at login carrying the bearer token,
// used as a fallback when no header or query token is present.
const SessionCookieName = "aimaster_session"

// TokenFromRequest extracts the bearer token: Authorization header first
// (a "Bearer " prefix is tolerated), then the token query parameter, then
// the session cookie.
func TokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if t := r.URL.Query().Get("token"); t != "" {
		return t
	}
	if c, err := r.Cookie(SessionCookieName); err == nil {
		return c.Value
	}
	return ""
}

// RequireAuth resolves the request token to a user and populates
// AuthContext. Unresolvable tokens get a JSON 401.
func RequireAuth(tokens auth.TokenStore, users *store.UserStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := TokenFromRequest(r)
			if token == "" {
				unauthorized(w)
				return
			}

			userID, ok := tokens.Lookup(token)
			if !ok {
				unauthorized(w)
				return
			}

			user, err := users.GetByID(userID)
			if err != nil || user == nil {
				unauthorized(w)
				return
			}

			ac := auth.AuthContext{
				UserID: user.ID,
				Email:  user.Email,
				Token:  token,
			}

			ctx := auth.WithAuth(r.Context(), ac)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": "authentication required"})
}
