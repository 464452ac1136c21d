package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/templui/goalcoach/internal/ctxkeys"
	"github.com/templui/goalcoach/internal/service"
)

// AuthMiddleware checks for a JWT in the session cookie or an Authorization
// bearer header and adds user + profile to the context if valid.
func AuthMiddleware(authService *service.AuthService, profileService *service.ProfileService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, bearer := requestToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			// An invalid cookie is cleared; an invalid bearer token is the
			// client's problem.
			reject := func() {
				if !bearer {
					authService.ClearJWTCookie(w)
				}
				next.ServeHTTP(w, r)
			}

			claims, err := authService.VerifyJWT(token)
			if err != nil {
				reject()
				return
			}

			userID, ok := claims["user_id"].(string)
			if !ok {
				reject()
				return
			}

			user, err := authService.UserByID(r.Context(), userID)
			if err != nil {
				reject()
				return
			}

			// Security: Remove password hash from context
			user.PasswordHash = ""

			ctx := ctxkeys.WithUser(r.Context(), user)
			profile, err := profileService.ByUserID(r.Context(), userID)
			if err == nil {
				ctx = ctxkeys.WithProfile(ctx, profile)
			}
			if bearer {
				ctx = ctxkeys.WithBearer(ctx)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func requestToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token), true
	}

	cookie, err := r.Cookie(service.AuthCookieName)
	if err != nil {
		return "", false
	}
	return cookie.Value, false
}

// RequireAPIAuth rejects requests without an authenticated user with 401.
func RequireAPIAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ctxkeys.User(r.Context()) == nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
			return
		}
		next.ServeHTTP(w, r)
	}
}
