package middleware

import (
	"net/http"

	"boutique-be/internal/auth"
	"boutique-be/internal/logger"
	"boutique-be/internal/user"
	"boutique-be/internal/utils"

	"go.uber.org/zap"
)

// AuthMiddleware attaches the caller's identity to the request context.
// Requests without a valid token pass through anonymously and protected
// routes answer 401 themselves. A stale cookie is expired on the way.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenStr := auth.ExtractAccessToken(r)
		if tokenStr == "" {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := user.ParseJWT(tokenStr)
		if err != nil || claims.UserID == 0 {
			logger.FromCtx(r.Context()).Debug("ignoring invalid access token", zap.Error(err))
			if c, cerr := r.Cookie(auth.AccessTokenCookie); cerr == nil && c.Value == tokenStr {
				expireAccessCookie(w)
			}
			next.ServeHTTP(w, r)
			return
		}

		ctx := utils.SetUserContext(r.Context(), claims.UserID, claims.Email, claims.Role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func expireAccessCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.AccessTokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
