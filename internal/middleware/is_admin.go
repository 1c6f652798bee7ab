package middleware

import (
	"net/http"

	"civic-engagement/missionhub/internal/auth"
)

func IsAdminMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

			claims := auth.GetUserClaims(r.Context())

			if !auth.IsAdmin(claims) {
				http.Error(w, "Forbidden. Need admin role", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
