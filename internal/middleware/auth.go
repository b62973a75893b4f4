package middleware

import (
	"crypto/hmac"
	"net/http"
	"strings"
)

// AdminAuth guards mutating endpoints with a shared bearer token. The core
// only needs a yes/no "may this caller mutate state" answer; identity and
// login flows live outside this service. An empty configured token leaves
// the endpoints open (development mode).
func AdminAuth(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if token == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "missing authorization", http.StatusUnauthorized)
				return
			}
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				http.Error(w, "invalid authorization", http.StatusUnauthorized)
				return
			}
			if !hmac.Equal([]byte(parts[1]), []byte(token)) {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
