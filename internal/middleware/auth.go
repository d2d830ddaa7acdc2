package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"hackaigc-api/internal/metrics"
)

// BearerAuth rejects requests whose Authorization bearer token does not equal
// masterKey. Requests for which exempt returns true (the browser UI) pass
// through unauthenticated; preflight never reaches this point because CORS
// terminates it first.
func BearerAuth(masterKey string, exempt func(*http.Request) bool, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if exempt != nil && exempt(r) {
			next.ServeHTTP(w, r)
			return
		}

		auth := r.Header.Get("Authorization")
		token := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
		if auth == "" || token != masterKey {
			metrics.ErrorsTotal.WithLabelValues("auth").Inc()
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"error": map[string]interface{}{
					"message": "Unauthorized",
					"type":    "auth_error",
				},
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}
