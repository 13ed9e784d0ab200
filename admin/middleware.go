package admin

import (
	"crypto/subtle"
	"net/http"

	"github.com/sqliteopus/opus/cfg"
)

// BasicAuthMiddleware gates the console page behind HTTP basic auth when
// both credentials are configured. Partial or absent credentials disable
// the gate entirely: the console is open or fully gated, never in between.
func BasicAuthMiddleware(config *cfg.Configuration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !config.AuthEnabled() {
				next.ServeHTTP(w, r)
				return
			}

			user, pass, ok := r.BasicAuth()
			if !ok || !credentialsMatch(config, user, pass) {
				w.Header().Set("WWW-Authenticate", `Basic realm="opus"`)
				writeErrorResponse(w, http.StatusUnauthorized, "authentication required")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func credentialsMatch(config *cfg.Configuration, user, pass string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(user), []byte(config.Auth.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(pass), []byte(config.Auth.Password)) == 1
	return userOK && passOK
}
