package middleware

import (
	"net/http"

	"github.com/danilovkiri/dk_go_pastebin/internal/config"
)

// CORS sets cross-origin headers and answers preflight requests with 204. It is a no-op when no
// origin is configured.
func CORS(cfg config.CORSConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if cfg.AllowOrigin == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", cfg.AllowOrigin)
			w.Header().Set("Access-Control-Allow-Methods", cfg.AllowMethods)
			w.Header().Set("Access-Control-Allow-Headers", cfg.AllowHeaders)
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
