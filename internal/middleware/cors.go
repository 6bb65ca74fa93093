// internal/middleware/cors.go
//
// CORS for the admin panel and the public site, which are served from
// other origins.  Origins are an exact-match allow-list from
// `http.allowed_origins`; "*" allows any origin without credentials.

package middleware

import (
	"net/http"
	"strings"

	"github.com/go-chi/cors"
)

const corsMaxAge = 600

// CORS answers preflight requests and decorates actual requests whose
// Origin is allowed.  Other origins pass through untouched, so the browser
// enforces the policy.  An empty list disables CORS entirely.
func CORS(origins []string) func(http.Handler) http.Handler {
	list := make([]string, 0, len(origins))
	wildcard := false
	for _, o := range origins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		switch o {
		case "":
		case "*":
			wildcard = true
		default:
			list = append(list, o)
		}
	}
	if wildcard {
		list = []string{"*"}
	}
	if len(list) == 0 {
		// cors.Handler treats an empty list as "*".
		return func(next http.Handler) http.Handler { return next }
	}

	return cors.Handler(cors.Options{
		AllowedOrigins:   list,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: !wildcard,
		MaxAge:           corsMaxAge,
	})
}
