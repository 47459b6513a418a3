package mw

import (
	"net/http"
	"strings"

	"github.com/go-chi/cors"
)

// CORS lets browser extensions and local front-ends call the API. Origins
// listed in allowed are echoed back; an empty list allows any origin.
// Preflight requests are answered with 204 and never reach the router.
func CORS(allowed ...string) func(http.Handler) http.Handler {
	origins := make([]string, 0, len(allowed))
	for _, o := range allowed {
		origins = append(origins, strings.TrimRight(o, "/"))
	}
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders:     []string{"Content-Type", "X-Request-ID"},
		ExposedHeaders:     []string{"Content-Disposition", "Retry-After", "X-Request-ID"},
		MaxAge:             600,
		OptionsPassthrough: true,
	})

	return func(next http.Handler) http.Handler {
		return c.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		}))
	}
}
