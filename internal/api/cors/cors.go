// Package cors implements an explicit-allow-list CORS middleware. Origins
// are matched exactly; requests from other origins pass through without
// any Access-Control headers, so browsers refuse them.
package cors

import "net/http"

const allowedMethods = "GET, POST, PUT, DELETE, OPTIONS"

// Middleware returns a middleware that grants cross-origin access only to
// the listed origins. The allowed origin is echoed back verbatim, never a
// wildcard.
func Middleware(allowedOrigins []string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if _, ok := allowed[origin]; ok {
				h := w.Header()
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Allow-Methods", allowedMethods)
				h.Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
				h.Add("Vary", "Origin")
			}
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
