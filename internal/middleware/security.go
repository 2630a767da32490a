package middleware

import (
	"fmt"
	"net/http"
	"strings"
)

// htmxOrigin serves the HTMX script referenced by the layout
const htmxOrigin = "https://unpkg.com"

// SecurityHeaders sets the CSP (with the per-request nonce) and the usual hardening headers.
// imgSources are extra origins post images may be loaded from.
func SecurityHeaders(imgSources ...string) func(http.Handler) http.Handler {
	img := strings.TrimSpace("'self' data: " + strings.Join(imgSources, " "))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			csp := fmt.Sprintf(
				"default-src 'self'; script-src 'self' 'nonce-%s' %s; style-src 'self'; img-src %s; "+
					"connect-src 'self'; form-action 'self'; frame-ancestors 'none'; base-uri 'self'; object-src 'none'",
				GetNonce(r.Context()), htmxOrigin, img,
			)

			h := w.Header()
			h.Set("Content-Security-Policy", csp)
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			h.Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")

			next.ServeHTTP(w, r)
		})
	}
}

// MaxBodySize caps request bodies, including multipart uploads.
func MaxBodySize(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}
