package middleware

import (
	"bytes"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/voceapacientilor/vocea/internal/ctxkeys"
)

const (
	csrfCookie   = "csrf_token"
	csrfField    = "csrf_token"
	csrfHeader   = "X-CSRF-Token"
	csrfTokenLen = 32
	csrfMaxAge   = 7 * 24 * 60 * 60
)

// CSRFProtection checks the double-submit token on every request that can
// change state and hands the token to the page layout. Rejected requests
// are passed to rejected with the token already in context, so the error
// page can still render forms.
func CSRFProtection(rejected http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := csrfCookieToken(w, r)
			r = r.WithContext(ctxkeys.WithCSRFToken(r.Context(), token))

			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
				return
			}

			if !sameToken(token, submittedCSRFToken(r)) {
				slog.Warn("rejected form without a valid csrf token",
					"path", r.URL.Path,
					"method", r.Method,
					"htmx", r.Header.Get("HX-Request") == "true",
					"ip", getClientIP(r),
				)
				rejected.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// submittedCSRFToken looks at the HTMX header, then the form. Multipart
// bodies are not parsed: only their first part is read and the consumed
// bytes are put back, so handlers can still stream uploads.
func submittedCSRFToken(r *http.Request) string {
	if token := r.Header.Get(csrfHeader); token != "" {
		return token
	}

	mediaType, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "multipart/form-data" {
		return r.PostFormValue(csrfField)
	}
	if r.Body == nil || params["boundary"] == "" {
		return ""
	}

	var consumed bytes.Buffer
	token := firstPartToken(io.TeeReader(r.Body, &consumed), params["boundary"])
	r.Body = replayBody{Reader: io.MultiReader(bytes.NewReader(consumed.Bytes()), r.Body), Closer: r.Body}
	return token
}

// firstPartToken returns the csrf field when it is the first part of the form.
func firstPartToken(body io.Reader, boundary string) string {
	part, err := multipart.NewReader(body, boundary).NextPart()
	if err != nil {
		if !errors.Is(err, io.EOF) {
			slog.Debug("could not read first form part", "error", err)
		}
		return ""
	}
	if part.FormName() != csrfField || part.FileName() != "" {
		return ""
	}

	value, err := io.ReadAll(io.LimitReader(part, 256))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(value))
}

type replayBody struct {
	io.Reader
	io.Closer
}

// csrfCookieToken returns the browser's token, issuing a new cookie when it
// is missing or malformed.
func csrfCookieToken(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(csrfCookie); err == nil && len(c.Value) == base64.RawURLEncoding.EncodedLen(csrfTokenLen) {
		return c.Value
	}

	token := generateCSRFToken()
	cfg := ctxkeys.Config(r.Context())

	http.SetCookie(w, &http.Cookie{
		Name:     csrfCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   cfg != nil && cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   csrfMaxAge,
	})
	return token
}

func generateCSRFToken() string {
	b := make([]byte, csrfTokenLen)
	if _, err := rand.Read(b); err != nil {
		panic("csrf: " + err.Error())
	}
	return base64.RawURLEncoding.EncodeToString(b)
}

func sameToken(expected, actual string) bool {
	return expected != "" && actual != "" &&
		subtle.ConstantTimeCompare([]byte(expected), []byte(actual)) == 1
}
