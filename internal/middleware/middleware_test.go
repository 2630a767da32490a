package middleware

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/voceapacientilor/vocea/internal/ctxkeys"
	"github.com/voceapacientilor/vocea/internal/model"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func ok(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func withSession(r *http.Request, admin bool) *http.Request {
	session := &model.Session{
		User:    &model.User{ID: "u1", Email: "ana@example.com"},
		Profile: &model.UserProfile{ID: "u1", IsAdmin: admin},
	}
	return r.WithContext(ctxkeys.WithSession(r.Context(), session))
}

func TestRequireAuth(t *testing.T) {
	t.Run("visitor redirected with next", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/posts/new?x=1", nil)
		w := httptest.NewRecorder()
		RequireAuth(ok)(w, r)

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/auth?next="+url.QueryEscape("/posts/new?x=1"), w.Header().Get("Location"))
	})

	t.Run("htmx visitor gets HX-Redirect to current page", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/posts/abc/replies", nil)
		r.Header.Set("HX-Request", "true")
		r.Header.Set("HX-Current-URL", "http://localhost/posts/abc")
		w := httptest.NewRecorder()
		RequireAuth(ok)(w, r)

		assert.Equal(t, "/auth?next="+url.QueryEscape("/posts/abc"), w.Header().Get("HX-Redirect"))
	})

	t.Run("non-GET falls back to home", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/profile", nil)
		w := httptest.NewRecorder()
		RequireAuth(ok)(w, r)

		assert.Equal(t, "/auth?next=%2F", w.Header().Get("Location"))
	})

	t.Run("signed in passes", func(t *testing.T) {
		r := withSession(httptest.NewRequest(http.MethodGet, "/profile", nil), false)
		w := httptest.NewRecorder()
		RequireAuth(ok)(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestRequireGuest(t *testing.T) {
	r := withSession(httptest.NewRequest(http.MethodGet, "/auth", nil), false)
	w := httptest.NewRecorder()
	RequireGuest(ok)(w, r)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
}

func TestRequireAdmin(t *testing.T) {
	forbidden := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})
	guard := RequireAdmin(forbidden)

	tests := []struct {
		name string
		req  func() *http.Request
		code int
	}{
		{"visitor", func() *http.Request { return httptest.NewRequest(http.MethodGet, "/admin", nil) }, http.StatusSeeOther},
		{"member", func() *http.Request { return withSession(httptest.NewRequest(http.MethodGet, "/admin", nil), false) }, http.StatusForbidden},
		{"admin", func() *http.Request { return withSession(httptest.NewRequest(http.MethodGet, "/admin", nil), true) }, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			guard(ok)(w, tt.req())
			assert.Equal(t, tt.code, w.Code)
		})
	}
}

func csrfMultipart(t *testing.T, fields [][2]string, file []byte) (*bytes.Buffer, string) {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, f := range fields {
		require.NoError(t, mw.WriteField(f[0], f[1]))
	}
	part, err := mw.CreateFormFile("images", "poza.png")
	require.NoError(t, err)
	_, err = part.Write(file)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &body, mw.FormDataContentType()
}

func TestCSRFProtection(t *testing.T) {
	rejected := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Token", ctxkeys.CSRFToken(r.Context()))
		w.WriteHeader(http.StatusForbidden)
	})
	h := CSRFProtection(rejected)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Token", ctxkeys.CSRFToken(r.Context()))
		w.WriteHeader(http.StatusOK)
	}))

	// GET issues a cookie and exposes the token
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	token := cookies[0].Value
	assert.Equal(t, token, w.Header().Get("X-Token"))

	t.Run("missing token rejected", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/posts", nil)
		r.AddCookie(cookies[0])
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, token, w.Header().Get("X-Token"), "rejection page can still render forms")
	})

	t.Run("header accepted", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/posts", nil)
		r.AddCookie(cookies[0])
		r.Header.Set(csrfHeader, token)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("form field accepted", func(t *testing.T) {
		form := url.Values{csrfField: {token}}
		r := httptest.NewRequest(http.MethodPost, "/posts", strings.NewReader(form.Encode()))
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		r.AddCookie(cookies[0])
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("wrong token rejected", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/posts", nil)
		r.AddCookie(cookies[0])
		r.Header.Set(csrfHeader, generateCSRFToken())
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("multipart body is left for the handler", func(t *testing.T) {
		image := bytes.Repeat([]byte("x"), 64<<10)
		body, contentType := csrfMultipart(t, [][2]string{{csrfField, token}, {"body", "Text"}}, image)

		var got []byte
		h := CSRFProtection(rejected)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			mr, err := r.MultipartReader()
			require.NoError(t, err)
			for {
				part, err := mr.NextPart()
				if errors.Is(err, io.EOF) {
					break
				}
				require.NoError(t, err)
				if part.FormName() == "images" {
					got, err = io.ReadAll(part)
					require.NoError(t, err)
				}
			}
			w.WriteHeader(http.StatusOK)
		}))

		r := httptest.NewRequest(http.MethodPost, "/posts", body)
		r.Header.Set("Content-Type", contentType)
		r.AddCookie(cookies[0])
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, image, got)
	})

	t.Run("multipart token must come first", func(t *testing.T) {
		body, contentType := csrfMultipart(t, [][2]string{{"body", "Text"}, {csrfField, token}}, []byte("x"))
		r := httptest.NewRequest(http.MethodPost, "/posts", body)
		r.Header.Set("Content-Type", contentType)
		r.AddCookie(cookies[0])
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestSecurityHeaders(t *testing.T) {
	h := NonceMiddleware(SecurityHeaders("https://cdn.example.com")(http.HandlerFunc(ok)))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	csp := w.Header().Get("Content-Security-Policy")
	assert.Contains(t, csp, "script-src 'self' 'nonce-")
	assert.Contains(t, csp, htmxOrigin)
	assert.Contains(t, csp, "img-src 'self' data: https://cdn.example.com;")
	assert.NotContains(t, csp, "'nonce-'")
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
}

func TestMemoryRateStore(t *testing.T) {
	store := NewMemoryRateStore(2, time.Minute)
	defer store.Close()

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		allowed, err := store.Allow(ctx, "1.2.3.4")
		require.NoError(t, err)
		assert.True(t, allowed)
	}

	allowed, err := store.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, allowed)

	allowed, err = store.Allow(ctx, "5.6.7.8")
	require.NoError(t, err)
	assert.True(t, allowed, "limits are per key")
}

func TestMemoryRateStoreCleanup(t *testing.T) {
	store := NewMemoryRateStore(1, time.Millisecond)
	defer store.Close()

	_, _ = store.Allow(context.Background(), "k")
	time.Sleep(5 * time.Millisecond)
	store.cleanup()

	store.mu.Lock()
	defer store.mu.Unlock()
	assert.Empty(t, store.requests)
}

type failingStore struct{}

func (failingStore) Allow(context.Context, string) (bool, error) {
	return false, errors.New("connection refused")
}

func TestRedisRateStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := NewRedisRateStore(client, "rl:auth:", 2, time.Minute)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		allowed, err := store.Allow(ctx, "192.0.2.1")
		require.NoError(t, err)
		assert.True(t, allowed)
	}
	allowed, err := store.Allow(ctx, "192.0.2.1")
	require.NoError(t, err)
	assert.False(t, allowed)

	assert.Equal(t, time.Minute, mr.TTL("rl:auth:192.0.2.1"), "the first hit opens the window")

	mr.FastForward(time.Minute)
	allowed, err = store.Allow(ctx, "192.0.2.1")
	require.NoError(t, err)
	assert.True(t, allowed, "a new window starts after expiry")

	t.Run("counter without expiry gets one", func(t *testing.T) {
		require.NoError(t, mr.Set("rl:auth:198.51.100.7", "7"))

		allowed, err := store.Allow(ctx, "198.51.100.7")
		require.NoError(t, err)
		assert.False(t, allowed)
		assert.Equal(t, time.Minute, mr.TTL("rl:auth:198.51.100.7"))
	})

	t.Run("outage is an error and the limiter fails open", func(t *testing.T) {
		down := miniredis.RunT(t)
		downClient := redis.NewClient(&redis.Options{Addr: down.Addr(), MaxRetries: -1})
		t.Cleanup(func() { _ = downClient.Close() })
		down.Close()

		broken := NewRedisRateStore(downClient, "rl:auth:", 1, time.Minute)
		_, err := broken.Allow(ctx, "192.0.2.1")
		assert.Error(t, err)

		w := httptest.NewRecorder()
		RateLimit(broken)(ok)(w, httptest.NewRequest(http.MethodPost, "/auth/login", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestRateLimit(t *testing.T) {
	store := NewMemoryRateStore(1, time.Minute)
	defer store.Close()
	h := RequestInfo(nil)(RateLimit(store)(ok))

	send := func(forwardedFor string) int {
		r := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
		r.RemoteAddr = "203.0.113.50:40000"
		r.Header.Set("X-Forwarded-For", forwardedFor)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, send("9.9.9.9"))
	assert.Equal(t, http.StatusTooManyRequests, send("8.8.8.8"), "a forged header does not buy a fresh budget")

	t.Run("store errors fail open", func(t *testing.T) {
		w := httptest.NewRecorder()
		RateLimit(failingStore{})(ok)(w, httptest.NewRequest(http.MethodPost, "/auth/login", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestResolveClientIP(t *testing.T) {
	proxies := []netip.Prefix{netip.MustParsePrefix("10.0.0.0/8")}

	tests := []struct {
		name    string
		remote  string
		xff     []string
		realIP  string
		trusted []netip.Prefix
		want    string
	}{
		{name: "direct", remote: "192.0.2.1:1234", want: "192.0.2.1"},
		{name: "untrusted peer ignores headers", remote: "192.0.2.1:1234", xff: []string{"203.0.113.9"}, realIP: "198.51.100.7", want: "192.0.2.1"},
		{name: "no proxies configured", remote: "10.0.0.2:80", xff: []string{"203.0.113.9"}, want: "10.0.0.2"},
		{name: "one trusted hop", remote: "10.0.0.2:80", xff: []string{"203.0.113.9"}, trusted: proxies, want: "203.0.113.9"},
		{name: "client prefix is not believed", remote: "10.0.0.2:80", xff: []string{"1.1.1.1, 203.0.113.9"}, trusted: proxies, want: "203.0.113.9"},
		{name: "chained trusted hops", remote: "10.0.0.2:80", xff: []string{"203.0.113.9, 10.1.1.1", "10.2.2.2"}, trusted: proxies, want: "203.0.113.9"},
		{name: "all hops trusted", remote: "10.0.0.2:80", xff: []string{"10.3.3.3"}, trusted: proxies, want: "10.3.3.3"},
		{name: "garbage stops the walk", remote: "10.0.0.2:80", xff: []string{"203.0.113.9, nu-e-ip"}, trusted: proxies, want: "10.0.0.2"},
		{name: "real ip from trusted peer", remote: "10.0.0.2:80", realIP: "198.51.100.7", trusted: proxies, want: "198.51.100.7"},
		{name: "ipv6 peer", remote: "[2001:db8::1]:443", want: "2001:db8::1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remote
			for _, v := range tt.xff {
				r.Header.Add("X-Forwarded-For", v)
			}
			if tt.realIP != "" {
				r.Header.Set("X-Real-IP", tt.realIP)
			}
			assert.Equal(t, tt.want, resolveClientIP(r, tt.trusted))
		})
	}
}

func TestRequestInfo(t *testing.T) {
	var path, ip string
	h := RequestInfo(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = ctxkeys.URLPath(r.Context())
		ip = getClientIP(r)
	}))

	r := httptest.NewRequest(http.MethodGet, "/posts/42", nil)
	r.RemoteAddr = "192.0.2.1:1234"
	h.ServeHTTP(httptest.NewRecorder(), r)

	assert.Equal(t, "/posts/42", path)
	assert.Equal(t, "192.0.2.1", ip)
}

func TestMaxBodySize(t *testing.T) {
	h := MaxBodySize(4)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("a=123456789"))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}
