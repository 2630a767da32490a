package handler

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/voceapacientilor/vocea/internal/config"
	"github.com/voceapacientilor/vocea/internal/model"
	"github.com/voceapacientilor/vocea/internal/service"
	"github.com/voceapacientilor/vocea/internal/ui"
	"github.com/voceapacientilor/vocea/internal/ui/pages"
	"github.com/voceapacientilor/vocea/internal/validation"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
	"golang.org/x/oauth2/google"
)

const (
	oauthStateCookie = "oauth_state"
	nextCookie       = "auth_next"
)

const (
	msgInvalidLink = "Linkul este invalid sau a expirat. Cere unul nou."
	msgOAuthFailed = "Autentificarea externă a eșuat. Încearcă din nou."
	msgServerError = "A apărut o eroare. Încearcă din nou."
)

type AuthHandler struct {
	authService       *service.AuthService
	sessionService    *service.SessionService
	googleOAuthConfig *oauth2.Config
	githubOAuthConfig *oauth2.Config
	secureCookies     bool
}

func NewAuthHandler(authService *service.AuthService, sessionService *service.SessionService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		authService:    authService,
		sessionService: sessionService,
		googleOAuthConfig: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.AppURL + "/auth/google/callback",
			Scopes:       []string{"https://www.googleapis.com/auth/userinfo.email", "https://www.googleapis.com/auth/userinfo.profile"},
			Endpoint:     google.Endpoint,
		},
		githubOAuthConfig: &oauth2.Config{
			ClientID:     cfg.GitHubClientID,
			ClientSecret: cfg.GitHubClientSecret,
			RedirectURL:  cfg.AppURL + "/auth/github/callback",
			Scopes:       []string{"user:email"},
			Endpoint:     github.Endpoint,
		},
		secureCookies: cfg.IsProduction(),
	}
}

// Page shows the sign-in or registration form. The toggle swaps only the form.
func (h *AuthHandler) Page(w http.ResponseWriter, r *http.Request) {
	data := pages.AuthData{
		Mode: r.URL.Query().Get("mode"),
		Next: SafeNext(r.URL.Query().Get("next")),
	}

	if isHTMX(r) {
		ui.Render(w, r, pages.AuthForm(data))
		return
	}
	ui.Render(w, r, pages.Auth(data))
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")
	next := SafeNext(r.FormValue("next"))

	data := pages.AuthData{Mode: pages.AuthModeLogin, Next: next, Email: email}

	if email == "" || password == "" {
		data.Error = "Completează adresa de email și parola."
		ui.RenderStatus(w, r, http.StatusUnprocessableEntity, pages.Auth(data))
		return
	}

	user, err := h.authService.Login(email, password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailNotVerified):
			data.Error = "Confirmă adresa de email folosind linkul primit, apoi încearcă din nou."
		case errors.Is(err, service.ErrPasswordless):
			data.Error = "Contul nu are parolă. Folosește linkul de autentificare pe email."
		case errors.Is(err, service.ErrInvalidCredentials):
			data.Error = "Email sau parolă greșită."
		default:
			slog.Error("login failed", "error", err)
			data.Error = msgServerError
		}
		if data.Error != msgServerError {
			slog.Warn("password login failed", "error", err, "email", email)
		}
		ui.RenderStatus(w, r, http.StatusUnprocessableEntity, pages.Auth(data))
		return
	}

	h.signIn(w, r, user, next)
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.FormValue("email"))
	fullName := strings.TrimSpace(r.FormValue("full_name"))
	next := SafeNext(r.FormValue("next"))

	data := pages.AuthData{Mode: pages.AuthModeRegister, Next: next, Email: email, FullName: fullName}

	user, err := h.authService.Register(r.Context(), email, r.FormValue("password"), fullName)

	var verr *validation.Errors
	switch {
	case err == nil:
	case errors.As(err, &verr):
		data.Errors = verr
		ui.RenderStatus(w, r, http.StatusUnprocessableEntity, pages.Auth(data))
		return
	case errors.Is(err, service.ErrEmailAlreadyExists):
		data.Error = "Există deja un cont cu această adresă de email."
		ui.RenderStatus(w, r, http.StatusUnprocessableEntity, pages.Auth(data))
		return
	default:
		slog.Error("registration failed", "error", err)
		data.Error = msgServerError
		ui.RenderStatus(w, r, http.StatusInternalServerError, pages.Auth(data))
		return
	}

	h.rememberNext(w, next)

	slog.Info("registration pending verification", "user_id", user.ID)
	ui.Render(w, r, pages.Auth(pages.AuthData{Mode: pages.AuthModeLogin, Next: next, Email: user.Email, Sent: user.Email}))
}

func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	user, err := h.authService.VerifyEmail(r.PathValue("token"))
	if err != nil {
		slog.Warn("email verification failed", "error", err)
		ui.RenderStatus(w, r, http.StatusBadRequest, pages.Auth(pages.AuthData{Error: msgInvalidLink}))
		return
	}

	slog.Info("email verified", "user_id", user.ID)
	h.signIn(w, r, user, h.takeNext(w, r))
}

// SendMagicLink always reports success so the form cannot be used to probe for accounts.
func (h *AuthHandler) SendMagicLink(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.FormValue("email"))
	next := SafeNext(r.FormValue("next"))

	err := h.authService.SendMagicLink(r.Context(), email)
	if errors.Is(err, service.ErrInvalidEmail) {
		ui.RenderStatus(w, r, http.StatusUnprocessableEntity, pages.Auth(pages.AuthData{
			Next:  next,
			Email: email,
			Error: "Introdu o adresă de email validă.",
		}))
		return
	}
	if err != nil {
		slog.Warn("magic link send failed", "error", err, "email", email)
	}

	h.rememberNext(w, next)
	ui.Render(w, r, pages.Auth(pages.AuthData{Next: next, Email: email, Sent: email}))
}

func (h *AuthHandler) VerifyMagicLink(w http.ResponseWriter, r *http.Request) {
	user, err := h.authService.VerifyMagicLink(r.PathValue("token"))
	if err != nil {
		slog.Warn("magic link verification failed", "error", err)
		ui.RenderStatus(w, r, http.StatusBadRequest, pages.Auth(pages.AuthData{Error: msgInvalidLink}))
		return
	}

	slog.Info("user logged in via magic link", "user_id", user.ID)
	h.signIn(w, r, user, h.takeNext(w, r))
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.authService.ClearJWTCookie(w)
	redirect(w, r, "/")
}

// GoogleAuth redirects user to Google OAuth consent screen
func (h *AuthHandler) GoogleAuth(w http.ResponseWriter, r *http.Request) {
	h.startOAuth(w, r, h.googleOAuthConfig)
}

// GitHubAuth redirects user to GitHub OAuth consent screen
func (h *AuthHandler) GitHubAuth(w http.ResponseWriter, r *http.Request) {
	h.startOAuth(w, r, h.githubOAuthConfig)
}

func (h *AuthHandler) startOAuth(w http.ResponseWriter, r *http.Request, cfg *oauth2.Config) {
	if cfg.ClientID == "" {
		ui.RenderStatus(w, r, http.StatusNotFound, pages.NotFound())
		return
	}

	state := generateOAuthState()
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   600, // 10 minutes
	})
	h.rememberNext(w, SafeNext(r.URL.Query().Get("next")))

	http.Redirect(w, r, cfg.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

func (h *AuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	h.finishOAuth(w, r, "google", h.googleOAuthConfig, googleUserInfo)
}

func (h *AuthHandler) GitHubCallback(w http.ResponseWriter, r *http.Request) {
	h.finishOAuth(w, r, "github", h.githubOAuthConfig, githubUserInfo)
}

type userInfoFunc func(ctx context.Context, client *http.Client) (email, name string, err error)

func (h *AuthHandler) finishOAuth(w http.ResponseWriter, r *http.Request, provider string, cfg *oauth2.Config, fetch userInfoFunc) {
	state := r.URL.Query().Get("state")
	cookie, err := r.Cookie(oauthStateCookie)
	if err != nil || state == "" || cookie.Value != state {
		slog.Warn("oauth state validation failed", "provider", provider, "error", err)
		ui.RenderStatus(w, r, http.StatusBadRequest, pages.Auth(pages.AuthData{Error: msgOAuthFailed}))
		return
	}
	clearCookie(w, oauthStateCookie)

	code := r.URL.Query().Get("code")
	if code == "" {
		slog.Warn("oauth callback missing code", "provider", provider)
		ui.RenderStatus(w, r, http.StatusBadRequest, pages.Auth(pages.AuthData{Error: msgOAuthFailed}))
		return
	}

	token, err := cfg.Exchange(r.Context(), code)
	if err != nil {
		slog.Error("oauth token exchange failed", "provider", provider, "error", err)
		ui.RenderStatus(w, r, http.StatusBadGateway, pages.Auth(pages.AuthData{Error: msgOAuthFailed}))
		return
	}

	email, name, err := fetch(r.Context(), cfg.Client(r.Context(), token))
	if err != nil {
		slog.Error("failed to get oauth user info", "provider", provider, "error", err)
		ui.RenderStatus(w, r, http.StatusBadGateway, pages.Auth(pages.AuthData{Error: msgOAuthFailed}))
		return
	}

	user, err := h.authService.AuthenticateOAuth(email, name, provider)
	if err != nil {
		slog.Error("oauth authentication failed", "provider", provider, "error", err)
		ui.RenderStatus(w, r, http.StatusBadRequest, pages.Auth(pages.AuthData{Error: msgOAuthFailed}))
		return
	}

	h.signIn(w, r, user, h.takeNext(w, r))
}

// signIn sets the session cookie and continues to next, or to the
// default landing page for the user's role.
func (h *AuthHandler) signIn(w http.ResponseWriter, r *http.Request, user *model.User, next string) {
	err := h.authService.SignIn(w, user)
	if err != nil {
		slog.Error("failed to sign in", "error", err, "user_id", user.ID)
		ui.RenderStatus(w, r, http.StatusInternalServerError, pages.Auth(pages.AuthData{Error: msgServerError}))
		return
	}

	session, err := h.sessionService.Load(user.ID)
	if err != nil {
		slog.Error("failed to load session after sign in", "error", err, "user_id", user.ID)
	}

	http.Redirect(w, r, SuccessTarget(next, session), http.StatusSeeOther)
}

// SuccessTarget is where a successful sign-in continues: a safe next path
// when one was requested, /admin for admins, / for everyone else.
func SuccessTarget(next string, session *model.Session) string {
	if next = SafeNext(next); next != "" {
		return next
	}
	if session.IsAdmin() {
		return "/admin"
	}
	return "/"
}

// SafeNext returns next when it is a local path, and "" otherwise.
func SafeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.ContainsAny(next, "\\\r\n") {
		return ""
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return ""
	}
	if u.Path == "/auth" || strings.HasPrefix(u.Path, "/auth/") {
		return ""
	}
	return u.RequestURI()
}

func (h *AuthHandler) rememberNext(w http.ResponseWriter, next string) {
	if next == "" {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     nextCookie,
		Value:    url.QueryEscape(next),
		Path:     "/auth",
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   3600,
	})
}

func (h *AuthHandler) takeNext(w http.ResponseWriter, r *http.Request) string {
	cookie, err := r.Cookie(nextCookie)
	if err != nil {
		return ""
	}
	http.SetCookie(w, &http.Cookie{Name: nextCookie, Value: "", Path: "/auth", MaxAge: -1})

	next, err := url.QueryUnescape(cookie.Value)
	if err != nil {
		return ""
	}
	return SafeNext(next)
}

func clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:   name,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
}

func googleUserInfo(ctx context.Context, client *http.Client) (string, string, error) {
	var info struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := getJSON(ctx, client, "https://www.googleapis.com/oauth2/v2/userinfo", &info); err != nil {
		return "", "", err
	}
	return info.Email, info.Name, nil
}

func githubUserInfo(ctx context.Context, client *http.Client) (string, string, error) {
	var info struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := getJSON(ctx, client, "https://api.github.com/user", &info); err != nil {
		return "", "", err
	}

	// private addresses are only listed on /user/emails
	if info.Email == "" {
		var emails []struct {
			Email    string `json:"email"`
			Primary  bool   `json:"primary"`
			Verified bool   `json:"verified"`
		}
		if err := getJSON(ctx, client, "https://api.github.com/user/emails", &emails); err != nil {
			return "", "", err
		}
		for _, e := range emails {
			if e.Primary && e.Verified {
				info.Email = e.Email
				break
			}
		}
	}

	if info.Email == "" {
		return "", "", errors.New("github account has no verified primary email")
	}
	return info.Email, info.Name, nil
}

func getJSON(ctx context.Context, client *http.Client, endpoint string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			slog.Error("failed to close response body", "error", closeErr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s returned %d", endpoint, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(dst)
}

// generateOAuthState creates cryptographically secure random state token for OAuth CSRF protection
func generateOAuthState() string {
	bytes := make([]byte, 32)
	_, err := rand.Read(bytes)
	if err != nil {
		panic("failed to generate oauth state: " + err.Error())
	}
	return base64.RawURLEncoding.EncodeToString(bytes)
}
