package routes

import (
	"net/http"

	"github.com/voceapacientilor/vocea/assets"
	"github.com/voceapacientilor/vocea/internal/app"
	"github.com/voceapacientilor/vocea/internal/handler"
	"github.com/voceapacientilor/vocea/internal/middleware"
	"github.com/voceapacientilor/vocea/internal/storage"
)

// maxRequestBody caps every request body: five images of 5MB plus form fields and multipart overhead.
const maxRequestBody = 32 << 20

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	status := handler.NewStatusHandler()
	seo := handler.NewSEOHandler(app.SitemapService, app.Cfg.AppURL)
	legal := handler.NewLegalHandler(app.LegalService)
	posts := handler.NewPostHandler(app.PostService)
	admin := handler.NewAdminHandler(app.ModerationService, status.ForbiddenPage)
	auth := handler.NewAuthHandler(app.AuthService, app.SessionService, app.Cfg)
	profile := handler.NewProfileHandler(app.ProfileService, app.SessionService)

	requireAdmin := middleware.RequireAdmin(http.HandlerFunc(status.ForbiddenPage))

	mux := http.NewServeMux()

	// ============================================================================
	// PUBLIC ROUTES
	// ============================================================================

	// Static files
	mux.Handle("GET /assets/", http.StripPrefix("/assets/", http.FileServer(http.FS(assets.AssetsFS))))

	// SEO
	mux.HandleFunc("GET /robots.txt", seo.Robots)
	mux.HandleFunc("GET /sitemap.xml", seo.Sitemap)

	// Listing and detail
	mux.HandleFunc("GET /{$}", posts.List)
	mux.HandleFunc("GET /posts/{id}", posts.Detail)
	mux.HandleFunc("GET /legal/{page}", legal.ShowPage)

	// ============================================================================
	// AUTH (rate limited)
	// ============================================================================

	rateLimiter := middleware.RateLimit(app.AuthRateLimit)

	mux.HandleFunc("GET /auth", middleware.RequireGuest(auth.Page))
	mux.HandleFunc("POST /auth/login", rateLimiter(middleware.RequireGuest(auth.Login)))
	mux.HandleFunc("POST /auth/register", rateLimiter(middleware.RequireGuest(auth.Register)))
	mux.HandleFunc("POST /auth/magic-link", rateLimiter(middleware.RequireGuest(auth.SendMagicLink)))
	mux.HandleFunc("POST /auth/logout", auth.Logout)

	// Token verifications
	mux.HandleFunc("GET /auth/verify/{token}", auth.VerifyEmail)
	mux.HandleFunc("GET /auth/magic-link/{token}", auth.VerifyMagicLink)

	// OAuth
	mux.HandleFunc("GET /auth/google", rateLimiter(middleware.RequireGuest(auth.GoogleAuth)))
	mux.HandleFunc("GET /auth/google/callback", rateLimiter(auth.GoogleCallback))
	mux.HandleFunc("GET /auth/github", rateLimiter(middleware.RequireGuest(auth.GitHubAuth)))
	mux.HandleFunc("GET /auth/github/callback", rateLimiter(auth.GitHubCallback))

	// ============================================================================
	// SIGNED-IN ROUTES
	// ============================================================================

	mux.HandleFunc("GET /posts/new", middleware.RequireAuth(posts.NewPage))
	mux.HandleFunc("POST /posts", middleware.RequireAuth(posts.Create))
	mux.HandleFunc("POST /posts/{id}/replies", middleware.RequireAuth(posts.Reply))

	mux.HandleFunc("GET /profile", middleware.RequireAuth(profile.Page))
	mux.HandleFunc("POST /profile", middleware.RequireAuth(profile.Update))

	// ============================================================================
	// ADMIN ROUTES
	// ============================================================================

	mux.HandleFunc("GET /admin", requireAdmin(admin.Queue))
	mux.HandleFunc("GET /admin/posts/{id}", requireAdmin(admin.Show))
	mux.HandleFunc("POST /admin/posts/{id}/approve", requireAdmin(admin.Approve))
	mux.HandleFunc("POST /admin/posts/{id}/reject", requireAdmin(admin.Reject))

	// ============================================================================
	// FALLBACK
	// ============================================================================

	// 404
	mux.HandleFunc("/{path...}", status.NotFoundPage)

	// Global middleware - executed in order (top to bottom)
	handler := middleware.Chain(
		mux,
		middleware.Config(app.Cfg),
		middleware.RequestInfo(app.Cfg.TrustedProxies),
		middleware.NonceMiddleware, // must run before SecurityHeaders
		middleware.SecurityHeaders(storage.Origin(app.Cfg)),
		middleware.RequestLogging,
		middleware.MaxBodySize(maxRequestBody),
		middleware.CSRFProtection(http.HandlerFunc(status.ExpiredFormPage)),
		middleware.AuthMiddleware(app.AuthService, app.SessionService),
	)

	return handler
}
