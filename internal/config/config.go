package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Site
	AppName      string
	AppEnv       string // "development" or "production"
	AppURL       string // base for email links, OAuth callbacks and the sitemap
	Port         string
	AppTagline   string
	SupportEmail string
	ContentPath  string // markdown legal pages

	// Database: sqlite by default, pgx for PostgreSQL
	DBDriver     string
	DBConnection string

	// Sessions and one-time links
	JWTSecret              string
	JWTExpiry              time.Duration
	TokenEmailVerifyExpiry time.Duration
	TokenMagicLinkExpiry   time.Duration
	TokenRetention         time.Duration // used tokens are purged after this long

	// Sign-in providers, each enabled when its client id is set
	GoogleClientID     string
	GoogleClientSecret string
	GitHubClientID     string
	GitHubClientSecret string

	// Email goes through Resend; without a key it is logged instead
	EmailFrom        string
	ResendAPIKey     string
	ModerationEmails bool // tell authors when a moderator approves or rejects their post

	SentryDSN string

	// Post images: "s3" (any S3-compatible service) or "gcs"
	StorageDriver         string
	S3Region              string
	S3Bucket              string
	S3AccessKey           string
	S3SecretKey           string
	S3Endpoint            string // MinIO, R2 and friends
	S3PresignExpiryPublic time.Duration
	GCSBucket             string

	// Sign-in attempts per client IP. With REDIS_URL the budget is shared
	// between instances.
	RedisURL        string
	RateLimitAuth   int
	RateLimitWindow time.Duration

	// Reverse proxies whose X-Forwarded-For is believed. Empty means the
	// peer address is always the client.
	TrustedProxies []netip.Prefix
}

// Load reads the environment, with .env filling in what is unset. Every
// missing or malformed variable is reported in the returned error.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file, reading the process environment only")
	}

	var e env
	cfg := &Config{
		AppName:      e.str("APP_NAME", "Vocea Pacienților"),
		AppEnv:       e.required("APP_ENV"),
		AppURL:       e.required("APP_URL"),
		Port:         e.str("PORT", "8090"),
		AppTagline:   e.str("APP_TAGLINE", "Mărturii despre situația din sistemul medical românesc"),
		SupportEmail: e.str("SUPPORT_EMAIL", "contact@example.com"),
		ContentPath:  e.str("CONTENT_PATH", "content"),

		DBDriver:     e.str("DB_DRIVER", "sqlite"),
		DBConnection: e.str("DB_CONNECTION", "./data/vocea.db?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_time_format=sqlite"),

		JWTSecret:              e.required("JWT_SECRET"),
		JWTExpiry:              e.duration("JWT_EXPIRY", 7*24*time.Hour),
		TokenEmailVerifyExpiry: e.duration("TOKEN_EMAIL_VERIFY_EXPIRY", 24*time.Hour),
		TokenMagicLinkExpiry:   e.duration("TOKEN_MAGIC_LINK_EXPIRY", 10*time.Minute),
		TokenRetention:         e.duration("TOKEN_RETENTION", 30*24*time.Hour),

		GoogleClientID:     e.str("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: e.str("GOOGLE_CLIENT_SECRET", ""),
		GitHubClientID:     e.str("GITHUB_CLIENT_ID", ""),
		GitHubClientSecret: e.str("GITHUB_CLIENT_SECRET", ""),

		EmailFrom:        e.str("EMAIL_FROM", "noreply@example.com"),
		ResendAPIKey:     e.str("RESEND_API_KEY", ""),
		ModerationEmails: e.boolean("MODERATION_EMAILS", true),

		SentryDSN: e.str("SENTRY_DSN", ""),

		StorageDriver:         e.str("STORAGE_DRIVER", "s3"),
		S3Region:              e.str("S3_REGION", "us-east-1"),
		S3Bucket:              e.str("S3_BUCKET", "post-images"),
		S3AccessKey:           e.str("S3_ACCESS_KEY", ""),
		S3SecretKey:           e.str("S3_SECRET_KEY", ""),
		S3Endpoint:            e.str("S3_ENDPOINT", ""),
		S3PresignExpiryPublic: e.duration("S3_PRESIGN_EXPIRY_PUBLIC", 7*24*time.Hour),
		GCSBucket:             e.str("GCS_BUCKET", "post-images"),

		RedisURL:        e.str("REDIS_URL", ""),
		RateLimitAuth:   e.positive("RATE_LIMIT_AUTH", 5),
		RateLimitWindow: e.duration("RATE_LIMIT_WINDOW", 15*time.Minute),

		TrustedProxies: e.prefixes("TRUSTED_PROXIES"),
	}

	if cfg.AppEnv != "" && cfg.AppEnv != "development" && cfg.AppEnv != "production" {
		e.fail("APP_ENV must be development or production, got %q", cfg.AppEnv)
	}
	if cfg.IsProduction() {
		e.checkProduction(cfg)
	}

	if err := errors.Join(e.problems...); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// checkProduction refuses settings that only make sense on a laptop.
func (e *env) checkProduction(cfg *Config) {
	if cfg.ResendAPIKey == "" {
		e.fail("RESEND_API_KEY is required in production; use APP_ENV=development to log emails instead")
	}
	if cfg.StorageDriver == "s3" && cfg.S3Endpoint != "" && (cfg.S3AccessKey == "" || cfg.S3SecretKey == "") {
		e.fail("S3_ENDPOINT needs S3_ACCESS_KEY and S3_SECRET_KEY")
	}
}

// env reads variables and remembers what was wrong with them.
type env struct {
	problems []error
}

func (e *env) fail(format string, args ...any) {
	e.problems = append(e.problems, fmt.Errorf(format, args...))
}

func (e *env) str(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func (e *env) required(key string) string {
	v := e.str(key, "")
	if v == "" {
		e.fail("%s is not set", key)
	}
	return v
}

func (e *env) boolean(key string, def bool) bool {
	v := e.str(key, "")
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		e.fail("%s: %q is not a boolean", key, v)
		return def
	}
	return b
}

func (e *env) positive(key string, def int) int {
	v := e.str(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		e.fail("%s: %q is not a positive number", key, v)
		return def
	}
	return n
}

func (e *env) duration(key string, def time.Duration) time.Duration {
	v := e.str(key, "")
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		e.fail("%s: %q is not a duration such as 15m or 24h", key, v)
		return def
	}
	return d
}

// prefixes parses a comma separated list of CIDR ranges. A bare address
// stands for itself.
func (e *env) prefixes(key string) []netip.Prefix {
	var out []netip.Prefix
	for _, field := range strings.Split(e.str(key, ""), ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		if p, err := netip.ParsePrefix(field); err == nil {
			out = append(out, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(field)
		if err != nil {
			e.fail("%s: %q is neither an address nor a CIDR range", key, field)
			continue
		}
		addr = addr.Unmap()
		out = append(out, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return out
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Sanitized copies the fields that may reach templates and request
// context. Secrets and credentials stay behind.
func (c *Config) Sanitized() *Config {
	return &Config{
		AppName:      c.AppName,
		AppEnv:       c.AppEnv,
		AppURL:       c.AppURL,
		Port:         c.Port,
		AppTagline:   c.AppTagline,
		SupportEmail: c.SupportEmail,

		GoogleClientID: c.GoogleClientID,
		GitHubClientID: c.GitHubClientID,

		StorageDriver: c.StorageDriver,
		S3Endpoint:    c.S3Endpoint,
		S3Bucket:      c.S3Bucket,
		S3Region:      c.S3Region,
		GCSBucket:     c.GCSBucket,
	}
}
