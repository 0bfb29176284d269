package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
	"github.com/joho/godotenv"
)

// Config holds the complete application configuration, loadable from
// environment variables (SHOP_ prefix), flags, YAML config files, or a local
// .env file.
type Config struct {
	Addr        string `default:"0.0.0.0:8080" usage:"API server listen address"`
	DatabaseURL string `usage:"PostgreSQL connection URL (SHOP_DATABASE_URL or DATABASE_URL)" flag:"database-url"`
	SessionDB   string `default:"sessions.db" usage:"SQLite file for basket session state" flag:"session-db"`

	Contentful ContentfulConfig
	Supabase   SupabaseConfig
	RateLimit  RateLimitConfig
	CORS       CORSConfig
	Graceful   GracefulConfig
}

// ContentfulConfig points at the CMS space serving catalog content.
type ContentfulConfig struct {
	SpaceID     string `usage:"Contentful space ID" flag:"contentful-space"`
	Environment string `default:"master" usage:"Contentful environment" flag:"contentful-env"`
	AccessToken string `usage:"Contentful delivery API token" flag:"contentful-token"`
	BaseURL     string `default:"" usage:"Override for the Contentful API base URL" flag:"contentful-url"`
}

// SupabaseConfig points at the project used for auth and order storage.
type SupabaseConfig struct {
	URL       string `usage:"Supabase project URL" flag:"supabase-url"`
	AnonKey   string `usage:"Supabase anon API key" flag:"supabase-anon-key"`
	JWTSecret string `usage:"Supabase JWT secret for local token verification" flag:"supabase-jwt-secret"`
}

// RateLimitConfig controls the per-client sliding window rate limiter.
type RateLimitConfig struct {
	Max    int           `default:"100" usage:"Max requests per window"`
	Window time.Duration `default:"1m"  usage:"Rate limit window duration"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins          []string `default:"*" usage:"Allowed CORS origins"`
	AllowCredentials bool     `default:"true" usage:"Allow credentials (cookies, auth headers)" flag:"cors-credentials"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from a .env file (when present), environment
// variables, and YAML config files, then applies platform defaults.
func LoadConfig() (*Config, error) {
	// A missing .env is the normal production case.
	_ = godotenv.Load()

	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "SHOP",
		Files:     []string{"config.yaml", "/etc/storefront/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if cfg.DatabaseURL == "" {
		return nil, errors.New("database URL is required: set SHOP_DATABASE_URL or DATABASE_URL")
	}
	if cfg.Contentful.SpaceID == "" || cfg.Contentful.AccessToken == "" {
		return nil, errors.New("Contentful space ID and access token are required")
	}
	if cfg.Supabase.URL == "" || cfg.Supabase.AnonKey == "" || cfg.Supabase.JWTSecret == "" {
		return nil, errors.New("Supabase URL, anon key, and JWT secret are required")
	}

	return &cfg, nil
}

// applyPlatformDefaults maps platform-provided environment variables that use
// standard names like DATABASE_URL and PORT to the SHOP_-prefixed
// configuration.
func (c *Config) applyPlatformDefaults() {
	if c.DatabaseURL == "" {
		if v := os.Getenv("DATABASE_URL"); v != "" {
			c.DatabaseURL = v
		}
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == "0.0.0.0:8080" {
		c.Addr = "0.0.0.0:" + port
	}
}
