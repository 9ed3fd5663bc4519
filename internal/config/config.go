// Package config loads server settings from an optional config.yaml and the
// environment. Environment variables always win over the file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigPath is read when Load is called with an empty path. A missing
// default file is not an error.
const ConfigPath = "config.yaml"

const (
	BackendREST     = "rest"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

const (
	defaultPort                    = "3001"
	defaultAdminTokenTTL           = 12 * time.Hour
	defaultLoginRateLimitPerMinute = 10
	minAdminTokenSecretLen         = 32
)

// FileConfig is the full server configuration.
type FileConfig struct {
	Port           string `yaml:"port"`
	LogLevel       string `yaml:"logLevel"`
	LogFormat      string `yaml:"logFormat"`
	StorageBackend string `yaml:"storageBackend"`

	DatabaseURL            string `yaml:"databaseURL"`
	SupabaseURL            string `yaml:"supabaseURL"`
	SupabaseAnonKey        string `yaml:"supabaseAnonKey"`
	SupabaseServiceRoleKey string `yaml:"supabaseServiceRoleKey"`

	AdminEmails       []string `yaml:"adminEmails"`
	AdminTokenSecret  string   `yaml:"adminTokenSecret"`
	AdminTokenTTL     string   `yaml:"adminTokenTTL"`
	RequireAdminToken *bool    `yaml:"requireAdminToken"`
	JWTIssuer         string   `yaml:"jwtIssuer"`
	JWTAudience       string   `yaml:"jwtAudience"`
	JWTLeeway         string   `yaml:"jwtLeeway"`

	RedisAddr               string   `yaml:"redisAddr"`
	RedisPassword           string   `yaml:"redisPassword"`
	TrustedProxyCIDRs       []string `yaml:"trustedProxyCidrs"`
	CORSAllowedOrigins      []string `yaml:"corsAllowedOrigins"`
	LoginRateLimitPerMinute int      `yaml:"loginRateLimitPerMinute"`
}

// Load reads path (or ConfigPath), applies environment overrides and
// defaults, and validates the result.
func Load(path string) (FileConfig, error) {
	cfg := FileConfig{}
	explicit := path != ""
	if !explicit {
		path = ConfigPath
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return cfg, fmt.Errorf("read config: %w", err)
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)
	if err := validateConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *FileConfig) {
	str := map[string]*string{
		"PORT":                      &cfg.Port,
		"LOG_LEVEL":                 &cfg.LogLevel,
		"LOG_FORMAT":                &cfg.LogFormat,
		"STORAGE_BACKEND":           &cfg.StorageBackend,
		"DATABASE_URL":              &cfg.DatabaseURL,
		"SUPABASE_URL":              &cfg.SupabaseURL,
		"SUPABASE_ANON_KEY":         &cfg.SupabaseAnonKey,
		"SUPABASE_SERVICE_ROLE_KEY": &cfg.SupabaseServiceRoleKey,
		"ADMIN_TOKEN_SECRET":        &cfg.AdminTokenSecret,
		"ADMIN_TOKEN_TTL":           &cfg.AdminTokenTTL,
		"JWT_ISSUER":                &cfg.JWTIssuer,
		"JWT_AUDIENCE":              &cfg.JWTAudience,
		"JWT_LEEWAY":                &cfg.JWTLeeway,
		"REDIS_ADDR":                &cfg.RedisAddr,
		"REDIS_PASSWORD":            &cfg.RedisPassword,
	}
	for name, dst := range str {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			*dst = v
		}
	}
	list := map[string]*[]string{
		"ADMIN_EMAILS":         &cfg.AdminEmails,
		"TRUSTED_PROXY_CIDRS":  &cfg.TrustedProxyCIDRs,
		"CORS_ALLOWED_ORIGINS": &cfg.CORSAllowedOrigins,
	}
	for name, dst := range list {
		if v := os.Getenv(name); strings.TrimSpace(v) != "" {
			*dst = splitCSV(v)
		}
	}
	if v := os.Getenv("REQUIRE_ADMIN_TOKEN"); v != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			cfg.RequireAdminToken = &b
		}
	}
	if v := os.Getenv("LOGIN_RATE_LIMIT_PER_MINUTE"); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			cfg.LoginRateLimitPerMinute = n
		}
	}
}

func applyDefaults(cfg *FileConfig) {
	if cfg.Port == "" {
		cfg.Port = defaultPort
	}
	cfg.StorageBackend = strings.ToLower(strings.TrimSpace(cfg.StorageBackend))
	if cfg.StorageBackend == "" {
		cfg.StorageBackend = BackendREST
	}
	if cfg.RequireAdminToken == nil {
		enabled := true
		cfg.RequireAdminToken = &enabled
	}
	if cfg.LoginRateLimitPerMinute == 0 {
		cfg.LoginRateLimitPerMinute = defaultLoginRateLimitPerMinute
	}
	emails := make([]string, 0, len(cfg.AdminEmails))
	for _, e := range cfg.AdminEmails {
		if e = strings.ToLower(strings.TrimSpace(e)); e != "" {
			emails = append(emails, e)
		}
	}
	cfg.AdminEmails = emails
}

func validateConfig(cfg FileConfig) error {
	required := []struct{ value, name string }{
		{cfg.DatabaseURL, "DATABASE_URL"},
		{cfg.SupabaseURL, "SUPABASE_URL"},
		{cfg.SupabaseAnonKey, "SUPABASE_ANON_KEY"},
		{cfg.SupabaseServiceRoleKey, "SUPABASE_SERVICE_ROLE_KEY"},
		{cfg.AdminTokenSecret, "ADMIN_TOKEN_SECRET"},
	}
	var missing []string
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			missing = append(missing, r.name)
		}
	}
	if len(cfg.AdminEmails) == 0 {
		missing = append(missing, "ADMIN_EMAILS")
	}
	if len(missing) > 0 {
		return fmt.Errorf("config: missing required settings: %s", strings.Join(missing, ", "))
	}
	if len(cfg.AdminTokenSecret) < minAdminTokenSecretLen {
		return fmt.Errorf("config: ADMIN_TOKEN_SECRET must be at least %d bytes", minAdminTokenSecretLen)
	}
	switch cfg.StorageBackend {
	case BackendREST, BackendPostgres, BackendMemory:
	default:
		return fmt.Errorf("config: unknown storageBackend %q (want rest, postgres or memory)", cfg.StorageBackend)
	}
	if cfg.LoginRateLimitPerMinute < 0 {
		return errors.New("config: loginRateLimitPerMinute must be >= 0")
	}
	if _, err := ParseTokenTTL(cfg.AdminTokenTTL); err != nil {
		return err
	}
	if _, err := ParseJWTLeeway(cfg.JWTLeeway); err != nil {
		return err
	}
	return nil
}

// AdminTokenRequired reports whether privileged routes need a bearer token.
func (c FileConfig) AdminTokenRequired() bool {
	return c.RequireAdminToken == nil || *c.RequireAdminToken
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}

// ParseTokenTTL parses adminTokenTTL, defaulting to 12h.
func ParseTokenTTL(ttl string) (time.Duration, error) {
	if strings.TrimSpace(ttl) == "" {
		return defaultAdminTokenTTL, nil
	}
	dur, err := time.ParseDuration(strings.TrimSpace(ttl))
	if err != nil {
		return 0, fmt.Errorf("invalid adminTokenTTL duration: %w", err)
	}
	if dur <= 0 {
		return 0, errors.New("adminTokenTTL must be positive")
	}
	return dur, nil
}

// ParseJWTLeeway parses optional JWT leeway duration string.
func ParseJWTLeeway(leeway string) (time.Duration, error) {
	if strings.TrimSpace(leeway) == "" {
		return 0, nil
	}
	dur, err := time.ParseDuration(strings.TrimSpace(leeway))
	if err != nil {
		return 0, fmt.Errorf("invalid jwtLeeway duration: %w", err)
	}
	return dur, nil
}
