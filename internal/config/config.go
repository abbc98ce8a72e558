package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Env        string           `mapstructure:"env"`
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Auth       AuthConfig       `mapstructure:"auth"`
	SMTP       SMTPConfig       `mapstructure:"smtp"`
	Cloudinary CloudinaryConfig `mapstructure:"cloudinary"`
	Admin      AdminConfig      `mapstructure:"admin"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Revalidate RevalidateConfig `mapstructure:"revalidate"`
}

type ServerConfig struct {
	Port         string   `mapstructure:"port"`
	ReadTimeout  int      `mapstructure:"read_timeout_seconds"`
	WriteTimeout int      `mapstructure:"write_timeout_seconds"`
	IdleTimeout  int      `mapstructure:"idle_timeout_seconds"`
	CORSOrigins  []string `mapstructure:"cors_origins"`
	// TrustProxy takes the client address from X-Forwarded-For / X-Real-IP.
	// Only enable it behind a proxy that overwrites those headers.
	TrustProxy bool `mapstructure:"trust_proxy"`
}

type DatabaseConfig struct {
	// Driver is "sqlite" or "postgres".
	Driver       string `mapstructure:"driver"`
	URL          string `mapstructure:"url"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
}

type AuthConfig struct {
	SessionSecret  string `mapstructure:"session_secret"`
	SessionTTLMins int    `mapstructure:"session_ttl_minutes"`
	CookieName     string `mapstructure:"cookie_name"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
	To       string `mapstructure:"to"`
}

type CloudinaryConfig struct {
	CloudName string `mapstructure:"cloud_name"`
	APIKey    string `mapstructure:"api_key"`
	APISecret string `mapstructure:"api_secret"`
}

type AdminConfig struct {
	SeedEmail    string `mapstructure:"seed_email"`
	SeedPassword string `mapstructure:"seed_password"`
}

type RateLimitConfig struct {
	Limit         int `mapstructure:"limit"`
	WindowSeconds int `mapstructure:"window_seconds"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type CacheConfig struct {
	TTLSeconds int `mapstructure:"ttl_seconds"`
}

type RevalidateConfig struct {
	URL    string `mapstructure:"url"`
	Secret string `mapstructure:"secret"`
}

var ErrMissingSessionSecret = errors.New("session secret is not set")

// envBindings maps config keys to the environment variables the frontend
// deployment already uses. The first name found wins.
var envBindings = map[string][]string{
	"env":                       {"ENV"},
	"server.port":               {"PORT"},
	"server.trust_proxy":        {"TRUST_PROXY"},
	"database.driver":           {"DATABASE_DRIVER"},
	"database.url":              {"DATABASE_URL", "MONGODB_URI"},
	"auth.session_secret":       {"SESSION_SECRET", "NEXTAUTH_SECRET"},
	"smtp.host":                 {"EMAIL_HOST"},
	"smtp.port":                 {"EMAIL_PORT"},
	"smtp.username":             {"EMAIL_USER"},
	"smtp.password":             {"EMAIL_PASSWORD"},
	"smtp.from":                 {"EMAIL_FROM"},
	"smtp.to":                   {"EMAIL_TO"},
	"cloudinary.cloud_name":     {"CLOUDINARY_CLOUD_NAME", "NEXT_PUBLIC_CLOUDINARY_CLOUD_NAME"},
	"cloudinary.api_key":        {"CLOUDINARY_API_KEY"},
	"cloudinary.api_secret":     {"CLOUDINARY_API_SECRET"},
	"admin.seed_email":          {"ADMIN_EMAIL"},
	"admin.seed_password":       {"ADMIN_PASSWORD"},
	"redis.addr":                {"REDIS_ADDR"},
	"redis.password":            {"REDIS_PASSWORD"},
	"redis.db":                  {"REDIS_DB"},
	"revalidate.url":            {"NEXT_REVALIDATION_URL"},
	"revalidate.secret":         {"REVALIDATION_SECRET"},
	"rate_limit.limit":          {"RATE_LIMIT"},
	"rate_limit.window_seconds": {"RATE_LIMIT_WINDOW_SECONDS"},
	"cache.ttl_seconds":         {"CACHE_TTL_SECONDS"},
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "local")
	v.SetDefault("server.port", "8081")
	v.SetDefault("server.read_timeout_seconds", 15)
	v.SetDefault("server.write_timeout_seconds", 30)
	v.SetDefault("server.idle_timeout_seconds", 60)
	v.SetDefault("server.trust_proxy", false)
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.url", "portfolio.db")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("auth.session_ttl_minutes", 24*60)
	v.SetDefault("auth.cookie_name", "session")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("admin.seed_email", "admin@example.com")
	v.SetDefault("admin.seed_password", "admin123")
	v.SetDefault("rate_limit.limit", 10)
	v.SetDefault("rate_limit.window_seconds", 60)
	v.SetDefault("cache.ttl_seconds", 30)
}

func Load() (*Config, error) {
	env := os.Getenv("ENV")
	if env == "" {
		env = "local"
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("/etc/portfolio")

	// Config file is optional - ENV variables are enough
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.AutomaticEnv()
	for key, names := range envBindings {
		args := append([]string{key}, names...)
		if err := v.BindEnv(args...); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// FRONTEND_URL / FRONTEND_URL2 are the allowed CORS origins
	if len(cfg.Server.CORSOrigins) == 0 {
		for _, name := range []string{"FRONTEND_URL", "FRONTEND_URL2"} {
			if origin := os.Getenv(name); origin != "" {
				cfg.Server.CORSOrigins = append(cfg.Server.CORSOrigins, origin)
			}
		}
	}

	return &cfg, nil
}

// Validate reports settings the server cannot run without.
func (c *Config) Validate() error {
	if c.Auth.SessionSecret == "" {
		return ErrMissingSessionSecret
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "prod" || c.Env == "production"
}

func (c AuthConfig) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMins) * time.Minute
}

func (c RateLimitConfig) Window() time.Duration {
	return time.Duration(c.WindowSeconds) * time.Second
}

func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}
