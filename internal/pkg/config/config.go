package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	SessionStoreMemory   = "memory"
	SessionStorePostgres = "postgres"
)

type PostgresConfig struct {
	Host     string
	Port     string
	DB       string
	Username string
	Password string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

type RepositoriesConfig struct {
	Postgres PostgresConfig
}

// BackendConfig describes how the dashboard reaches the ACH backend.
type BackendConfig struct {
	// APIBaseURL is the origin used by the typed client.
	APIBaseURL string
	// ProxyURL is the origin the /api/* reverse proxy forwards to.
	ProxyURL string
	Timeout  time.Duration
}

type SessionConfig struct {
	Secret        string
	Store         string
	CookieName    string
	IdleTTL       time.Duration
	PersistTTL    time.Duration
	PollInterval  time.Duration
	FocusWindow   time.Duration
	LoginRate     float64
	LoginBurst    int
	SecureCookies bool
}

type RoutesConfig struct {
	LoginPath       string
	ProtectedRoutes []string
}

type ObservabilityConfig struct {
	ServiceName string
	MetricsAddr string
	PprofAddr   string
	LogLevel    string
}

type Config struct {
	Repositories  RepositoriesConfig
	Backend       BackendConfig
	Session       SessionConfig
	Routes        RoutesConfig
	Observability ObservabilityConfig
	ServerPort    string
}

var defaultProtectedRoutes = []string{
	"/dashboard",
	"/transactions",
	"/organizations",
	"/nacha",
	"/holidays",
	"/settings",
}

func Load() (*Config, error) {
	apiBase := firstEnv([]string{"NEXT_PUBLIC_API_BASE_URL", "NEXT_PUBLIC_API_URL", "API_BASE_URL"}, "http://localhost:8080")

	cfg := &Config{
		Repositories: RepositoriesConfig{
			Postgres: PostgresConfig{
				Host:     getEnvOrDefault("POSTGRES_HOST", "localhost"),
				Port:     getEnvOrDefault("POSTGRES_PORT", "5432"),
				DB:       getEnvOrDefault("POSTGRES_DB", "ach_dashboard"),
				Username: getEnvOrDefault("POSTGRES_USER", "postgres"),
				Password: getEnvOrDefault("POSTGRES_PASSWORD", ""),
				SSLMode:  getEnvOrDefault("POSTGRES_SSLMODE", "disable"),
				MaxConns: 10,
				MinConns: 2,
			},
		},
		Backend: BackendConfig{
			APIBaseURL: strings.TrimRight(apiBase, "/"),
			ProxyURL:   strings.TrimRight(getEnvOrDefault("BACKEND_URL", apiBase), "/"),
			Timeout:    getDurationOrDefault("API_TIMEOUT", 30*time.Second),
		},
		Session: SessionConfig{
			Secret:        getEnvOrDefault("SESSION_SECRET", ""),
			Store:         strings.ToLower(getEnvOrDefault("SESSION_STORE", SessionStoreMemory)),
			CookieName:    getEnvOrDefault("SESSION_COOKIE", "ach_session"),
			IdleTTL:       getDurationOrDefault("WORKSPACE_IDLE_TTL", 2*time.Hour),
			PersistTTL:    getDurationOrDefault("SESSION_PERSIST_TTL", 7*24*time.Hour),
			PollInterval:  getDurationOrDefault("POLL_INTERVAL", 30*time.Second),
			FocusWindow:   getDurationOrDefault("FOCUS_WINDOW", 2*time.Minute),
			LoginRate:     getFloatOrDefault("LOGIN_RATE_LIMIT", 0.2),
			LoginBurst:    getIntOrDefault("LOGIN_RATE_BURST", 5),
			SecureCookies: getBoolOrDefault("SECURE_COOKIES", false),
		},
		Routes: RoutesConfig{
			LoginPath:       getEnvOrDefault("LOGIN_PATH", "/login"),
			ProtectedRoutes: getListOrDefault("PROTECTED_ROUTES", defaultProtectedRoutes),
		},
		Observability: ObservabilityConfig{
			ServiceName: getEnvOrDefault("SERVICE_NAME", "ach-dashboard"),
			MetricsAddr: getEnvOrDefault("METRICS_ADDR", ":9092"),
			PprofAddr:   getEnvOrDefault("PPROF_ADDR", ":6060"),
			LogLevel:    getEnvOrDefault("LOG_LEVEL", "info"),
		},
		ServerPort: getEnvOrDefault("SERVER_PORT", "3000"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the combinations Load cannot default its way out of.
func (c *Config) Validate() error {
	if len(c.Session.Secret) < 32 {
		return fmt.Errorf("SESSION_SECRET must be at least 32 characters")
	}
	switch c.Session.Store {
	case SessionStoreMemory:
	case SessionStorePostgres:
		if c.Repositories.Postgres.Password == "" {
			return fmt.Errorf("POSTGRES_PASSWORD environment variable is required when SESSION_STORE=postgres")
		}
	default:
		return fmt.Errorf("unknown SESSION_STORE %q", c.Session.Store)
	}
	if !strings.HasPrefix(c.Backend.APIBaseURL, "http://") && !strings.HasPrefix(c.Backend.APIBaseURL, "https://") {
		return fmt.Errorf("API base URL %q must be absolute", c.Backend.APIBaseURL)
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func firstEnv(keys []string, defaultValue string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			return v
		}
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}

func getIntOrDefault(key string, defaultValue int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}

func getFloatOrDefault(key string, defaultValue float64) float64 {
	f, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil || f <= 0 {
		return defaultValue
	}
	return f
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	b, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return b
}

func getListOrDefault(key string, defaultValue []string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
