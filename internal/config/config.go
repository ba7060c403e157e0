package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type LookupFunc func(string) (string, bool)

type Profile string

const (
	ProfileDev  Profile = "dev"
	ProfileTest Profile = "test"
	ProfileProd Profile = "prod"
)

type SeedSource string

const (
	SeedSourceBuiltin     SeedSource = "builtin"
	SeedSourceParquet     SeedSource = "parquet"
	SeedSourceObjectStore SeedSource = "objectstore"
)

type Config struct {
	Profile       Profile
	Service       ServiceConfig
	HTTP          HTTPConfig
	Catalog       CatalogConfig
	Seed          SeedConfig
	ObjectStore   ObjectStoreConfig
	AI            AIConfig
	Chat          ChatConfig
	Widget        WidgetConfig
	Auth          AuthConfig
	Observability ObservabilityConfig
}

type ServiceConfig struct {
	Name string
}

type HTTPConfig struct {
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type CatalogConfig struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxIdleTime time.Duration
	ConnMaxLifetime time.Duration
	LockTimeout     time.Duration
	BusyTimeout     time.Duration
}

type SeedConfig struct {
	Source    SeedSource
	Path      string
	ObjectKey string
	OnStart   bool
}

type ObjectStoreConfig struct {
	Endpoint         string
	Region           string
	Bucket           string
	AccessKeyID      string
	SecretAccessKey  string
	UseSSL           bool
	Prefix           string
	AutoCreateBucket bool
}

type AIConfig struct {
	BaseURL           string
	APIKey            string
	Model             string
	Temperature       float64
	Timeout           time.Duration
	RequestsPerMinute int
	Burst             int
	PromptsFile       string
}

type ChatConfig struct {
	SessionTTL  time.Duration
	MaxSessions int
}

type WidgetConfig struct {
	AllowedOrigins []string
}

// AuthConfig guards the admin routes. AdminKeys uses the
// "key:name:role|role" list format; admin routes are disabled when empty.
type AuthConfig struct {
	AdminKeys string
}

type ObservabilityConfig struct {
	LogLevel slog.Level
	LogJSON  bool
	LogFile  string
}

func LoadFromEnv(serviceName string) (Config, error) {
	return Load(serviceName, os.LookupEnv)
}

func Load(serviceName string, lookup LookupFunc) (Config, error) {
	if lookup == nil {
		return Config{}, fmt.Errorf("lookup function is required")
	}

	profile := ProfileDev
	if raw, ok := lookup("PIZZABOT_PROFILE"); ok {
		profile = Profile(strings.ToLower(strings.TrimSpace(raw)))
	}
	if !isValidProfile(profile) {
		return Config{}, fmt.Errorf("invalid PIZZABOT_PROFILE: %q", profile)
	}

	cfg := defaultsForProfile(profile)
	if serviceName != "" {
		cfg.Service.Name = serviceName
	}

	// GROQ_API_KEY is the credential name used by existing deployments; the
	// prefixed key wins when both are set.
	if err := applyString(lookup, "GROQ_API_KEY", &cfg.AI.APIKey); err != nil {
		return Config{}, err
	}

	var seedSource string
	var allowedOrigins string
	appliers := []func() error{
		func() error { return applyString(lookup, "PIZZABOT_SERVICE_NAME", &cfg.Service.Name) },
		func() error { return applyString(lookup, "PIZZABOT_HTTP_ADDR", &cfg.HTTP.Address) },
		func() error { return applyDuration(lookup, "PIZZABOT_HTTP_READ_TIMEOUT", &cfg.HTTP.ReadTimeout) },
		func() error { return applyDuration(lookup, "PIZZABOT_HTTP_WRITE_TIMEOUT", &cfg.HTTP.WriteTimeout) },
		func() error { return applyDuration(lookup, "PIZZABOT_HTTP_IDLE_TIMEOUT", &cfg.HTTP.IdleTimeout) },
		func() error { return applyString(lookup, "PIZZABOT_CATALOG_DRIVER", &cfg.Catalog.Driver) },
		func() error { return applyString(lookup, "PIZZABOT_CATALOG_DSN", &cfg.Catalog.DSN) },
		func() error { return applyInt(lookup, "PIZZABOT_CATALOG_MAX_OPEN_CONNS", &cfg.Catalog.MaxOpenConns) },
		func() error { return applyInt(lookup, "PIZZABOT_CATALOG_MAX_IDLE_CONNS", &cfg.Catalog.MaxIdleConns) },
		func() error {
			return applyDuration(lookup, "PIZZABOT_CATALOG_CONN_MAX_IDLE_TIME", &cfg.Catalog.ConnMaxIdleTime)
		},
		func() error {
			return applyDuration(lookup, "PIZZABOT_CATALOG_CONN_MAX_LIFETIME", &cfg.Catalog.ConnMaxLifetime)
		},
		func() error { return applyDuration(lookup, "PIZZABOT_CATALOG_LOCK_TIMEOUT", &cfg.Catalog.LockTimeout) },
		func() error { return applyDuration(lookup, "PIZZABOT_CATALOG_BUSY_TIMEOUT", &cfg.Catalog.BusyTimeout) },
		func() error { return applyString(lookup, "PIZZABOT_SEED_SOURCE", &seedSource) },
		func() error { return applyString(lookup, "PIZZABOT_SEED_PATH", &cfg.Seed.Path) },
		func() error { return applyString(lookup, "PIZZABOT_SEED_OBJECT_KEY", &cfg.Seed.ObjectKey) },
		func() error { return applyBool(lookup, "PIZZABOT_SEED_ON_START", &cfg.Seed.OnStart) },
		func() error { return applyString(lookup, "PIZZABOT_OBJECTSTORE_ENDPOINT", &cfg.ObjectStore.Endpoint) },
		func() error { return applyString(lookup, "PIZZABOT_OBJECTSTORE_REGION", &cfg.ObjectStore.Region) },
		func() error { return applyString(lookup, "PIZZABOT_OBJECTSTORE_BUCKET", &cfg.ObjectStore.Bucket) },
		func() error {
			return applyString(lookup, "PIZZABOT_OBJECTSTORE_ACCESS_KEY", &cfg.ObjectStore.AccessKeyID)
		},
		func() error {
			return applyString(lookup, "PIZZABOT_OBJECTSTORE_SECRET_KEY", &cfg.ObjectStore.SecretAccessKey)
		},
		func() error { return applyBool(lookup, "PIZZABOT_OBJECTSTORE_USE_SSL", &cfg.ObjectStore.UseSSL) },
		func() error { return applyString(lookup, "PIZZABOT_OBJECTSTORE_PREFIX", &cfg.ObjectStore.Prefix) },
		func() error {
			return applyBool(lookup, "PIZZABOT_OBJECTSTORE_AUTO_CREATE_BUCKET", &cfg.ObjectStore.AutoCreateBucket)
		},
		func() error { return applyString(lookup, "PIZZABOT_AI_BASE_URL", &cfg.AI.BaseURL) },
		func() error { return applyString(lookup, "PIZZABOT_AI_API_KEY", &cfg.AI.APIKey) },
		func() error { return applyString(lookup, "PIZZABOT_AI_MODEL", &cfg.AI.Model) },
		func() error { return applyFloat(lookup, "PIZZABOT_AI_TEMPERATURE", &cfg.AI.Temperature) },
		func() error { return applyDuration(lookup, "PIZZABOT_AI_TIMEOUT", &cfg.AI.Timeout) },
		func() error { return applyInt(lookup, "PIZZABOT_AI_REQUESTS_PER_MINUTE", &cfg.AI.RequestsPerMinute) },
		func() error { return applyInt(lookup, "PIZZABOT_AI_BURST", &cfg.AI.Burst) },
		func() error { return applyString(lookup, "PIZZABOT_PROMPTS_FILE", &cfg.AI.PromptsFile) },
		func() error { return applyDuration(lookup, "PIZZABOT_CHAT_SESSION_TTL", &cfg.Chat.SessionTTL) },
		func() error { return applyInt(lookup, "PIZZABOT_CHAT_MAX_SESSIONS", &cfg.Chat.MaxSessions) },
		func() error { return applyString(lookup, "PIZZABOT_WIDGET_ALLOWED_ORIGINS", &allowedOrigins) },
		func() error { return applyString(lookup, "PIZZABOT_ADMIN_KEYS", &cfg.Auth.AdminKeys) },
		func() error { return applyBool(lookup, "PIZZABOT_LOG_JSON", &cfg.Observability.LogJSON) },
		func() error { return applyLogLevel(lookup, "PIZZABOT_LOG_LEVEL", &cfg.Observability.LogLevel) },
		func() error { return applyString(lookup, "PIZZABOT_LOG_FILE", &cfg.Observability.LogFile) },
	}
	for _, apply := range appliers {
		if err := apply(); err != nil {
			return Config{}, err
		}
	}

	if seedSource != "" {
		cfg.Seed.Source = SeedSource(strings.ToLower(seedSource))
	}
	if allowedOrigins != "" {
		cfg.Widget.AllowedOrigins = splitList(allowedOrigins)
	}
	cfg.Catalog.Driver = strings.ToLower(cfg.Catalog.Driver)

	if cfg.Service.Name == "" {
		return Config{}, fmt.Errorf("service name is required")
	}
	if cfg.HTTP.Address == "" {
		return Config{}, fmt.Errorf("http address is required")
	}
	if !isValidDriver(cfg.Catalog.Driver) {
		return Config{}, fmt.Errorf("invalid PIZZABOT_CATALOG_DRIVER: %q", cfg.Catalog.Driver)
	}
	if !isValidSeedSource(cfg.Seed.Source) {
		return Config{}, fmt.Errorf("invalid PIZZABOT_SEED_SOURCE: %q", cfg.Seed.Source)
	}
	if cfg.Catalog.LockTimeout <= 0 {
		return Config{}, fmt.Errorf("PIZZABOT_CATALOG_LOCK_TIMEOUT must be positive")
	}
	if cfg.AI.Timeout <= 0 {
		return Config{}, fmt.Errorf("PIZZABOT_AI_TIMEOUT must be positive")
	}
	return cfg, nil
}

func defaultsForProfile(profile Profile) Config {
	cfg := Config{
		Profile: profile,
		Service: ServiceConfig{Name: "pizzabot"},
		HTTP: HTTPConfig{
			Address:      ":8080",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 90 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Catalog: CatalogConfig{
			Driver:          "sqlite3",
			DSN:             "pizzas.db",
			MaxOpenConns:    10,
			MaxIdleConns:    10,
			ConnMaxIdleTime: 5 * time.Minute,
			ConnMaxLifetime: 30 * time.Minute,
			LockTimeout:     30 * time.Second,
			BusyTimeout:     5 * time.Second,
		},
		Seed: SeedConfig{
			Source:    SeedSourceBuiltin,
			Path:      "pizzas.parquet",
			ObjectKey: "seed/pizzas.parquet",
			OnStart:   true,
		},
		ObjectStore: ObjectStoreConfig{
			Endpoint:         "localhost:9000",
			Region:           "us-east-1",
			Bucket:           "pizzabot",
			AccessKeyID:      "minio",
			SecretAccessKey:  "miniostorage",
			UseSSL:           false,
			Prefix:           "",
			AutoCreateBucket: true,
		},
		AI: AIConfig{
			BaseURL:           "https://api.groq.com/openai/v1",
			Model:             "llama3-70b-8192",
			Temperature:       0,
			Timeout:           30 * time.Second,
			RequestsPerMinute: 30,
			Burst:             5,
		},
		Chat: ChatConfig{
			SessionTTL:  30 * time.Minute,
			MaxSessions: 1000,
		},
		Widget: WidgetConfig{
			AllowedOrigins: []string{"*"},
		},
		Observability: ObservabilityConfig{
			LogLevel: slog.LevelDebug,
			LogJSON:  true,
		},
	}

	switch profile {
	case ProfileTest:
		cfg.HTTP.Address = ":18080"
		cfg.Catalog.DSN = "file::memory:?cache=shared"
		cfg.Observability.LogLevel = slog.LevelWarn
	case ProfileProd:
		cfg.Observability.LogLevel = slog.LevelInfo
		cfg.Observability.LogFile = "LOGs_pizzabot.log"
		cfg.ObjectStore.UseSSL = true
		cfg.ObjectStore.AutoCreateBucket = false
	}

	return cfg
}

func isValidProfile(profile Profile) bool {
	switch profile {
	case ProfileDev, ProfileTest, ProfileProd:
		return true
	default:
		return false
	}
}

func isValidDriver(driver string) bool {
	switch driver {
	case "sqlite3", "pgx", "duckdb":
		return true
	default:
		return false
	}
}

func isValidSeedSource(source SeedSource) bool {
	switch source {
	case SeedSourceBuiltin, SeedSourceParquet, SeedSourceObjectStore:
		return true
	default:
		return false
	}
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func applyString(lookup LookupFunc, key string, dst *string) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	*dst = strings.TrimSpace(raw)
	return nil
}

func applyDuration(lookup LookupFunc, key string, dst *time.Duration) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyBool(lookup LookupFunc, key string, dst *bool) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyInt(lookup LookupFunc, key string, dst *int) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyFloat(lookup LookupFunc, key string, dst *float64) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyLogLevel(lookup LookupFunc, key string, dst *slog.Level) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	level := strings.ToLower(strings.TrimSpace(raw))
	switch level {
	case "debug":
		*dst = slog.LevelDebug
	case "info":
		*dst = slog.LevelInfo
	case "warn", "warning":
		*dst = slog.LevelWarn
	case "error":
		*dst = slog.LevelError
	default:
		return fmt.Errorf("invalid %s: %q", key, raw)
	}
	return nil
}
