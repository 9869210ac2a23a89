package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config aggregates application configuration values.
type Config struct {
	HTTP    HTTPConfig
	Graph   GraphConfig
	Logging LoggingConfig
	Cache   CacheConfig
	History HistoryConfig
	Engine  EngineConfig
}

// HTTPConfig governs HTTP server behaviour.
type HTTPConfig struct {
	Host              string
	Port              int
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
	MetricsEnabled    bool
	AllowedOriginsCSV string
	MaxDocumentBytes  int64
}

// GraphConfig describes connectivity to the Neo4j property graph.
type GraphConfig struct {
	URI            string
	Database       string
	Username       string
	Password       string
	MaxConnections int
	AcquireTimeout time.Duration
	MaxRetryTime   time.Duration
}

// LoggingConfig controls structured logging settings.
type LoggingConfig struct {
	Level         string
	Format        string // text|json
	Output        string // stdout|stderr
	IncludeCaller bool
}

// CacheConfig points at the Redis instance caching analyses. An empty URL
// keeps the cache in process memory.
type CacheConfig struct {
	RedisURL string
	TTL      time.Duration
}

// HistoryConfig selects the SQL store recording every analysis.
type HistoryConfig struct {
	Driver string // postgres|sqlite
	DSN    string
}

// EngineConfig tunes the reconstruction heuristics.
type EngineConfig struct {
	BackfillWindow       int
	StaleAfter           time.Duration
	RecentTransferWindow time.Duration
	Workers              int
}

const (
	defaultHost                 = "0.0.0.0"
	defaultPort                 = 8080
	defaultReadTimeout          = 10 * time.Second
	defaultWriteTimeout         = 15 * time.Second
	defaultIdleTimeout          = 60 * time.Second
	defaultShutdownTimeout      = 10 * time.Second
	defaultMaxDocumentBytes     = 4 << 20
	defaultLoggingLevel         = "info"
	defaultLoggingFormat        = "text"
	defaultLoggingOutput        = "stdout"
	defaultGraphMaxSessions     = 10
	defaultGraphAcquireTimeout  = 30 * time.Second
	defaultGraphMaxRetryTime    = 15 * time.Second
	defaultCacheTTL             = 24 * time.Hour
	defaultHistoryDriver        = "sqlite"
	defaultHistoryDSN           = "file:registry-history.db"
	defaultBackfillWindow       = 120
	defaultStaleAfter           = 30 * 24 * time.Hour
	defaultRecentTransferWindow = 90 * 24 * time.Hour
	defaultWorkers              = 4
)

// fileConfig mirrors the optional YAML file named by CONFIG_FILE. Environment
// variables take precedence over anything it sets.
type fileConfig struct {
	Server struct {
		Host             string `yaml:"host"`
		Port             int    `yaml:"port"`
		MetricsEnabled   *bool  `yaml:"metrics_enabled"`
		AllowedOrigins   string `yaml:"allowed_origins"`
		MaxDocumentBytes int64  `yaml:"max_document_bytes"`
	} `yaml:"server"`
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"logging"`
	Graph struct {
		URI      string `yaml:"uri"`
		Database string `yaml:"database"`
		Username string `yaml:"username"`
	} `yaml:"graph"`
	Cache struct {
		RedisURL string `yaml:"redis_url"`
		TTL      string `yaml:"ttl"`
	} `yaml:"cache"`
	History struct {
		Driver string `yaml:"driver"`
		DSN    string `yaml:"dsn"`
	} `yaml:"history"`
	Engine struct {
		BackfillWindow       int    `yaml:"backfill_window"`
		StaleAfter           string `yaml:"stale_after"`
		RecentTransferWindow string `yaml:"recent_transfer_window"`
		Workers              int    `yaml:"workers"`
	} `yaml:"engine"`
}

// Load reads configuration from the optional CONFIG_FILE and then from
// environment variables, applying defaults.
func Load() (Config, error) {
	var file fileConfig
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		loaded, err := readFile(path)
		if err != nil {
			return Config{}, err
		}
		file = loaded
	}

	cfg := Config{
		HTTP: HTTPConfig{
			Host:             valueOrDefault("SERVER_HOST", stringOr(file.Server.Host, defaultHost)),
			ReadTimeout:      defaultReadTimeout,
			WriteTimeout:     defaultWriteTimeout,
			IdleTimeout:      defaultIdleTimeout,
			ShutdownTimeout:  defaultShutdownTimeout,
			MaxDocumentBytes: int64(parseIntWithDefault("SERVER_MAX_DOCUMENT_BYTES", int(int64Or(file.Server.MaxDocumentBytes, defaultMaxDocumentBytes)))),
		},
		Logging: LoggingConfig{
			Level:         valueOrDefault("LOG_LEVEL", stringOr(file.Logging.Level, defaultLoggingLevel)),
			Format:        valueOrDefault("LOG_FORMAT", stringOr(file.Logging.Format, defaultLoggingFormat)),
			Output:        valueOrDefault("LOG_OUTPUT", stringOr(file.Logging.Output, defaultLoggingOutput)),
			IncludeCaller: parseBoolWithDefault("LOG_INCLUDE_CALLER", false),
		},
		Graph: GraphConfig{
			URI:            valueOrDefault("GRAPH_URI", file.Graph.URI),
			Database:       valueOrDefault("GRAPH_DATABASE", file.Graph.Database),
			Username:       valueOrDefault("GRAPH_USERNAME", file.Graph.Username),
			Password:       os.Getenv("GRAPH_PASSWORD"),
			MaxConnections: parseIntWithDefault("GRAPH_MAX_CONNECTIONS", defaultGraphMaxSessions),
		},
		Cache: CacheConfig{
			RedisURL: valueOrDefault("REDIS_URL", file.Cache.RedisURL),
		},
		History: HistoryConfig{
			Driver: valueOrDefault("HISTORY_DRIVER", stringOr(file.History.Driver, defaultHistoryDriver)),
			DSN:    valueOrDefault("HISTORY_DSN", stringOr(file.History.DSN, defaultHistoryDSN)),
		},
		Engine: EngineConfig{
			BackfillWindow: parseIntWithDefault("ENGINE_BACKFILL_WINDOW", intOr(file.Engine.BackfillWindow, defaultBackfillWindow)),
			Workers:        parseIntWithDefault("ENGINE_WORKERS", intOr(file.Engine.Workers, defaultWorkers)),
		},
	}

	port, err := parsePort("SERVER_PORT", intOr(file.Server.Port, defaultPort))
	if err != nil {
		return Config{}, err
	}
	cfg.HTTP.Port = port

	durations := []struct {
		key    string
		file   string
		target *time.Duration
		def    time.Duration
	}{
		{"SERVER_READ_TIMEOUT", "", &cfg.HTTP.ReadTimeout, defaultReadTimeout},
		{"SERVER_WRITE_TIMEOUT", "", &cfg.HTTP.WriteTimeout, defaultWriteTimeout},
		{"SERVER_IDLE_TIMEOUT", "", &cfg.HTTP.IdleTimeout, defaultIdleTimeout},
		{"SERVER_SHUTDOWN_TIMEOUT", "", &cfg.HTTP.ShutdownTimeout, defaultShutdownTimeout},
		{"GRAPH_ACQUIRE_TIMEOUT", "", &cfg.Graph.AcquireTimeout, defaultGraphAcquireTimeout},
		{"GRAPH_MAX_RETRY_TIME", "", &cfg.Graph.MaxRetryTime, defaultGraphMaxRetryTime},
		{"CACHE_TTL", file.Cache.TTL, &cfg.Cache.TTL, defaultCacheTTL},
		{"ENGINE_STALE_AFTER", file.Engine.StaleAfter, &cfg.Engine.StaleAfter, defaultStaleAfter},
		{"ENGINE_RECENT_TRANSFER_WINDOW", file.Engine.RecentTransferWindow, &cfg.Engine.RecentTransferWindow, defaultRecentTransferWindow},
	}
	for _, d := range durations {
		v, err := parseDuration(d.key, d.file, d.def)
		if err != nil {
			return Config{}, err
		}
		*d.target = v
	}

	metricsDefault := false
	if file.Server.MetricsEnabled != nil {
		metricsDefault = *file.Server.MetricsEnabled
	}
	cfg.HTTP.MetricsEnabled = parseBoolWithDefault("SERVER_METRICS_ENABLED", metricsDefault)
	cfg.HTTP.AllowedOriginsCSV = valueOrDefault("SERVER_ALLOWED_ORIGINS", file.Server.AllowedOrigins)

	switch cfg.History.Driver {
	case "postgres", "sqlite":
	default:
		return Config{}, fmt.Errorf("unsupported HISTORY_DRIVER %q", cfg.History.Driver)
	}

	return cfg, nil
}

func readFile(path string) (fileConfig, error) {
	var file fileConfig
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return file, nil
		}
		return file, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return file, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return file, nil
}

func valueOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func stringOr(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}

func intOr(v, fallback int) int {
	if v != 0 {
		return v
	}
	return fallback
}

func int64Or(v, fallback int64) int64 {
	if v != 0 {
		return v
	}
	return fallback
}

func parseBoolWithDefault(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		val, err := strconv.ParseBool(v)
		if err != nil {
			return fallback
		}
		return val
	}
	return fallback
}

func parseIntWithDefault(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if val, err := strconv.Atoi(v); err == nil {
			return val
		}
	}
	return fallback
}

func parseDuration(key, fileValue string, fallback time.Duration) (time.Duration, error) {
	v := valueOrDefault(key, fileValue)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func parsePort(key string, fallback int) (int, error) {
	if v := os.Getenv(key); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s value %q: %w", key, v, err)
		}
		if port <= 0 || port > 65535 {
			return 0, fmt.Errorf("port %d is out of range", port)
		}
		return port, nil
	}
	return fallback, nil
}
