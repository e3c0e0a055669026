// Package config загружает настройки сервера и клиента из флагов,
// переменных окружения MAPBOARD_* и необязательного файла конфигурации.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix префикс переменных окружения
const EnvPrefix = "MAPBOARD"

// Storage drivers
const (
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// Log содержит настройки логирования
type Log struct {
	Level  string
	Format string // text | json
}

// Server содержит настройки mapboard-server
type Server struct {
	Log             Log
	HTTPAddr        string
	StorageDriver   string
	StorageDSN      string
	AuthSecret      string
	Version         string
	TokenTTL        time.Duration
	RateLimitWindow time.Duration
	ShutdownTimeout time.Duration
	MaxBodyBytes    int64
	RateLimitWrites int
	MDNSEnabled     bool
}

// Client содержит настройки клиента mapboard
type Client struct {
	Log    Log
	Server string
	DB     string
	Page   string
	Token  string
	NodeID string
}

// New создает viper с префиксом окружения и заменой "." на "_"
// (ключ auth.secret читается из MAPBOARD_AUTH_SECRET)
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// SetServerDefaults задает значения по умолчанию для сервера
func SetServerDefaults(v *viper.Viper) {
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.max_body_bytes", 16<<20)
	v.SetDefault("http.shutdown_timeout", 10*time.Second)
	v.SetDefault("storage.driver", DriverSQLite)
	v.SetDefault("storage.dsn", "mapboard.db")
	v.SetDefault("auth.secret", "")
	v.SetDefault("auth.token_ttl", time.Duration(0))
	v.SetDefault("ratelimit.writes", 60)
	v.SetDefault("ratelimit.window", time.Minute)
	v.SetDefault("mdns.enabled", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// SetClientDefaults задает значения по умолчанию для клиента
func SetClientDefaults(v *viper.Viper) {
	v.SetDefault("server", "http://localhost:8080")
	v.SetDefault("db", "mapboard-client.db")
	v.SetDefault("page", "")
	v.SetDefault("token", "")
	v.SetDefault("node_id", "")
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "text")
}

// ReadFile читает файл конфигурации, если путь задан
func ReadFile(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return nil
}

// LoadServer собирает настройки сервера
func LoadServer(v *viper.Viper) (*Server, error) {
	cfg := &Server{
		HTTPAddr:        v.GetString("http.addr"),
		MaxBodyBytes:    v.GetInt64("http.max_body_bytes"),
		ShutdownTimeout: v.GetDuration("http.shutdown_timeout"),
		StorageDriver:   strings.ToLower(v.GetString("storage.driver")),
		StorageDSN:      v.GetString("storage.dsn"),
		AuthSecret:      v.GetString("auth.secret"),
		TokenTTL:        v.GetDuration("auth.token_ttl"),
		RateLimitWrites: v.GetInt("ratelimit.writes"),
		RateLimitWindow: v.GetDuration("ratelimit.window"),
		MDNSEnabled:     v.GetBool("mdns.enabled"),
		Log: Log{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
	}

	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http.addr is required")
	}
	switch cfg.StorageDriver {
	case DriverSQLite:
		if cfg.StorageDSN == "" {
			return nil, fmt.Errorf("storage.dsn is required for sqlite")
		}
	case DriverMemory:
	default:
		return nil, fmt.Errorf("unknown storage.driver %q", cfg.StorageDriver)
	}
	if cfg.AuthSecret != "" && len(cfg.AuthSecret) < 16 {
		return nil, fmt.Errorf("auth.secret must be at least 16 characters")
	}
	if cfg.RateLimitWrites > 0 && cfg.RateLimitWindow <= 0 {
		return nil, fmt.Errorf("ratelimit.window must be positive")
	}
	if _, err := ParseLevel(cfg.Log.Level); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadClient собирает настройки клиента
func LoadClient(v *viper.Viper) (*Client, error) {
	cfg := &Client{
		Server: strings.TrimRight(v.GetString("server"), "/"),
		DB:     v.GetString("db"),
		Page:   v.GetString("page"),
		Token:  v.GetString("token"),
		NodeID: v.GetString("node_id"),
		Log: Log{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
	}

	if cfg.DB == "" {
		return nil, fmt.Errorf("db path is required")
	}
	if _, err := ParseLevel(cfg.Log.Level); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ParseLevel переводит строку в уровень slog
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log.level %q: %w", s, err)
	}
	return level, nil
}

// NewLogger создает логгер по настройкам log.*
func (l Log) NewLogger(w io.Writer) (*slog.Logger, error) {
	level, err := ParseLevel(l.Level)
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: level}
	switch strings.ToLower(l.Format) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("unknown log.format %q", l.Format)
	}
}
