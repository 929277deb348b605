// Package config отвечает за:
// - чтение server.yaml
// - подстановку переменных окружения вида ${DATABASE_DSN}
// - проставление дефолтов
// - валидацию (чтобы сервер не стартовал с дырявыми настройками)
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/IvanChernomyrdin/go-yandex-vaxreport/internal/shared/logger"
)

// Config — корневая структура всего конфига сервера.
type Config struct {
	Env           string              `yaml:"env"` // dev|stage|prod
	Server        ServerConfig        `yaml:"server"`
	TLS           TLSConfig           `yaml:"tls"`
	DB            DBConfig            `yaml:"db"`
	Migrations    MigrationsConfig    `yaml:"migrations"`
	Sessions      SessionsConfig      `yaml:"sessions"`
	Password      PasswordConfig      `yaml:"password"`
	Reports       ReportsConfig       `yaml:"reports"`
	Log           LogConfig           `yaml:"log"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig — настройки HTTP-сервера.
type ServerConfig struct {
	Host              string        `yaml:"host"`
	Port              int           `yaml:"port"`
	ReadTimeout       time.Duration `yaml:"read_timeout"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	WriteTimeout      time.Duration `yaml:"write_timeout"`
	IdleTimeout       time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"` // время на graceful shutdown
	MaxHeaderBytes    int           `yaml:"max_header_bytes"` // лимит размера заголовков
	MaxBodyBytes      int64         `yaml:"max_body_bytes"`   // лимит размера тела формы
}

// TLSConfig — настройки HTTPS. Для формы за reverse-proxy TLS можно выключить.
type TLSConfig struct {
	Enabled  bool   `yaml:"enabled"`
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

// DBConfig — настройки подключения к базе данных.
type DBConfig struct {
	DSN             string        `yaml:"dsn"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time"`
}

// MigrationsConfig — настройки миграций БД.
type MigrationsConfig struct {
	Enabled bool   `yaml:"enabled"` // применять миграции при старте serve
	Path    string `yaml:"path"`    // source URL, например file://migrations/postgres
}

// SessionsConfig — настройки серверных сессий.
type SessionsConfig struct {
	Store        string      `yaml:"store"` // db|redis
	CookieName   string      `yaml:"cookie_name"`
	CookieSecure bool        `yaml:"cookie_secure"`
	Redis        RedisConfig `yaml:"redis"`
}

// RedisConfig — подключение к redis для store=redis.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"` // 0 — сессия живёт до logout
}

// PasswordConfig — настройки хэширования паролей пользователей.
type PasswordConfig struct {
	Hasher string       `yaml:"hasher"` // argon2id|bcrypt
	Argon2 Argon2Config `yaml:"argon2"`
	Bcrypt BcryptConfig `yaml:"bcrypt"`
}

// Argon2Config — параметры argon2id.
type Argon2Config struct {
	Time      uint32 `yaml:"time"`
	MemoryKiB uint32 `yaml:"memory_kib"`
	Threads   uint8  `yaml:"threads"`
	KeyLen    uint32 `yaml:"key_len"`
	SaltLen   uint32 `yaml:"salt_len"`
}

// BcryptConfig — параметры bcrypt.
type BcryptConfig struct {
	Cost int `yaml:"cost"`
}

// ReportsConfig — параметры выдачи отчётов.
type ReportsConfig struct {
	HomeLimit int `yaml:"home_limit"` // сколько последних отчётов на главной
}

// LogConfig — настройки логирования (zap).
type LogConfig struct {
	Level      string `yaml:"level"`  // debug|info|warn|error
	Format     string `yaml:"format"` // json|console
	Dir        string `yaml:"dir"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// Options переводит секцию log в параметры пакета logger.
func (l LogConfig) Options() logger.Options {
	return logger.Options{
		Dir:        l.Dir,
		File:       l.File,
		Level:      l.Level,
		Format:     l.Format,
		MaxSizeMB:  l.MaxSizeMB,
		MaxBackups: l.MaxBackups,
		MaxAgeDays: l.MaxAgeDays,
		Compress:   l.Compress,
	}
}

// ObservabilityConfig — метрики.
type ObservabilityConfig struct {
	Metrics MetricsConfig `yaml:"metrics"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Load читает YAML, подставляет переменные окружения вида ${VAR},
// затем парсит в структуру, проставляет дефолты и валидирует.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("не удалось прочитать конфиг: %w", err)
	}

	// dsn: "${DATABASE_DSN}" -> dsn: "postgres://..."
	expanded := ExpandEnvStrict(string(raw))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("не удалось распарсить yaml: %w", err)
	}

	ApplyDefaults(&cfg)
	cfg.ApplyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var envPlaceholder = regexp.MustCompile(`\$\{([A-Z0-9_]+)\}`)

// ExpandEnvStrict заменяет ${VAR} на значение из окружения.
// Если переменная не задана, оставляем ${VAR} как есть,
// а потом Validate() упадёт с понятной ошибкой.
func ExpandEnvStrict(s string) string {
	return envPlaceholder.ReplaceAllStringFunc(s, func(m string) string {
		sub := envPlaceholder.FindStringSubmatch(m)
		if len(sub) != 2 {
			return m
		}
		if val, ok := os.LookupEnv(sub[1]); ok {
			return val
		}
		return m
	})
}

// ApplyDefaults — дефолтные значения, если в yaml поле не задано.
func ApplyDefaults(cfg *Config) {
	if cfg.Env == "" {
		cfg.Env = "dev"
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}
	if cfg.Server.MaxBodyBytes == 0 {
		cfg.Server.MaxBodyBytes = 1 << 20
	}
	if cfg.Migrations.Path == "" {
		cfg.Migrations.Path = "file://migrations/postgres"
	}
	if cfg.Sessions.Store == "" {
		cfg.Sessions.Store = "db"
	}
	if cfg.Sessions.CookieName == "" {
		cfg.Sessions.CookieName = "session"
	}
	if cfg.Password.Hasher == "" {
		cfg.Password.Hasher = "argon2id"
	}
	a := &cfg.Password.Argon2
	if a.Time == 0 {
		a.Time = 3
	}
	if a.MemoryKiB == 0 {
		a.MemoryKiB = 64 * 1024
	}
	if a.Threads == 0 {
		a.Threads = 2
	}
	if a.KeyLen == 0 {
		a.KeyLen = 32
	}
	if a.SaltLen == 0 {
		a.SaltLen = 16
	}
	if cfg.Reports.HomeLimit == 0 {
		cfg.Reports.HomeLimit = 100
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Observability.Metrics.Path == "" {
		cfg.Observability.Metrics.Path = "/metrics"
	}
}

// Validate проверяет, что конфиг заполнен корректно и безопасно.
// При ошибке сервер НЕ стартует.
func (c *Config) Validate() error {
	if c.Server.Host == "" {
		return errors.New("server.host обязателен")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port некорректен: %d", c.Server.Port)
	}

	if c.TLS.Enabled && (c.TLS.CertFile == "" || c.TLS.KeyFile == "") {
		return errors.New("tls.cert_file и tls.key_file обязательны при tls.enabled=true")
	}

	dsn := strings.TrimSpace(c.DB.DSN)
	if dsn == "" {
		return errors.New("db.dsn обязателен")
	}
	// ${DATABASE_DSN} не подставился: переменная окружения не задана
	if envPlaceholder.MatchString(dsn) {
		return fmt.Errorf("db.dsn содержит неподставленную переменную: %q", dsn)
	}

	switch c.Sessions.Store {
	case "db":
	case "redis":
		if c.Sessions.Redis.Addr == "" {
			return errors.New("sessions.redis.addr обязателен при sessions.store=redis")
		}
		if c.Sessions.Redis.TTL < 0 {
			return errors.New("sessions.redis.ttl не может быть отрицательным")
		}
	default:
		return fmt.Errorf("sessions.store должен быть db|redis (сейчас %q)", c.Sessions.Store)
	}

	// Хэширование паролей
	switch strings.ToLower(c.Password.Hasher) {
	case "argon2id":
		if c.Password.Argon2.Time == 0 || c.Password.Argon2.MemoryKiB == 0 || c.Password.Argon2.Threads == 0 {
			return errors.New("password.argon2 должен быть настроен для argon2id")
		}
	case "bcrypt":
		if c.Password.Bcrypt.Cost == 0 {
			return errors.New("password.bcrypt.cost должен быть задан для bcrypt")
		}
	default:
		return fmt.Errorf("password.hasher должен быть argon2id|bcrypt (сейчас %q)", c.Password.Hasher)
	}

	if c.Reports.HomeLimit <= 0 {
		return errors.New("reports.home_limit должен быть > 0")
	}

	if c.Observability.Metrics.Enabled && !strings.HasPrefix(c.Observability.Metrics.Path, "/") {
		return fmt.Errorf("observability.metrics.path должен начинаться с / (сейчас %q)", c.Observability.Metrics.Path)
	}

	return nil
}

// ApplyEnvOverrides даёт возможность переопределять
// некоторые настройки через переменные окружения без ${...} в yaml.
// Например SERVER_PORT=9090 переопределит server.port.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("SERVER_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil && p > 0 {
			c.Server.Port = p
		}
	}
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		c.DB.DSN = v
	}
}

// Addr возвращает адрес host:port для http.Server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
