// pkg/config/config.go
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config - главная структура конфигурации
type Config struct {
	App      AppConfig      `koanf:"app"`
	GRPC     GRPCConfig     `koanf:"grpc"`
	HTTP     HTTPConfig     `koanf:"http"`
	Log      LogConfig      `koanf:"log"`
	Metrics  MetricsConfig  `koanf:"metrics"`
	Tracing  TracingConfig  `koanf:"tracing"`
	Services ServicesConfig `koanf:"services"`
	Database DatabaseConfig `koanf:"database"`
	Cache    CacheConfig    `koanf:"cache"`
	Retry    RetryConfig    `koanf:"retry"`
	Solver   SolverConfig   `koanf:"solver"`

	RateLimit RateLimitConfig `koanf:"rate_limit"`
}

// AppConfig - общие настройки приложения
type AppConfig struct {
	Name        string `koanf:"name" validate:"required"`
	Version     string `koanf:"version"`
	Environment string `koanf:"environment"` // development, staging, production
	Debug       bool   `koanf:"debug"`
}

// GRPCConfig - настройки gRPC сервера
type GRPCConfig struct {
	Port              int             `koanf:"port" validate:"min=1,max=65535"`
	MaxRecvMsgSize    int             `koanf:"max_recv_msg_size" validate:"gte=0"` // bytes
	MaxSendMsgSize    int             `koanf:"max_send_msg_size" validate:"gte=0"` // bytes
	MaxConcurrentConn int             `koanf:"max_concurrent_conn"`
	KeepAlive         KeepAliveConfig `koanf:"keepalive"`
	TLS               TLSConfig       `koanf:"tls"`
}

// KeepAliveConfig - настройки keep-alive
type KeepAliveConfig struct {
	MaxConnectionIdle     time.Duration `koanf:"max_connection_idle"`
	MaxConnectionAge      time.Duration `koanf:"max_connection_age"`
	MaxConnectionAgeGrace time.Duration `koanf:"max_connection_age_grace"`
	Time                  time.Duration `koanf:"time"`
	Timeout               time.Duration `koanf:"timeout"`
}

// TLSConfig - настройки TLS
type TLSConfig struct {
	Enabled  bool   `koanf:"enabled"`
	CertFile string `koanf:"cert_file" validate:"required_if=Enabled true"`
	KeyFile  string `koanf:"key_file" validate:"required_if=Enabled true"`
	CAFile   string `koanf:"ca_file"`
}

// HTTPConfig - настройки HTTP сервера (для gateway)
type HTTPConfig struct {
	Port            int           `koanf:"port" validate:"omitempty,min=1,max=65535"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	CORS            CORSConfig    `koanf:"cors"`
	Docs            DocsConfig    `koanf:"docs"`
}

// DocsConfig - Swagger UI и OpenAPI описание
type DocsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path" validate:"omitempty,startswith=/"`
	Title   string `koanf:"title"`
}

// CORSConfig - настройки CORS
type CORSConfig struct {
	Enabled          bool     `koanf:"enabled"`
	AllowedOrigins   []string `koanf:"allowed_origins"`
	AllowedMethods   []string `koanf:"allowed_methods"`
	AllowedHeaders   []string `koanf:"allowed_headers"`
	ExposedHeaders   []string `koanf:"exposed_headers"`
	AllowCredentials bool     `koanf:"allow_credentials"`
	MaxAge           int      `koanf:"max_age"`
}

// LogConfig - настройки логирования
type LogConfig struct {
	Level      string `koanf:"level"`                                                // debug, info, warn, error
	Format     string `koanf:"format" validate:"omitempty,oneof=json text"`          // json, text
	Output     string `koanf:"output" validate:"omitempty,oneof=stdout stderr file"` // stdout, stderr, file
	FilePath   string `koanf:"file_path" validate:"required_if=Output file"`         // путь к файлу логов
	MaxSize    int    `koanf:"max_size"`                                             // MB
	MaxBackups int    `koanf:"max_backups"`                                          // количество бэкапов
	MaxAge     int    `koanf:"max_age"`                                              // дней
	Compress   bool   `koanf:"compress"`
}

// MetricsConfig - настройки Prometheus метрик
type MetricsConfig struct {
	Enabled   bool   `koanf:"enabled"`
	Port      int    `koanf:"port" validate:"min=0,max=65535"`
	Path      string `koanf:"path"`
	Namespace string `koanf:"namespace"`
	Subsystem string `koanf:"subsystem"`
}

// TracingConfig - настройки OpenTelemetry
type TracingConfig struct {
	Enabled     bool    `koanf:"enabled"`
	Endpoint    string  `koanf:"endpoint" validate:"required_if=Enabled true"`
	ServiceName string  `koanf:"service_name"`
	SampleRate  float64 `koanf:"sample_rate" validate:"gte=0,lte=1"`
}

// ServicesConfig - адреса других сервисов
type ServicesConfig struct {
	Solver ServiceEndpoint `koanf:"solver"`
}

// ServiceEndpoint - конфигурация подключения к сервису
type ServiceEndpoint struct {
	Host          string        `koanf:"host"`
	Port          int           `koanf:"port" validate:"min=0,max=65535"`
	Timeout       time.Duration `koanf:"timeout"`
	MaxRetries    int           `koanf:"max_retries" validate:"gte=0"`
	RetryBackoff  time.Duration `koanf:"retry_backoff"`
	TLS           bool          `koanf:"tls"`
	LoadBalancing string        `koanf:"load_balancing" validate:"omitempty,oneof=round_robin pick_first"`
}

// Address возвращает полный адрес сервиса
func (s ServiceEndpoint) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig - настройки базы данных
type DatabaseConfig struct {
	Enabled         bool          `koanf:"enabled"`
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port" validate:"min=0,max=65535"`
	Database        string        `koanf:"database" validate:"required_if=Enabled true"`
	Username        string        `koanf:"username"`
	Password        string        `koanf:"password"`
	SSLMode         string        `koanf:"ssl_mode" validate:"omitempty,oneof=disable allow prefer require verify-ca verify-full"`
	MaxOpenConns    int           `koanf:"max_open_conns" validate:"gte=0"`
	MaxIdleConns    int           `koanf:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `koanf:"conn_max_idle_time"`
	AutoMigrate     bool          `koanf:"auto_migrate"`
}

// DSN возвращает строку подключения PostgreSQL
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.Username, d.Password, d.Database, d.SSLMode,
	)
}

// CacheConfig - настройки кэширования
type CacheConfig struct {
	Enabled    bool          `koanf:"enabled"`
	Driver     string        `koanf:"driver" validate:"omitempty,oneof=redis memory"`
	Host       string        `koanf:"host"`
	Port       int           `koanf:"port" validate:"min=0,max=65535"`
	Password   string        `koanf:"password"`
	DB         int           `koanf:"db" validate:"gte=0"`
	DefaultTTL time.Duration `koanf:"default_ttl"`
	MaxEntries int           `koanf:"max_entries" validate:"gte=0"` // для in-memory
}

// RateLimitConfig - бюджет решений на клиента в gateway
type RateLimitConfig struct {
	Enabled bool `koanf:"enabled"`
	// Requests - единиц стоимости на окно (Solve = 1, Compare = 2)
	Requests        int           `koanf:"requests" validate:"required_if=Enabled true,gte=0"`
	Window          time.Duration `koanf:"window" validate:"required_if=Enabled true,gte=0"`
	Backend         string        `koanf:"backend" validate:"omitempty,oneof=memory redis"`
	CleanupInterval time.Duration `koanf:"cleanup_interval"`
	RedisAddr       string        `koanf:"redis_addr"`
}

// Address возвращает адрес кэша
func (c CacheConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// RetryConfig конфигурация retry
type RetryConfig struct {
	MaxAttempts       int           `koanf:"max_attempts" validate:"gte=0"`
	InitialBackoff    time.Duration `koanf:"initial_backoff"`
	MaxBackoff        time.Duration `koanf:"max_backoff"`
	BackoffMultiplier float64       `koanf:"backoff_multiplier"`
}

// SolverConfig - настройки решателя
type SolverConfig struct {
	// DefaultMethod используется, когда метод в запросе не указан
	DefaultMethod string `koanf:"default_method"`
	// Лимиты размера графа, 0 - без ограничения
	MaxNodes int `koanf:"max_nodes" validate:"gte=0"`
	MaxEdges int `koanf:"max_edges" validate:"gte=0"`
	// Timeout ограничивает одно решение
	Timeout time.Duration `koanf:"timeout" validate:"gte=0"`
	// PersistTraces сохраняет каждую трассу, даже если клиент не просил
	PersistTraces bool          `koanf:"persist_traces"`
	CacheTTL      time.Duration `koanf:"cache_ttl" validate:"gte=0"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate проверяет конфигурацию
func (c *Config) Validate() error {
	var errs []string

	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("configuration validation failed: %w", err)
		}
		for _, fe := range verrs {
			errs = append(errs, fmt.Sprintf("%s failed on '%s'", fieldPath(fe.Namespace()), fe.Tag()))
		}
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		errs = append(errs, fmt.Sprintf("log.level must be one of: debug, info, warn, error, got %s", c.Log.Level))
	}

	// Метод решателя
	validMethods := map[string]bool{"": true, "gauss_seidel": true, "jacobi": true}
	if !validMethods[c.Solver.DefaultMethod] {
		errs = append(errs, fmt.Sprintf("solver.default_method must be one of: gauss_seidel, jacobi, got %s", c.Solver.DefaultMethod))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}

	return nil
}

// fieldPath превращает "Config.GRPC.Port" в "grpc.port"
func fieldPath(ns string) string {
	ns = strings.TrimPrefix(ns, "Config.")
	return strings.ToLower(ns)
}

// IsDevelopment проверяет режим разработки
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development" || c.App.Environment == "dev"
}

// IsProduction проверяет продакшн режим
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production" || c.App.Environment == "prod"
}
