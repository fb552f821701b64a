package internal

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

const MinSecretIterations = 120000

type Config struct {
	Env           string              `mapstructure:"env"`
	Server        ServerConfig        `mapstructure:"http_server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Security      SecurityConfig      `mapstructure:"security"`
	Permissions   PermissionsConfig   `mapstructure:"permissions"`
	Notification  NotificationConfig  `mapstructure:"notification"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

type ServerConfig struct {
	Port              int           `mapstructure:"port"`
	BaseURL           string        `mapstructure:"base_url"`
	AllowedOrigins    string        `mapstructure:"allowed_origins"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
}

const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
)

type DatabaseConfig struct {
	Driver           string        `mapstructure:"driver"`
	Source           string        `mapstructure:"source"`
	Name             string        `mapstructure:"name"`
	MaxOpenConns     int           `mapstructure:"max_open_conns"`
	MaxIdleConns     int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime  time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime  time.Duration `mapstructure:"conn_max_idle_time"`
	OperationTimeout time.Duration `mapstructure:"operation_timeout"`
}

type SecurityConfig struct {
	SessionTTL          time.Duration `mapstructure:"session_ttl"`
	SecretIterations    int           `mapstructure:"secret_iterations"`
	TempCredentialBytes int           `mapstructure:"temp_credential_bytes"`
}

const (
	UnknownRoleEmployee = "employee"
	UnknownRoleDeny     = "deny"
)

type PermissionsConfig struct {
	UnknownRole string              `mapstructure:"unknown_role"`
	Roles       map[string][]string `mapstructure:"roles"`
}

type NotificationConfig struct {
	FanOutWorkers int `mapstructure:"fanout_workers"`
	QueueSize     int `mapstructure:"queue_size"`
	PageSize      int `mapstructure:"page_size"`
}

type ObservabilityConfig struct {
	Logging LoggingConfig `mapstructure:"logging"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ----------------- DEFAULTS -----------------

func (c *Config) ApplyDefaults() {
	if c.Env == "" {
		c.Env = "development"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Database.Driver == "" {
		c.Database.Driver = DriverMongo
	}
	if c.Database.Name == "" {
		c.Database.Name = "office_hr"
	}
	if c.Database.OperationTimeout <= 0 {
		c.Database.OperationTimeout = 5 * time.Second
	}
	if c.Security.SessionTTL <= 0 {
		c.Security.SessionTTL = 7 * 24 * time.Hour
	}
	if c.Security.SecretIterations == 0 {
		c.Security.SecretIterations = MinSecretIterations
	}
	if c.Security.TempCredentialBytes == 0 {
		c.Security.TempCredentialBytes = 12
	}
	if c.Permissions.UnknownRole == "" {
		c.Permissions.UnknownRole = UnknownRoleEmployee
	}
	if c.Notification.FanOutWorkers == 0 {
		c.Notification.FanOutWorkers = 4
	}
	if c.Notification.QueueSize == 0 {
		c.Notification.QueueSize = 256
	}
	if c.Notification.PageSize == 0 {
		c.Notification.PageSize = 200
	}
	if c.Observability.Logging.Level == "" {
		c.Observability.Logging.Level = "info"
	}
	if c.Observability.Logging.Format == "" {
		c.Observability.Logging.Format = "text"
	}
}

// ----------------- ENV -----------------

// LoadConfigFromEnv builds the configuration for container deployments where no
// config file is mounted.
func LoadConfigFromEnv() *Config {
	cfg := &Config{
		Env: getEnv("APP_ENV", "production"),
		Server: ServerConfig{
			Port:              getEnvAsInt("HTTP_PORT", 8080),
			BaseURL:           getEnv("HTTP_BASE_URL", ""),
			AllowedOrigins:    getEnv("HTTP_ALLOWED_ORIGINS", ""),
			ReadHeaderTimeout: getEnvAsDuration("HTTP_READ_HEADER_TIMEOUT", 5*time.Second),
			ReadTimeout:       getEnvAsDuration("HTTP_READ_TIMEOUT", 15*time.Second),
			IdleTimeout:       getEnvAsDuration("HTTP_IDLE_TIMEOUT", 60*time.Second),
			WriteTimeout:      getEnvAsDuration("HTTP_WRITE_TIMEOUT", 15*time.Second),
		},
		Database: DatabaseConfig{
			Driver:           getEnv("DB_DRIVER", DriverMongo),
			Source:           getEnv("DB_SOURCE", ""),
			Name:             getEnv("DB_NAME", "office_hr"),
			MaxOpenConns:     getEnvAsInt("DB_MAX_OPEN_CONNS", 20),
			MaxIdleConns:     getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime:  getEnvAsDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			ConnMaxIdleTime:  getEnvAsDuration("DB_CONN_MAX_IDLE_TIME", 5*time.Minute),
			OperationTimeout: getEnvAsDuration("DB_OPERATION_TIMEOUT", 5*time.Second),
		},
		Security: SecurityConfig{
			SessionTTL:          getEnvAsDuration("SESSION_TTL", 7*24*time.Hour),
			SecretIterations:    getEnvAsInt("SECRET_ITERATIONS", MinSecretIterations),
			TempCredentialBytes: getEnvAsInt("TEMP_CREDENTIAL_BYTES", 12),
		},
		Permissions: PermissionsConfig{
			UnknownRole: getEnv("PERMISSIONS_UNKNOWN_ROLE", UnknownRoleEmployee),
		},
		Notification: NotificationConfig{
			FanOutWorkers: getEnvAsInt("NOTIFICATION_FANOUT_WORKERS", 4),
			QueueSize:     getEnvAsInt("NOTIFICATION_QUEUE_SIZE", 256),
			PageSize:      getEnvAsInt("NOTIFICATION_PAGE_SIZE", 200),
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{
				Level:  getEnv("LOG_LEVEL", "info"),
				Format: getEnv("LOG_FORMAT", "json"),
			},
		},
	}
	cfg.ApplyDefaults()
	return cfg
}

// ----------------- HELPERS -----------------

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultVal
}

// ----------------- VALIDATION -----------------

func (c *Config) Validate() error {
	var errs []string

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("server config: %v", err))
	}

	if err := c.Database.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("database config: %v", err))
	}

	if err := c.Security.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("security config: %v", err))
	}

	if err := c.Permissions.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("permissions config: %v", err))
	}

	if err := c.Observability.Logging.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("logging config: %v", err))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

func (c *ServerConfig) Validate() error {
	if c.AllowedOrigins != "" {
		origins := strings.Split(c.AllowedOrigins, ",")
		for _, origin := range origins {
			origin = strings.TrimSpace(origin)
			if origin == "*" {
				continue
			}
			if _, err := url.Parse(origin); err != nil {
				return fmt.Errorf("invalid allowed origin %s: %w", origin, err)
			}
		}
	}
	if c.ReadTimeout < c.ReadHeaderTimeout {
		return errors.New("read_timeout must be >= read_header_timeout")
	}
	return nil
}

func (c *DatabaseConfig) Validate() error {
	switch c.Driver {
	case DriverMongo, DriverPostgres:
	default:
		return fmt.Errorf("unsupported driver %q", c.Driver)
	}
	if c.Source == "" {
		return errors.New("source is required")
	}
	if c.MaxIdleConns > c.MaxOpenConns {
		return errors.New("max_idle_conns cannot be greater than max_open_conns")
	}
	return nil
}

func (c *DatabaseConfig) GetDSN() string {
	return c.Source
}

func (c *SecurityConfig) Validate() error {
	if c.SecretIterations < MinSecretIterations {
		return fmt.Errorf("secret_iterations must be at least %d", MinSecretIterations)
	}
	if c.TempCredentialBytes < 8 {
		return errors.New("temp_credential_bytes must be at least 8")
	}
	if c.SessionTTL < time.Minute {
		return errors.New("session_ttl must be at least 1m")
	}
	return nil
}

func (c *PermissionsConfig) Validate() error {
	if c.UnknownRole != UnknownRoleEmployee && c.UnknownRole != UnknownRoleDeny {
		return fmt.Errorf("unknown_role must be %q or %q", UnknownRoleEmployee, UnknownRoleDeny)
	}
	return nil
}

func (c *LoggingConfig) Validate() error {
	switch c.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid level %q", c.Level)
	}
	if c.Format != "json" && c.Format != "text" {
		return fmt.Errorf("invalid format %q", c.Format)
	}
	return nil
}
