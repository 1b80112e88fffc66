package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Storage drivers
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

var (
	// ErrInvalidConfig возвращается, когда конфигурация не проходит проверку
	ErrInvalidConfig = errors.New("config: invalid configuration")
)

// Config конфигурация сервиса
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Storage  StorageConfig  `toml:"storage"`
	Logs     LogsConfig     `toml:"logs"`
	Metrics  MetricsConfig  `toml:"metrics"`
	Booking  BookingConfig  `toml:"booking"`
	Penalty  PenaltyConfig  `toml:"penalty"`
	Branches []BranchConfig `toml:"branches"`
}

// ServerConfig настройки HTTP сервера, таймауты в секундах
type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`
	WriteTimeout    int `toml:"write_timeout"`
	IdleTimeout     int `toml:"idle_timeout"`
	ShutdownTimeout int `toml:"shutdown_timeout"`
}

// DatabaseConfig настройки подключения к PostgreSQL
type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"` // секунды
	TxMaxRetries    int    `toml:"tx_max_retries"`    // повторы сериализуемых транзакций при конфликте
}

// StorageConfig выбор хранилища
type StorageConfig struct {
	Driver string `toml:"driver"` // postgres | memory
	// AutoCreateUsers создает запись пользователя при первом обращении
	AutoCreateUsers bool `toml:"auto_create_users"`
}

// LogsConfig настройки логирования
type LogsConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

// MetricsConfig настройки Prometheus
type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

// BookingConfig правила допуска бронирований
type BookingConfig struct {
	WindowStart     string            `toml:"window_start"` // YYYY-MM-DD
	WindowEnd       string            `toml:"window_end"`   // YYYY-MM-DD
	MaxPartySize    int               `toml:"max_party_size"`
	SlotCapacity    int               `toml:"slot_capacity"`
	SlotStepMinutes int               `toml:"slot_step_minutes"`
	SlotRanges      []SlotRangeConfig `toml:"slot_ranges"`
}

// SlotRangeConfig диапазон начала слотов, обе границы включены
type SlotRangeConfig struct {
	Start string `toml:"start"`
	End   string `toml:"end"`
}

// PenaltyConfig правила блокировки за частые отмены
type PenaltyConfig struct {
	ResetWindowMinutes int `toml:"reset_window_minutes"`
	CooldownMinutes    int `toml:"cooldown_minutes"`
	Threshold          int `toml:"threshold"`
}

// BranchConfig филиал ресторана
type BranchConfig struct {
	Name       string  `toml:"name"`
	ManagerIDs []int64 `toml:"manager_ids"`
}

// Load читает TOML файл, применяет значения по умолчанию и переменные окружения.
// Если рядом есть .env, он загружается до чтения переменных.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Default()
	// Списки из файла заменяют значения по умолчанию целиком, а не поэлементно
	cfg.Booking.SlotRanges = nil
	cfg.Branches = nil

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config %s: %w", path, err)
	}

	if len(cfg.Booking.SlotRanges) == 0 {
		cfg.Booking.SlotRanges = defaultSlotRanges()
	}
	if len(cfg.Branches) == 0 {
		cfg.Branches = defaultBranches()
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Default возвращает конфигурацию, совпадающую с исходным поведением сервиса
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:        8080,
			ReadTimeout:     10,
			WriteTimeout:    10,
			IdleTimeout:     60,
			ShutdownTimeout: 15,
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			User:            "postgres",
			DBName:          "reservations",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 300,
			TxMaxRetries:    3,
		},
		Storage: StorageConfig{
			Driver: DriverPostgres,
		},
		Logs: LogsConfig{
			File:  "logs/app.log",
			Level: "info",
		},
		Metrics: MetricsConfig{
			Enabled:     true,
			Path:        "/metrics",
			ServiceName: "reservation-service",
		},
		Booking: BookingConfig{
			WindowStart:     "2025-12-01",
			WindowEnd:       "2025-12-31",
			MaxPartySize:    12,
			SlotCapacity:    5,
			SlotStepMinutes: 30,
			SlotRanges:      defaultSlotRanges(),
		},
		Penalty: PenaltyConfig{
			ResetWindowMinutes: 10,
			CooldownMinutes:    10,
			Threshold:          3,
		},
		Branches: defaultBranches(),
	}
}

func defaultSlotRanges() []SlotRangeConfig {
	return []SlotRangeConfig{
		{Start: "12:00", End: "16:00"},
		{Start: "17:00", End: "21:00"},
	}
}

func defaultBranches() []BranchConfig {
	return []BranchConfig{
		{Name: "Ho Man Tin Branch"},
		{Name: "Mong Kok Branch"},
	}
}

// applyEnv переопределяет секреты и параметры развертывания из окружения
func (c *Config) applyEnv() error {
	if v := os.Getenv("DB_HOST"); v != "" {
		c.Database.Host = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		c.Database.Password = v
	}
	if v := os.Getenv("STORAGE_DRIVER"); v != "" {
		c.Storage.Driver = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logs.Level = v
	}
	if v := os.Getenv("HTTP_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: HTTP_PORT=%q is not a number", ErrInvalidConfig, v)
		}
		c.Server.HTTPPort = port
	}
	return nil
}

// Validate проверяет согласованность настроек
func (c *Config) Validate() error {
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("%w: server.http_port %d out of range", ErrInvalidConfig, c.Server.HTTPPort)
	}

	switch c.Storage.Driver {
	case DriverPostgres:
		if c.Database.Host == "" || c.Database.DBName == "" {
			return fmt.Errorf("%w: database.host and database.dbname are required for postgres", ErrInvalidConfig)
		}
		if c.Database.TxMaxRetries < 0 {
			return fmt.Errorf("%w: database.tx_max_retries must not be negative", ErrInvalidConfig)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("%w: unknown storage.driver %q", ErrInvalidConfig, c.Storage.Driver)
	}

	if c.Metrics.Enabled && c.Metrics.Path == "" {
		return fmt.Errorf("%w: metrics.path is required when metrics are enabled", ErrInvalidConfig)
	}

	if c.Booking.MaxPartySize <= 0 {
		return fmt.Errorf("%w: booking.max_party_size must be positive", ErrInvalidConfig)
	}
	if c.Booking.SlotCapacity <= 0 {
		return fmt.Errorf("%w: booking.slot_capacity must be positive", ErrInvalidConfig)
	}
	if c.Penalty.Threshold <= 0 {
		return fmt.Errorf("%w: penalty.threshold must be positive", ErrInvalidConfig)
	}
	if c.Penalty.ResetWindowMinutes <= 0 || c.Penalty.CooldownMinutes <= 0 {
		return fmt.Errorf("%w: penalty durations must be positive", ErrInvalidConfig)
	}
	if len(c.Branches) == 0 {
		return fmt.Errorf("%w: at least one branch is required", ErrInvalidConfig)
	}

	// Окно, сетка слотов и каталог филиалов проверяются при построении доменных правил
	if _, err := c.BookingRules(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if _, err := c.BranchCatalog(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	return nil
}

// DSN возвращает строку подключения lib/pq
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

// ConnMaxLifetimeDuration время жизни соединения
func (d DatabaseConfig) ConnMaxLifetimeDuration() time.Duration {
	return time.Duration(d.ConnMaxLifetime) * time.Second
}
