package config

import (
	"errors"
	"fmt"
	"os"

	"roomdesk/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	HTTP       HTTPConfig       `yaml:"http"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Notifier   NotifierConfig   `yaml:"notifier"`
	Booking    BookingConfig    `yaml:"booking"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
	Admins     []string         `yaml:"admins"`
	Rooms      []models.Room    `yaml:"rooms"`
	Exports    ExportConfig     `yaml:"exports"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type HTTPConfig struct {
	Port           int     `yaml:"port"`
	RateLimitRPS   float64 `yaml:"rate_limit_rps"`
	RateLimitBurst int     `yaml:"rate_limit_burst"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type NotifierConfig struct {
	Endpoint       string `yaml:"endpoint"`
	Token          string `yaml:"token"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	MaxRetries     int    `yaml:"max_retries"`
}

type BookingConfig struct {
	MaxBookingDays    int `yaml:"max_booking_days"`
	RateLimitRequests int `yaml:"rate_limit_requests"`
	RateLimitWindow   int `yaml:"rate_limit_window"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type ExportConfig struct {
	Path string `yaml:"path"`
}

func Load(configPath string) (*Config, error) {
	// .env is optional; the YAML may still reference plain env vars.
	_ = godotenv.Load(".env")

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return errors.New("database path is required")
	}

	return ValidateRooms(c.Rooms)
}

func ValidateRooms(rooms []models.Room) error {
	ids := make(map[string]bool)
	names := make(map[string]bool)
	for _, room := range rooms {
		if room.ID == "" {
			return fmt.Errorf("room '%s' has an empty id", room.Name)
		}
		if ids[room.ID] {
			return fmt.Errorf("duplicate room id found: %s", room.ID)
		}
		if names[room.Name] {
			return fmt.Errorf("duplicate room name found: %s", room.Name)
		}
		if room.Capacity <= 0 {
			return fmt.Errorf("room '%s' has invalid capacity %d", room.Name, room.Capacity)
		}
		ids[room.ID] = true
		names[room.Name] = true
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.RateLimitBurst == 0 {
		c.HTTP.RateLimitBurst = 10
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if c.Notifier.TimeoutSeconds == 0 {
		c.Notifier.TimeoutSeconds = 10
	}
	if c.Notifier.MaxRetries == 0 {
		c.Notifier.MaxRetries = 3
	}
	if c.Booking.MaxBookingDays == 0 {
		c.Booking.MaxBookingDays = models.DefaultMaxBookingDays
	}
	if c.Booking.RateLimitRequests == 0 {
		c.Booking.RateLimitRequests = models.RateLimitRequests
	}
	if c.Booking.RateLimitWindow == 0 {
		c.Booking.RateLimitWindow = models.RateLimitWindow
	}
	if c.Exports.Path == "" {
		c.Exports.Path = "./exports"
	}
}
