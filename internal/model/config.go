package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// BackendConfig locates the portal REST API.
type BackendConfig struct {
	// BaseURL is the API root, including the /api prefix.
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// TimeoutSec bounds a single HTTP exchange. Requests are never retried.
	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec"`
}

// PatientConfig identifies the signed-in patient profile.
type PatientConfig struct {
	ID int64 `mapstructure:"id" yaml:"id"`
}

// ReminderConfig controls the daily check-in reminder.
type ReminderConfig struct {
	// Hour is the local hour-of-day from which an incomplete check-in
	// triggers a reminder.
	Hour int `mapstructure:"hour" yaml:"hour"`

	// PollIntervalSec is how often the threshold hour is re-evaluated.
	PollIntervalSec int `mapstructure:"poll_interval_sec" yaml:"poll_interval_sec"`
}

// BookingConfig holds booking screen preferences.
type BookingConfig struct {
	// SuccessNoticeSec is how long the booking confirmation stays visible.
	SuccessNoticeSec int `mapstructure:"success_notice_sec" yaml:"success_notice_sec"`
}

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	// Timezone is an IANA zone name; empty means the process local zone.
	Timezone string `mapstructure:"timezone" yaml:"timezone"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Backend  BackendConfig  `mapstructure:"backend" yaml:"backend"`
	Patient  PatientConfig  `mapstructure:"patient" yaml:"patient"`
	Reminder ReminderConfig `mapstructure:"reminder" yaml:"reminder"`
	Booking  BookingConfig  `mapstructure:"booking" yaml:"booking"`
	Display  DisplayConfig  `mapstructure:"display" yaml:"display"`
}

// Defaults used when a key is missing or out of range.
const (
	DefaultBaseURL          = "http://localhost:8080/api"
	DefaultTimeoutSec       = 30
	DefaultReminderHour     = 20
	DefaultPollIntervalSec  = 60
	DefaultSuccessNoticeSec = 3
)

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/careportal/config.yaml. CAREPORTAL_CONFIG overrides it.
func DefaultConfigPath() string {
	if p := os.Getenv("CAREPORTAL_CONFIG"); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "careportal", "config.yaml")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		Backend: BackendConfig{
			BaseURL:    DefaultBaseURL,
			TimeoutSec: DefaultTimeoutSec,
		},
		Reminder: ReminderConfig{
			Hour:            DefaultReminderHour,
			PollIntervalSec: DefaultPollIntervalSec,
		},
		Booking: BookingConfig{
			SuccessNoticeSec: DefaultSuccessNoticeSec,
		},
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// Environment variables prefixed with CAREPORTAL_ override file values
// (e.g. CAREPORTAL_PATIENT_ID). A missing file yields the defaults.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("careportal")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set defaults so missing keys resolve to sensible values and so
	// AutomaticEnv knows which keys exist.
	v.SetDefault("backend.base_url", DefaultBaseURL)
	v.SetDefault("backend.timeout_sec", DefaultTimeoutSec)
	v.SetDefault("patient.id", 0)
	v.SetDefault("reminder.hour", DefaultReminderHour)
	v.SetDefault("reminder.poll_interval_sec", DefaultPollIntervalSec)
	v.SetDefault("booking.success_notice_sec", DefaultSuccessNoticeSec)
	v.SetDefault("display.timezone", "")

	if err := v.ReadInConfig(); err != nil {
		var pathErr *os.PathError
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &pathErr) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	cfg.normalize()
	return cfg, nil
}

// normalize replaces out-of-range values with defaults.
func (c *AppConfig) normalize() {
	c.Backend.BaseURL = strings.TrimRight(c.Backend.BaseURL, "/")
	if c.Backend.BaseURL == "" {
		c.Backend.BaseURL = DefaultBaseURL
	}
	if c.Backend.TimeoutSec <= 0 {
		c.Backend.TimeoutSec = DefaultTimeoutSec
	}
	if c.Reminder.Hour < 0 || c.Reminder.Hour > 23 {
		c.Reminder.Hour = DefaultReminderHour
	}
	if c.Reminder.PollIntervalSec <= 0 {
		c.Reminder.PollIntervalSec = DefaultPollIntervalSec
	}
	if c.Booking.SuccessNoticeSec <= 0 {
		c.Booking.SuccessNoticeSec = DefaultSuccessNoticeSec
	}
}

// Location resolves the configured display zone, falling back to the
// process local zone when unset or unknown.
func (c *AppConfig) Location() *time.Location {
	if c.Display.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Display.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("backend", cfg.Backend)
	v.Set("patient", cfg.Patient)
	v.Set("reminder", cfg.Reminder)
	v.Set("booking", cfg.Booking)
	v.Set("display", cfg.Display)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
