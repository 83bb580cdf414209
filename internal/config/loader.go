// Package config loads planner settings from an optional YAML file with
// environment overrides under the PLANNER_ prefix.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds the runtime settings of the planner service.
type Config struct {
	HTTPPort         int    `koanf:"http_port"`
	SQLiteDSN        string `koanf:"sqlite_dsn"`
	Timezone         string `koanf:"timezone"`
	DefaultAgencyID  string `koanf:"default_agency_id"`
	SlotMinutes      int    `koanf:"slot_minutes"`
	WorkDayStartHour int    `koanf:"work_day_start_hour"`
	WorkDayEndHour   int    `koanf:"work_day_end_hour"`
	LogLevel         string `koanf:"log_level"`
}

// SetDefaults fills unset fields with their defaults.
func (c *Config) SetDefaults() {
	if c.HTTPPort == 0 {
		c.HTTPPort = 8080
	}
	if c.SQLiteDSN == "" {
		c.SQLiteDSN = "planner.db"
	}
	if c.Timezone == "" {
		c.Timezone = "UTC"
	}
	if c.DefaultAgencyID == "" {
		c.DefaultAgencyID = "default"
	}
	if c.SlotMinutes == 0 {
		c.SlotMinutes = 15
	}
	if c.WorkDayStartHour == 0 && c.WorkDayEndHour == 0 {
		c.WorkDayStartHour = 7
		c.WorkDayEndHour = 19
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Validate rejects settings the planner cannot run with.
func (c *Config) Validate() error {
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("config: http_port %d out of range", c.HTTPPort)
	}
	if c.SlotMinutes <= 0 || c.SlotMinutes > 24*60 {
		return fmt.Errorf("config: slot_minutes %d out of range", c.SlotMinutes)
	}
	if c.WorkDayStartHour < 0 || c.WorkDayEndHour > 24 || c.WorkDayStartHour >= c.WorkDayEndHour {
		return fmt.Errorf("config: working hours %d-%d invalid", c.WorkDayStartHour, c.WorkDayEndHour)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("config: unknown timezone %q: %w", c.Timezone, err)
	}
	return nil
}

// Location resolves the configured timezone. Validate must have accepted the
// config first.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Load reads the YAML file at path when path is non-empty, applies PLANNER_
// environment overrides, then defaults and validation. PLANNER_HTTP_PORT
// overrides http_port and so on.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("PLANNER_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "PLANNER_"))
	}), nil); err != nil {
		return nil, fmt.Errorf("config: failed to read environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal: %w", err)
	}

	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
