package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.HTTPPort != 8080 {
		t.Errorf("HTTPPort = %d", cfg.HTTPPort)
	}
	if cfg.SlotMinutes != 15 {
		t.Errorf("SlotMinutes = %d", cfg.SlotMinutes)
	}
	if cfg.WorkDayStartHour != 7 || cfg.WorkDayEndHour != 19 {
		t.Errorf("working hours = %d-%d", cfg.WorkDayStartHour, cfg.WorkDayEndHour)
	}
	if cfg.Timezone != "UTC" {
		t.Errorf("Timezone = %q", cfg.Timezone)
	}
}

func TestLoad_ReadsYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "planner.yaml")
	content := "http_port: 9090\nslot_minutes: 30\ntimezone: Europe/Paris\ndefault_agency_id: agency-7\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.HTTPPort != 9090 || cfg.SlotMinutes != 30 {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.DefaultAgencyID != "agency-7" {
		t.Fatalf("DefaultAgencyID = %q", cfg.DefaultAgencyID)
	}
	if cfg.Location().String() != "Europe/Paris" {
		t.Fatalf("Location = %v", cfg.Location())
	}
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "planner.yaml")
	if err := os.WriteFile(path, []byte("http_port: 9090\n"), 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	t.Setenv("PLANNER_HTTP_PORT", "7070")
	t.Setenv("PLANNER_LOG_LEVEL", "debug")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.HTTPPort != 7070 {
		t.Fatalf("HTTPPort = %d", cfg.HTTPPort)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("LogLevel = %q", cfg.LogLevel)
	}
}

func TestLoad_RejectsInvalidWorkingHours(t *testing.T) {
	path := filepath.Join(t.TempDir(), "planner.yaml")
	if err := os.WriteFile(path, []byte("work_day_start_hour: 19\nwork_day_end_hour: 7\n"), 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for inverted working hours")
	}
}

func TestLoad_RejectsUnknownTimezone(t *testing.T) {
	path := filepath.Join(t.TempDir(), "planner.yaml")
	if err := os.WriteFile(path, []byte("timezone: Mars/Olympus\n"), 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unknown timezone")
	}
}
