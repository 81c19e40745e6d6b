package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"ECOSORT_PORT", "ECOSORT_DB_PATH", "ECOSORT_TICK_MS", "ECOSORT_COOLDOWN_MS",
		"ECOSORT_MOTION_THRESHOLD", "ECOSORT_REFRESH_MS", "ECOSORT_RETENTION_DAYS",
		"ECOSORT_CLEANUP_CRON", "ECOSORT_LEADERBOARD_SIZE",
	} {
		os.Unsetenv(key)
	}

	cfg := Load()

	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.DBPath != "./data/ecosort.db" {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
	if cfg.TickInterval != 500*time.Millisecond {
		t.Errorf("TickInterval = %v, want 500ms", cfg.TickInterval)
	}
	if cfg.Cooldown != 3*time.Second {
		t.Errorf("Cooldown = %v, want 3s", cfg.Cooldown)
	}
	if cfg.MotionThreshold != 50000 {
		t.Errorf("MotionThreshold = %d, want 50000", cfg.MotionThreshold)
	}
	if cfg.RefreshInterval != 5*time.Second {
		t.Errorf("RefreshInterval = %v, want 5s", cfg.RefreshInterval)
	}
	if cfg.RetentionDays != 0 {
		t.Errorf("RetentionDays = %d, want 0", cfg.RetentionDays)
	}
	if cfg.CleanupCron != "0 3 * * *" {
		t.Errorf("CleanupCron = %q", cfg.CleanupCron)
	}
	if cfg.LeaderboardSize != 5 {
		t.Errorf("LeaderboardSize = %d, want 5", cfg.LeaderboardSize)
	}
}

func TestLoadOverrides(t *testing.T) {
	os.Setenv("ECOSORT_PORT", "9090")
	os.Setenv("ECOSORT_COOLDOWN_MS", "1500")
	os.Setenv("ECOSORT_RETENTION_DAYS", "14")
	defer func() {
		os.Unsetenv("ECOSORT_PORT")
		os.Unsetenv("ECOSORT_COOLDOWN_MS")
		os.Unsetenv("ECOSORT_RETENTION_DAYS")
	}()

	cfg := Load()

	if cfg.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Port)
	}
	if cfg.Cooldown != 1500*time.Millisecond {
		t.Errorf("Cooldown = %v, want 1.5s", cfg.Cooldown)
	}
	if cfg.RetentionDays != 14 {
		t.Errorf("RetentionDays = %d, want 14", cfg.RetentionDays)
	}
}

func TestGetEnvInt(t *testing.T) {
	tests := []struct {
		name       string
		envKey     string
		envValue   string
		defaultVal int
		want       int
	}{
		{"empty env", "TEST_INT_EMPTY", "", 42, 42},
		{"valid int", "TEST_INT_VALID", "123", 42, 123},
		{"invalid int", "TEST_INT_INVALID", "not-a-number", 42, 42},
		{"negative int", "TEST_INT_NEG", "-5", 42, -5},
		{"zero", "TEST_INT_ZERO", "0", 42, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Set up environment
			if tt.envValue != "" {
				os.Setenv(tt.envKey, tt.envValue)
				defer os.Unsetenv(tt.envKey)
			} else {
				os.Unsetenv(tt.envKey)
			}

			got := getEnvInt(tt.envKey, tt.defaultVal)
			if got != tt.want {
				t.Errorf("getEnvInt(%q, %d) = %d, want %d", tt.envKey, tt.defaultVal, got, tt.want)
			}
		})
	}
}

func TestGetEnvMillis(t *testing.T) {
	os.Setenv("TEST_MS", "250")
	defer os.Unsetenv("TEST_MS")

	if got := getEnvMillis("TEST_MS", 500); got != 250*time.Millisecond {
		t.Errorf("getEnvMillis = %v, want 250ms", got)
	}
	if got := getEnvMillis("TEST_MS_UNSET", 500); got != 500*time.Millisecond {
		t.Errorf("getEnvMillis default = %v, want 500ms", got)
	}
}
