package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Port   int
	DBPath string

	// Scan controller tuning
	TickInterval    time.Duration
	Cooldown        time.Duration
	MotionThreshold int64
	RefreshInterval time.Duration

	// Synthetic capture device dimensions
	FrameWidth  int
	FrameHeight int

	// Leaderboard size
	LeaderboardSize int

	// History retention (0 = keep forever) and its cron schedule
	RetentionDays int
	CleanupCron   string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:            getEnvInt("ECOSORT_PORT", 8080),
		DBPath:          getEnv("ECOSORT_DB_PATH", "./data/ecosort.db"),
		TickInterval:    getEnvMillis("ECOSORT_TICK_MS", 500),
		Cooldown:        getEnvMillis("ECOSORT_COOLDOWN_MS", 3000),
		MotionThreshold: int64(getEnvInt("ECOSORT_MOTION_THRESHOLD", 50000)),
		RefreshInterval: getEnvMillis("ECOSORT_REFRESH_MS", 5000),
		FrameWidth:      getEnvInt("ECOSORT_FRAME_WIDTH", 320),
		FrameHeight:     getEnvInt("ECOSORT_FRAME_HEIGHT", 240),
		LeaderboardSize: getEnvInt("ECOSORT_LEADERBOARD_SIZE", 5),
		RetentionDays:   getEnvInt("ECOSORT_RETENTION_DAYS", 0),
		CleanupCron:     getEnv("ECOSORT_CLEANUP_CRON", "0 3 * * *"),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvMillis(key string, defaultVal int) time.Duration {
	return time.Duration(getEnvInt(key, defaultVal)) * time.Millisecond
}
