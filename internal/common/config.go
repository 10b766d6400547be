package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Archive      ArchiveConfig
	Registry     RegistryConfig
	Reminder     ReminderConfig
	Notification NotificationConfig
}

// ArchiveConfig holds document-store paths for both archive variants.
type ArchiveConfig struct {
	BasePath         string
	RedactedBasePath string
	InboxDir         string
	InboxDebounce    time.Duration
}

// RegistryConfig holds the subscription registry's backing store location.
type RegistryConfig struct {
	DatabasePath string
}

// ReminderConfig holds scheduling parameters for the reminder pass.
type ReminderConfig struct {
	RunStatePath string
	Timezone     string
	EarliestHour int
	CronSpec     string
}

// NotificationConfig holds addresses used by the dispatch paths.
type NotificationConfig struct {
	FromAddress    string
	SupportAddress string
	SubjectPrefix  string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Archive: ArchiveConfig{
			BasePath:         getEnv("ARCHIVE_BASE_PATH", ""),
			RedactedBasePath: getEnv("ARCHIVE_REDACTED_BASE_PATH", ""),
			InboxDir:         getEnv("INBOX_DIR", "./inbox"),
			InboxDebounce:    getEnvAsDuration("INBOX_DEBOUNCE", 2*time.Second),
		},
		Registry: RegistryConfig{
			DatabasePath: getEnv("REGISTRY_DB_PATH", "./subscriptions.db"),
		},
		Reminder: ReminderConfig{
			RunStatePath: getEnv("REMINDER_RUN_STATE_PATH", "./last_reminder_run.txt"),
			Timezone:     getEnv("REMINDER_TIMEZONE", "Europe/Zurich"),
			EarliestHour: getEnvAsInt("REMINDER_EARLIEST_HOUR", 9),
			CronSpec:     getEnv("REMINDER_CRON_SPEC", "*/15 * * * *"),
		},
		Notification: NotificationConfig{
			FromAddress:    getEnv("NOTIFY_FROM_ADDRESS", ""),
			SupportAddress: getEnv("NOTIFY_SUPPORT_ADDRESS", ""),
			SubjectPrefix:  getEnv("NOTIFY_SUBJECT_PREFIX", "[Reservationen]"),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// ValidateConfig validates the loaded configuration
func (c *Config) Validate() error {
	if c.Archive.BasePath == "" {
		return WrapError(ErrInvalidInput, "ARCHIVE_BASE_PATH is required")
	}
	if c.Archive.RedactedBasePath == "" {
		return WrapError(ErrInvalidInput, "ARCHIVE_REDACTED_BASE_PATH is required")
	}
	if c.Registry.DatabasePath == "" {
		return WrapError(ErrInvalidInput, "REGISTRY_DB_PATH is required")
	}
	if c.Reminder.EarliestHour < 0 || c.Reminder.EarliestHour > 23 {
		return WrapError(ErrInvalidInput, "REMINDER_EARLIEST_HOUR must be within 0..23")
	}
	return nil
}
