package config

import (
	"time"

	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Global
		Database
		Storage
		Rules
		Matcher
		Suggestions
		AI
		Tasks
		Scheduler
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Path string
	}
	Storage struct {
		Dir string // Directory for content-addressed file blobs
	}
	Rules struct {
		Path string // Validation rules document; empty means built-in defaults
	}
	Matcher struct {
		Threshold float64
	}
	Suggestions struct {
		Threshold  float64
		SampleRows int
	}
	AI struct {
		Enabled bool
		APIKey  string
		Model   string
		BaseURL string
		Timeout time.Duration
	}
	Tasks struct {
		Enabled           bool
		Workers           int
		MaxRetries        int
		RetryDelay        time.Duration
		TaskTimeout       time.Duration
		ReleaseAfter      time.Duration
		CleanupInterval   time.Duration
		RetentionDuration time.Duration
	}
	Scheduler struct {
		Enabled  bool
		Schedule string // Cron format: "*/5 * * * *" = every 5 minutes
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8188)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("storage_dir", DefaultStorageDir)
	v.SetDefault("rules_path", "")
	v.SetDefault("matcher_threshold", 0.8)
	v.SetDefault("suggestion_threshold", 0.6)
	v.SetDefault("suggestion_sample_rows", 3)

	// AI suggestion defaults
	v.SetDefault("ai_suggestions_enabled", false)
	v.SetDefault("openrouter_api_key", "")
	v.SetDefault("openrouter_model", "openai/gpt-4o-mini")
	v.SetDefault("openrouter_base_url", "https://openrouter.ai/api/v1")
	v.SetDefault("openrouter_timeout", "30s")

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_max_retries", 3)
	v.SetDefault("task_retry_delay", "1m")
	v.SetDefault("task_timeout", "5m")
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")
	v.SetDefault("task_retention_duration", "24h")

	// Background sweep defaults
	v.SetDefault("sweep_enabled", true)
	v.SetDefault("sweep_schedule", "*/5 * * * *") // Every 5 minutes

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Storage: Storage{
			Dir: v.GetString("STORAGE_DIR"),
		},
		Rules: Rules{
			Path: v.GetString("RULES_PATH"),
		},
		Matcher: Matcher{
			Threshold: v.GetFloat64("MATCHER_THRESHOLD"),
		},
		Suggestions: Suggestions{
			Threshold:  v.GetFloat64("SUGGESTION_THRESHOLD"),
			SampleRows: v.GetInt("SUGGESTION_SAMPLE_ROWS"),
		},
		AI: AI{
			Enabled: v.GetBool("AI_SUGGESTIONS_ENABLED"),
			APIKey:  v.GetString("OPENROUTER_API_KEY"),
			Model:   v.GetString("OPENROUTER_MODEL"),
			BaseURL: v.GetString("OPENROUTER_BASE_URL"),
			Timeout: v.GetDuration("OPENROUTER_TIMEOUT"),
		},
		Tasks: Tasks{
			Enabled:           v.GetBool("TASKS_ENABLED"),
			Workers:           v.GetInt("TASK_WORKERS"),
			MaxRetries:        v.GetInt("TASK_MAX_RETRIES"),
			RetryDelay:        v.GetDuration("TASK_RETRY_DELAY"),
			TaskTimeout:       v.GetDuration("TASK_TIMEOUT"),
			ReleaseAfter:      v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval:   v.GetDuration("TASK_CLEANUP_INTERVAL"),
			RetentionDuration: v.GetDuration("TASK_RETENTION_DURATION"),
		},
		Scheduler: Scheduler{
			Enabled:  v.GetBool("SWEEP_ENABLED"),
			Schedule: v.GetString("SWEEP_SCHEDULE"),
		},
	}
}
