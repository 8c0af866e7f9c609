package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"hireny/job-board/internal/secrets"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	AI       AIConfig
	Storage  StorageConfig
	Worker   WorkerConfig
	Auth     AuthConfig
	Log      LogConfig
}

type ServerConfig struct {
	Port        string
	Env         string
	CORSOrigins []string
	// EvaluateInline makes the trigger endpoint await the evaluation instead of
	// enqueueing it. Set for ephemeral environments where background work dies
	// with the request.
	EvaluateInline bool
}

type DatabaseConfig struct {
	Driver     string
	URL        string
	Host       string
	Port       string
	User       string
	Password   string
	DBName     string
	SSLMode    string
	SQLitePath string
}

type AIConfig struct {
	Provider         string
	OpenRouterAPIKey string
	OpenRouterModel  string
	OpenRouterURL    string
	GeminiAPIKey     string
	GeminiModel      string
	ScoreThreshold   int
	Temperature      float64
}

type StorageConfig struct {
	UploadPath      string
	MaxFileSize     int64
	DownloadTimeout time.Duration
}

type WorkerConfig struct {
	RetryMaxAttempts int
	PollInterval     time.Duration
}

type AuthConfig struct {
	HRAPIKey string
}

type LogConfig struct {
	JSON  bool
	Debug bool
}

const (
	ProviderOpenRouter = "openrouter"
	ProviderGemini     = "gemini"
)

var defaults = map[string]any{
	"port":                  "3001",
	"env":                   "development",
	"cors_origins":          "http://localhost:3000,http://localhost:5173,http://localhost:5174,*.vercel.app",
	"evaluate_inline":       false,
	"db_driver":             "postgres",
	"db_host":               "localhost",
	"db_port":               "5432",
	"db_user":               "postgres",
	"db_password":           "postgres",
	"db_name":               "job_board",
	"db_sslmode":            "disable",
	"sqlite_path":           "job_board.db",
	"ai_provider":           ProviderOpenRouter,
	"openrouter_model":      "google/gemini-2.0-flash-001",
	"openrouter_base_url":   "https://openrouter.ai/api/v1",
	"gemini_model":          "gemini-2.5-flash",
	"ai_score_threshold":    5,
	"ai_temperature":        0.3,
	"ai_retry_max_attempts": 1,
	"upload_path":           "./uploads",
	"max_file_size":         10485760,
	"download_timeout":      "30s",
	"worker_poll_interval":  "0s",
	"log_json":              false,
	"log_debug":             false,
}

// Load reads .env (when present) and the process environment into a Config.
// Flags bound to v before the call override the environment.
func Load(v *viper.Viper) *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using environment and default values.")
	}

	if v == nil {
		v = viper.New()
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	inline := v.GetBool("evaluate_inline") || v.GetString("vercel") != ""

	return &Config{
		Server: ServerConfig{
			Port:           v.GetString("port"),
			Env:            v.GetString("env"),
			CORSOrigins:    withFrontendURL(splitList(v.GetString("cors_origins")), v.GetString("frontend_url")),
			EvaluateInline: inline,
		},
		Database: DatabaseConfig{
			Driver:     strings.ToLower(v.GetString("db_driver")),
			URL:        v.GetString("database_url"),
			Host:       v.GetString("db_host"),
			Port:       v.GetString("db_port"),
			User:       v.GetString("db_user"),
			Password:   optionalSecret(v, "DB_PASSWORD"),
			DBName:     v.GetString("db_name"),
			SSLMode:    v.GetString("db_sslmode"),
			SQLitePath: v.GetString("sqlite_path"),
		},
		AI: AIConfig{
			Provider:         strings.ToLower(strings.TrimSpace(v.GetString("ai_provider"))),
			OpenRouterAPIKey: optionalSecret(v, "OPENROUTER_API_KEY"),
			OpenRouterModel:  v.GetString("openrouter_model"),
			OpenRouterURL:    v.GetString("openrouter_base_url"),
			GeminiAPIKey:     optionalSecret(v, "GEMINI_API_KEY"),
			GeminiModel:      v.GetString("gemini_model"),
			ScoreThreshold:   v.GetInt("ai_score_threshold"),
			Temperature:      v.GetFloat64("ai_temperature"),
		},
		Storage: StorageConfig{
			UploadPath:      v.GetString("upload_path"),
			MaxFileSize:     v.GetInt64("max_file_size"),
			DownloadTimeout: v.GetDuration("download_timeout"),
		},
		Worker: WorkerConfig{
			RetryMaxAttempts: v.GetInt("ai_retry_max_attempts"),
			PollInterval:     v.GetDuration("worker_poll_interval"),
		},
		Auth: AuthConfig{
			HRAPIKey: optionalSecret(v, "HR_API_KEY"),
		},
		Log: LogConfig{
			JSON:  v.GetBool("log_json"),
			Debug: v.GetBool("log_debug"),
		},
	}
}

func (c *Config) GetDatabaseDSN() string {
	if c.Database.URL != "" {
		return c.Database.URL
	}

	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
		c.Database.SSLMode,
	)
}

// ActiveAPIKey returns the credential of the configured AI provider.
func (c *Config) ActiveAPIKey() string {
	if c.AI.Provider == ProviderGemini {
		return c.AI.GeminiAPIKey
	}
	return c.AI.OpenRouterAPIKey
}

// optionalSecret resolves NAME or NAME_FILE. A missing secret is not an error
// here; the consumer decides whether it is required.
func optionalSecret(v *viper.Viper, name string) string {
	value, err := secrets.Load(secrets.Source{
		Name:  strings.ToLower(name),
		Value: v.GetString(strings.ToLower(name)),
		File:  v.GetString(strings.ToLower(name) + "_file"),
	})
	if err != nil {
		return ""
	}
	return value
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func withFrontendURL(origins []string, frontend string) []string {
	frontend = strings.TrimSpace(frontend)
	if frontend == "" {
		return origins
	}
	for _, o := range origins {
		if o == frontend {
			return origins
		}
	}
	return append(origins, frontend)
}
