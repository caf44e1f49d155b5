package config

import (
	"fmt"
	"time"

	"github.com/awickham/feedforge/internal/db"

	"github.com/spf13/viper"
)

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port           int
	AllowedOrigins []string
}

// CompletionConfig holds settings for the completion API client. The API
// key is read from the environment only, never from config.yaml.
type CompletionConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// ProcessingConfig holds enrichment pipeline settings.
type ProcessingConfig struct {
	Concurrency  int
	MediaTimeout time.Duration
	MediaMaxDim  int
	TemplatesDir string
}

// StorageConfig holds raw upload retention settings.
type StorageConfig struct {
	UploadsDir string
}

// Config is the full application configuration.
type Config struct {
	Server     ServerConfig
	Database   db.Config
	Completion CompletionConfig
	Processing ProcessingConfig
	Storage    StorageConfig
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Port:           8080,
			AllowedOrigins: []string{"http://localhost:3000"},
		},
		Database: db.DefaultConfig(),
		Completion: CompletionConfig{
			BaseURL: "https://api.openai.com/v1",
			Timeout: 60 * time.Second,
		},
		Processing: ProcessingConfig{
			Concurrency:  4,
			MediaTimeout: 10 * time.Second,
			MediaMaxDim:  512,
			TemplatesDir: "templates",
		},
		Storage: StorageConfig{
			UploadsDir: "uploads",
		},
	}
}

// Load reads config.yaml from configPath and applies environment
// overrides with the FEEDFORGE_ prefix, e.g. FEEDFORGE_DATABASE_HOST.
func Load(configPath string) (Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AutomaticEnv()
	v.SetEnvPrefix("FEEDFORGE")

	v.BindEnv("server.port")
	v.BindEnv("database.host")
	v.BindEnv("database.port")
	v.BindEnv("database.user")
	v.BindEnv("database.password")
	v.BindEnv("database.dbname")
	v.BindEnv("database.sslmode")
	v.BindEnv("completion.base_url")
	v.BindEnv("processing.concurrency")
	v.BindEnv("storage.uploads_dir")

	if err := v.ReadInConfig(); err != nil {
		// Config file not found? Just log it, use defaults + env
		fmt.Println("No config.yaml found, using defaults and env vars")
	} else {
		fmt.Println("Loaded config.yaml")
	}

	if v.IsSet("server.port") {
		cfg.Server.Port = v.GetInt("server.port")
	}
	if v.IsSet("server.allowed_origins") {
		cfg.Server.AllowedOrigins = v.GetStringSlice("server.allowed_origins")
	}
	if v.IsSet("database.host") {
		cfg.Database.Host = v.GetString("database.host")
	}
	if v.IsSet("database.port") {
		cfg.Database.Port = v.GetInt("database.port")
	}
	if v.IsSet("database.user") {
		cfg.Database.User = v.GetString("database.user")
	}
	if v.IsSet("database.password") {
		cfg.Database.Password = v.GetString("database.password")
	}
	if v.IsSet("database.dbname") {
		cfg.Database.DBName = v.GetString("database.dbname")
	}
	if v.IsSet("database.sslmode") {
		cfg.Database.SSLMode = v.GetString("database.sslmode")
	}
	if v.IsSet("completion.base_url") {
		cfg.Completion.BaseURL = v.GetString("completion.base_url")
	}
	if v.IsSet("completion.timeout_seconds") {
		cfg.Completion.Timeout = time.Duration(v.GetInt("completion.timeout_seconds")) * time.Second
	}
	if v.IsSet("processing.concurrency") {
		cfg.Processing.Concurrency = v.GetInt("processing.concurrency")
	}
	if v.IsSet("processing.media_timeout_seconds") {
		cfg.Processing.MediaTimeout = time.Duration(v.GetInt("processing.media_timeout_seconds")) * time.Second
	}
	if v.IsSet("processing.media_max_dim") {
		cfg.Processing.MediaMaxDim = v.GetInt("processing.media_max_dim")
	}
	if v.IsSet("processing.templates_dir") {
		cfg.Processing.TemplatesDir = v.GetString("processing.templates_dir")
	}
	if v.IsSet("storage.uploads_dir") {
		cfg.Storage.UploadsDir = v.GetString("storage.uploads_dir")
	}

	// The key never lives in the config file.
	cfg.Completion.APIKey = v.GetString("openai_api_key")

	return cfg, nil
}
