package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// ConfidencePolicy controls how out-of-range confidence values from the
// inference process are handled before storage.
type ConfidencePolicy string

const (
	// ConfidenceClamp clamps confidence into [0,1].
	ConfidenceClamp ConfidencePolicy = "clamp"
	// ConfidenceReject treats out-of-range confidence as a processing failure.
	ConfidenceReject ConfidencePolicy = "reject"
)

// Config holds all configuration for the application.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	MinIO     MinIOConfig
	Auth      AuthConfig
	Inference InferenceConfig
	Watchdog  WatchdogConfig
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Host           string
	Port           int
	MaxUploadBytes int64
}

// DatabaseConfig holds database configuration.
type DatabaseConfig struct {
	Host     string
	Port     int
	Name     string
	User     string
	Password string
	SSLMode  string
}

// MinIOConfig holds MinIO configuration.
type MinIOConfig struct {
	Endpoint     string
	AccessKey    string
	SecretKey    string
	UseSSL       bool
	Bucket       string
	CreateBucket bool
}

// AuthConfig holds token issuance configuration.
type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

// InferenceConfig holds external inference process configuration.
type InferenceConfig struct {
	PythonBin        string
	ScriptPath       string
	Timeout          time.Duration
	ConfidencePolicy ConfidencePolicy
}

// WatchdogConfig holds stuck-video reporter configuration.
type WatchdogConfig struct {
	Schedule       string
	StuckThreshold time.Duration
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	viper.SetEnvPrefix("")
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("API_HOST", "0.0.0.0")
	viper.SetDefault("API_PORT", 3000)
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", 5432)
	viper.SetDefault("DB_NAME", "gymeasia")
	viper.SetDefault("DB_USER", "gymeasia")
	viper.SetDefault("DB_PASSWORD", "gymeasia123")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("MINIO_ENDPOINT", "localhost:9000")
	viper.SetDefault("MINIO_ACCESS_KEY", "minioadmin")
	viper.SetDefault("MINIO_SECRET_KEY", "minioadmin123")
	viper.SetDefault("MINIO_USE_SSL", false)
	viper.SetDefault("MINIO_BUCKET", "videos")
	viper.SetDefault("MINIO_CREATE_BUCKET", true)
	viper.SetDefault("JWT_SECRET", "secret")
	viper.SetDefault("JWT_TTL_HOURS", 168)
	viper.SetDefault("PYTHON_BIN", "python3")
	viper.SetDefault("INFER_SCRIPT", "ai/infer.py")
	viper.SetDefault("INFER_TIMEOUT_SECONDS", 120)
	viper.SetDefault("CONFIDENCE_POLICY", string(ConfidenceClamp))
	viper.SetDefault("MAX_UPLOAD_MB", 100)
	viper.SetDefault("WATCHDOG_SCHEDULE", "@every 5m")
	viper.SetDefault("WATCHDOG_STUCK_MINUTES", 30)

	cfg := &Config{
		Server: ServerConfig{
			Host:           viper.GetString("API_HOST"),
			Port:           viper.GetInt("API_PORT"),
			MaxUploadBytes: viper.GetInt64("MAX_UPLOAD_MB") * 1024 * 1024,
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetInt("DB_PORT"),
			Name:     viper.GetString("DB_NAME"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			SSLMode:  viper.GetString("DB_SSLMODE"),
		},
		MinIO: MinIOConfig{
			Endpoint:     viper.GetString("MINIO_ENDPOINT"),
			AccessKey:    viper.GetString("MINIO_ACCESS_KEY"),
			SecretKey:    viper.GetString("MINIO_SECRET_KEY"),
			UseSSL:       viper.GetBool("MINIO_USE_SSL"),
			Bucket:       viper.GetString("MINIO_BUCKET"),
			CreateBucket: viper.GetBool("MINIO_CREATE_BUCKET"),
		},
		Auth: AuthConfig{
			JWTSecret: viper.GetString("JWT_SECRET"),
			TokenTTL:  time.Duration(viper.GetInt("JWT_TTL_HOURS")) * time.Hour,
		},
		Inference: InferenceConfig{
			PythonBin:        viper.GetString("PYTHON_BIN"),
			ScriptPath:       viper.GetString("INFER_SCRIPT"),
			Timeout:          time.Duration(viper.GetInt("INFER_TIMEOUT_SECONDS")) * time.Second,
			ConfidencePolicy: ConfidencePolicy(viper.GetString("CONFIDENCE_POLICY")),
		},
		Watchdog: WatchdogConfig{
			Schedule:       viper.GetString("WATCHDOG_SCHEDULE"),
			StuckThreshold: time.Duration(viper.GetInt("WATCHDOG_STUCK_MINUTES")) * time.Minute,
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// validate validates the configuration.
func (c *Config) validate() error {
	if c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("DB_NAME is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("DB_USER is required")
	}
	if c.MinIO.Endpoint == "" {
		return fmt.Errorf("MINIO_ENDPOINT is required")
	}
	if c.MinIO.AccessKey == "" {
		return fmt.Errorf("MINIO_ACCESS_KEY is required")
	}
	if c.MinIO.SecretKey == "" {
		return fmt.Errorf("MINIO_SECRET_KEY is required")
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.Inference.ScriptPath == "" {
		return fmt.Errorf("INFER_SCRIPT is required")
	}
	switch c.Inference.ConfidencePolicy {
	case ConfidenceClamp, ConfidenceReject:
	default:
		return fmt.Errorf("CONFIDENCE_POLICY must be %q or %q", ConfidenceClamp, ConfidenceReject)
	}
	return nil
}

// DSN returns the PostgreSQL connection string.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}
