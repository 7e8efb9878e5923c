package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hay-kot/criterio"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

const (
	StorageBackendB2 = "b2"
	StorageBackendS3 = "s3"
)

type Config struct {
	Port     string `yaml:"port"`
	Env      string `yaml:"env"`
	LogLevel string `yaml:"log_level"`

	MongoURI              string `yaml:"mongodb_uri"`
	DatabaseName          string `yaml:"database_name"`
	AnalyticsDatabaseName string `yaml:"analytics_database_name"`
	MigrateOnStart        bool   `yaml:"migrate_on_start"`

	JWTSecret string `yaml:"jwt_secret"`
	JWTIssuer string `yaml:"jwt_issuer"`

	StorageBackend string `yaml:"storage_backend"`

	B2ApplicationKeyID string `yaml:"b2_application_key_id"`
	B2ApplicationKey   string `yaml:"b2_application_key"`
	B2BucketName       string `yaml:"b2_bucket_name"`

	AWSRegion     string `yaml:"aws_region"`
	AWSBucketName string `yaml:"aws_bucket_name"`

	MaxFileSize    int64 `yaml:"max_file_size"`
	MaxUserStorage int64 `yaml:"max_user_storage"`

	AllowedOrigins []string `yaml:"allowed_origins"`

	RateLimitRPS   float64 `yaml:"rate_limit_rps"`
	RateLimitBurst int     `yaml:"rate_limit_burst"`

	DigestInterval        time.Duration `yaml:"digest_interval"`
	StorageAlertThreshold float64       `yaml:"storage_alert_threshold"`
}

// DefaultConfig returns a Config with every optional setting populated.
func DefaultConfig() Config {
	return Config{
		Port:                  "8080",
		Env:                   "development",
		LogLevel:              "info",
		DatabaseName:          "storeit",
		AnalyticsDatabaseName: "storeit_analytics",
		JWTIssuer:             "storeit",
		StorageBackend:        StorageBackendB2,
		MaxFileSize:           50 * 1024 * 1024,
		MaxUserStorage:        2 * 1024 * 1024 * 1024,
		AllowedOrigins:        []string{"http://localhost:3000"},
		RateLimitRPS:          10,
		RateLimitBurst:        20,
		DigestInterval:        24 * time.Hour,
		StorageAlertThreshold: 0.9,
	}
}

// Load builds the configuration from defaults, the optional YAML file at
// configPath, and the process environment, in increasing precedence.
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, fmt.Errorf("invalid environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyEnv() error {
	var errs criterio.FieldErrorsBuilder

	c.Port = getEnv("PORT", c.Port)
	c.Env = getEnv("ENV", c.Env)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)

	c.MongoURI = getEnv("MONGODB_URI", c.MongoURI)
	c.DatabaseName = getEnv("MONGODB_DB_NAME", c.DatabaseName)
	c.AnalyticsDatabaseName = getEnv("MONGODB_ANALYTICS_DB", c.AnalyticsDatabaseName)

	c.JWTSecret = getEnv("JWT_SECRET", c.JWTSecret)
	c.JWTIssuer = getEnv("JWT_ISSUER", c.JWTIssuer)

	c.StorageBackend = strings.ToLower(getEnv("STORAGE_BACKEND", c.StorageBackend))
	c.B2ApplicationKeyID = getFirstEnv([]string{"B2_APPLICATION_KEY_ID", "B2_KEY_ID"}, c.B2ApplicationKeyID)
	c.B2ApplicationKey = getFirstEnv([]string{"B2_APPLICATION_KEY", "B2_APP_KEY"}, c.B2ApplicationKey)
	c.B2BucketName = getFirstEnv([]string{"B2_BUCKET_NAME", "B2_BUCKET"}, c.B2BucketName)
	c.AWSRegion = getEnv("AWS_REGION", c.AWSRegion)
	c.AWSBucketName = getEnv("AWS_BUCKET_NAME", c.AWSBucketName)

	if v, ok := os.LookupEnv("ALLOWED_ORIGINS"); ok {
		c.AllowedOrigins = parseStringSlice(v)
	}

	if v := os.Getenv("MIGRATE_ON_START"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = errs.Append("MIGRATE_ON_START", err)
		}
		c.MigrateOnStart = b
	}

	if v := os.Getenv("MAX_FILE_SIZE"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			errs = errs.Append("MAX_FILE_SIZE", err)
		}
		c.MaxFileSize = n
	}

	if v := os.Getenv("MAX_USER_STORAGE"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			errs = errs.Append("MAX_USER_STORAGE", err)
		}
		c.MaxUserStorage = n
	}

	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			errs = errs.Append("RATE_LIMIT_RPS", err)
		}
		c.RateLimitRPS = f
	}

	if v := os.Getenv("RATE_LIMIT_BURST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = errs.Append("RATE_LIMIT_BURST", err)
		}
		c.RateLimitBurst = n
	}

	if v := os.Getenv("DIGEST_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = errs.Append("DIGEST_INTERVAL", err)
		}
		c.DigestInterval = d
	}

	if v := os.Getenv("STORAGE_ALERT_THRESHOLD"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			errs = errs.Append("STORAGE_ALERT_THRESHOLD", err)
		}
		c.StorageAlertThreshold = f
	}

	return errs.ToError()
}

// Validate checks that the configuration can start the service. A missing
// MongoDB connection string is always an error.
func (c *Config) Validate() error {
	var errs criterio.FieldErrorsBuilder

	if c.MongoURI == "" {
		errs = errs.Append("mongodb_uri", fmt.Errorf("MONGODB_URI is required"))
	}
	if c.DatabaseName == "" {
		errs = errs.Append("database_name", fmt.Errorf("cannot be empty"))
	}
	if c.AnalyticsDatabaseName == "" {
		errs = errs.Append("analytics_database_name", fmt.Errorf("cannot be empty"))
	}
	if c.JWTSecret == "" {
		errs = errs.Append("jwt_secret", fmt.Errorf("JWT_SECRET is required"))
	}

	switch c.StorageBackend {
	case StorageBackendB2:
		if c.B2ApplicationKeyID == "" || c.B2ApplicationKey == "" || c.B2BucketName == "" {
			errs = errs.Append("storage_backend", fmt.Errorf("b2 requires key id, application key and bucket name"))
		}
	case StorageBackendS3:
		if c.AWSRegion == "" || c.AWSBucketName == "" {
			errs = errs.Append("storage_backend", fmt.Errorf("s3 requires AWS_REGION and AWS_BUCKET_NAME"))
		}
	default:
		errs = errs.Append("storage_backend", fmt.Errorf("unknown backend %q", c.StorageBackend))
	}

	if c.MaxFileSize <= 0 {
		errs = errs.Append("max_file_size", fmt.Errorf("must be positive"))
	}
	if c.MaxUserStorage <= 0 {
		errs = errs.Append("max_user_storage", fmt.Errorf("must be positive"))
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst < 1 {
		errs = errs.Append("rate_limit", fmt.Errorf("rps must be positive and burst at least 1"))
	}
	if c.DigestInterval < time.Minute {
		errs = errs.Append("digest_interval", fmt.Errorf("must be at least 1m"))
	}
	if c.StorageAlertThreshold <= 0 || c.StorageAlertThreshold > 1 {
		errs = errs.Append("storage_alert_threshold", fmt.Errorf("must be in (0, 1]"))
	}

	return errs.ToError()
}

// LogConfig writes the effective configuration with secrets masked.
func (c *Config) LogConfig(logger zerolog.Logger) {
	logger.Info().
		Str("port", c.Port).
		Str("env", c.Env).
		Str("mongodb_uri", maskConnectionString(c.MongoURI)).
		Str("database", c.DatabaseName).
		Str("analytics_database", c.AnalyticsDatabaseName).
		Str("jwt_secret", maskSecret(c.JWTSecret)).
		Str("storage_backend", c.StorageBackend).
		Str("b2_key_id", maskSecret(c.B2ApplicationKeyID)).
		Int64("max_file_size", c.MaxFileSize).
		Int64("max_user_storage", c.MaxUserStorage).
		Strs("allowed_origins", c.AllowedOrigins).
		Dur("digest_interval", c.DigestInterval).
		Msg("configuration loaded")
}

func maskSecret(secret string) string {
	if secret == "" {
		return "[NOT SET]"
	}
	if len(secret) <= 8 {
		return "[HIDDEN]"
	}
	return secret[:4] + "***" + secret[len(secret)-4:]
}

func maskConnectionString(uri string) string {
	if uri == "" {
		return "[NOT SET]"
	}
	if strings.Contains(uri, "@") {
		parts := strings.Split(uri, "@")
		return "[CREDENTIALS_HIDDEN]@" + parts[len(parts)-1]
	}
	return uri
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getFirstEnv(keys []string, defaultValue string) string {
	for _, key := range keys {
		if value := os.Getenv(key); value != "" {
			return value
		}
	}
	return defaultValue
}

func parseStringSlice(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func CreateContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}
