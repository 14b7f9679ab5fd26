package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DatabaseConfig holds relational store settings.
// Driver selects the adapter: "postgres" (default) or "sqlite".
type DatabaseConfig struct {
	Driver             string `yaml:"driver"`
	Host               string `yaml:"host"`
	Port               string `yaml:"port"`
	User               string `yaml:"user"`
	Password           string `yaml:"password"`
	Name               string `yaml:"name"`
	SSLMode            string `yaml:"sslmode"`
	MaxOpenConns       int    `yaml:"max_open_conns"`
	MaxIdleConns       int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeSec int    `yaml:"conn_max_lifetime_sec"`
	SQLitePath         string `yaml:"sqlite_path"`
}

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
}

// ParserConfig points at the hosted document parsing API.
// An empty BaseURL disables parsing.
type ParserConfig struct {
	BaseURL    string        `yaml:"base_url"`
	APIKey     string        `yaml:"api_key"`
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"`
	AutoParse  bool          `yaml:"auto_parse"`
}

// UploadConfig bounds uploads and presigned link lifetime.
type UploadConfig struct {
	MaxBytes      int64         `yaml:"max_bytes"`
	PresignExpiry time.Duration `yaml:"presign_expiry"`
}

// AppConfig is the centralized configuration struct for the application.
type AppConfig struct {
	AppHost  string         `yaml:"app_host"`
	Port     string         `yaml:"port"`
	Env      string         `yaml:"env"`
	LogLevel string         `yaml:"log_level"`
	Database DatabaseConfig `yaml:"database"`
	MinIO    MinIOConfig    `yaml:"minio"`
	Parser   ParserConfig   `yaml:"parser"`
	Upload   UploadConfig   `yaml:"upload"`
}

// Defaults returns the configuration used when nothing else is set.
func Defaults() *AppConfig {
	return &AppConfig{
		AppHost:  "localhost:8080",
		Port:     "8080",
		Env:      "dev",
		LogLevel: "info",
		Database: DatabaseConfig{
			Driver:             "postgres",
			Port:               "5432",
			SSLMode:            "disable",
			MaxOpenConns:       10,
			MaxIdleConns:       5,
			ConnMaxLifetimeSec: 300,
			SQLitePath:         "docvault.db",
		},
		Parser: ParserConfig{
			Timeout:    60 * time.Second,
			MaxRetries: 3,
		},
		Upload: UploadConfig{
			MaxBytes:      25 << 20,
			PresignExpiry: 15 * time.Minute,
		},
	}
}

// Load reads configuration from environment variables over Defaults.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
func Load() *AppConfig {
	cfg := Defaults()
	applyEnv(cfg)
	return cfg
}

// LoadFile layers a YAML file over Defaults, then environment variables over
// the result. An empty path behaves like Load.
func LoadFile(path string) (*AppConfig, error) {
	cfg := Defaults()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}
	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(c *AppConfig) {
	c.AppHost = getEnv("APP_HOST", c.AppHost)
	c.Port = getEnv("PORT", c.Port)
	c.Env = getEnv("APP_ENV", c.Env)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)

	d := &c.Database
	d.Driver = getEnv("DB_DRIVER", d.Driver)
	d.Host = getEnv("DB_HOST", d.Host)
	d.Port = getEnv("DB_PORT", d.Port)
	d.User = getEnv("DB_USER", d.User)
	d.Password = getEnv("DB_PASSWORD", d.Password)
	d.Name = getEnv("DB_NAME", d.Name)
	d.SSLMode = getEnv("DB_SSLMODE", d.SSLMode)
	d.MaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", d.MaxOpenConns)
	d.MaxIdleConns = getEnvInt("DB_MAX_IDLE_CONNS", d.MaxIdleConns)
	d.ConnMaxLifetimeSec = getEnvInt("DB_CONN_MAX_LIFETIME_SEC", d.ConnMaxLifetimeSec)
	d.SQLitePath = getEnv("DB_SQLITE_PATH", d.SQLitePath)

	m := &c.MinIO
	m.Endpoint = getEnv("MINIO_ENDPOINT", m.Endpoint)
	m.AccessKey = getEnv("MINIO_ACCESS_KEY", m.AccessKey)
	m.SecretKey = getEnv("MINIO_SECRET_KEY", m.SecretKey)
	m.Bucket = getEnv("MINIO_BUCKET", m.Bucket)
	m.UseSSL = getEnvBool("MINIO_USE_SSL", m.UseSSL)

	p := &c.Parser
	p.BaseURL = getEnv("PARSER_BASE_URL", p.BaseURL)
	p.APIKey = getEnv("PARSER_API_KEY", p.APIKey)
	p.Timeout = getEnvDuration("PARSER_TIMEOUT", p.Timeout)
	p.MaxRetries = getEnvInt("PARSER_MAX_RETRIES", p.MaxRetries)
	p.AutoParse = getEnvBool("PARSER_AUTO_PARSE", p.AutoParse)

	u := &c.Upload
	u.MaxBytes = int64(getEnvInt("UPLOAD_MAX_BYTES", int(u.MaxBytes)))
	u.PresignExpiry = getEnvDuration("UPLOAD_PRESIGN_EXPIRY", u.PresignExpiry)
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err == nil {
			return d
		}
	}
	return def
}
