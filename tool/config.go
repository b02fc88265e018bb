package tool

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/hyeonkim-dev/docintake/types"
)

var (
	ConfigPath    = "config.yaml" // default, overridable with -useConfigPath
	CurrentConfig types.AppConfig
)

func defaultConfig() types.AppConfig {
	return types.AppConfig{
		Port:        8080,
		PublicWSURL: "ws://localhost:8080/ws",
		Storage: types.StorageConfig{
			Endpoint: "s3.amazonaws.com",
			Region:   "ap-southeast-2",
			Bucket:   "docintake-uploads",
			UseSSL:   true,
		},
		Redis: types.RedisConfig{
			Addr: "localhost:6379",
		},
		Postgres: types.PostgresConfig{
			Host:    "localhost",
			Port:    "5432",
			User:    "docintake",
			DBName:  "docintake",
			SSLMode: "disable",
		},
		Vision: types.VisionConfig{
			BaseURL:        "https://api.openai.com/v1",
			Model:          "gpt-4o-mini",
			TimeoutSeconds: 120,
		},
		Auth: types.AuthConfig{
			ExpiryMinutes: 60,
		},
		Limits: types.LimitsConfig{
			MaxFileBytes:      20 * 1024 * 1024,
			MaxFilesPerJob:    100,
			MessagesPerSecond: 5,
			UploadConcurrency: 4,
		},
	}
}

// LoadConfig reads config.yaml (creating it with defaults when missing) and
// then applies secret overrides from the environment. Secrets never live in
// the file.
func LoadConfig(path string) (types.AppConfig, error) {
	if path == "" {
		path = ConfigPath
	}
	ConfigPath = path

	cfg := defaultConfig()

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			if writeErr := writeDefaultConfig(path, cfg); writeErr != nil {
				return cfg, fmt.Errorf("config file not found, and failed to generate default config: %v", writeErr)
			}
			DefaultLogger.Infof("Created new config file at %s", path)
			applyEnvOverrides(&cfg)
			CurrentConfig = cfg
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config file: %v", err)
	}
	if info.IsDir() {
		return cfg, fmt.Errorf("config file path is a directory: %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %v", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file: %v", err)
	}

	applyEnvOverrides(&cfg)
	CurrentConfig = cfg
	return cfg, nil
}

func writeDefaultConfig(path string, cfg types.AppConfig) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// applyEnvOverrides pulls secrets and deploy-specific values from the
// environment. godotenv loads .env into the environment before this runs.
func applyEnvOverrides(cfg *types.AppConfig) {
	setString(&cfg.Storage.AccessKey, "STORAGE_ACCESS_KEY", "AWS_ACCESS_KEY_ID")
	setString(&cfg.Storage.SecretKey, "STORAGE_SECRET_KEY", "AWS_SECRET_ACCESS_KEY")
	setString(&cfg.Storage.Endpoint, "STORAGE_ENDPOINT")
	setString(&cfg.Storage.Region, "STORAGE_REGION", "AWS_REGION")
	setString(&cfg.Storage.Bucket, "STORAGE_BUCKET", "S3_BUCKET")
	setString(&cfg.Redis.Addr, "REDIS_ADDR")
	setString(&cfg.Redis.Password, "REDIS_PASSWORD")
	setString(&cfg.Postgres.Host, "PG_HOST")
	setString(&cfg.Postgres.Port, "PG_PORT")
	setString(&cfg.Postgres.User, "PG_USER")
	setString(&cfg.Postgres.Password, "PG_PASSWORD")
	setString(&cfg.Postgres.DBName, "PG_DB")
	setString(&cfg.Vision.APIKey, "OPENAI_API_KEY")
	setString(&cfg.Vision.BaseURL, "OPENAI_BASE_URL")
	setString(&cfg.Vision.Model, "OPENAI_MODEL")
	setString(&cfg.Auth.Secret, "JWT_SECRET")
	if v := os.Getenv("TOKEN_EXPIRY_MINUTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Auth.ExpiryMinutes = n
		}
	}
}

func setString(dst *string, keys ...string) {
	for _, key := range keys {
		if v := os.Getenv(key); v != "" {
			*dst = v
			return
		}
	}
}

func GetCurrentConfig() types.AppConfig {
	return CurrentConfig
}
