package types

// AppConfig is the persisted service configuration, loaded from config.yaml.
// Secrets (storage keys, OpenAI key, JWT secret, database password) come from
// the environment and are never written back to the file.
type AppConfig struct {
	Port        int    `yaml:"port"`
	PublicWSURL string `yaml:"publicWsUrl"` // advertised in the connect QR code

	Storage  StorageConfig  `yaml:"storage"`
	Redis    RedisConfig    `yaml:"redis"`
	Postgres PostgresConfig `yaml:"postgres"`
	Vision   VisionConfig   `yaml:"vision"`
	Auth     AuthConfig     `yaml:"auth"`
	Limits   LimitsConfig   `yaml:"limits"`
}

// StorageConfig configures the S3-compatible object store.
type StorageConfig struct {
	Endpoint      string `yaml:"endpoint"`
	Region        string `yaml:"region"`
	Bucket        string `yaml:"bucket"`
	AccessKey     string `yaml:"-"`
	SecretKey     string `yaml:"-"`
	UseSSL        bool   `yaml:"useSSL"`
	PublicBaseURL string `yaml:"publicBaseUrl"` // optional override for retrieval URLs
}

// RedisConfig configures the connection registry and job store backend.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"-"`
	DB       int    `yaml:"db"`
}

// PostgresConfig configures the user store.
type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"-"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// VisionConfig configures the OpenAI vision model client.
type VisionConfig struct {
	BaseURL        string `yaml:"baseUrl"`
	Model          string `yaml:"model"`
	APIKey         string `yaml:"-"`
	TimeoutSeconds int    `yaml:"timeoutSeconds"`
}

// AuthConfig configures token issuing.
type AuthConfig struct {
	Secret        string `yaml:"-"`
	ExpiryMinutes int    `yaml:"expiryMinutes"`
}

// LimitsConfig bounds inbound work.
type LimitsConfig struct {
	MaxFileBytes      int64   `yaml:"maxFileBytes"`
	MaxFilesPerJob    int     `yaml:"maxFilesPerJob"`
	MessagesPerSecond float64 `yaml:"messagesPerSecond"`
	UploadConcurrency int     `yaml:"uploadConcurrency"` // HTTP batch endpoint fan-out bound
}

// Config holds runtime overrides from CLI flags.
type Config struct {
	Log           string
	UseConfigPath string
	UsePort       int
}
