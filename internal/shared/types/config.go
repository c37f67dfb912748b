package types

// Config represents the application configuration that can be loaded from a file
// and overridden by BILLING_* environment variables.
type Config struct {
	Storage     StorageConfig `json:"storage" yaml:"storage" toml:"storage" envPrefix:"STORAGE_"`
	State       StateConfig   `json:"state" yaml:"state" toml:"state" envPrefix:"STATE_"`
	Mail        MailConfig    `json:"mail" yaml:"mail" toml:"mail" envPrefix:"MAIL_"`
	HTTPAddr    string        `json:"http_addr" yaml:"http_addr" toml:"http_addr" env:"HTTP_ADDR"`
	HistoryDays int           `json:"history_days" yaml:"history_days" toml:"history_days" env:"HISTORY_DAYS"`
	WarmWorkers int           `json:"warm_workers" yaml:"warm_workers" toml:"warm_workers" env:"WARM_WORKERS"`
	LogLevel    string        `json:"log_level" yaml:"log_level" toml:"log_level" env:"LOG_LEVEL"`
	LogEncoding string        `json:"log_encoding" yaml:"log_encoding" toml:"log_encoding" env:"LOG_ENCODING"`
}

// StorageConfig locates the billing export objects.
// Backend is "s3" (any S3-compatible endpoint) or "local".
type StorageConfig struct {
	Backend  string `json:"backend" yaml:"backend" toml:"backend" env:"BACKEND"`
	Bucket   string `json:"bucket" yaml:"bucket" toml:"bucket" env:"BUCKET"`
	Prefix   string `json:"prefix" yaml:"prefix" toml:"prefix" env:"PREFIX"`
	Region   string `json:"region" yaml:"region" toml:"region" env:"REGION"`
	Profile  string `json:"profile" yaml:"profile" toml:"profile" env:"PROFILE"`
	Endpoint string `json:"endpoint" yaml:"endpoint" toml:"endpoint" env:"ENDPOINT"`
	Dir      string `json:"dir" yaml:"dir" toml:"dir" env:"DIR"`
}

// StateConfig selects the key/value store for caches, rules, subscriptions
// and the notification dedup record. Backend is "memory", "sqlite" or "redis".
type StateConfig struct {
	Backend       string `json:"backend" yaml:"backend" toml:"backend" env:"BACKEND"`
	SQLitePath    string `json:"sqlite_path" yaml:"sqlite_path" toml:"sqlite_path" env:"SQLITE_PATH"`
	RedisAddr     string `json:"redis_addr" yaml:"redis_addr" toml:"redis_addr" env:"REDIS_ADDR"`
	RedisPassword string `json:"redis_password" yaml:"redis_password" toml:"redis_password" env:"REDIS_PASSWORD"`
	RedisDB       int    `json:"redis_db" yaml:"redis_db" toml:"redis_db" env:"REDIS_DB"`
	KeyPrefix     string `json:"key_prefix" yaml:"key_prefix" toml:"key_prefix" env:"KEY_PREFIX"`
}

// MailConfig configures the notification transport. Backend is "smtp" or "console".
type MailConfig struct {
	Backend         string `json:"backend" yaml:"backend" toml:"backend" env:"BACKEND"`
	Host            string `json:"host" yaml:"host" toml:"host" env:"HOST"`
	Port            int    `json:"port" yaml:"port" toml:"port" env:"PORT"`
	Username        string `json:"username" yaml:"username" toml:"username" env:"USERNAME"`
	Password        string `json:"password" yaml:"password" toml:"password" env:"PASSWORD"`
	From            string `json:"from" yaml:"from" toml:"from" env:"FROM"`
	FallbackAddress string `json:"fallback_address" yaml:"fallback_address" toml:"fallback_address" env:"FALLBACK_ADDRESS"`
}

// DefaultConfig returns the configuration used when no file or environment overrides exist.
func DefaultConfig() Config {
	return Config{
		Storage: StorageConfig{
			Backend: "local",
			Dir:     "exports",
			Region:  "us-east-1",
		},
		State: StateConfig{
			Backend:    "memory",
			SQLitePath: "billing-alerts.db",
			RedisAddr:  "localhost:6379",
			KeyPrefix:  "billing",
		},
		Mail: MailConfig{
			Backend: "console",
			Port:    587,
			From:    "billing-alerts@localhost",
		},
		HTTPAddr:    ":8080",
		HistoryDays: 90,
		WarmWorkers: 4,
		LogLevel:    "info",
		LogEncoding: "console",
	}
}
