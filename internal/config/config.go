package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Gemini    GeminiConfig    `mapstructure:"gemini"`
	Supabase  SupabaseConfig  `mapstructure:"supabase"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Analysis  AnalysisConfig  `mapstructure:"analysis"`
	Community CommunityConfig `mapstructure:"community"`
	Session   SessionConfig   `mapstructure:"session"`
}

type ServerConfig struct {
	Port int        `mapstructure:"port"`
	Mode string     `mapstructure:"mode"`
	CORS CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
	AllowAllOrigins bool     `mapstructure:"allow_all_origins"`
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"` // postgres or sqlite
	DSNValue        string        `mapstructure:"dsn"`
	Path            string        `mapstructure:"path"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
	SeedScripts     bool          `mapstructure:"seed_scripts"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DSN returns the connection string for the configured driver.
// SQLite falls back to the file path when no DSN is set.
func (c *DatabaseConfig) DSN() string {
	if c.DSNValue != "" {
		return c.DSNValue
	}
	if c.Driver == "sqlite" || c.Driver == "" {
		return c.Path
	}
	return ""
}

type GeminiConfig struct {
	APIKey          string `mapstructure:"api_key"`
	Model           string `mapstructure:"model"`
	MaxOutputTokens int    `mapstructure:"max_output_tokens"`
	TargetLanguage  string `mapstructure:"target_language"`
}

// SupabaseConfig points at the hosted backend's auth API used to resolve identities.
// Leaving URL empty makes every caller anonymous.
type SupabaseConfig struct {
	URL     string        `mapstructure:"url"`
	AnonKey string        `mapstructure:"anon_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type StorageConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Type      string `mapstructure:"type"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	PublicURL string `mapstructure:"public_url"`
}

type AnalysisConfig struct {
	MaxImageBytes int64 `mapstructure:"max_image_bytes"`
}

type CommunityConfig struct {
	FeedLimit      int  `mapstructure:"feed_limit"`
	AllowAnonymous bool `mapstructure:"allow_anonymous_comments"`
}

type SessionConfig struct {
	TTL          time.Duration `mapstructure:"ttl"`
	ReapSchedule string        `mapstructure:"reap_schedule"`
}

// Load reads configuration from an optional YAML file, .env and the environment.
// Parameters:
//   - configPath: explicit config file path; empty searches ./configs and the working directory.
//
// Returns:
//   - *Config: loaded configuration.
//   - error: non-nil if the file cannot be parsed or validation fails.
func Load(configPath string) (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Secrets come from the environment
	v.BindEnv("gemini.api_key", "GEMINI_API_KEY")
	v.BindEnv("gemini.model", "GEMINI_MODEL")
	v.BindEnv("database.driver", "DATABASE_DRIVER")
	v.BindEnv("database.dsn", "DATABASE_DSN")
	// No default: IsSet must only see an explicit choice.
	v.BindEnv("database.auto_migrate", "DATABASE_AUTO_MIGRATE")
	v.BindEnv("supabase.url", "SUPABASE_URL")
	v.BindEnv("supabase.anon_key", "SUPABASE_ANON_KEY")
	v.BindEnv("storage.endpoint", "STORAGE_ENDPOINT")
	v.BindEnv("storage.access_key", "STORAGE_ACCESS_KEY")
	v.BindEnv("storage.secret_key", "STORAGE_SECRET_KEY")
	v.BindEnv("storage.bucket", "STORAGE_BUCKET")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// The local sqlite file owns its schema; postgres tables belong to Supabase.
	if cfg.Database.Driver == "sqlite" && !v.IsSet("database.auto_migrate") {
		cfg.Database.AutoMigrate = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.cors.allow_all_origins", true)
	v.SetDefault("server.cors.allowed_origins", []string{})
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./data/epigraph.db")
	v.SetDefault("database.seed_scripts", false)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("gemini.model", "gemini-1.5-flash")
	v.SetDefault("gemini.max_output_tokens", 1000)
	v.SetDefault("gemini.target_language", "English")
	v.SetDefault("supabase.timeout", 10*time.Second)
	v.SetDefault("storage.enabled", false)
	v.SetDefault("storage.use_ssl", true)
	v.SetDefault("storage.bucket", "inscriptions")
	v.SetDefault("analysis.max_image_bytes", 10*1024*1024)
	v.SetDefault("community.feed_limit", 20)
	v.SetDefault("community.allow_anonymous_comments", false)
	v.SetDefault("session.ttl", time.Hour)
	v.SetDefault("session.reap_schedule", "@every 5m")
}

// Validate fails fast on settings that would otherwise surface as confusing
// downstream errors.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Gemini.APIKey) == "" {
		return fmt.Errorf("config: gemini.api_key is required (set GEMINI_API_KEY)")
	}
	switch c.Database.Driver {
	case "postgres":
		if c.Database.DSN() == "" {
			return fmt.Errorf("config: database.dsn is required for the postgres driver (set DATABASE_DSN)")
		}
		if c.Database.AutoMigrate {
			return fmt.Errorf("config: database.auto_migrate is only supported with the sqlite driver")
		}
		if c.Database.SeedScripts {
			return fmt.Errorf("config: database.seed_scripts is only supported with the sqlite driver")
		}
	case "sqlite":
	default:
		return fmt.Errorf("config: unknown database driver %q", c.Database.Driver)
	}
	if c.Storage.Enabled && c.Storage.Bucket == "" {
		return fmt.Errorf("config: storage.bucket is required when storage is enabled")
	}
	if c.Analysis.MaxImageBytes <= 0 {
		return fmt.Errorf("config: analysis.max_image_bytes must be positive")
	}
	return nil
}
