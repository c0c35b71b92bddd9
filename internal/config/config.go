package config

import (
	"log"
	"net"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Store     StoreConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Owner     OwnerConfig
	JWT       JWTConfig
}

type ServerConfig struct {
	Host     string
	Port     string
	Env      string
	LogLevel string
}

// StoreConfig selects the persistent store backend.
type StoreConfig struct {
	Driver          string // "file" or "postgres"
	Path            string
	SeedDir         string
	ReseedOnCorrupt bool
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	Schema   string
}

// RedisConfig is optional; an empty Addr disables rate limiting.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

// OwnerConfig enables server-side owner sessions when PasswordHash is set.
type OwnerConfig struct {
	Username     string
	PasswordHash string
}

type JWTConfig struct {
	Secret       string
	AccessExpiry int // in minutes
}

// ClientConfig configures the catalog client and catalogctl.
type ClientConfig struct {
	BaseURL       string
	Token         string
	Mode          string // "remote" or "local"
	SessionFile   string
	OwnerUsername string
	OwnerPassword string
	Timeout       time.Duration
	Retries       int
}

// IsDevelopment reports whether the server runs outside production.
func (c *Config) IsDevelopment() bool {
	return c.Server.Env != "production"
}

// OwnerAuthEnabled reports whether mutating routes require an owner token.
func (c *Config) OwnerAuthEnabled() bool {
	return c.Owner.PasswordHash != "" && c.JWT.Secret != ""
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, c.Server.Port)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Printf("Warning: Could not read config file: %v", err)
		}
	}
	return v
}

func Load() *Config {
	v := newViper()

	// Set defaults
	v.SetDefault("HOST", "0.0.0.0")
	v.SetDefault("PORT", "3001")
	v.SetDefault("SERVER_ENV", "development")
	v.SetDefault("LOG_LEVEL", "")
	v.SetDefault("STORE_DRIVER", "file")
	v.SetDefault("STORE_PATH", "storage/db.json")
	v.SetDefault("SEED_DIR", "")
	v.SetDefault("STORE_RESEED_ON_CORRUPT", false)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_SCHEMA", "public")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("RATE_LIMIT_REQUESTS", 60)
	v.SetDefault("RATE_LIMIT_WINDOW", time.Minute)
	v.SetDefault("OWNER_USERNAME", "FormalDev")
	v.SetDefault("JWT_ACCESS_EXPIRY", 60)

	return &Config{
		Server: ServerConfig{
			Host:     v.GetString("HOST"),
			Port:     v.GetString("PORT"),
			Env:      v.GetString("SERVER_ENV"),
			LogLevel: v.GetString("LOG_LEVEL"),
		},
		Store: StoreConfig{
			Driver:          v.GetString("STORE_DRIVER"),
			Path:            v.GetString("STORE_PATH"),
			SeedDir:         v.GetString("SEED_DIR"),
			ReseedOnCorrupt: v.GetBool("STORE_RESEED_ON_CORRUPT"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			Database: v.GetString("DB_DATABASE"),
			Schema:   v.GetString("DB_SCHEMA"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		RateLimit: RateLimitConfig{
			Requests: v.GetInt("RATE_LIMIT_REQUESTS"),
			Window:   v.GetDuration("RATE_LIMIT_WINDOW"),
		},
		Owner: OwnerConfig{
			Username:     v.GetString("OWNER_USERNAME"),
			PasswordHash: v.GetString("OWNER_PASSWORD_HASH"),
		},
		JWT: JWTConfig{
			Secret:       v.GetString("JWT_SECRET"),
			AccessExpiry: v.GetInt("JWT_ACCESS_EXPIRY"),
		},
	}
}

// LoadClient reads the client settings. A .env file in the working
// directory is merged into the process environment first.
func LoadClient() *ClientConfig {
	_ = godotenv.Load()
	v := newViper()

	v.SetDefault("CATALOG_API_URL", "http://localhost:3001/api")
	v.SetDefault("CATALOG_MODE", "remote")
	v.SetDefault("CATALOG_SESSION_FILE", ".catalog-session.json")
	v.SetDefault("CATALOG_OWNER_USERNAME", "FormalDev")
	v.SetDefault("CATALOG_TIMEOUT", 10*time.Second)
	v.SetDefault("CATALOG_RETRIES", 3)

	return &ClientConfig{
		BaseURL:       v.GetString("CATALOG_API_URL"),
		Token:         v.GetString("CATALOG_API_TOKEN"),
		Mode:          v.GetString("CATALOG_MODE"),
		SessionFile:   v.GetString("CATALOG_SESSION_FILE"),
		OwnerUsername: v.GetString("CATALOG_OWNER_USERNAME"),
		OwnerPassword: v.GetString("CATALOG_OWNER_PASSWORD"),
		Timeout:       v.GetDuration("CATALOG_TIMEOUT"),
		Retries:       v.GetInt("CATALOG_RETRIES"),
	}
}
