package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	_ "github.com/joho/godotenv/autoload"
)

// Config is the full runtime configuration, read from the environment
// (and a .env file if present).
type Config struct {
	App     AppConfig
	HTTP    HTTPConfig
	DB      DBConfig
	Redis   RedisConfig
	Session SessionConfig
}

type AppConfig struct {
	Env        string `env:"APP_ENV" env-default:"dev"`
	BcryptCost int    `env:"BCRYPT_COST" env-default:"12"`
}

type HTTPConfig struct {
	Port         int           `env:"PORT" env-default:"8080"`
	ReadTimeout  time.Duration `env:"HTTP_READ_TIMEOUT" env-default:"10s"`
	WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" env-default:"30s"`
	IdleTimeout  time.Duration `env:"HTTP_IDLE_TIMEOUT" env-default:"1m"`
	// Comma separated; "https://*,http://*" keeps the old permissive default.
	AllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" env-default:"https://*,http://*"`
}

type DBConfig struct {
	Host     string `env:"BLUEPRINT_DB_HOST" env-default:"localhost"`
	Port     string `env:"BLUEPRINT_DB_PORT" env-default:"5432"`
	Database string `env:"BLUEPRINT_DB_DATABASE" env-required:"true"`
	Username string `env:"BLUEPRINT_DB_USERNAME" env-required:"true"`
	Password string `env:"BLUEPRINT_DB_PASSWORD"`
	Schema   string `env:"BLUEPRINT_DB_SCHEMA" env-default:"public"`
}

// DSN builds the key/value connection string understood by the postgres driver.
func (c DBConfig) DSN() string {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.Host, c.Username, c.Password, c.Database, c.Port)
	if c.Schema != "" {
		dsn += " search_path=" + c.Schema
	}
	return dsn
}

type RedisConfig struct {
	// Empty Addr means sessions are kept in process memory.
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" env-default:"0"`
}

type SessionConfig struct {
	TTL          time.Duration `env:"SESSION_TTL" env-default:"336h"`
	CookieSecure bool          `env:"SESSION_COOKIE_SECURE" env-default:"false"`
	// Signs the flash message cookie. Empty in dev means a random key per process.
	Secret string `env:"SESSION_SECRET"`
}

const minSecretLength = 32

// Load reads the configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("read env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("PORT out of range: %d", c.HTTP.Port)
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	if !c.App.IsDev() && len(c.Session.Secret) < minSecretLength {
		return fmt.Errorf("SESSION_SECRET must be at least %d bytes outside dev", minSecretLength)
	}
	if c.App.BcryptCost < 4 || c.App.BcryptCost > 31 {
		return fmt.Errorf("BCRYPT_COST must be between 4 and 31, got %d", c.App.BcryptCost)
	}
	return nil
}

// IsDev reports whether the app runs in development mode.
func (c AppConfig) IsDev() bool {
	return strings.EqualFold(c.Env, "dev") || strings.EqualFold(c.Env, "development")
}

// Origins splits AllowedOrigins into a list for the CORS handler.
func (c HTTPConfig) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
