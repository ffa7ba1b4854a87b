package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"
)

type Config struct {
	Port           string        `env:"PORT" envDefault:"5175"`
	DBPath         string        `env:"DB_PATH" envDefault:"./data/app.db"`
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"info"`
	LogPretty      bool          `env:"LOG_PRETTY" envDefault:"false"`
	ClientOrigin   string        `env:"CLIENT_ORIGIN" envDefault:"http://localhost:5173"`
	JWTSecret      string        `env:"JWT_SECRET" envDefault:"dev-secret-change-me"`
	JWTExpiresDays int           `env:"JWT_EXPIRES_DAYS" envDefault:"7"`
	CookieName     string        `env:"COOKIE_NAME" envDefault:"token"`
	LocationsFile  string        `env:"LOCATIONS_FILE"`
	RedisURL       string        `env:"REDIS_URL"`
	OracleAPIKey   string        `env:"ORACLE_API_KEY"`
	OracleBaseURL  string        `env:"ORACLE_BASE_URL" envDefault:"https://api.groq.com/openai/v1"`
	OracleModel    string        `env:"ORACLE_MODEL" envDefault:"llama-3.3-70b-versatile"`
	OracleTimeout  time.Duration `env:"ORACLE_TIMEOUT" envDefault:"15s"`
	SessionTTL     time.Duration `env:"SESSION_TTL" envDefault:"2h"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`
}

// Load parses the process environment. Call godotenv.Load first to pick up a .env file.
func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c Config) validate() error {
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("LOG_LEVEL: %w", err)
	}
	if c.JWTExpiresDays <= 0 {
		return errors.New("JWT_EXPIRES_DAYS must be positive")
	}
	if c.SessionTTL <= 0 {
		return errors.New("SESSION_TTL must be positive")
	}
	return nil
}

// Level returns the parsed zerolog level.
func (c Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return ":" + c.Port
}
