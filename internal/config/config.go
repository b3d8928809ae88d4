package config

import (
	"strings"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port        int    `envconfig:"PORT" default:"8080"`
	DatabaseURL string `envconfig:"DATABASE_URL"` // empty keeps the journal in memory
	JWTSecret   string `envconfig:"JWT_SECRET" default:"dev-secret-change-in-production"`
	// EditorPasswordHash is a bcrypt hash. When empty, sessions are issued
	// without a password.
	EditorPasswordHash      string  `envconfig:"EDITOR_PASSWORD_HASH"`
	AllowedOrigins          string  `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:5173,http://localhost:3000"`
	ChangeWidthControlWidth float64 `envconfig:"CHANGE_WIDTH_CONTROL_WIDTH" default:"24"`
	UndoLimit               int     `envconfig:"UNDO_LIMIT" default:"40"`
	LogLevel                string  `envconfig:"LOG_LEVEL" default:"info"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Origins splits AllowedOrigins on commas.
func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
