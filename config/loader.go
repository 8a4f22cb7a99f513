package config

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	"github.com/zoernert/rhajaina-dal/operation"
)

// Load reads a YAML configuration file. A .env file in the working
// directory, if present, is loaded into the environment first, and
// ${VAR}-style references in the YAML are expanded from the environment
// before parsing.
func Load(path string) (Config, error) {
	// Missing .env is fine; it only exists in local development.
	_ = godotenv.Load()

	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(raw)
}

// Parse decodes YAML bytes into a validated Config, expanding environment
// references first.
func Parse(raw []byte) (Config, error) {
	expanded := os.ExpandEnv(string(raw))

	var cfg Config
	if err := yaml.UnmarshalStrict([]byte(expanded), &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Logger builds the slog logger described by the logging section, writing to
// stderr.
func (c Config) Logger() *slog.Logger {
	var level slog.Level
	switch c.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	if c.Logging.Format == "text" {
		return operation.NewLogger(operation.WithTextOutput(os.Stderr, level)).Slog()
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
