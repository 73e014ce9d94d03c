// Package config handles loading and parsing application configuration.
// Values come from these sources (later ones win):
//  1. Defaults declared on the struct tags (env-default:"...")
//  2. A YAML file given with --config=/path/to/config.yaml or
//     CONFIG_PATH=/path/to/config.yaml (the flag wins when both are set)
//  3. Environment variables, including any set in a .env file in the
//     working directory
//
// Unlike a server, the tool is usable with no configuration at all: every
// field has a default, so a config file is optional.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config is the root configuration structure.
// Every field maps to a key in the YAML file AND can be overridden
// by the corresponding environment variable (env:"...").
type Config struct {
	// Env controls log format and verbosity.
	// Valid values: "dev", "staging", "prod"
	Env string `yaml:"env" env:"ENV" env-default:"prod" validate:"oneof=dev staging prod"`

	// StoragePath is the snapshot file: a JSON document or a SQLite .db
	// file depending on StorageDriver.
	StoragePath string `yaml:"storage_path" env:"STORAGE_PATH" env-default:"students.json" validate:"required"`

	// StorageDriver selects the snapshot backend.
	StorageDriver string `yaml:"storage_driver" env:"STORAGE_DRIVER" env-default:"json" validate:"oneof=json sqlite"`

	// PasswordHasher is the algorithm used for new password digests.
	// Existing digests of any supported format still verify.
	PasswordHasher string `yaml:"password_hasher" env:"PASSWORD_HASHER" env-default:"sha256" validate:"oneof=sha256 bcrypt argon2id"`

	// LogPath is the file log lines are appended to. The menu owns stdout,
	// so logs never go there. "" or "-" means stderr.
	LogPath string `yaml:"log_path" env:"LOG_PATH" env-default:"student-directory.log"`
}

// LogToStderr reports whether logs should go to stderr instead of a file.
func (c *Config) LogToStderr() bool {
	return c.LogPath == "" || c.LogPath == "-"
}

// ConfigPath picks the config file: the --config flag value when set,
// otherwise CONFIG_PATH. An empty result means no file.
func ConfigPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return os.Getenv("CONFIG_PATH")
}

// Load reads, validates, and returns the application config. path may be
// empty, in which case only defaults and the environment are used.
func Load(path string) (*Config, error) {
	// A missing .env is normal; a broken one is not.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config.Load: .env: %w", err)
	}

	var cfg Config
	if path != "" {
		// Verify the file exists before trying to read it, so the user
		// gets a clear message rather than a cryptic open error.
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config.Load: config file does not exist: %s", path)
		}
		// cleanenv.ReadConfig reads the YAML file and then applies env
		// vars and defaults on top.
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config.Load: read %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config.Load: read env: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config.Load: invalid config: %w", err)
	}

	return &cfg, nil
}
