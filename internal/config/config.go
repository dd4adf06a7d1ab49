package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const defaultJWTSecret = "supersecretkey"

type Config struct {
	Addr          string        `yaml:"addr"`
	JWTSecret     string        `yaml:"jwt_secret"`
	APITimeout    time.Duration `yaml:"timeout"`
	DatabasePath  string        `yaml:"database_path"`
	BackupDir     string        `yaml:"backup_dir"`
	TokenDuration time.Duration `yaml:"token_duration"`
	Admin         AdminConfig   `yaml:"admin"`
}

// AdminConfig seeds the local fallback administrator account created at
// startup when no admin exists yet.
type AdminConfig struct {
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

func LoadConfig(path string) (*Config, error) {
	apiTimeout := 15 * time.Second
	tokenDuration := 1 * time.Hour

	cfg := &Config{
		Addr:          getEnv("FLOURISH_ADDR", ":8080"),
		JWTSecret:     getEnv("FLOURISH_JWT_SECRET", defaultJWTSecret),
		APITimeout:    apiTimeout,
		DatabasePath:  getEnv("FLOURISH_DATABASE_PATH", "flourish.db"),
		BackupDir:     getEnv("FLOURISH_BACKUP_DIR", "backups"),
		TokenDuration: tokenDuration,
		Admin: AdminConfig{
			Email:    getEnv("FLOURISH_ADMIN_EMAIL", "admin@localhost"),
			Password: os.Getenv("FLOURISH_ADMIN_PASSWORD"),
		},
	}
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		if err := dec.Decode(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// Validate rejects configurations that must never reach production.
// The default JWT secret is tolerated only in development.
func (c *Config) Validate() error {
	env := getEnv("FLOURISH_ENV", "development")
	if c.JWTSecret == defaultJWTSecret && env != "development" {
		return fmt.Errorf("insecure jwt_secret not allowed in %s", env)
	}
	if c.Addr == "" {
		return fmt.Errorf("addr is required")
	}
	if c.DatabasePath == "" {
		return fmt.Errorf("database_path is required")
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return def
}
