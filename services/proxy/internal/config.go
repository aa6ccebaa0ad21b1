package internal

import (
	"fmt"
	"net"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	EnvFile string
	Address string
	Port    string
	Debug   bool
}

// ConfigFromEnv must run after the env file has been loaded.
func ConfigFromEnv() Config {
	return Config{
		EnvFile: EnvFile(),
		Address: env("ADDRESS", "127.0.0.1"),
		Port:    env("PORT", "8000"),
		Debug:   os.Getenv("DEBUG") == "1",
	}
}

func (c Config) ListenAddr() string {
	return net.JoinHostPort(c.Address, c.Port)
}

// EnvFile is the path of the NAME=VALUE file merged into the environment at startup.
func EnvFile() string {
	return env("ENV_FILE", ".env")
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// LoadEnv merges the file at path into the process environment.
// Variables already set in the environment win.
func LoadEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("env file %s: %w", path, err)
	}
	return nil
}
