package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables that override the connection section of the config file.
// A .env file in the working directory is loaded first when present.
const (
	EnvServer   = "TABLEDUMP_SERVER"
	EnvPort     = "TABLEDUMP_PORT"
	EnvUser     = "TABLEDUMP_USER"
	EnvPassword = "TABLEDUMP_PASSWORD"
	EnvDatabase = "TABLEDUMP_DATABASE"
)

// ApplyEnv overrides connection fields from the environment (and .env).
func ApplyEnv(d *Database) error {
	_ = godotenv.Load()

	get := func(envVar string) string {
		return strings.TrimSpace(os.Getenv(envVar))
	}
	if v := get(EnvServer); v != "" {
		d.Server = v
	}
	if v := get(EnvUser); v != "" {
		d.User = v
	}
	// passwords may legitimately carry surrounding spaces
	if v := os.Getenv(EnvPassword); v != "" {
		d.Password = v
	}
	if v := get(EnvDatabase); v != "" {
		d.Database = v
	}
	if v := get(EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s must be a number, got %q", ErrConfig, EnvPort, v)
		}
		d.Port = port
	}
	return nil
}

// Overrides holds connection values given on the command line. Empty fields are ignored.
type Overrides struct {
	Server   string
	Port     int
	User     string
	Password string
	Database string
}

// Apply copies the non-empty overrides into d.
func (o Overrides) Apply(d *Database) {
	if o.Server != "" {
		d.Server = o.Server
	}
	if o.Port != 0 {
		d.Port = o.Port
	}
	if o.User != "" {
		d.User = o.User
	}
	if o.Password != "" {
		d.Password = o.Password
	}
	if o.Database != "" {
		d.Database = o.Database
	}
}
