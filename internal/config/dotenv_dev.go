//go:build dev

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// loadDotEnv loads DOTENV_FILE, or ./.env when it is unset. Only a missing
// default file is tolerated.
func loadDotEnv() error {
	path, explicit := os.LookupEnv("DOTENV_FILE")
	if path = strings.TrimSpace(path); path == "" {
		path, explicit = ".env", false
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) && !explicit {
			return nil
		}
		return fmt.Errorf("dotenv %s: %w", path, err)
	}
	return godotenv.Load(path)
}
