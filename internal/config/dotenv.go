//go:build !dev

package config

// Release builds read the process environment only.
func loadDotEnv() error {
	return nil
}
