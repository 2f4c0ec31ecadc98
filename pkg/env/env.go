package env

import "os"

// Get reads an environment variable, returning fallback when the variable is
// unset or empty.
func Get(key, fallback string) string {
	val, ok := os.LookupEnv(key)
	if !ok || val == "" {
		return fallback
	}
	return val
}
