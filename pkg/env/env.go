package env

import "os"

// Get looks up an environment variable, preferring the STOCKROOM_-prefixed
// form, and falls back when neither is set.
func Get(key, fallback string) string {
	if val := os.Getenv("STOCKROOM_" + key); val != "" {
		return val
	}
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
