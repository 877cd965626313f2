package utils

import (
	"fmt"
	"net/url"
)

// WithMigrateScheme rewrites a postgres:// connection string to the pgx://
// scheme registered by golang-migrate's pgx driver.
func WithMigrateScheme(baseURL string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid DB URL: %w", err)
	}
	switch u.Scheme {
	case "postgres", "postgresql", "pgx":
		u.Scheme = "pgx"
	default:
		return "", fmt.Errorf("unsupported DB URL scheme %q", u.Scheme)
	}
	return u.String(), nil
}

// RedactDBURL hides the password so the URL can be logged.
func RedactDBURL(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "<invalid>"
	}
	return u.Redacted()
}
