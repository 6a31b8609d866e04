package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const (
	EnvConfigPath = "NOTES_CONFIG"
	EnvStoreURL   = "NOTES_STORE_URL"
	EnvStoreKey   = "NOTES_STORE_KEY"

	DefaultConfigPath = "config.yaml"
)

// StoreCredentials identify and authenticate the client to the note store.
type StoreCredentials struct {
	URL string
	Key string
}

// ConfigurationError is fatal: the process cannot start without a usable
// store.
type ConfigurationError struct {
	Missing []string
	Reason  string
}

func (e *ConfigurationError) Error() string {
	var s strings.Builder
	s.WriteString("configuration error")
	if len(e.Missing) > 0 {
		s.WriteString(": missing environment variable(s) ")
		s.WriteString(strings.Join(e.Missing, ", "))
	}
	if e.Reason != "" {
		s.WriteString(": ")
		s.WriteString(e.Reason)
	}
	return s.String()
}

// LoadEnv reads a .env file from the working directory when there is one.
func LoadEnv(filenames ...string) {
	if err := godotenv.Load(filenames...); err != nil {
		configLogger.Debug().Err(err).Msg("No .env file loaded")
	}
}

func ConfigPath() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	return DefaultConfigPath
}

func LoadStoreCredentials() (StoreCredentials, error) {
	return storeCredentialsFrom(os.Getenv)
}

func storeCredentialsFrom(getenv func(string) string) (StoreCredentials, error) {
	creds := StoreCredentials{
		URL: strings.TrimSpace(getenv(EnvStoreURL)),
		Key: strings.TrimSpace(getenv(EnvStoreKey)),
	}

	var missing []string
	if creds.URL == "" {
		missing = append(missing, EnvStoreURL)
	}
	if creds.Key == "" {
		missing = append(missing, EnvStoreKey)
	}
	if len(missing) > 0 {
		return StoreCredentials{}, &ConfigurationError{Missing: missing}
	}

	return creds, nil
}
