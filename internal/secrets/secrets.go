// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets resolves the process-wide default credentials for the
// search and generation capabilities. Sources, highest precedence first:
// a directory of plain-text key files, the process environment, and a
// dotenv file.
//
// Supported key files: google-api-key, tavily-api-key.
package secrets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"github.com/pdiddy/pathway-engine/pkg/types"
)

// Key file names inside the secrets directory.
const (
	GoogleKeyFile = "google-api-key"
	TavilyKeyFile = "tavily-api-key"
)

// Environment variable names, shared with the dotenv file.
const (
	GoogleKeyEnv = "GOOGLE_API_KEY"
	TavilyKeyEnv = "TAVILY_API_KEY"
)

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files produce a warning on stderr but do not abort.
func Load(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", entry.Name(), err)
			continue
		}

		if value := strings.TrimSpace(string(data)); value != "" {
			secrets[entry.Name()] = value
		}
	}

	return secrets, nil
}

// Sources names where Resolve looks for credentials. Empty paths are skipped.
type Sources struct {
	Dir     string
	EnvFile string

	// Getenv defaults to os.Getenv. Tests substitute a map lookup.
	Getenv func(string) string
}

// Resolve builds the default credentials from src. Keys that no source
// provides stay empty; whether that is fatal is decided per request by the
// profile validator.
func Resolve(src Sources) (types.Credentials, error) {
	getenv := src.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}

	files := map[string]string{}
	if src.Dir != "" {
		var err error
		if files, err = Load(src.Dir); err != nil {
			return types.Credentials{}, err
		}
	}

	dotenv := map[string]string{}
	if src.EnvFile != "" {
		m, err := godotenv.Read(src.EnvFile)
		switch {
		case err == nil:
			dotenv = m
		case errors.Is(err, fs.ErrNotExist):
		default:
			return types.Credentials{}, fmt.Errorf("reading env file %s: %w", src.EnvFile, err)
		}
	}

	pick := func(file, env string) string {
		if v := files[file]; v != "" {
			return v
		}
		if v := strings.TrimSpace(getenv(env)); v != "" {
			return v
		}
		return strings.TrimSpace(dotenv[env])
	}

	return types.Credentials{
		SearchKey:     pick(TavilyKeyFile, TavilyKeyEnv),
		GenerationKey: pick(GoogleKeyFile, GoogleKeyEnv),
	}, nil
}
