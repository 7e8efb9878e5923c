package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// LoadEnvFile loads the first .env file found next to the working directory
// or one of its parents. Missing files are not an error.
func LoadEnvFile() {
	pwd, err := os.Getwd()
	if err != nil {
		log.Warn().Err(err).Msg("could not get working directory")
		return
	}

	envPaths := []string{
		".env",
		"../.env",
		"../../.env",
		filepath.Join(pwd, ".env"),
		filepath.Join(filepath.Dir(pwd), ".env"),
	}

	for _, envPath := range envPaths {
		if _, err := os.Stat(envPath); err != nil {
			continue
		}
		absPath, _ := filepath.Abs(envPath)
		if err := godotenv.Load(envPath); err != nil {
			log.Warn().Err(err).Str("path", absPath).Msg("failed to load .env file")
			continue
		}
		log.Debug().Str("path", absPath).Msg("loaded environment variables")
		return
	}

	log.Debug().Msg("no .env file found, using system environment variables")
}
