package config

import (
	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// envFiles lists the dotenv files tried, in order. Missing files are fine.
var envFiles = []string{".env"}

// parseEnv overlays PM_* environment variables onto config. Variables found
// in a .env file are loaded first but never override the real environment.
// Malformed values panic, like a malformed JSON file does.
func parseEnv(config *Config) {
	for _, f := range envFiles {
		_ = godotenv.Load(f)
	}

	if err := env.Parse(config); err != nil {
		panic(err)
	}
}
