package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// loadDotEnv loads environment variables from .env when present.
// Existing process environment variables are not overridden.
func loadDotEnv() error {
	err := godotenv.Load()
	if err == nil {
		return nil
	}

	if errors.Is(err, os.ErrNotExist) {
		return nil
	}

	return fmt.Errorf("load .env: %w", err)
}

// addr is the listen address, INTEGRALS_ADDR or :8080.
func addr() string {
	if v := os.Getenv("INTEGRALS_ADDR"); v != "" {
		return v
	}
	return ":8080"
}

// staticDir is where the front end is served from, INTEGRALS_STATIC_DIR
// or web/static.
func staticDir() string {
	if v := os.Getenv("INTEGRALS_STATIC_DIR"); v != "" {
		return v
	}
	return "web/static"
}
