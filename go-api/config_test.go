package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "DB_PATH", "DATABASE_URL", "CORS_ORIGIN"} {
		t.Setenv(k, "")
	}

	cfg := loadConfig()
	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "data.json", cfg.DBPath)
	assert.Equal(t, "", cfg.DatabaseURL)
	assert.Equal(t, "*", cfg.CORSOrigin)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("PORT", "8081")
	t.Setenv("DB_PATH", "/var/lib/faro/data.json")
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432/faro")
	t.Setenv("CORS_ORIGIN", "https://elfaro.example")

	cfg := loadConfig()
	assert.Equal(t, "8081", cfg.Port)
	assert.Equal(t, "/var/lib/faro/data.json", cfg.DBPath)
	assert.Equal(t, "postgres://u:p@localhost:5432/faro", cfg.DatabaseURL)
	assert.Equal(t, "https://elfaro.example", cfg.CORSOrigin)
}
