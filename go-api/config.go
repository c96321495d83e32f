package main

import "os"

type Config struct {
	Port        string
	DBPath      string
	DatabaseURL string
	CORSOrigin  string
}

func loadConfig() Config {
	return Config{
		Port:        getenv("PORT", "3000"),
		DBPath:      getenv("DB_PATH", "data.json"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		CORSOrigin:  getenv("CORS_ORIGIN", "*"),
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
