package main

import (
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
)

func loadDotenv() {
	for _, p := range []string{".env", filepath.Join("..", ".env")} {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Overload(p)
			log.Println("[env] loaded", p)
			return
		}
	}
}

func newRouter(cfg Config) *chi.Mux {
	r := chi.NewRouter()

	// allow comma-separated list of origins
	var origins []string
	for _, p := range strings.Split(cfg.CORSOrigin, ",") {
		if o := strings.TrimRight(strings.TrimSpace(p), "/"); o != "" {
			origins = append(origins, o)
		}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	// Finish bare OPTIONS quickly
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if req.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, req)
		})
	})

	// ---- Routes
	r.Post("/api/register", handleRegister)
	r.Post("/api/login", handleLogin)

	r.Get("/api/comments", handleListComments)
	r.Post("/api/comments", handleCreateComment)
	r.Put("/api/comments/{id}", handleEditComment)
	r.Delete("/api/comments/{id}", handleDeleteComment)

	// Health
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	return r
}

func main() {
	loadDotenv()
	cfg := loadConfig()

	if cfg.DatabaseURL != "" {
		st, err := newSQLStore(openDB(cfg.DatabaseURL))
		if err != nil {
			log.Fatalf("[store] init failed: %v", err)
		}
		store = st
		log.Println("[store] using postgres document store")
	} else {
		store = newFileStore(cfg.DBPath)
		log.Println("[store] using file store:", cfg.DBPath)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           newRouter(cfg),
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Println("API listening on", srv.Addr, "CORS_ORIGIN:", cfg.CORSOrigin)
	log.Fatal(srv.ListenAndServe())
}
