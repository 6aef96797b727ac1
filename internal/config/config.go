package config

import (
	"os"
	"path/filepath"
)

const MaxUploadBytes = 4 * 1024 * 1024 // 4MB uploads

type Config struct {
	SecretKey      string
	DatabaseURL    string // Postgres DSN; empty means SQLite
	SQLitePath     string
	UploadDir      string
	TemplateGlob   string
	Port           string
	MaxUploadBytes int64
}

func New() *Config {
	cfg := &Config{
		SecretKey:      os.Getenv("SECRET_KEY"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		SQLitePath:     os.Getenv("SQLITE_PATH"),
		UploadDir:      os.Getenv("UPLOAD_DIR"),
		TemplateGlob:   os.Getenv("TEMPLATE_GLOB"),
		Port:           os.Getenv("PORT"),
		MaxUploadBytes: MaxUploadBytes,
	}
	if cfg.SecretKey == "" {
		cfg.SecretKey = "dev-secret-key-change-this"
	}
	if cfg.SQLitePath == "" {
		cfg.SQLitePath = filepath.Join("instance", "app.db")
	}
	if cfg.UploadDir == "" {
		cfg.UploadDir = filepath.Join("static", "uploads")
	}
	if cfg.TemplateGlob == "" {
		cfg.TemplateGlob = filepath.Join("web", "templates", "*.html")
	}
	if cfg.Port == "" {
		cfg.Port = "5000"
	}
	return cfg
}
