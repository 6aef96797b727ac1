package main

import (
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/davarpanahhossein24-glitch/mini-freelance/internal/config"
	"github.com/davarpanahhossein24-glitch/mini-freelance/internal/database"
	"github.com/davarpanahhossein24-glitch/mini-freelance/internal/models"
	"github.com/davarpanahhossein24-glitch/mini-freelance/internal/server"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Info(".env not loaded, continuing with environment variables")
	}

	if m := os.Getenv("GIN_MODE"); m != "" {
		gin.SetMode(m)
	}

	cfg := config.New()

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		logrus.WithError(err).Fatal("failed to create upload directory")
	}

	db, err := database.Connect(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("failed to connect to database")
	}

	// run migrations to create tables
	if err := database.Migrate(db, &models.User{}, &models.Project{}, &models.Bid{}); err != nil {
		logrus.WithError(err).Fatal("migrations failed")
	}

	r := server.NewRouter(db, cfg)

	logrus.WithField("port", cfg.Port).Info("starting server")
	if err := r.Run(":" + cfg.Port); err != nil {
		logrus.WithError(err).Fatal("server stopped")
	}
}
