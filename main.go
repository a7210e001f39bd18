package main

import (
	"log"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"defaulter-server-go/config"
	"defaulter-server-go/email"
	"defaulter-server-go/handlers"
	"defaulter-server-go/notify"
	"defaulter-server-go/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// The upload directory is always on disk, even with the Redis artifact
	// backend: uploads land there before parsing.
	for _, dir := range []string{cfg.UploadDir, cfg.ResultsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Fatalf("Failed to create directory %s: %v", dir, err)
		}
	}

	artifacts := buildStore(cfg)
	dispatcher := notify.NewDispatcher(buildMailer(cfg), cfg.FromName, cfg.EmailTimeout)
	apiHandler := handlers.NewAPIHandler(artifacts, dispatcher, cfg)

	// Initialize Gin router
	router := gin.Default()
	router.Use(cors.Default()) // React frontend runs on a different origin

	router.GET("/", handlers.HealthCheck)
	router.POST("/upload", apiHandler.Upload)
	router.GET("/download/:filename", apiHandler.DownloadResults)
	router.POST("/send-email", apiHandler.SendEmailReport)
	router.POST("/send-student-email", apiHandler.SendStudentEmail)
	router.POST("/generate-graphs", apiHandler.GenerateGraphs)
	router.GET("/download-graph/:filename", apiHandler.DownloadGraph)

	log.Printf("Starting server on %s", cfg.ListenAddr)
	if err := router.Run(cfg.ListenAddr); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}

// buildStore selects the artifact backend from configuration.
func buildStore(cfg *config.Config) store.ArtifactStore {
	switch cfg.StorageBackend {
	case "redis":
		st, err := store.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Fatalf("Failed to initialize Redis artifact store: %v", err)
		}
		return st
	case "fs":
		return store.NewFileStore(cfg.ResultsDir)
	default:
		log.Fatalf("Unknown storage backend %q (expected fs or redis)", cfg.StorageBackend)
		return nil
	}
}

// buildMailer selects the email transport from configuration.
func buildMailer(cfg *config.Config) email.Mailer {
	switch cfg.EmailBackend {
	case "sendgrid":
		if cfg.SendgridAPIKey == "" {
			log.Fatalf("DP_SENDGRIDAPIKEY is required for the sendgrid email backend")
		}
		return email.NewSendgridMailer(cfg.SendgridAPIKey, cfg.FromName, cfg.FromEmail)
	case "console":
		return email.NewConsoleMailer()
	default:
		log.Fatalf("Unknown email backend %q (expected sendgrid or console)", cfg.EmailBackend)
		return nil
	}
}
