package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all runtime settings for the service. It is built once in main
// and handed to constructors explicitly; nothing reads the environment after
// Load returns.
type Config struct {
	AppName    string
	ListenAddr string

	UploadDir      string
	ResultsDir     string
	MaxUploadBytes int64

	// DefaultThreshold is the attendance percentage cutoff used when a
	// request does not supply one.
	DefaultThreshold float64

	// StorageBackend selects the artifact store: "fs" or "redis".
	StorageBackend string
	RedisAddr      string
	RedisPassword  string
	RedisDB        int

	// EmailBackend selects the mail transport: "sendgrid" or "console".
	EmailBackend   string
	SendgridAPIKey string
	FromName       string
	FromEmail      string
	EmailTimeout   time.Duration
}

// Load reads configuration from DP_-prefixed environment variables, with an
// optional .env file loaded first if one exists in the working directory.
func Load() (*Config, error) {
	// load .env if it exists (ignore if it does not)
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return nil, err
		}
		log.Println("Loaded configuration overrides from .env")
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	v := viper.New()
	v.SetTypeByDefaultValue(true)

	// defaults
	v.SetDefault("appName", "Defaulter Prediction")
	v.SetDefault("listenAddr", ":5000")
	v.SetDefault("uploadDir", "uploads")
	v.SetDefault("resultsDir", "results")
	v.SetDefault("maxUploadBytes", int64(16*1024*1024))
	v.SetDefault("defaultThreshold", 75.0)
	v.SetDefault("storageBackend", "fs")
	v.SetDefault("redisAddr", "127.0.0.1:6379")
	v.SetDefault("redisPassword", "")
	v.SetDefault("redisDB", 0)
	v.SetDefault("emailBackend", "console")
	v.SetDefault("sendgridApiKey", "")
	v.SetDefault("fromName", "Class Teacher")
	v.SetDefault("fromEmail", "noreply@localhost")
	v.SetDefault("emailTimeout", 10*time.Second)

	v.SetEnvPrefix("DP")
	v.AutomaticEnv()

	cfg := &Config{
		AppName:          v.GetString("appName"),
		ListenAddr:       v.GetString("listenAddr"),
		UploadDir:        v.GetString("uploadDir"),
		ResultsDir:       v.GetString("resultsDir"),
		MaxUploadBytes:   v.GetInt64("maxUploadBytes"),
		DefaultThreshold: v.GetFloat64("defaultThreshold"),
		StorageBackend:   v.GetString("storageBackend"),
		RedisAddr:        v.GetString("redisAddr"),
		RedisPassword:    v.GetString("redisPassword"),
		RedisDB:          v.GetInt("redisDB"),
		EmailBackend:     v.GetString("emailBackend"),
		SendgridAPIKey:   v.GetString("sendgridApiKey"),
		FromName:         v.GetString("fromName"),
		FromEmail:        v.GetString("fromEmail"),
		EmailTimeout:     v.GetDuration("emailTimeout"),
	}
	return cfg, nil
}
