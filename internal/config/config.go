package config

import (
	"errors"
	"io/fs"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port         string
	DBDSN        string
	MediaDir     string
	LogFile      string
	RedisURL     string
	TemplatesDir string
}

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// Load reads the environment, after merging a .env file from the working
// directory when there is one. Variables already set win over the file.
func Load() Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("[config] ignoring .env: %v", err)
	}

	cfg := Config{
		Port:         env("PORT", "8080"),
		DBDSN:        env("DB_DSN", "avecplaisir.db"), // sqlite file in project root
		MediaDir:     env("MEDIA_DIR", "./web/media"),
		LogFile:      env("LOG_FILE", "./avecplaisir.log"),
		RedisURL:     os.Getenv("REDIS_URL"),
		TemplatesDir: env("TEMPLATES_DIR", "./web/templates"),
	}
	log.Printf("[config] PORT=%s DB_DSN=%s MEDIA_DIR=%s LOG_FILE=%s REDIS=%t",
		cfg.Port, redactDSN(cfg.DBDSN), cfg.MediaDir, cfg.LogFile, cfg.RedisURL != "")
	return cfg
}

// redactDSN hides credentials of server DSNs in the startup line.
func redactDSN(dsn string) string {
	if i := strings.LastIndexByte(dsn, '@'); i >= 0 {
		return "***" + dsn[i:]
	}
	return dsn
}
