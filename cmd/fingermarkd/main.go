package main

import (
	"flag"
	"os"

	"github.com/fingermark/fingermark/internal/httpapi"
	"github.com/fingermark/fingermark/pkg/fingermark"
	"github.com/fingermark/fingermark/pkg/logger"
)

var (
	port           int
	dbPath         string
	tempDir        string
	sampleRate     int
	allowedOrigins string
)

func init() {
	flag.IntVar(&port, "port", 8080, "HTTP server port")
	flag.StringVar(&dbPath, "db", getEnvOrDefault("FINGERMARK_DB_PATH", "fingermark.sqlite3"), "Path to SQLite database")
	flag.StringVar(&tempDir, "temp", getEnvOrDefault("FINGERMARK_TEMP_DIR", os.TempDir()), "Temporary directory")
	flag.IntVar(&sampleRate, "rate", 11025, "Audio sample rate")
	flag.StringVar(&allowedOrigins, "origins", "*", "Comma-separated list of allowed CORS origins (use * for all)")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	flag.Parse()
	log := logger.GetLogger()

	svc, err := fingermark.NewService(
		fingermark.WithDBPath(dbPath),
		fingermark.WithTempDir(tempDir),
		fingermark.WithSampleRate(sampleRate),
	)
	if err != nil {
		log.Fatalf("failed to create service: %v", err)
	}
	defer svc.Close()

	config := &httpapi.ServerConfig{
		Port:           port,
		DBPath:         dbPath,
		TempDir:        tempDir,
		SampleRate:     sampleRate,
		AllowedOrigins: httpapi.SplitOrigins(allowedOrigins),
	}

	server := httpapi.NewServer(svc, config)
	if err := server.Start(); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
