package main

import (
	"flag"
	"os"

	"github.com/fingermark/fingermark/internal/httpapi"
	"github.com/fingermark/fingermark/pkg/fingermark"
	"github.com/fingermark/fingermark/pkg/logger"
)

// handleServe starts the JSON REST API over the same catalog database the
// other fingermarkctl subcommands use, so a catalog built with `add` is
// immediately servable without a separate fingermarkd invocation.
func handleServe() {
	log := logger.GetLogger()

	serveCmd := flag.NewFlagSet("serve", flag.ExitOnError)
	port := serveCmd.Int("port", 8080, "HTTP server port")
	tempDir := serveCmd.String("temp", os.TempDir(), "Temporary directory for uploads and downloads")
	sampleRate := serveCmd.Int("rate", 11025, "Audio sample rate")
	origins := serveCmd.String("origins", "*", "Comma-separated list of allowed CORS origins (use * for all)")
	serveCmd.Parse(os.Args[2:])

	dbPath := os.Getenv("FINGERMARK_DB_PATH")
	if dbPath == "" {
		dbPath = defaultDBPath
	}

	svc, err := fingermark.NewService(
		fingermark.WithDBPath(dbPath),
		fingermark.WithTempDir(*tempDir),
		fingermark.WithSampleRate(*sampleRate),
	)
	if err != nil {
		log.Fatalf("failed to create service: %v", err)
	}
	defer svc.Close()

	config := &httpapi.ServerConfig{
		Port:           *port,
		DBPath:         dbPath,
		TempDir:        *tempDir,
		SampleRate:     *sampleRate,
		AllowedOrigins: httpapi.SplitOrigins(*origins),
	}

	server := httpapi.NewServer(svc, config)
	if err := server.Start(); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
