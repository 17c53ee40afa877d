package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fingermark/fingermark/pkg/fingermark"
	"github.com/fingermark/fingermark/pkg/logger"
)

const defaultDBPath = "fingermark.sqlite3"

// newService opens the service against the shared catalog database, so
// separate CLI invocations (add, then later recognise) see the same
// tracks. FINGERMARK_DB_PATH overrides the default file name.
func newService() (fingermark.Service, error) {
	dbPath := os.Getenv("FINGERMARK_DB_PATH")
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	return fingermark.NewService(fingermark.WithDBPath(dbPath))
}

func handleAdd() {
	log := logger.GetLogger()

	args := os.Args[2:]
	var audioPath string
	var flagArgs []string
	for i, arg := range args {
		if !strings.HasPrefix(arg, "-") && audioPath == "" {
			audioPath = arg
		} else {
			flagArgs = append(flagArgs, args[i:]...)
			break
		}
	}

	addCmd := flag.NewFlagSet("add", flag.ExitOnError)
	title := addCmd.String("title", "", "Track title (required)")
	artist := addCmd.String("artist", "", "Artist name (required)")
	source := addCmd.String("source", "", "Provenance identifier (optional): a URL, a catalog id, etc.")
	addCmd.Parse(flagArgs)

	if audioPath == "" {
		fmt.Println("Error: audio file path required")
		fmt.Println("Usage: fingermarkctl add <audio_file> --title <title> --artist <artist> [--source <id>]")
		os.Exit(1)
	}
	if *title == "" || *artist == "" {
		fmt.Println("Error: --title and --artist are required")
		log.Warn("missing required arguments: title and artist")
		os.Exit(1)
	}

	log.Infof("adding track: %q by %q from %s", *title, *artist, audioPath)

	fmt.Println("\nInitializing service...")
	svc, err := newService()
	if err != nil {
		fmt.Printf("Failed to create service: %v\n", err)
		log.Errorf("service init failed: %v", err)
		os.Exit(1)
	}
	defer svc.Close()

	fmt.Println("Fingerprinting audio file...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	trackID, err := svc.AddTrack(ctx, audioPath, *title, *artist, *source)
	if err != nil {
		fmt.Printf("\nFailed to add track: %v\n", err)
		log.Errorf("AddTrack failed: %v", err)
		os.Exit(1)
	}

	fmt.Println("\nTrack added.")
	fmt.Printf("  ID:     %d\n", trackID)
	fmt.Printf("  Title:  %s\n", *title)
	fmt.Printf("  Artist: %s\n", *artist)
	log.Infof("added track id=%d", trackID)
}

func handleRecognise() {
	log := logger.GetLogger()

	if len(os.Args) < 3 {
		fmt.Println("Usage: fingermarkctl recognise <audio_file>")
		os.Exit(1)
	}
	audioPath := os.Args[2]
	log.Infof("recognising %s", audioPath)

	fmt.Println("\nInitializing service...")
	svc, err := newService()
	if err != nil {
		fmt.Printf("Failed to create service: %v\n", err)
		log.Errorf("service init failed: %v", err)
		os.Exit(1)
	}
	defer svc.Close()

	fmt.Println("Analyzing audio...")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	result, err := svc.Recognise(ctx, audioPath)
	if err != nil {
		fmt.Printf("\nRecognition failed: %v\n", err)
		log.Errorf("Recognise failed: %v", err)
		os.Exit(1)
	}

	if result == nil {
		fmt.Println("\nNo match found in the catalog")
		log.Info("no match found")
		return
	}

	fmt.Println("\nMatch found:")
	fmt.Printf("  %q by %s\n", result.Title, result.Artist)
	fmt.Printf("  Score: %d | Confidence: %.1f%% | Offset: %.2fs\n", result.Score, result.Confidence, result.OffsetSeconds)
	if result.Source != "" {
		fmt.Printf("  Source: %s\n", result.Source)
	}
	log.Infof("matched track %d score=%d confidence=%.1f", result.TrackID, result.Score, result.Confidence)
}

func handleList() {
	log := logger.GetLogger()

	svc, err := newService()
	if err != nil {
		fmt.Printf("Failed to create service: %v\n", err)
		log.Errorf("service init failed: %v", err)
		os.Exit(1)
	}
	defer svc.Close()

	tracks, err := svc.ListTracks()
	if err != nil {
		fmt.Printf("Failed to list tracks: %v\n", err)
		log.Errorf("ListTracks failed: %v", err)
		os.Exit(1)
	}

	if len(tracks) == 0 {
		fmt.Println("\nNo tracks in the catalog")
		log.Info("no tracks in catalog")
		return
	}

	fmt.Printf("\n%d track(s):\n\n", len(tracks))
	for _, t := range tracks {
		fmt.Printf("- [%d] %q by %s\n", t.ID, t.Title, t.Artist)
		if t.Source != "" {
			fmt.Printf("      source: %s\n", t.Source)
		}
		if t.Duration > 0 {
			fmt.Printf("      duration: %.1fs\n", t.Duration)
		}
	}
	log.Infof("listed %d tracks", len(tracks))
}

func handleDelete() {
	log := logger.GetLogger()

	if len(os.Args) < 3 {
		fmt.Println("Usage: fingermarkctl delete <track_id>")
		os.Exit(1)
	}
	trackID, err := strconv.ParseUint(os.Args[2], 10, 32)
	if err != nil {
		fmt.Printf("Invalid track id: %v\n", err)
		log.Errorf("invalid track id: %v", err)
		os.Exit(1)
	}

	svc, err := newService()
	if err != nil {
		fmt.Printf("Failed to create service: %v\n", err)
		log.Errorf("service init failed: %v", err)
		os.Exit(1)
	}
	defer svc.Close()

	track, err := svc.GetTrack(uint32(trackID))
	if err != nil {
		fmt.Printf("Track not found (ID: %d)\n", trackID)
		log.Warnf("track %d not found: %v", trackID, err)
		os.Exit(1)
	}

	if err := svc.DeleteTrack(uint32(trackID)); err != nil {
		fmt.Printf("Failed to delete track: %v\n", err)
		log.Errorf("DeleteTrack failed: %v", err)
		os.Exit(1)
	}

	fmt.Println("\nTrack deleted:")
	fmt.Printf("  ID:     %d\n", track.ID)
	fmt.Printf("  Title:  %s\n", track.Title)
	fmt.Printf("  Artist: %s\n", track.Artist)
	log.Infof("deleted track id=%d (%q by %q)", track.ID, track.Title, track.Artist)
}
