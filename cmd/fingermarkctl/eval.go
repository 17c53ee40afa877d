package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"github.com/fingermark/fingermark/pkg/audio"
	"github.com/fingermark/fingermark/pkg/fingermark"
	"github.com/fingermark/fingermark/pkg/logger"
)

// handleEval reproduces evaluate_dataset.py: build a catalog from the WAV
// files under a directory (at most --max-tracks of them, picked by a
// seeded shuffle when there are more), sample one short clip per track with a
// fixed seed, recognise it, and report top-1 accuracy and the rejection
// rate at a configurable minimum score.
func handleEval() {
	log := logger.GetLogger()

	evalCmd := flag.NewFlagSet("eval", flag.ExitOnError)
	musicDir := evalCmd.String("music-dir", "", "Directory containing WAV files (recursive scan, required)")
	clipSeconds := evalCmd.Float64("clip-seconds", 5.0, "Query clip length in seconds")
	maxTracks := evalCmd.Int("max-tracks", 100, "Maximum number of tracks to evaluate")
	seed := evalCmd.Int64("seed", 42, "Random seed for deterministic sampling")
	minScore := evalCmd.Int("min-score", 5, "Minimum score considered a valid match")
	evalCmd.Parse(os.Args[2:])

	if *musicDir == "" {
		fmt.Println("Error: --music-dir is required")
		os.Exit(1)
	}

	files, err := listWavFiles(*musicDir)
	if err != nil {
		fmt.Printf("Failed to scan %s: %v\n", *musicDir, err)
		log.Errorf("listWavFiles failed: %v", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Printf("No .wav files found under: %s\n", *musicDir)
		os.Exit(1)
	}

	rng := rand.New(rand.NewSource(*seed))
	if len(files) > *maxTracks {
		rng.Shuffle(len(files), func(i, j int) { files[i], files[j] = files[j], files[i] })
		files = files[:*maxTracks]
	}

	fmt.Printf("Building catalog with %d tracks...\n", len(files))
	svc, err := fingermark.NewService(fingermark.WithTempDir(os.TempDir()))
	if err != nil {
		fmt.Printf("Failed to create service: %v\n", err)
		os.Exit(1)
	}
	defer svc.Close()

	ctx := context.Background()
	expectedByID := make(map[uint32]string, len(files))
	addedIDs := make([]uint32, 0, len(files))
	for _, path := range files {
		title := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		trackID, err := svc.AddTrack(ctx, path, title, "", path)
		if err != nil {
			log.Warnf("skipping %s: %v", path, err)
			continue
		}
		expectedByID[trackID] = path
		addedIDs = append(addedIDs, trackID)
	}

	fmt.Println("Running recognition queries...")
	var attempts, correct, rejected int
	for _, trackID := range addedIDs {
		path := expectedByID[trackID]
		queryPath, err := makeQueryClip(path, *clipSeconds, rng)
		if err != nil {
			log.Warnf("failed to build query clip for %s: %v", path, err)
			continue
		}

		result, err := svc.Recognise(ctx, queryPath)
		os.Remove(queryPath)
		if err != nil {
			log.Warnf("recognise failed for %s: %v", path, err)
			continue
		}

		attempts++
		if result == nil || result.Score < *minScore {
			rejected++
			continue
		}
		if result.TrackID == trackID {
			correct++
		}
	}

	var accuracy, rejectionRate float64
	if attempts > 0 {
		accuracy = float64(correct) / float64(attempts) * 100.0
		rejectionRate = float64(rejected) / float64(attempts) * 100.0
	}
	fmt.Printf("Tracks evaluated: %d\n", attempts)
	fmt.Printf("Top-1 accuracy: %.2f%%\n", accuracy)
	fmt.Printf("Rejected (score < %d): %.2f%%\n", *minScore, rejectionRate)
}

func listWavFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ".wav") {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// makeQueryClip reads path, carves out a random clip-seconds-long window
// starting at a seeded-random offset, and writes it to a temp WAV file
// for Recognise to consume.
func makeQueryClip(path string, clipSeconds float64, rng *rand.Rand) (string, error) {
	samples, sampleRate, err := audio.ReadWAV(path)
	if err != nil {
		return "", err
	}

	clipLen := int(float64(sampleRate) * clipSeconds)
	if clipLen < 1 {
		clipLen = 1
	}

	var clip []float64
	if len(samples) <= clipLen {
		clip = samples
	} else {
		start := rng.Intn(len(samples) - clipLen + 1)
		clip = samples[start : start+clipLen]
	}

	tmp, err := os.CreateTemp("", "fingermark-query-*.wav")
	if err != nil {
		return "", err
	}
	tmpPath := tmp.Name()
	tmp.Close()

	if err := audio.WriteMonoWAV16(tmpPath, clip, sampleRate); err != nil {
		os.Remove(tmpPath)
		return "", err
	}
	return tmpPath, nil
}
