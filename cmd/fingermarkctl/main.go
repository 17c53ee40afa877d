package main

import (
	"fmt"
	"os"

	"github.com/fingermark/fingermark/pkg/logger"
)

func main() {
	log := logger.GetLogger()
	printBanner()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	log.Infof("executing command: %s", command)

	switch command {
	case "add":
		handleAdd()
	case "recognise", "recognize":
		handleRecognise()
	case "list":
		handleList()
	case "delete":
		handleDelete()
	case "eval":
		handleEval()
	case "serve":
		handleServe()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printBanner() {
	banner := `
  __ _                                           _
 / _(_)_ __   __ _  ___ _ __ _ __ ___   __ _ _ __| | __
| |_| | '_ \ / _' |/ _ \ '__| '_ ' _ \ / _' | '__| |/ /
|  _| | | | | (_| |  __/ |  | | | | | | (_| | |  |   <
|_| |_|_| |_|\__, |\___|_|  |_| |_| |_|\__,_|_|  |_|\_\
             |___/
        Audio fingerprinting and recognition
`
	fmt.Println(banner)
}

func printUsage() {
	fmt.Println("fingermarkctl - audio fingerprinting CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  fingermarkctl add <audio_file> --title <title> --artist <artist> [--source <id>]")
	fmt.Println("  fingermarkctl recognise <audio_file>")
	fmt.Println("  fingermarkctl list")
	fmt.Println("  fingermarkctl delete <track_id>")
	fmt.Println("  fingermarkctl eval --music-dir <dir> [--clip-seconds 5] [--max-tracks 100] [--seed 42] [--min-score 5]")
	fmt.Println("  fingermarkctl serve [--port 8080] [--temp <dir>] [--rate 11025] [--origins *]")
}
