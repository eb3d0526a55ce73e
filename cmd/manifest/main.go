// Package main provides the manifest generator entry point.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/alecthomas/kingpin/v2"
	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/19player/internal/infra/logger"
	"github.com/osa030/19player/internal/infra/manifest"
)

var (
	app     = kingpin.New("19player-manifest", "Generate the song manifest from a media folder")
	dir     = app.Flag("dir", "Media folder to scan (created if missing)").Default("songs").Envar("PLAYER_MEDIA_DIR").String()
	output  = app.Flag("output", "Manifest path (default: <dir>/info.json)").Short('o').String()
	verbose = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	kingpin.MustParse(app.Parse(os.Args[1:]))

	loggerConfig := logger.Config{Output: "stderr", Level: "info"}
	if *verbose {
		loggerConfig.Level = "debug"
	}
	closer, err := logger.Init(loggerConfig)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer closer.Close()

	m, err := manifest.Generate(*dir, *output)
	if err != nil {
		zlog.Error().Msgf("Failed to generate manifest: %v", err)
		os.Exit(1)
	}

	var total int64
	for _, song := range m.Songs {
		info, err := os.Stat(filepath.Join(*dir, song))
		if err != nil {
			fmt.Printf("  %s\n", song)
			continue
		}
		total += info.Size()
		fmt.Printf("  %-50s %10s\n", song, humanize.IBytes(uint64(info.Size())))
	}
	fmt.Printf("%d songs, %s\n", len(m.Songs), humanize.IBytes(uint64(total)))
}
