// Package main provides the player control CLI entry point.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"github.com/joho/godotenv"

	apiconnect "github.com/osa030/19player/internal/api/connect"
)

var (
	app    = kingpin.New("19player-ctl", "19player control client")
	server = app.Flag("server", "Server address (or set PLAYER_SERVER env)").Default("http://localhost:8080").Envar("PLAYER_SERVER").String()

	// status command
	statusCmd = app.Command("status", "Show the playback session")

	// list command
	listCmd = app.Command("list", "List the catalog")

	// search command
	searchCmd   = app.Command("search", "Search the catalog")
	searchQuery = searchCmd.Arg("query", "Search query (empty lists everything)").String()

	// select command
	selectCmd = app.Command("select", "Load a track by ID")
	selectID  = selectCmd.Arg("track-id", "Track ID (file name)").Required().String()

	playCmd    = app.Command("play", "Start playback")
	pauseCmd   = app.Command("pause", "Pause playback")
	toggleCmd  = app.Command("toggle", "Toggle play/pause")
	nextCmd    = app.Command("next", "Advance to the next track")
	prevCmd    = app.Command("prev", "Go back to the previous track").Alias("previous")
	shuffleCmd = app.Command("shuffle", "Toggle shuffle")

	// seek command
	seekCmd      = app.Command("seek", "Seek within the current track")
	seekFraction = seekCmd.Arg("fraction", "Fraction of the track (0.0 - 1.0)").Required().Float64()

	// scrub command
	scrubCmd       = app.Command("scrub", "Drag the seek bar through the given fractions, then release")
	scrubFractions = scrubCmd.Arg("fractions", "Fractions of the track (0.0 - 1.0)").Required().Float64List()

	// subscribe command
	subscribeCmd = app.Command("subscribe", "Print session notifications until interrupted")
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	client := apiconnect.NewClient(http.DefaultClient, *server)

	ctx := context.Background()

	switch command {
	case statusCmd.FullCommand():
		printResult(client.GetSnapshot(ctx))
	case listCmd.FullCommand():
		printList(client.ListTracks(ctx))
	case searchCmd.FullCommand():
		printList(client.Search(ctx, *searchQuery))
	case selectCmd.FullCommand():
		printResult(client.Select(ctx, *selectID))
	case playCmd.FullCommand():
		printResult(client.Play(ctx))
	case pauseCmd.FullCommand():
		printResult(client.Pause(ctx))
	case toggleCmd.FullCommand():
		printResult(client.Toggle(ctx))
	case nextCmd.FullCommand():
		printResult(client.Next(ctx))
	case prevCmd.FullCommand():
		printResult(client.Previous(ctx))
	case shuffleCmd.FullCommand():
		printResult(client.ToggleShuffle(ctx))
	case seekCmd.FullCommand():
		printResult(client.Seek(ctx, *seekFraction))
	case scrubCmd.FullCommand():
		scrub(ctx, client, *scrubFractions)
	case subscribeCmd.FullCommand():
		subscribe(ctx, client)
	}
}

func printResult(s *apiconnect.SnapshotMessage, err error) {
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	printSnapshot(s)
}

func printList(l *apiconnect.ListMessage, err error) {
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	printEntries(l)
}

func printSnapshot(s *apiconnect.SnapshotMessage) {
	fmt.Println("\n=== PLAYBACK SESSION ===")
	if s.TrackID == "" {
		fmt.Println("No track loaded")
		fmt.Println()
		return
	}
	fmt.Printf("Track: %s\n", s.DisplayName)
	fmt.Printf("  ID: %s\n", s.TrackID)
	fmt.Printf("  Index: %d / %d\n", s.Index+1, s.Count)
	fmt.Printf("  State: %s\n", s.State)
	fmt.Printf("  Time: %s / %s\n", s.Elapsed, s.Total)
	fmt.Printf("  Progress: %.1f%%\n", s.Progress*100)
	fmt.Printf("  Shuffle: %v\n", s.Shuffle)
	if s.Scrubbing {
		fmt.Println("  Scrubbing")
	}
	fmt.Println()
}

func printEntries(l *apiconnect.ListMessage) {
	if l.Query != "" {
		fmt.Printf("\n=== RESULTS FOR %q (%d) ===\n", l.Query, len(l.Entries))
	} else {
		fmt.Printf("\n=== CATALOG (%d) ===\n", len(l.Entries))
	}
	for _, e := range l.Entries {
		fmt.Printf("  %3d. %s\n", e.Index+1, e.DisplayName)
	}
	fmt.Println()
}

func scrub(ctx context.Context, client *apiconnect.Client, fractions []float64) {
	if _, err := client.BeginScrub(ctx, fractions[0]); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	for _, f := range fractions[1:] {
		if _, err := client.MoveScrub(ctx, f); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	}
	printResult(client.EndScrub(ctx))
}

func subscribe(ctx context.Context, client *apiconnect.Client) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Handle shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	fmt.Println("Subscribed to notifications. Press Ctrl+C to exit.")

	err := client.Subscribe(ctx, func(n *apiconnect.NotificationMessage) error {
		fmt.Printf("\n[Sequence: %d] ", n.SequenceNo)
		switch {
		case n.Snapshot != nil:
			fmt.Printf("%s - %s %s/%s\n", n.Snapshot.State, n.Snapshot.DisplayName, n.Snapshot.Elapsed, n.Snapshot.Total)
		case n.List != nil:
			printEntries(n.List)
		default:
			fmt.Printf("=== UNKNOWN EVENT (%s) ===\n", n.Kind)
		}
		return nil
	})
	if err != nil {
		fmt.Printf("Stream error: %v\n", err)
		os.Exit(1)
	}
}
