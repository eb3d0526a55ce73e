// Package main provides the server entry point.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	apiconnect "github.com/osa030/19player/internal/api/connect"
	"github.com/osa030/19player/internal/app/playback"
	"github.com/osa030/19player/internal/app/provider"
	"github.com/osa030/19player/internal/app/session"
	"github.com/osa030/19player/internal/domain/catalog"
	"github.com/osa030/19player/internal/infra/config"
	"github.com/osa030/19player/internal/infra/logger"
	"github.com/osa030/19player/internal/infra/media"
)

var (
	app        = kingpin.New("19player-server", "19player music player server")
	configPath = app.Flag("config", "Path to config file").Default("config/server.yaml").String()
	verbose    = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()
	logfile    = app.Flag("logfile", "Path to log file (default: stdout)").String()

	// catalog command
	catalogCmd = app.Command("catalog", "Print the resolved catalog and exit")
)

func init() {
	app.Command("start", "Start the server (default)").Default()
}

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	loggerConfig := logger.Config{
		Output: "stdout",
		Level:  "info",
	}
	if *verbose {
		loggerConfig.Level = "debug"
	}
	if *logfile != "" {
		loggerConfig.Output = *logfile
		loggerConfig.File = *logfile
	}
	closer, err := logger.Init(loggerConfig)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer closer.Close()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		zlog.Fatal().Msgf("Failed to load config: %v", err)
	}

	if command == catalogCmd.FullCommand() {
		if err := printCatalog(cfg); err != nil {
			zlog.Error().Msgf("Failed to resolve catalog: %v", err)
			os.Exit(1)
		}
		return
	}

	// Run server (defer ensures shutdown hook is called)
	if err := run(cfg); err != nil {
		zlog.Error().Msgf("Server error: %v", err)
		os.Exit(1)
	}
}

// loadConfig loads the config file. A missing file falls back to defaults,
// which read the catalog from info.json in the media base path.
func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		zlog.Warn().Msgf("Config file not found, using defaults: path=%s", path)
		return config.Default(), nil
	}
	zlog.Info().Msgf("Loading config from %s", path)
	return config.Load(path)
}

func resolveCatalog(ctx context.Context, cfg *config.Config) (*catalog.Catalog, error) {
	chain, err := provider.NewChainFromConfig(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build catalog sources")
	}
	return chain.Load(ctx), nil
}

// run executes the main server logic. Using a separate function ensures
// defer statements are executed even when returning with an error.
func run(cfg *config.Config) error {
	ctx := context.Background()

	c, err := resolveCatalog(ctx, cfg)
	if err != nil {
		return err
	}
	zlog.Info().Msgf("Catalog resolved: tracks=%d", c.Len())

	player := media.NewPlayer(media.NewMP3Prober(cfg.Media.ProbeTimeout()), cfg.Playback.PositionInterval())
	engine := playback.NewEngine(player, playback.Resolver{BasePath: cfg.Media.BasePath})

	sessionMgr := session.NewManager(c, engine, session.Config{
		AutoplayOnStart: cfg.Playback.AutoplayOnStart,
		ShuffleOnStart:  cfg.Navigation.ShuffleOnStart,
		HistoryLimit:    cfg.Navigation.ShuffleHistoryLimit,
	})

	mux := http.NewServeMux()
	path, handler := apiconnect.NewHandler(apiconnect.NewPlayerService(sessionMgr))
	mux.Handle(path, handler)

	serverAddr := cfg.Server.Addr
	// Create server with h2c (HTTP/2 cleartext) support
	server := &http.Server{
		Addr:    serverAddr,
		Handler: h2c.NewHandler(mux, &http2.Server{}),
	}

	serverErrCh := make(chan error, 1)
	serverStartedCh := make(chan struct{})

	if err := sessionMgr.Start(ctx); err != nil {
		return errors.Wrap(err, "failed to start session")
	}

	go func() {
		zlog.Info().Msgf("Starting server: addr=%s", serverAddr)
		close(serverStartedCh)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
		}
	}()

	<-serverStartedCh
	// Give the server a moment to fully initialize
	time.Sleep(100 * time.Millisecond)

	executeHooks(cfg.Server.Hooks.OnStarted, "on_started")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		zlog.Info().Msg("Received shutdown signal...")
	case <-sessionMgr.Done():
		zlog.Info().Msg("Session ended, shutting down...")
	case err := <-serverErrCh:
		sessionMgr.Close()
		return errors.Wrap(err, "server error")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Close session manager first to terminate active streams
	sessionMgr.Close()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zlog.Error().Msgf("Failed to shutdown server: %v", err)
	}

	zlog.Info().Msg("Server stopped")

	executeHooks(cfg.Server.Hooks.OnStopped, "on_stopped")

	return nil
}

// printCatalog prints the catalog the configured sources resolve to.
func printCatalog(cfg *config.Config) error {
	c, err := resolveCatalog(context.Background(), cfg)
	if err != nil {
		return err
	}
	fmt.Printf("Catalog (%d tracks):\n", c.Len())
	for i, t := range c.Tracks() {
		fmt.Printf("  %3d. %s\n", i+1, t.Name)
	}
	return nil
}

// executeHooks runs a list of shell commands.
func executeHooks(hooks []string, stage string) {
	if len(hooks) == 0 {
		return
	}

	zlog.Info().Msgf("Executing %s hooks (%d commands)", stage, len(hooks))

	for _, hook := range hooks {
		zlog.Info().Msgf("Executing hook: %s", hook)
		// sh -c allows redirection and pipes
		cmd := exec.Command("sh", "-c", hook)
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr

		if err := cmd.Run(); err != nil {
			zlog.Error().Err(err).Msgf("Failed to execute hook: %s", hook)
		}
	}
}
