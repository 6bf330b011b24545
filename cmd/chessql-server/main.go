// Package main implements the ChessQL server: PGN ingestion, capture
// analysis and the ChessQL query API.
package main

import (
	"context"
	"crypto/rand"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chessql/cmd/chessql-server/cli"
	"chessql/internal/logging"
	"chessql/internal/server/dedup"
	"chessql/internal/server/http"
	"chessql/internal/server/processor"
	"chessql/internal/server/service"
	"chessql/internal/server/storage"
)

const (
	gracefulShutdownTimeout = time.Second * 5
)

func main() {
	// Check for CLI database commands
	if len(os.Args) > 1 && os.Args[1] == "db" {
		if err := cli.Run(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "CLI error: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	var (
		apiHost     = flag.String("api-host", "localhost", "API server host")
		apiPort     = flag.Int("api-port", 8080, "API server port")
		dev         = flag.Bool("dev", false, "Development mode (relaxed rate limits, console logs)")
		storagePath = flag.String("storage-path", "", "Path to SQLite database file (required)")
		dedupPath   = flag.String("dedup-path", "", "Duplicate index directory (in-memory if empty)")
		reference   = flag.String("reference-player", "", "Default reference player for queries")
		workers     = flag.Int("workers", 4, "Replay worker count")
		pidPath     = flag.String("pid", "", "Optional path to write PID file")
		pidLock     = flag.Bool("pid-lock", false, "Lock PID file to allow only one instance (requires -pid)")
		logLevel    = flag.String("log-level", "", "Log level: debug, info, warn, error (default info, debug with -dev)")
	)
	flag.Parse()

	log, err := logging.New(logging.Options{Level: *logLevel, Dev: *dev})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	if *pidLock && *pidPath == "" {
		log.Fatal().Msg("-pid-lock flag requires the -pid flag to be set")
	}
	if *storagePath == "" {
		log.Fatal().Msg("-storage-path is required")
	}

	if *pidPath != "" {
		cleanup, err := managePIDFile(*pidPath, *pidLock)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to manage PID file")
		}
		defer cleanup()
		log.Info().Str("path", *pidPath).Bool("lock", *pidLock).Msg("PID file created")
	}

	// 1. Storage and duplicate index
	log.Info().Str("path", *storagePath).Msg("initializing storage")
	store, err := storage.NewStore(*storagePath, *dev, logging.Component(log, "storage"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize storage")
	}
	if err := store.InitDB(); err != nil {
		store.Close()
		log.Fatal().Err(err).Msg("failed to initialize schema")
	}

	idx, err := dedup.Open(*dedupPath)
	if err != nil {
		store.Close()
		log.Fatal().Err(err).Msg("failed to open duplicate index")
	}
	if *dedupPath == "" {
		log.Warn().Msg("duplicate index is in memory, use -dedup-path to persist it")
	}

	// JWT secret management
	var jwtSecret []byte
	if *dev {
		// Fixed secret in dev mode for testing consistency
		jwtSecret = []byte("dev-secret-minimum-32-characters-long")
		log.Info().Msg("using fixed JWT secret (dev mode)")
	} else {
		jwtSecret = make([]byte, 32)
		if _, err := rand.Read(jwtSecret); err != nil {
			log.Fatal().Err(err).Msg("failed to generate JWT secret")
		}
		log.Info().Msg("JWT secret generated (sessions valid until restart)")
	}

	// 2. Replay workers feed the service's ingestion path
	queue := processor.NewReplayQueue(*workers, logging.Component(log, "replay"))

	svc := service.New(service.Config{
		Store:           store,
		Dedup:           idx,
		JWTSecret:       jwtSecret,
		ReferencePlayer: *reference,
		Analyzer:        queue,
		Logger:          logging.Component(log, "service"),
	})

	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	go svc.RunCleanupJob(cleanupCtx, service.CleanupJobInterval)

	// 3. Processor and HTTP app
	proc := processor.New(svc, queue, logging.Component(log, "processor"))
	app := http.NewFiberApp(proc, svc, *dev)

	apiAddr := fmt.Sprintf("%s:%d", *apiHost, *apiPort)

	go func() {
		rate := 10
		if *dev {
			rate = 20
		}
		log.Info().
			Str("addr", "http://"+apiAddr).
			Str("reference", svc.ReferencePlayer()).
			Int("workers", proc.Workers()).
			Int("rateLimit", rate).
			Msg("ChessQL API server starting")
		log.Info().Msgf("endpoints: http://%s/api/v1/[games|query|accounts|stats|examples]", apiAddr)

		if err := app.Listen(apiAddr); err != nil {
			log.Error().Err(err).Msg("API server listen error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer shutdownCancel()

	if err = app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("server forced to shutdown")
	}

	if err = proc.Close(); err != nil {
		log.Warn().Err(err).Msg("processor close error")
	}

	cleanupCancel()

	if err = svc.Shutdown(gracefulShutdownTimeout); err != nil {
		log.Error().Err(err).Msg("service shutdown error")
	}

	log.Info().Msg("server exited")
}
