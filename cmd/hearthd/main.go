// hearthd — the smart-kitchen companion simulation server.
//
// Usage:
//
//	hearthd [-addr :8891] [-devices devices.yaml] [-verbose] [-quiet]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/hammamikhairi/hearth/internal/appliance"
	"github.com/hammamikhairi/hearth/internal/broadcast"
	"github.com/hammamikhairi/hearth/internal/devices"
	"github.com/hammamikhairi/hearth/internal/engine"
	"github.com/hammamikhairi/hearth/internal/logger"
	"github.com/hammamikhairi/hearth/internal/server"
	"github.com/hammamikhairi/hearth/internal/status"
	"github.com/hammamikhairi/hearth/internal/storage"
	"github.com/hammamikhairi/hearth/internal/timer"
)

func main() {
	_ = godotenv.Load()

	addr := flag.String("addr", envOr("HEARTH_ADDR", ":8891"), "listen address")
	devicesPath := flag.String("devices", os.Getenv("HEARTH_DEVICES"), "device registry YAML file (built-in list when empty)")
	verbose := flag.Bool("verbose", false, "enable verbose/debug logging")
	quiet := flag.Bool("quiet", false, "disable all logging")
	logFile := flag.String("log-file", "stderr", "file to write logs to (use \"stderr\" to log to console)")
	flag.Parse()

	// Configure logger.
	logLevel := logger.LevelNormal
	if *verbose {
		logLevel = logger.LevelVerbose
	}
	if *quiet {
		logLevel = logger.LevelOff
	}

	var logOut io.Writer = os.Stderr
	if *logFile != "" && *logFile != "stderr" {
		f, err := openLogFile(*logFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not open log file %s: %v (falling back to stderr)\n", *logFile, err)
		} else {
			logOut = f
			defer f.Close()
		}
	}

	// Redirect Go's default log package (used by net/http) to the same output.
	stdlog.SetOutput(logOut)
	stdlog.SetFlags(stdlog.Ltime)

	log := logger.New(logLevel, logOut)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Wire dependencies. The stores are explicit instances owned here:
	// created at process start, torn down at shutdown.
	store := storage.NewMemoryStore(log.Named("store"))
	hub := broadcast.NewHub(log.Named("hub"))
	clock := timer.New(store, hub, log.Named("clock"))
	sim := appliance.New(hub, log.Named("appliance"))
	eng := engine.New(store, clock, log.Named("engine"))
	query := status.New(store)

	registry := devices.Default()
	if *devicesPath != "" {
		r, err := devices.Load(*devicesPath)
		if err != nil {
			log.Error("loading device registry: %v", err)
			os.Exit(1)
		}
		registry = r
		log.Info("device registry loaded from %s (%d devices)", *devicesPath, len(registry.List()))
	}

	srv := server.New(eng, query, sim, hub, registry, log.Named("server"))

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe(*addr)
	}()
	log.Info("hearthd listening on %s", *addr)

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server: %v", err)
			os.Exit(1)
		}
		return
	}

	// Shutdown order matters: stop accepting requests, cancel every
	// session and appliance timer, then tear down the broadcaster so no
	// timer fires into it.
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown: %v", err)
	}
	clock.StopAll()
	sim.StopAll()
	hub.Close()
	log.Info("hearthd stopped")
}

// openLogFile opens path for appending, creating parent directories as
// needed.
func openLogFile(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
