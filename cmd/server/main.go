package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/himanishpuri/SongSearch/internal/config"
	"github.com/himanishpuri/SongSearch/internal/service"
)

const version = "0.3.0"

const shutdownTimeout = 10 * time.Second

var (
	configPath     string
	port           int
	dbPath         string
	staticDir      string
	allowedOrigins string
	seed           bool
)

func init() {
	flag.StringVar(&configPath, "config", os.Getenv("SONGSEARCH_CONFIG"), "Path to YAML config file")
	flag.IntVar(&port, "port", 8080, "HTTP server port")
	flag.StringVar(&dbPath, "db", "songs.sqlite3", "Path to SQLite database")
	flag.StringVar(&staticDir, "static", "static", "Directory served at /")
	flag.StringVar(&allowedOrigins, "origins", "*", "Comma-separated list of allowed CORS origins (use * for all)")
	flag.BoolVar(&seed, "seed", false, "Insert the demo catalog on start")
}

// applyFlags overlays only the flags given on the command line, so the
// config file and environment keep their values otherwise.
func applyFlags(cfg *config.Config) {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "port":
			cfg.Server.Port = port
		case "db":
			cfg.Storage.DBPath = dbPath
		case "static":
			cfg.Server.StaticDir = staticDir
		case "origins":
			cfg.Server.AllowedOrigins = parseOrigins(allowedOrigins)
		case "seed":
			cfg.Seed.OnStart = seed
		}
	})
}

func parseOrigins(s string) []string {
	if strings.TrimSpace(s) == "*" {
		return []string{"*"}
	}
	origins := strings.Split(s, ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}
	return origins
}

func main() {
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "songsearch-server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	applyFlags(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	log := service.ConfigureLogger(cfg.Logging)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := service.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer svc.Close()

	if cfg.Seed.OnStart {
		if _, err := service.Seed(ctx, svc, log); err != nil {
			return err
		}
	}

	server := NewServer(svc, &ServerConfig{
		Addr:           cfg.Addr(),
		DBPath:         cfg.Storage.DBPath,
		StaticDir:      cfg.Server.StaticDir,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		RequestTimeout: cfg.Server.RequestTimeout,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxBodyBytes:   cfg.Server.MaxBodyBytes,
	}, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Infof("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return <-errCh
}
