package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spf13/cobra"

	"github.com/fragsync-dev/fragsync/internal/config"
	"github.com/fragsync-dev/fragsync/internal/errors"
	"github.com/fragsync-dev/fragsync/internal/inspect"
	"github.com/fragsync-dev/fragsync/internal/shell"
	"github.com/fragsync-dev/fragsync/pkg/bus"
	"github.com/fragsync-dev/fragsync/pkg/fragment"
	"github.com/fragsync-dev/fragsync/pkg/snapshot"
	"github.com/fragsync-dev/fragsync/pkg/statesync"
	"github.com/fragsync-dev/fragsync/pkg/store"
	"github.com/fragsync-dev/fragsync/pkg/telemetry"
)

func serveCmd() *cobra.Command {
	var (
		configPath string
		host       string
		port       int
		backend    string
		debug      bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the synchronization service and dashboard API",
		Long: `Run the event bus, canonical store, and synchronization service,
and serve the dashboard API over HTTP.

State survives restarts through the configured snapshot backend.

Examples:
  fragsync serve
  fragsync serve --port=8080 --backend=disk
  fragsync serve --config=deploy/fragsync.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(configPath, host, port, backend, debug)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to fragsync.json (default: search upward from cwd)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from fragsync.json)")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default from fragsync.json)")
	cmd.Flags().StringVarP(&backend, "backend", "b", "", "Snapshot backend: memory, disk, sqlite, or s3")
	cmd.Flags().BoolVar(&debug, "debug", false, "Verbose bus logging")

	return cmd
}

func runServe(configPath, host string, port int, backend string, debug bool) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if host != "" {
		cfg.Server.Host = host
	}
	if port > 0 {
		cfg.Server.Port = port
	}
	if backend != "" {
		cfg.Snapshot.Backend = backend
	}
	if debug {
		cfg.Server.Debug = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level := slog.LevelInfo
	if cfg.Server.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	backendStore, err := openBackend(cfg)
	if err != nil {
		return err
	}
	defer backendStore.Close()

	metrics := telemetry.New()

	var hub *inspect.Hub
	b := bus.New(
		bus.WithLogger(logger),
		bus.WithDebug(cfg.Server.Debug),
		bus.WithMetrics(metrics),
		bus.WithTracer(telemetry.Tracer("")),
		bus.WithTap(func(ch bus.Channel, payload any) {
			if hub != nil {
				hub.Tap(ch, payload)
			}
		}),
	)
	hub = inspect.NewHub(b, logger)
	defer hub.Close()

	st := store.New(
		store.WithLogger(logger),
		store.WithMetrics(metrics),
		store.WithTracer(telemetry.Tracer("")),
		store.WithSnapshotStore(backendStore),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st.Rehydrate(ctx)

	svc := statesync.New(b, st,
		statesync.WithLogger(logger),
		statesync.WithMetrics(metrics),
	)
	svc.Start()
	defer svc.Stop()

	printBanner()
	info("serve")
	info("")
	success("Listening on http://%s", cfg.Addr())
	info("Snapshot backend: %s", cfg.Snapshot.Backend)
	if cfg.Server.Debug {
		info("Inspector: ws://%s/inspect", cfg.Addr())
	}
	info("")

	api := fragment.New("api", b, fragment.WithLogger(logger))
	srv := shell.New(cfg.Addr(), st, api, config.NewService(
		config.WithServiceLogger(logger),
	), hub, logger)

	err = srv.ListenAndServe(ctx)
	if err != nil {
		return err
	}
	success("Shut down cleanly")
	return nil
}

// loadConfig loads the named file, searches upward from the working
// directory, or falls back to defaults when nothing is found.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}

	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	root, err := config.FindProjectRoot(wd)
	if err != nil {
		warn("No fragsync.json found, using defaults")
		return config.New(), nil
	}
	return config.Load(root)
}

// openBackend constructs the configured snapshot store.
func openBackend(cfg *config.Config) (snapshot.Store, error) {
	switch cfg.Snapshot.Backend {
	case "memory":
		return snapshot.NewMemoryStore(), nil
	case "disk":
		st, err := snapshot.NewDiskStore(cfg.Snapshot.Path)
		if err != nil {
			return nil, errors.New("E203").Wrap(err)
		}
		return st, nil
	case "sqlite":
		st, err := snapshot.NewSQLStore(cfg.Snapshot.Path)
		if err != nil {
			return nil, errors.New("E203").Wrap(err)
		}
		return st, nil
	case "s3":
		client := s3.New(s3.Options{Region: cfg.Snapshot.Region})
		return snapshot.NewS3Store(client, cfg.Snapshot.Bucket, cfg.Snapshot.Key), nil
	}
	return nil, errors.New("E501").
		WithDetail("Snapshot backend is " + cfg.Snapshot.Backend)
}
