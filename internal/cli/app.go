// Package cli is the clubgrid command line: serve, migrate and version.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	web "clubgrid/internal/adapters/http"
	"clubgrid/internal/adapters/http/perf"
	"clubgrid/internal/adapters/storage"
	gridLayoutStore "clubgrid/internal/adapters/storage/gridlayout"
	"clubgrid/internal/adapters/storage/postgres"
	practiceScheduleStore "clubgrid/internal/adapters/storage/practiceschedule"
	rotationBlockStore "clubgrid/internal/adapters/storage/rotationblock"
	rotationEventStore "clubgrid/internal/adapters/storage/rotationevent"
	"clubgrid/internal/application/coalesce"
	"clubgrid/internal/config"
)

var (
	// Version is set at build time
	Version = "dev"
	// Commit is set at build time
	Commit = "none"
)

// App holds the CLI application state.
type App struct {
	root       *cobra.Command
	configPath string
	out        io.Writer
}

// NewApp creates the command tree. serve is the default command.
func NewApp() *App {
	a := &App{out: os.Stdout}

	a.root = &cobra.Command{
		Use:   "clubgrid",
		Short: "Rotation grid scheduler for club practice sessions",
		Long: `clubgrid serves the rotation grid API.

Coaches lay out a day's practice levels as columns, combine levels that
share a floor, and drag rotation blocks over time slots.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.serve(cmd.Context())
		},
	}
	a.root.PersistentFlags().StringVar(&a.configPath, "config", config.DefaultConfigPath, "path to the TOML config file")

	a.root.AddCommand(a.serveCmd())
	a.root.AddCommand(a.migrateCmd())
	a.root.AddCommand(a.versionCmd())
	return a
}

func (a *App) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.serve(cmd.Context())
		},
	}
}

func (a *App) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			db, err := openDatabase(cfg, nil)
			if err != nil {
				return err
			}
			return db.close()
		},
	}
}

func (a *App) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(a.out, "clubgrid %s (commit: %s)\n", Version, Commit)
		},
	}
}

// Execute runs the CLI application.
func (a *App) Execute() error {
	return a.root.Execute()
}

// loadConfig reads the config file and installs the process logger.
func (a *App) loadConfig() (*config.Config, error) {
	cfg, err := config.LoadFrom(a.configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	level, err := cfg.LogLevel()
	if err != nil {
		return nil, err
	}
	slog.SetDefault(slog.New(newLogHandler(os.Stderr, cfg.Log.Format, level)))
	return cfg, nil
}

func newLogHandler(w io.Writer, format string, level slog.Level) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}
	if format == "json" {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// database is an opened and migrated store set plus its closer.
type database struct {
	stores *web.Stores
	close  func() error
}

// openDatabase connects to the configured driver, migrates it and builds the
// stores. collector may be nil.
func openDatabase(cfg *config.Config, collector *perf.Collector) (*database, error) {
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		db, err := postgres.Open(cfg.Database.DSN)
		if err != nil {
			return nil, err
		}
		if err := postgres.Migrate(db); err != nil {
			db.Close()
			return nil, err
		}
		timed := postgres.NewTimedDB(db, collector, cfg.SlowQuery())
		return &database{
			stores: &web.Stores{
				PracticeSchedules: postgres.NewPracticeScheduleStore(timed),
				RotationEvents:    postgres.NewRotationEventStore(timed),
				RotationBlocks:    postgres.NewRotationBlockStore(timed),
				GridLayouts:       postgres.NewGridLayoutStore(timed),
			},
			close: db.Close,
		}, nil
	default:
		db, err := storage.OpenSQLite(cfg.Database.DSN)
		if err != nil {
			return nil, err
		}
		if err := storage.MigrateDB(db, cfg.Database.DSN); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		timed := storage.NewTimedDB(db, collector, cfg.SlowQuery())
		return &database{
			stores: &web.Stores{
				PracticeSchedules: practiceScheduleStore.NewSQLiteStore(timed),
				RotationEvents:    rotationEventStore.NewSQLiteStore(timed),
				RotationBlocks:    rotationBlockStore.NewSQLiteStore(timed),
				GridLayouts:       gridLayoutStore.NewSQLiteStore(timed),
			},
			close: db.Close,
		}, nil
	}
}

// saveObserver records every coalesced layout save in the perf collector.
func saveObserver(collector *perf.Collector) coalesce.Observer {
	return func(key string, took time.Duration, err error) {
		status := 0
		if err != nil {
			status = 1
		}
		collector.Record(perf.Entry{
			Kind:       perf.KindSave,
			Path:       key,
			StatusCode: status,
			DurationMs: float64(took.Microseconds()) / 1000,
			Timestamp:  time.Now(),
		})
	}
}

func (a *App) serve(ctx context.Context) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}

	collector := perf.NewCollector(cfg.Perf.RingSize)
	db, err := openDatabase(cfg, collector)
	if err != nil {
		return err
	}
	defer db.close()

	key, generated, err := cfg.CSRFKeyBytes()
	if err != nil {
		return err
	}
	if generated {
		slog.Warn("csrf_key_generated", "hint", "set CLUBGRID_CSRF_KEY so tokens survive restarts")
	}

	saver := coalesce.New(cfg.SaveDelay(), coalesce.WithObserver(saveObserver(collector)))
	defer saver.Stop()

	handler, stopMux := web.NewMux(db.stores, web.Options{
		Collector:          collector,
		Saver:              saver,
		CSRFKey:            key,
		SecureCookies:      cfg.IsProduction(),
		TrustedOrigins:     cfg.Server.TrustedOrigins,
		SlowRequest:        cfg.SlowRequest(),
		RateLimitPerSecond: cfg.Server.RateLimitPerSecond,
	})
	defer stopMux()

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server_starting",
			"version", Version,
			"addr", cfg.Server.Addr,
			"env", cfg.Env,
			"driver", cfg.Database.Driver,
			"schema", storage.LatestSchemaVersion(),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("server_stopping")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server_shutdown_failed", "error", err.Error())
	}
	if err := saver.Flush(shutdownCtx); err != nil {
		slog.Error("pending_saves_lost", "error", err.Error())
		return err
	}
	slog.Info("server_stopped")
	return nil
}
