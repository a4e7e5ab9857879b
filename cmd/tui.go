package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/matheuskafuri/devshelf/internal/config"
	"github.com/matheuskafuri/devshelf/internal/dataset"
	"github.com/matheuskafuri/devshelf/internal/loader"
	"github.com/matheuskafuri/devshelf/internal/tui"
	"github.com/matheuskafuri/devshelf/internal/watch"
)

func runTUI(cmd *cobra.Command, args []string) error {
	start, err := parsePage(flagPage, true)
	if err != nil {
		return err
	}

	cfg, base, err := loadConfig()
	if err != nil {
		return err
	}

	// The TUI owns the terminal, so logs go to a file.
	logFile, err := openLogFile(config.LogPath())
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer logFile.Close()
	logger := newLogger(logFile, flagVerbose)
	slog.SetDefault(logger)

	reg := prometheus.NewRegistry()
	l := newLoader(cfg, logger, loader.WithRegisterer(reg))

	if flagMetricsAddr != "" {
		stop := serveMetrics(flagMetricsAddr, reg, logger)
		defer stop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var w *watch.Watcher
	if cfg.Watch {
		w, err = startWatcher(ctx, cfg, base, logger)
		if err != nil {
			return err
		}
		if w != nil {
			defer w.Close()
		}
	}

	logger.Info("starting", "version", version, "base", base, "page", start)
	return tui.Run(tui.RunOpts{
		Cfg:       cfg,
		Loader:    l,
		Base:      base,
		Watcher:   w,
		Logger:    logger,
		Version:   version,
		StartPage: start,
	})
}

// loadConfig reads the config file and resolves the effective base: the
// --base flag, then $DEVSHELF_BASE_URL, then base_url.
func loadConfig() (*config.Config, string, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, "", fmt.Errorf("loading config: %w", err)
	}
	base := cfg.Base()
	if flagBase != "" {
		base = flagBase
	}
	if err := config.ValidateBase(base); err != nil {
		return nil, "", err
	}
	return cfg, base, nil
}

func newLoader(cfg *config.Config, logger *slog.Logger, opts ...loader.Option) *loader.Loader {
	fetcher := loader.MultiFetcher{
		HTTP: loader.NewHTTPFetcher(cfg.TimeoutDuration(), "devshelf/"+version),
		File: loader.FileFetcher{},
	}
	return loader.New(fetcher, append([]loader.Option{loader.WithLogger(logger)}, opts...)...)
}

// parsePage maps a --page value to a dataset kind. An empty value is only
// accepted where the caller has a fallback (the TUI home screen).
func parsePage(s string, allowEmpty bool) (dataset.Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		if allowEmpty {
			return "", nil
		}
	case "notes", "note":
		return dataset.KindNotes, nil
	case "programs", "program":
		return dataset.KindPrograms, nil
	}
	return "", fmt.Errorf("invalid page %q: want notes or programs", s)
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}

func serveMetrics(addr string, reg *prometheus.Registry, logger *slog.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "addr", addr, "error", err)
		}
	}()
	logger.Info("serving metrics", "addr", addr)

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}

// startWatcher watches the dataset files of a local base. Remote bases have
// nothing to watch and get a nil watcher.
func startWatcher(ctx context.Context, cfg *config.Config, base string, logger *slog.Logger) (*watch.Watcher, error) {
	if loader.IsRemote(base) {
		logger.Warn("watch is only supported for local bases", "base", base)
		return nil, nil
	}
	files := []string{
		loader.Resolve(base, cfg.NotesFile),
		loader.Resolve(base, cfg.ProgramsFile),
	}
	w, err := watch.New(files, logger)
	if err != nil {
		return nil, fmt.Errorf("watching %s: %w", loader.LocalDir(base), err)
	}
	go func() {
		if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("watcher stopped", "error", err)
		}
	}()
	return w, nil
}
