// cmd/netclassd/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/tamzrod/netclass/internal/api"
	"github.com/tamzrod/netclass/internal/config"
	"github.com/tamzrod/netclass/internal/history"
	"github.com/tamzrod/netclass/internal/logging"
	"github.com/tamzrod/netclass/internal/netclass"
	"github.com/tamzrod/netclass/internal/source"
	"github.com/tamzrod/netclass/internal/watcher"
	"github.com/tamzrod/netclass/internal/writer"
)

const shutdownTimeout = 5 * time.Second

// osExit is swapped in tests.
var osExit = os.Exit

// exit logs err, flushes and releases the log sink, then exits with code.
// zap's Fatal would skip the release.
func exit(zl *zap.Logger, closeLog func() error, code int, msg string, err error) {
	zl.Error(msg, zap.Error(err))
	if cerr := closeLog(); cerr != nil {
		fmt.Fprintf(os.Stderr, "netclassd: close log: %v\n", cerr)
	}
	osExit(code)
}

func main() {
	once := flag.Bool("once", false, "print the current network class and exit")
	flag.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), "usage: netclassd [-once] <config.yaml>")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	cfgPath := flag.Arg(0)

	// --------------------
	// Load + validate config
	// --------------------

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	if err := config.Validate(cfg); err != nil {
		log.Fatalf("config validation failed: %v", err)
	}
	config.Normalize(cfg)

	// --------------------
	// Logger
	// --------------------

	zl, closeLog, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	defer closeLog() //nolint:errcheck

	// --------------------
	// Source + watcher
	// --------------------

	factory, err := source.Build(cfg.Source, zl)
	if err != nil {
		exit(zl, closeLog, 1, "source build failed", err)
		return
	}

	w := watcher.New(factory,
		watcher.WithLogger(zl.Named("watcher")),
		watcher.WithDedup(cfg.Watcher.Dedup),
		watcher.WithBuffer(cfg.Watcher.Buffer),
	)

	if *once {
		fmt.Println(w.Status())
		if err := w.Close(); err != nil {
			zl.Warn("watcher close", zap.Error(err))
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, w, zl); err != nil {
		exit(zl, closeLog, 1, "netclassd stopped", err)
		return
	}
	zl.Info("netclassd stopped")
}

// run wires the optional consumers and blocks until ctx is done.
// Each consumer holds its own watcher subscription.
func run(ctx context.Context, cfg *config.Config, w *watcher.Watcher, zl *zap.Logger) error {
	var (
		wg      sync.WaitGroup
		closers []func() error
	)
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				zl.Warn("shutdown", zap.Error(err))
			}
		}
	}()

	// Closing the watcher closes every subscription channel, which ends
	// the consumers before their resources are released.
	defer func() {
		if err := w.Close(); err != nil {
			zl.Warn("watcher close", zap.Error(err))
		}
		wg.Wait()
	}()

	// subscribe returns the stream and the class observed right after it.
	subscribe := func(name string) (*watcher.Subscription, netclass.Class, error) {
		sub, err := w.Subscribe()
		if err != nil {
			return nil, "", fmt.Errorf("%s: %w", name, err)
		}
		return sub, w.Status(), nil
	}

	// ---- history (optional) ----
	var hist api.History
	if cfg.History.Path != "" {
		db, err := history.Open(cfg.History.Path)
		if err != nil {
			return err
		}
		closers = append(closers, db.Close)
		if err := history.Migrate(db); err != nil {
			return err
		}
		hist = db

		sub, initial, err := subscribe("history")
		if err != nil {
			return err
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			history.Record(ctx, db, initial, sub.C(), zl.Named("history"))
		}()
	}

	// ---- status block publisher (optional) ----
	if cfg.Publish.Enabled() {
		sw, closeWriter, err := writer.BuildStatusWriter(cfg.Publish)
		if err != nil {
			return fmt.Errorf("status writer: %w", err)
		}
		closers = append(closers, closeWriter)

		sub, initial, err := subscribe("publish")
		if err != nil {
			return err
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			writer.Run(ctx, initial, sub.C(), sw, zl.Named("publish"))
		}()
	}

	// ---- HTTP API (optional) ----
	var srv *http.Server
	errc := make(chan error, 1)
	if cfg.API.Listen != "" {
		srv = &http.Server{
			Addr:              cfg.API.Listen,
			Handler:           api.NewRouter(w, hist, zl.Named("api")),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			zl.Info("api listening", zap.String("addr", cfg.API.Listen))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errc <- err
			}
		}()
	}

	zl.Info("netclassd running",
		zap.String("source", cfg.Source.Kind),
		zap.String("status", w.Status().String()),
		zap.Int("subscribers", w.Len()),
	)

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errc:
	}

	// --------------------
	// Shutdown
	// --------------------

	if srv != nil {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		if err := srv.Shutdown(sctx); err != nil {
			zl.Warn("api shutdown", zap.Error(err))
		}
		cancel()
	}

	return runErr
}
