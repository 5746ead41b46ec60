// Command shape-httpd runs the HTTP/1.1 server with the acknowledging
// handler.
//
// Settings come from DefaultConfig, then an optional JSON file given with
// -config, then any flags set on the command line.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/shapestone/shape-httpd/pkg/http"
)

type options struct {
	cfg    http.Config
	level  zerolog.Level
	pretty bool
	grace  time.Duration
}

func main() {
	opts, err := loadOptions(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "shape-httpd:", err)
		os.Exit(2)
	}

	logger := newLogger(os.Stderr, opts)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := http.NewServer(opts.cfg, http.AckHandler, http.WithLogger(logger))
	if err := srv.ListenAndServe(ctx); !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), opts.grace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("shutdown")
	}
	st := srv.Stats()
	logger.Info().
		Int64("accepted", st.Accepted).
		Int64("served", st.Served).
		Int64("rejected", st.Rejected).
		Msg("bye")
}

func loadOptions(args []string, stderr io.Writer) (options, error) {
	fs := flag.NewFlagSet("shape-httpd", flag.ContinueOnError)
	fs.SetOutput(stderr)

	def := http.DefaultConfig()
	configPath := fs.String("config", "", "JSON config `file`")
	addr := fs.String("addr", def.Addr, "listen address")
	workers := fs.Int("workers", def.Workers, "worker goroutines, 0 for one per connection")
	queue := fs.Int("queue", def.QueueSize, "connections waiting for a worker")
	contentType := fs.String("content-type", def.ContentType, "default response Content-Type")
	maxBody := fs.Int64("max-body", def.MaxBodySize, "request body limit in bytes, 0 for none")
	readTimeout := fs.Duration("read-timeout", def.ReadTimeout.Std(), "per segment read timeout")
	level := fs.String("level", "info", "log level")
	pretty := fs.Bool("pretty", false, "human readable logs")
	grace := fs.Duration("grace", 5*time.Second, "time allowed for live connections on shutdown")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	cfg := def
	if *configPath != "" {
		data, err := os.ReadFile(*configPath)
		if err != nil {
			return options{}, err
		}
		if err := json.Unmarshal(data, &cfg); err != nil {
			return options{}, fmt.Errorf("config %s: %w", *configPath, err)
		}
	}

	// Flags given on the command line win over the file.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "addr":
			cfg.Addr = *addr
		case "workers":
			cfg.Workers = *workers
		case "queue":
			cfg.QueueSize = *queue
		case "content-type":
			cfg.ContentType = *contentType
		case "max-body":
			cfg.MaxBodySize = *maxBody
		case "read-timeout":
			cfg.ReadTimeout = http.Duration(*readTimeout)
		}
	})
	if err := cfg.Validate(); err != nil {
		return options{}, err
	}

	lvl, err := zerolog.ParseLevel(*level)
	if err != nil {
		return options{}, err
	}
	return options{cfg: cfg, level: lvl, pretty: *pretty, grace: *grace}, nil
}

func newLogger(w io.Writer, opts options) zerolog.Logger {
	if opts.pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).Level(opts.level).With().Timestamp().Logger()
}
