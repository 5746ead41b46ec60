package main

import (
	"bytes"
	"errors"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestLoadOptions_Defaults(t *testing.T) {
	opts, err := loadOptions(nil, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("loadOptions() error = %v", err)
	}
	if opts.cfg.Addr != ":8080" || opts.level != zerolog.InfoLevel || opts.grace != 5*time.Second {
		t.Errorf("opts = %+v", opts)
	}
}

func TestLoadOptions_FileThenFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "httpd.json")
	data := `{"addr":":9000","workers":8,"queue_size":32,"read_timeout":"2s"}`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	opts, err := loadOptions([]string{"-config", path, "-workers", "2", "-level", "debug"}, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("loadOptions() error = %v", err)
	}
	cfg := opts.cfg
	if cfg.Addr != ":9000" || cfg.QueueSize != 32 {
		t.Errorf("file values lost: addr=%q queue=%d", cfg.Addr, cfg.QueueSize)
	}
	if cfg.Workers != 2 {
		t.Errorf("Workers = %d, want the flag value 2", cfg.Workers)
	}
	if cfg.ReadTimeout.Std() != 2*time.Second {
		t.Errorf("ReadTimeout = %v, want 2s", cfg.ReadTimeout.Std())
	}
	if opts.level != zerolog.DebugLevel {
		t.Errorf("level = %v, want debug", opts.level)
	}
}

func TestLoadOptions_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown flag", []string{"-nope"}},
		{"bad level", []string{"-level", "loud"}},
		{"invalid config", []string{"-workers", "-3"}},
		{"missing file", []string{"-config", filepath.Join(t.TempDir(), "absent.json")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := loadOptions(tt.args, &bytes.Buffer{}); err == nil {
				t.Error("loadOptions() error = nil")
			}
		})
	}
	if _, err := loadOptions([]string{"-h"}, &bytes.Buffer{}); !errors.Is(err, flag.ErrHelp) {
		t.Errorf("loadOptions(-h) error = %v, want flag.ErrHelp", err)
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, options{level: zerolog.WarnLevel})
	logger.Info().Msg("hidden")
	logger.Warn().Msg("shown")
	if out := buf.String(); strings.Contains(out, "hidden") || !strings.Contains(out, `"message":"shown"`) {
		t.Errorf("log output = %s", out)
	}
}
