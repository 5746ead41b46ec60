package http

import (
	"errors"
	"testing"
	"time"

	"github.com/goccy/go-json"
)

func TestDefaultConfig_Valid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"empty addr", func(c *Config) { c.Addr = "" }},
		{"zero segment", func(c *Config) { c.SegmentSize = 0 }},
		{"head below segment", func(c *Config) { c.MaxHeadSize = c.SegmentSize - 1 }},
		{"negative body", func(c *Config) { c.MaxBodySize = -1 }},
		{"no headers", func(c *Config) { c.MaxHeaders = 0 }},
		{"no uri", func(c *Config) { c.MaxURILength = 0 }},
		{"negative timeout", func(c *Config) { c.ReadTimeout = -1 }},
		{"drain without step", func(c *Config) { c.DrainStep = 0 }},
		{"negative workers", func(c *Config) { c.Workers = -1 }},
		{"negative queue", func(c *Config) { c.Workers, c.QueueSize = 2, -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Validate() error = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestConfig_JSON(t *testing.T) {
	in := []byte(`{"addr":"127.0.0.1:9000","read_timeout":"250ms","write_timeout":1000,"workers":4}`)
	cfg := DefaultConfig()
	if err := json.Unmarshal(in, &cfg); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if cfg.Addr != "127.0.0.1:9000" || cfg.Workers != 4 {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.ReadTimeout.Std() != 250*time.Millisecond {
		t.Errorf("ReadTimeout = %v, want 250ms", cfg.ReadTimeout.Std())
	}
	if cfg.WriteTimeout.Std() != time.Microsecond {
		t.Errorf("WriteTimeout = %v, want 1µs", cfg.WriteTimeout.Std())
	}
	if cfg.SegmentSize != 2048 {
		t.Errorf("SegmentSize = %d, want the default to survive", cfg.SegmentSize)
	}

	out, err := json.Marshal(cfg)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	var back Config
	if err := json.Unmarshal(out, &back); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if back != cfg {
		t.Errorf("round trip = %+v, want %+v", back, cfg)
	}
}

func TestDuration_Invalid(t *testing.T) {
	var d Duration
	for _, in := range []string{`"soon"`, `"5s`, `1.5`} {
		if err := d.UnmarshalJSON([]byte(in)); err == nil {
			t.Errorf("UnmarshalJSON(%s) error = nil", in)
		}
	}
}
