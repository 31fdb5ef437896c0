package dashboard

import (
	"flag"
	"testing"
	"time"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("dashboard", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("ParseConfig() error = %v", err)
	}
	if cfg.HTTPAddr != "localhost:8090" {
		t.Fatalf("HTTPAddr = %q, want %q", cfg.HTTPAddr, "localhost:8090")
	}
	if cfg.APIBaseURL != "http://127.0.0.1:8000/api/" {
		t.Fatalf("APIBaseURL = %q, want %q", cfg.APIBaseURL, "http://127.0.0.1:8000/api/")
	}
	if cfg.DBPath != "data/chemviz.db" {
		t.Fatalf("DBPath = %q, want %q", cfg.DBPath, "data/chemviz.db")
	}
	if cfg.APITimeout != 10*time.Second {
		t.Fatalf("APITimeout = %v, want %v", cfg.APITimeout, 10*time.Second)
	}
}

func TestParseConfigEnvOverrides(t *testing.T) {
	t.Setenv("CHEMVIZ_DASHBOARD_HTTP_ADDR", "0.0.0.0:9000")
	t.Setenv("CHEMVIZ_API_TIMEOUT", "3s")

	cfg, err := ParseConfig(flag.NewFlagSet("dashboard", flag.ContinueOnError), nil)
	if err != nil {
		t.Fatalf("ParseConfig() error = %v", err)
	}
	if cfg.HTTPAddr != "0.0.0.0:9000" {
		t.Fatalf("HTTPAddr = %q, want %q", cfg.HTTPAddr, "0.0.0.0:9000")
	}
	if cfg.APITimeout != 3*time.Second {
		t.Fatalf("APITimeout = %v, want %v", cfg.APITimeout, 3*time.Second)
	}
}

func TestParseConfigFlagsOverrideEnv(t *testing.T) {
	t.Setenv("CHEMVIZ_API_BASE_URL", "http://env:8000/api/")

	cfg, err := ParseConfig(flag.NewFlagSet("dashboard", flag.ContinueOnError), []string{
		"-api-base-url", "https://flag.example/api/",
		"-db-path", "/tmp/chemviz.db",
		"-api-timeout", "250ms",
	})
	if err != nil {
		t.Fatalf("ParseConfig() error = %v", err)
	}
	if cfg.APIBaseURL != "https://flag.example/api/" {
		t.Fatalf("APIBaseURL = %q", cfg.APIBaseURL)
	}
	if cfg.DBPath != "/tmp/chemviz.db" {
		t.Fatalf("DBPath = %q", cfg.DBPath)
	}
	if cfg.APITimeout != 250*time.Millisecond {
		t.Fatalf("APITimeout = %v", cfg.APITimeout)
	}
}

func TestParseConfigRejectsUnknownFlag(t *testing.T) {
	fs := flag.NewFlagSet("dashboard", flag.ContinueOnError)
	fs.SetOutput(nopWriter{})
	if _, err := ParseConfig(fs, []string{"-nope"}); err == nil {
		t.Fatal("expected unknown flag error")
	}
}

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }
