package cmd

import (
	"context"
	"errors"
	"flag"
	"testing"
)

type testConfig struct {
	Address string `env:"CHEMVIZ_CMD_TEST_ADDRESS" envDefault:"127.0.0.1:8080"`
	Mode    string `env:"CHEMVIZ_CMD_TEST_MODE" envDefault:"server"`
}

func TestParseConfigReadsEnvAndFlags(t *testing.T) {
	t.Setenv("CHEMVIZ_CMD_TEST_ADDRESS", "env:9000")
	t.Setenv("CHEMVIZ_CMD_TEST_MODE", "env-mode")

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg := testConfig{}
	if err := ParseConfig(&cfg); err != nil {
		t.Fatalf("ParseConfig() error = %v", err)
	}
	fs.StringVar(&cfg.Address, "address", cfg.Address, "address")
	fs.StringVar(&cfg.Mode, "mode", cfg.Mode, "mode")

	if err := ParseArgs(fs, []string{"-address", "flag:9001"}); err != nil {
		t.Fatalf("ParseArgs() error = %v", err)
	}
	if cfg.Address != "flag:9001" {
		t.Fatalf("Address = %q, want %q", cfg.Address, "flag:9001")
	}
	if cfg.Mode != "env-mode" {
		t.Fatalf("Mode = %q, want %q", cfg.Mode, "env-mode")
	}
}

func TestParseConfigRejectsNilTarget(t *testing.T) {
	if err := ParseConfig[testConfig](nil); err == nil {
		t.Fatal("expected nil target error")
	}
}

func TestParseArgsRejectsNilParser(t *testing.T) {
	if err := ParseArgs(nil, []string{}); err == nil {
		t.Fatal("expected parse args to reject nil parser")
	}
}

func TestRunWithTelemetryRunsLoop(t *testing.T) {
	t.Setenv("CHEMVIZ_OTEL_ENDPOINT", "")

	sentinel := errors.New("stopped")
	called := false
	err := RunWithTelemetry(context.Background(), ServiceDashboard, func(context.Context) error {
		called = true
		return sentinel
	})
	if !called {
		t.Fatal("run loop was not called")
	}
	if !errors.Is(err, sentinel) {
		t.Fatalf("RunWithTelemetry() error = %v, want %v", err, sentinel)
	}
}

func TestRunWithTelemetryRejectsMissingInputs(t *testing.T) {
	if err := RunWithTelemetry(context.Background(), "", func(context.Context) error { return nil }); err == nil {
		t.Fatal("expected missing service error")
	}
	if err := RunWithTelemetry(context.Background(), ServiceDashboard, nil); err == nil {
		t.Fatal("expected missing run function error")
	}
}
