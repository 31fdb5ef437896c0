package otel

import (
	"context"
	"testing"
)

func TestSetupNoopWhenEndpointEmpty(t *testing.T) {
	t.Setenv("CHEMVIZ_OTEL_ENDPOINT", "")

	shutdown, err := Setup(context.Background(), "test-service")
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown error: %v", err)
	}
}

func TestSetupRejectsMalformedEnv(t *testing.T) {
	t.Setenv("CHEMVIZ_OTEL_SAMPLE_RATIO", "half")

	if _, err := Setup(context.Background(), "test-service"); err == nil {
		t.Fatal("expected env parse error")
	}
}

func TestSettingsActive(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		settings Settings
		want     bool
	}{
		{name: "no endpoint", settings: Settings{Enabled: true}, want: false},
		{name: "disabled", settings: Settings{Endpoint: "http://localhost:4318", Enabled: false}, want: false},
		{name: "enabled", settings: Settings{Endpoint: "http://localhost:4318", Enabled: true}, want: true},
	}
	for _, tc := range tests {
		if got := tc.settings.Active(); got != tc.want {
			t.Fatalf("%s: Active() = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestSetupWithSettingsRejectsSampleRatio(t *testing.T) {
	t.Parallel()

	_, err := SetupWithSettings(context.Background(), "test-service", Settings{
		Endpoint: "http://192.0.2.1:4318", Enabled: true, SampleRatio: 2,
	})
	if err == nil {
		t.Fatal("expected sample ratio error")
	}
}

func TestSetupWithSettingsCreatesProvider(t *testing.T) {
	// Non-routable endpoint: nothing is exported because no span is recorded.
	shutdown, err := SetupWithSettings(context.Background(), "test-service", Settings{
		Endpoint: "http://192.0.2.1:4318", Enabled: true, SampleRatio: 1,
	})
	if err != nil {
		t.Fatalf("SetupWithSettings() error = %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown error: %v", err)
	}
}
