// Package dashboard parses dashboard service flags and launches the service.
package dashboard

import (
	"context"
	"flag"
	"fmt"
	"time"

	entrypoint "github.com/louisbranch/chemviz/internal/platform/cmd"
	server "github.com/louisbranch/chemviz/internal/services/dashboard"
	"github.com/louisbranch/chemviz/internal/services/dashboard/bootstrap"
)

// Config holds dashboard command configuration.
type Config struct {
	HTTPAddr   string        `env:"CHEMVIZ_DASHBOARD_HTTP_ADDR" envDefault:"localhost:8090"`
	APIBaseURL string        `env:"CHEMVIZ_API_BASE_URL" envDefault:"http://127.0.0.1:8000/api/"`
	DBPath     string        `env:"CHEMVIZ_DB_PATH" envDefault:"data/chemviz.db"`
	APITimeout time.Duration `env:"CHEMVIZ_API_TIMEOUT" envDefault:"10s"`
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP listen address")
	fs.StringVar(&cfg.APIBaseURL, "api-base-url", cfg.APIBaseURL, "Telemetry API base URL")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "Client state SQLite path")
	fs.DurationVar(&cfg.APITimeout, "api-timeout", cfg.APITimeout, "Timeout for one telemetry API call")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the dashboard and serves until ctx is done.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceDashboard, func(ctx context.Context) error {
		rt, err := bootstrap.Open(bootstrap.Settings{
			APIBaseURL: cfg.APIBaseURL,
			DBPath:     cfg.DBPath,
			APITimeout: cfg.APITimeout,
		})
		if err != nil {
			return err
		}
		defer rt.Close()
		if err := rt.Start(ctx); err != nil {
			return fmt.Errorf("restore session: %w", err)
		}

		srv, err := server.NewServer(ctx, server.Config{
			HTTPAddr: cfg.HTTPAddr,
			Session:  rt.Session,
			API:      rt.Client,
		})
		if err != nil {
			return fmt.Errorf("init dashboard server: %w", err)
		}
		defer srv.Close()

		if err := srv.ListenAndServe(ctx); err != nil {
			return fmt.Errorf("serve dashboard: %w", err)
		}
		return nil
	})
}
