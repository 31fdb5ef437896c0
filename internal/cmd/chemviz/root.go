// Package chemviz implements the chemviz command-line client.
package chemviz

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	entrypoint "github.com/louisbranch/chemviz/internal/platform/cmd"
	"github.com/louisbranch/chemviz/internal/services/dashboard/bootstrap"
	"github.com/louisbranch/chemviz/internal/services/dashboard/session"
	"github.com/spf13/cobra"
)

// Version is the chemviz CLI version.
var Version = "0.1.0"

// Config holds the settings shared by every subcommand.
type Config struct {
	APIBaseURL string        `env:"CHEMVIZ_API_BASE_URL" envDefault:"http://127.0.0.1:8000/api/"`
	DBPath     string        `env:"CHEMVIZ_DB_PATH" envDefault:"data/chemviz.db"`
	APITimeout time.Duration `env:"CHEMVIZ_API_TIMEOUT" envDefault:"10s"`
}

// Options controls how NewRootCommand reaches the outside world.
type Options struct {
	// Now is the report clock; defaults to time.Now.
	Now func() time.Time
}

type app struct {
	cfg     Config
	verbose bool
	now  func() time.Time
	open func(bootstrap.Settings) (*bootstrap.Runtime, error)
}

// NewRootCommand builds the chemviz command tree. Environment defaults are
// read once here and can be overridden by the persistent flags.
func NewRootCommand(opts Options) (*cobra.Command, error) {
	a := &app{now: opts.Now, open: bootstrap.Open}
	if a.now == nil {
		a.now = time.Now
	}
	if err := entrypoint.ParseConfig(&a.cfg); err != nil {
		return nil, err
	}

	root := &cobra.Command{
		Use:   "chemviz",
		Short: "Chemical equipment telemetry client",
		Long: `chemviz uploads equipment telemetry CSV files to the analysis API and
inspects the resulting dataset summaries.

The access token is stored in the same local state database the dashboard
uses, so logging in here also signs the dashboard in.

Examples:
  chemviz login -u operator          # Obtain and store an access token
  chemviz upload plant_a.csv         # Upload a CSV and show its summary
  chemviz history -o yaml            # List uploads, newest first
  chemviz report -f report.pdf       # Export the latest dataset as PDF`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			log.SetPrefix("[CHEMVIZ] ")
			if a.verbose {
				log.SetOutput(cmd.ErrOrStderr())
				return
			}
			log.SetOutput(io.Discard)
		},
	}
	flags := root.PersistentFlags()
	flags.StringVar(&a.cfg.APIBaseURL, "api-base-url", a.cfg.APIBaseURL, "Telemetry API base URL")
	flags.StringVar(&a.cfg.DBPath, "db-path", a.cfg.DBPath, "Client state SQLite path")
	flags.DurationVar(&a.cfg.APITimeout, "api-timeout", a.cfg.APITimeout, "Timeout for one telemetry API call")
	flags.BoolVar(&a.verbose, "verbose", false, "Log session transitions to stderr")

	root.AddCommand(
		a.loginCommand(),
		a.tokenCommand(),
		a.logoutCommand(),
		a.whoamiCommand(),
		a.refreshCommand(),
		a.historyCommand(),
		a.summaryCommand(),
		a.uploadCommand(),
		a.reportCommand(),
	)
	return root, nil
}

// Execute runs the CLI with args under the CLI tracer and returns the first
// error.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	root, err := NewRootCommand(Options{})
	if err != nil {
		return err
	}
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceCLI, root.ExecuteContext)
}

// withRuntime opens the shared state and API client, restores the session
// and waits for its first history load before calling fn.
func (a *app) withRuntime(ctx context.Context, fn func(context.Context, *bootstrap.Runtime) error) error {
	rt, err := a.open(bootstrap.Settings{
		APIBaseURL: a.cfg.APIBaseURL,
		DBPath:     a.cfg.DBPath,
		APITimeout: a.cfg.APITimeout,
	})
	if err != nil {
		return err
	}
	defer rt.Close()
	if err := rt.Start(ctx); err != nil {
		return fmt.Errorf("restore session: %w", err)
	}
	rt.Session.Wait()
	return fn(ctx, rt)
}

// settledState waits for in-flight loads and turns an error state into an
// error carrying the operator-facing message.
func settledState(store *session.Store) (session.State, error) {
	store.Wait()
	state := store.Snapshot()
	switch state.Status {
	case session.StatusUnauthenticated:
		return state, errors.New("no access token set: run 'chemviz login' or 'chemviz token set'")
	case session.StatusError:
		return state, errors.New(state.Message())
	}
	return state, nil
}
