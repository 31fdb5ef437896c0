package chemviz

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/louisbranch/chemviz/internal/equipment"
	"github.com/louisbranch/chemviz/internal/services/dashboard/bootstrap"
	"github.com/louisbranch/chemviz/internal/services/dashboard/remote"
	"github.com/louisbranch/chemviz/internal/services/dashboard/report"
	"github.com/spf13/cobra"
)

func (a *app) historyCommand() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List uploaded datasets, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := ParseFormat(output)
			if err != nil {
				return err
			}
			return a.withRuntime(cmd.Context(), func(_ context.Context, rt *bootstrap.Runtime) error {
				state, err := settledState(rt.Session)
				if err != nil {
					return err
				}
				entries := equipment.Timeline(state.History)
				return render(cmd.OutOrStdout(), format, entries, func(tw *tabwriter.Writer) {
					if len(entries) == 0 {
						fmt.Fprintln(tw, "No uploads yet.")
						return
					}
					fmt.Fprintln(tw, "ID\tFILENAME\tUPLOADED")
					for _, entry := range entries {
						fmt.Fprintf(tw, "%d\t%s\t%s\n", entry.ID, entry.Filename, formatTime(entry.UploadedAt))
					}
				})
			})
		},
	}
	addOutputFlag(cmd, &output)
	return cmd
}

func (a *app) summaryCommand() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show the summary of the latest dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := ParseFormat(output)
			if err != nil {
				return err
			}
			return a.withRuntime(cmd.Context(), func(_ context.Context, rt *bootstrap.Runtime) error {
				state, err := settledState(rt.Session)
				if err != nil {
					return err
				}
				if state.Current == nil {
					return errors.New("no uploads yet: run 'chemviz upload FILE'")
				}
				return writeSummary(cmd, format, equipment.Project(state.Current))
			})
		},
	}
	addOutputFlag(cmd, &output)
	return cmd
}

func (a *app) uploadCommand() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "upload FILE",
		Short: "Upload a telemetry CSV and show the new summary",
		Long: `Upload one CSV file to the analysis API. After the API accepts it the
history is reloaded and the new dataset's summary is printed.

Examples:
  chemviz upload plant_a.csv
  chemviz upload plant_a.csv -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := ParseFormat(output)
			if err != nil {
				return err
			}
			content, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			name := remote.UploadName(args[0])
			if err := remote.ValidateUpload(name, content); err != nil {
				return err
			}
			return a.withRuntime(cmd.Context(), func(ctx context.Context, rt *bootstrap.Runtime) error {
				state := rt.Session.Snapshot()
				if !state.HasToken() {
					return errors.New("no access token set: run 'chemviz login' or 'chemviz token set'")
				}
				if _, err := rt.Client.Upload(ctx, state.Token, name, bytes.NewReader(content)); err != nil {
					return fmt.Errorf("upload %s: %w", name, err)
				}
				if err := rt.Session.UploadCompleted(ctx); err != nil {
					return err
				}
				state, err := settledState(rt.Session)
				if err != nil {
					return err
				}
				if state.Current == nil {
					fmt.Fprintf(cmd.OutOrStdout(), "Uploaded %s\n", name)
					return nil
				}
				return writeSummary(cmd, format, equipment.Project(state.Current))
			})
		},
	}
	addOutputFlag(cmd, &output)
	return cmd
}

func (a *app) reportCommand() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Export the latest dataset as a PDF report",
		Long: `Write the latest dataset's PDF report. Without -f the file is named
after today's date in the working directory.

Examples:
  chemviz report
  chemviz report -f out/plant_a.pdf`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withRuntime(cmd.Context(), func(_ context.Context, rt *bootstrap.Runtime) error {
				state, err := settledState(rt.Session)
				if err != nil {
					return err
				}
				if state.Current == nil {
					return errors.New("no uploads yet: run 'chemviz upload FILE'")
				}
				now := a.now()
				target := strings.TrimSpace(file)
				if target == "" {
					target = report.Filename(now, report.DefaultLocale)
				}
				var buf bytes.Buffer
				err = report.Write(&buf, report.Input{
					Dataset:     state.Current,
					Points:      equipment.NewSampler(nil).Sample(state.Current),
					GeneratedAt: now,
					Locale:      report.DefaultLocale,
				})
				if err != nil {
					return err
				}
				if dir := filepath.Dir(target); dir != "." {
					if err := os.MkdirAll(dir, 0o755); err != nil {
						return fmt.Errorf("create report dir: %w", err)
					}
				}
				if err := os.WriteFile(target, buf.Bytes(), 0o644); err != nil {
					return fmt.Errorf("write report: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", target)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Output PDF path")
	return cmd
}

func writeSummary(cmd *cobra.Command, format Format, summary *equipment.Summary) error {
	return render(cmd.OutOrStdout(), format, summary, func(tw *tabwriter.Writer) {
		fmt.Fprintf(tw, "FILE\t%s\n", summary.Filename)
		fmt.Fprintf(tw, "UPLOADED\t%s\n", formatTime(summary.UploadedAt))
		fmt.Fprintf(tw, "TOTAL EQUIPMENT\t%d\n", summary.TotalEquipment)
		for _, avg := range summary.Averages {
			fmt.Fprintf(tw, "AVG %s\t%.2f\n", strings.ToUpper(avg.Name), avg.Value)
		}
		fmt.Fprintf(tw, "HEALTH SCORE\t%d\n", summary.HealthScore)
		if len(summary.Distribution) > 0 {
			fmt.Fprintln(tw)
			fmt.Fprintln(tw, "TYPE\tCOUNT")
			for _, slice := range summary.Distribution {
				fmt.Fprintf(tw, "%s\t%.0f\n", slice.Name, slice.Value)
			}
		}
	})
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func orDash(value string) string {
	if value == "" {
		return "-"
	}
	return value
}

