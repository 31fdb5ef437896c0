package chemviz

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/louisbranch/chemviz/internal/services/dashboard/bootstrap"
	"github.com/louisbranch/chemviz/internal/services/dashboard/tokeninfo"
	"github.com/spf13/cobra"
)

func (a *app) loginCommand() *cobra.Command {
	var (
		username      string
		passwordStdin bool
		showRefresh   bool
	)
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Obtain an access token with a username and password",
		Long: `Exchange credentials for a JWT pair and store the access token.

The password is read from the first line of stdin, or from
CHEMVIZ_PASSWORD when --password-stdin is not set.

Examples:
  echo "$PW" | chemviz login -u operator --password-stdin
  CHEMVIZ_PASSWORD=... chemviz login -u operator --show-refresh`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			password, err := readPassword(cmd.InOrStdin(), passwordStdin)
			if err != nil {
				return err
			}
			return a.withRuntime(cmd.Context(), func(ctx context.Context, rt *bootstrap.Runtime) error {
				pair, err := rt.Client.ObtainToken(ctx, username, password)
				if err != nil {
					return fmt.Errorf("login: %w", err)
				}
				if err := rt.Session.SetToken(ctx, pair.Access); err != nil {
					return err
				}
				state, err := settledState(rt.Session)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%d dataset(s))\n", identity(pair.Access), len(state.History))
				if showRefresh && pair.Refresh != "" {
					fmt.Fprintf(cmd.OutOrStdout(), "Refresh token: %s\n", pair.Refresh)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "Account username")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "Read the password from stdin")
	cmd.Flags().BoolVar(&showRefresh, "show-refresh", false, "Print the refresh token for 'chemviz refresh'")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

func readPassword(in io.Reader, fromStdin bool) (string, error) {
	if !fromStdin {
		if password := os.Getenv("CHEMVIZ_PASSWORD"); password != "" {
			return password, nil
		}
		return "", errors.New("password required: use --password-stdin or set CHEMVIZ_PASSWORD")
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", errors.New("password required on stdin")
	}
	return password, nil
}

func (a *app) tokenCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage the stored access token",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "set TOKEN",
		Short: "Store a JWT access token and load its history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withRuntime(cmd.Context(), func(ctx context.Context, rt *bootstrap.Runtime) error {
				if err := rt.Session.SetToken(ctx, args[0]); err != nil {
					return err
				}
				state, err := settledState(rt.Session)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Token saved for %s (%d dataset(s))\n", identity(args[0]), len(state.History))
				return nil
			})
		},
	})
	return cmd
}

func (a *app) logoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withRuntime(cmd.Context(), func(ctx context.Context, rt *bootstrap.Runtime) error {
				if err := rt.Session.Logout(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
				return nil
			})
		},
	}
}

func (a *app) refreshCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh REFRESH_TOKEN",
		Short: "Trade a refresh token for a new access token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withRuntime(cmd.Context(), func(ctx context.Context, rt *bootstrap.Runtime) error {
				access, err := rt.Client.Refresh(ctx, args[0])
				if err != nil {
					return fmt.Errorf("refresh: %w", err)
				}
				if err := rt.Session.SetToken(ctx, access); err != nil {
					return err
				}
				if _, err := settledState(rt.Session); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Access token renewed for %s\n", identity(access))
				return nil
			})
		},
	}
}

func (a *app) whoamiCommand() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the claims of the stored access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := ParseFormat(output)
			if err != nil {
				return err
			}
			return a.withRuntime(cmd.Context(), func(_ context.Context, rt *bootstrap.Runtime) error {
				token := rt.Session.Snapshot().Token
				if token == "" {
					return errors.New("no access token set: run 'chemviz login' or 'chemviz token set'")
				}
				info, err := tokeninfo.Inspect(token)
				if err != nil {
					return err
				}
				return render(cmd.OutOrStdout(), format, info, func(tw *tabwriter.Writer) {
					fmt.Fprintf(tw, "IDENTITY\t%s\n", info.Identity())
					fmt.Fprintf(tw, "TYPE\t%s\n", orDash(info.TokenType))
					fmt.Fprintf(tw, "EXPIRES\t%s\n", orDash(formatTime(info.ExpiresAt)))
					if info.Expired(a.now()) {
						fmt.Fprintf(tw, "STATUS\texpired\n")
					} else {
						fmt.Fprintf(tw, "STATUS\tvalid\n")
					}
				})
			})
		},
	}
	addOutputFlag(cmd, &output)
	return cmd
}

// identity labels a token by its claims, falling back for opaque tokens.
func identity(token string) string {
	info, err := tokeninfo.Inspect(token)
	if err != nil {
		return "opaque token"
	}
	return info.Identity()
}
