package cli

import (
	"context"
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/videotec/internal/client/guard"
	"github.com/dmitrijs2005/videotec/internal/client/models"
)

// AppFactory builds the App a command runs against. cmd gives access to
// the command's input and output streams.
type AppFactory func(ctx context.Context, cmd *cobra.Command) (*App, error)

// NewRootCmd creates the console command tree. Without a subcommand it
// starts the REPL.
//
// The persistent flags mirror the ones config.LoadConfig reads from the raw
// arguments; they are declared here so cobra accepts them.
func NewRootCmd(newApp AppFactory) *cobra.Command {
	root := &cobra.Command{
		Use:   "console",
		Short: "videotec management console",
		Long:  "videotec console: log in to the platform and open its views from the terminal.",
		// SilenceUsage prevents printing usage on every error
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE:         withApp(newApp, runREPLCmd),
	}

	pf := root.PersistentFlags()
	pf.StringP("config", "c", "", "path to config file (.json, .yaml)")
	pf.StringP("api", "a", "", "identity service base URL")
	pf.StringP("scope", "s", "", "session scope")
	pf.StringP("backend", "b", "", "session store backend: memory, sqlite, redis")
	pf.IntP("timeout", "t", 0, "identity request timeout in seconds (0 = none)")

	root.AddCommand(
		&cobra.Command{
			Use:   "repl",
			Short: "Start the interactive console",
			Args:  cobra.NoArgs,
			RunE:  withApp(newApp, runREPLCmd),
		},
		newLoginCmd(newApp),
		&cobra.Command{
			Use:   "logout",
			Short: "Log out and invalidate the session",
			Args:  cobra.NoArgs,
			RunE: withApp(newApp, func(ctx context.Context, a *App, _ []string) error {
				return a.Logout(ctx)
			}),
		},
		&cobra.Command{
			Use:   "whoami",
			Short: "Show the logged-in user",
			Args:  cobra.NoArgs,
			RunE: withApp(newApp, func(ctx context.Context, a *App, _ []string) error {
				return a.WhoAmI(ctx)
			}),
		},
		&cobra.Command{
			Use:       "open <view>",
			Short:     "Open a view: " + strings.Join(guard.ViewNames(), ", "),
			Args:      cobra.ExactArgs(1),
			ValidArgs: guard.ViewNames(),
			RunE: withApp(newApp, func(ctx context.Context, a *App, args []string) error {
				return a.Open(ctx, args[0])
			}),
		},
		&cobra.Command{
			Use:   "register",
			Short: "Create an account",
			Args:  cobra.NoArgs,
			RunE: withApp(newApp, func(ctx context.Context, a *App, _ []string) error {
				return a.Register(ctx)
			}),
		},
		&cobra.Command{
			Use:   "forgot-password",
			Short: "Request a password reset link",
			Args:  cobra.NoArgs,
			RunE: withApp(newApp, func(ctx context.Context, a *App, _ []string) error {
				return a.ForgotPassword(ctx)
			}),
		},
		&cobra.Command{
			Use:   "reset-password <token>",
			Short: "Set a new password with a reset token",
			Args:  cobra.ExactArgs(1),
			RunE: withApp(newApp, func(ctx context.Context, a *App, args []string) error {
				return a.ResetPassword(ctx, args[0])
			}),
		},
		newSessionCmd(newApp),
	)

	return root
}

func newLoginCmd(newApp AppFactory) *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in with email and password",
		Args:  cobra.NoArgs,
		RunE: withApp(newApp, func(ctx context.Context, a *App, _ []string) error {
			return a.Login(ctx, email)
		}),
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email (prompted when empty)")
	return cmd
}

func newSessionCmd(newApp AppFactory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Manage the session scope",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "end",
		Short: "Forget the session of this scope without logging out",
		Args:  cobra.NoArgs,
		RunE: withApp(newApp, func(ctx context.Context, a *App, _ []string) error {
			return a.EndSession(ctx)
		}),
	})
	return cmd
}

func runREPLCmd(ctx context.Context, a *App, _ []string) error {
	a.Root(ctx)
	return nil
}

// withApp builds the App, restores the session of the scope and runs fn.
func withApp(newApp AppFactory, fn func(ctx context.Context, a *App, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		a, err := newApp(ctx, cmd)
		if err != nil {
			return exitError(exitFailure, "%s", err.Error())
		}
		defer func() {
			if cerr := a.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}()

		if err := a.Restore(ctx); err != nil && !errors.Is(err, models.ErrOperationInProgress) {
			return err
		}
		return fn(ctx, a, args)
	}
}
