package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/videotec/internal/buildinfo"
	"github.com/dmitrijs2005/videotec/internal/identityd"
	"github.com/dmitrijs2005/videotec/internal/identityd/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	root := &cobra.Command{
		Use:          "identityd",
		Short:        "Development identity service for the videotec console",
		Version:      buildinfo.String(),
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig(os.Args[1:])
			if err != nil {
				return err
			}

			app, err := identityd.NewApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer app.Close()

			return app.Run(cmd.Context())
		},
	}

	// Mirrors of the flags config.LoadConfig reads from the raw arguments.
	f := root.Flags()
	f.StringP("config", "c", "", "path to config file (.json, .yaml)")
	f.StringP("address", "a", "", "address and port to run server")
	f.StringP("dsn", "d", "", "database DSN (implies --storage postgres)")
	f.StringP("secret", "k", "", "JWT secret key")
	f.IntP("access-ttl", "t", 0, "access token validity (in minutes)")
	f.IntP("reset-ttl", "r", 0, "reset token validity (in minutes)")
	f.String("storage", "", "storage backend: memory, postgres")

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
