package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/videotec/internal/buildinfo"
	"github.com/dmitrijs2005/videotec/internal/client/cli"
	"github.com/dmitrijs2005/videotec/internal/client/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := cli.NewRootCmd(func(ctx context.Context, cmd *cobra.Command) (*cli.App, error) {
		cfg, err := config.LoadConfig(os.Args[1:])
		if err != nil {
			return nil, err
		}
		return cli.NewApp(ctx, cfg, cmd.InOrStdin(), cmd.OutOrStdout())
	})
	root.Version = buildinfo.String()

	if err := root.ExecuteContext(ctx); err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			stop()
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
