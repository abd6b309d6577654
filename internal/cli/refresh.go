package cli

import (
	"github.com/spf13/cobra"

	"nawabs/internal/catalog"
)

func newRefreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Re-run the catalog root script",
		Args:  cobra.NoArgs,
		RunE:  runRefresh,
	}
}

func runRefresh(cmd *cobra.Command, _ []string) error {
	a, err := newApp("refresh")
	if err != nil {
		return err
	}
	defer a.Close()

	refresher := &catalog.ScriptRefresher{
		Paths:  a.pp,
		NimExe: a.cfg.NimExe,
		Runner: a.runner,
		Logger: a.logger,
	}
	if err := refresher.Refresh(cmd.Context()); err != nil {
		return err
	}

	cmd.Printf("Catalog refreshed\n")
	return nil
}
