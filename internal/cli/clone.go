package cli

import (
	"github.com/spf13/cobra"

	"nawabs/internal/tui"
)

func newCloneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clone <name-or-url>",
		Short: "Acquire a package and its dependencies",
		Args:  cobra.ExactArgs(1),
		RunE:  runClone,
	}
}

func runClone(cmd *cobra.Command, args []string) error {
	a, err := newApp("clone")
	if err != nil {
		return err
	}
	defer a.Close()

	status := tui.NewStatusWriter(cmd.ErrOrStderr())
	defer status.Stop()

	status.Update("Loading catalog...")
	pkgs, err := a.loadCatalog(cmd.Context())
	if err != nil {
		return err
	}

	cloner, err := a.cloner(pkgs)
	if err != nil {
		return err
	}

	status.Update("Cloning " + args[0] + "...")
	already, err := cloner.CloneRec(cmd.Context(), args[0])
	status.Stop()
	if err != nil {
		return err
	}

	if already {
		cmd.Printf("%s is already in the workspace; checked its dependencies\n", args[0])
	} else {
		cmd.Printf("Cloned %s\n", args[0])
	}
	a.reportForeignDeps(cmd.OutOrStdout())
	return nil
}
