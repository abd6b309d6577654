package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"nawabs/internal/build"
	"nawabs/internal/config"
	"nawabs/internal/deps"
	"nawabs/internal/tui"
	"nawabs/internal/workspace"
)

var flagBackend string

func newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build <name>",
		Short: "Build a package, replaying its recipe when one exists",
		Args:  cobra.ExactArgs(1),
		RunE:  runBuild,
	}
	cmd.Flags().StringVar(&flagBackend, "backend", "", "Compiler backend (c, cpp, js, ...)")
	return cmd
}

func newTinkerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tinker [backend] <name>",
		Short: "Force the resolver, ignoring any recipe",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  runTinker,
	}
}

func runBuild(cmd *cobra.Command, args []string) error {
	return buildProject(cmd, args[0], flagBackend, false)
}

func runTinker(cmd *cobra.Command, args []string) error {
	backend := ""
	name := args[0]
	if len(args) == 2 {
		backend = args[0]
		name = args[1]
	}
	return buildProject(cmd, name, backend, true)
}

func buildProject(cmd *cobra.Command, name, backend string, forceTinker bool) error {
	a, err := newApp(cmd.Name())
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
	// A project acquired for building belongs in the workspace, not in
	// whatever directory the command was typed from.
	cloner.WorkDir = a.pp.Root

	proj, err := ensureProject(cmd.Context(), a, cloner, name, status)
	if err != nil {
		return err
	}

	if a.cfg.DepsPolicy == config.PolicyOnlyDeps {
		status.Stop()
		cmd.Printf("Dependencies of %s are in place; skipping the build per deps policy\n", proj.Name)
		a.reportForeignDeps(cmd.OutOrStdout())
		return nil
	}

	tinkerer := a.tinkerer(pkgs, cloner)
	assembler := &build.Assembler{Root: a.pp, Logger: a.logger}

	status.Update("Building " + proj.Name + "...")
	if forceTinker {
		args, _, err := assembler.Command(proj, backend)
		if err != nil {
			return err
		}
		status.Stop()
		if _, err := tinkerer.Tinker(cmd.Context(), proj, args); err != nil {
			return err
		}
	} else {
		status.Stop()
		if err := build.BuildOrTinker(cmd.Context(), tinkerer, assembler, proj, backend); err != nil {
			return err
		}
	}

	cmd.Printf("Build of %s succeeded\n", proj.Name)
	a.reportForeignDeps(cmd.OutOrStdout())
	return nil
}

// ensureProject locates the named project, acquiring it (and its declared
// dependencies) when it is not in the workspace yet.
func ensureProject(ctx context.Context, a *app, cloner *deps.Cloner, name string, status *tui.StatusWriter) (workspace.Project, error) {
	proj, found, err := workspace.FindProject(a.pp.Root, name)
	if err != nil {
		return workspace.Project{}, err
	}
	if found {
		return proj, nil
	}

	status.Update("Cloning " + name + "...")
	if _, err := cloner.CloneRec(ctx, name); err != nil {
		return workspace.Project{}, err
	}

	proj, found, err = workspace.FindProject(a.pp.Root, name)
	if err != nil {
		return workspace.Project{}, err
	}
	if !found {
		return workspace.Project{}, fmt.Errorf("project %s not present after cloning", name)
	}
	return proj, nil
}
