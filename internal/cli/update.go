package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"nawabs/internal/build"
	"nawabs/internal/config"
	"nawabs/internal/prompt"
	"nawabs/internal/workspace"
)

func newUpdateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "update [name]",
		Short: "Pull every project (or one); a named project is rebuilt from its recipe",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runUpdate,
	}
}

func newPinnedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pinned <name>",
		Short: "Replay a project's captured build command",
		Args:  cobra.ExactArgs(1),
		RunE:  runPinned,
	}
}

func runUpdate(cmd *cobra.Command, args []string) error {
	a, err := newApp("update")
	if err != nil {
		return err
	}
	defer a.Close()

	client := a.client()

	var projects []workspace.Project
	if len(args) == 1 {
		proj, found, err := workspace.FindProject(a.pp.Root, args[0])
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("project %s not found in workspace", args[0])
		}
		projects = []workspace.Project{proj}
	} else {
		projects, err = workspace.Projects(a.pp.Root)
		if err != nil {
			return err
		}
	}

	for _, proj := range projects {
		if a.cfg.DepsPolicy == config.PolicyAskDeps && a.cfg.Interactive {
			ok, err := confirmUpdate(a, proj.Name)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
		}
		if err := client.Pull(cmd.Context(), proj.Path()); err != nil {
			return err
		}
		cmd.Printf("Updated %s\n", proj.Name)
	}

	// A named update rebuilds from the recipe so the checkout and the
	// binary stay in step.
	if len(args) == 1 && !a.cfg.NoRecipes {
		err := build.Replay(cmd.Context(), a.runner, a.pp, args[0], a.logger)
		if err != nil && !errors.Is(err, build.ErrNoRecipe) {
			return err
		}
	}
	return nil
}

func confirmUpdate(a *app, name string) (bool, error) {
	answer, err := a.asker.Ask(fmt.Sprintf("Update %s? [Y/n/abort]", name))
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "", "y", "yes":
		return true, nil
	case "abort":
		return false, prompt.ErrAborted
	}
	return false, nil
}

func runPinned(cmd *cobra.Command, args []string) error {
	a, err := newApp("pinned")
	if err != nil {
		return err
	}
	defer a.Close()

	return build.Replay(cmd.Context(), a.runner, a.pp, args[0], a.logger)
}
