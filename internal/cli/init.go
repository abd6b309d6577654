package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"nawabs/internal/config"
	"nawabs/internal/paths"
)

const starterRootsScript = `# Executed by 'nawabs refresh' to (re)build the package catalog.
# It should leave one or more JSON shards in ../packages/.
#
# A typical root pulls the community package index:
#
#   import os
#   exec "git clone https://github.com/nim-lang/packages " & getTempDir() / "pkgs"
#   copyFile(getTempDir() / "pkgs" / "packages.json", "packages" / "official.json")
`

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init [directory]",
		Short: "Create workspace scaffolding",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runInit,
	}
}

func runInit(cmd *cobra.Command, args []string) error {
	dir := flagWorkspace
	if dir == "" {
		if len(args) > 0 {
			dir = args[0]
		} else {
			cwd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("get working directory: %w", err)
			}
			dir = cwd
		}
	}

	root, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolve workspace root: %w", err)
	}
	pp := paths.New(root)

	if err := pp.EnsureLayout(); err != nil {
		return err
	}

	created := make([]string, 0, 2)

	if exists, err := paths.FileExists(pp.ConfigScript); err != nil {
		return err
	} else if !exists {
		if err := os.WriteFile(pp.ConfigScript, []byte(starterRootsScript), 0o644); err != nil {
			return fmt.Errorf("write roots script: %w", err)
		}
		created = append(created, "nawabs/config/roots.nims")
	}

	if exists, err := paths.FileExists(pp.ConfigFile); err != nil {
		return err
	} else if !exists {
		cfg := config.Default()
		data, err := cfg.Marshal()
		if err != nil {
			return err
		}
		if err := os.WriteFile(pp.ConfigFile, data, 0o644); err != nil {
			return fmt.Errorf("write config: %w", err)
		}
		created = append(created, "nawabs.yaml")
	}

	if len(created) == 0 {
		cmd.Printf("Workspace already initialized at %s\n", root)
		return nil
	}

	cmd.Printf("Initialized workspace at %s\n", root)
	for _, entry := range created {
		cmd.Printf("  created %s\n", entry)
	}
	return nil
}
