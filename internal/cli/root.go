package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	flagWorkspace      string
	flagNim            string
	flagCloneHTTPS     bool
	flagNoRecipes      bool
	flagDepsDir        string
	flagDepsPolicy     string
	flagNonInteractive bool
	flagVerbose        bool
	flagJSON           bool
)

var version = "dev"

// SetVersion sets the version string displayed by --version, typically
// injected via ldflags at build time.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root cobra command.
func Execute(ctx context.Context) {
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nawabs",
		Short: "Workspace-oriented build orchestrator for Nim projects",
		Long: `Nawabs builds a project by iteratively discovering missing dependencies,
cloning them into the workspace, and re-invoking the compiler until the
build succeeds. Successful invocations are captured as recipes for
reproducible rebuilds.`,
		Version:      version,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&flagWorkspace, "workspace", "", "Workspace root (default: discovered by walking upward)")
	cmd.PersistentFlags().StringVar(&flagNim, "nim", "", "Compiler executable name")
	cmd.PersistentFlags().BoolVar(&flagCloneHTTPS, "clone-using-https", false, "Rewrite git:// clone URLs to https://")
	cmd.PersistentFlags().BoolVar(&flagNoRecipes, "norecipes", false, "Disable recipe capture and replay")
	cmd.PersistentFlags().StringVar(&flagDepsDir, "deps", "", "Directory for cloned dependencies (default: workspace root)")
	cmd.PersistentFlags().StringVar(&flagDepsPolicy, "deps-policy", "", "Dependency install policy: normal, none, only or ask")
	cmd.PersistentFlags().BoolVar(&flagNonInteractive, "non-interactive", false, "Never prompt; fail on ambiguity instead")
	cmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Output machine-readable JSON")

	cmd.AddCommand(newInitCmd())
	cmd.AddCommand(newRefreshCmd())
	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newCloneCmd())
	cmd.AddCommand(newBuildCmd())
	cmd.AddCommand(newTinkerCmd())
	cmd.AddCommand(newUpdateCmd())
	cmd.AddCommand(newPinnedCmd())
	cmd.AddCommand(newDoctorCmd())

	return cmd
}
