package catalog

import (
	"context"
	"fmt"

	"nawabs/internal/logx"
	"nawabs/internal/paths"
	"nawabs/internal/vcs"
)

// ScriptRefresher runs the workspace's roots.nims configuration script
// through the compiler's script mode to regenerate the manifest shards.
type ScriptRefresher struct {
	Paths  paths.WorkspacePaths
	NimExe string
	Runner vcs.Runner
	Logger logx.Logger
}

// Refresh executes the refresh script. The script is expected to write one
// or more shards into the packages directory.
func (r *ScriptRefresher) Refresh(ctx context.Context) error {
	exists, err := paths.FileExists(r.Paths.ConfigScript)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("refresh script missing: %s", r.Paths.ConfigScript)
	}

	runner := r.Runner
	if runner == nil {
		runner = vcs.CmdRunner{}
	}

	if r.Logger != nil {
		r.Logger.Printf("running refresh script: %s", r.Paths.ConfigScript)
	}
	if _, err := runner.Run(ctx, r.NimExe, []string{"e", r.Paths.ConfigScript}, vcs.RunOptions{Dir: r.Paths.NawabsDir}); err != nil {
		return fmt.Errorf("run refresh script: %w", err)
	}
	return nil
}
