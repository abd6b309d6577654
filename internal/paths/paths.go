package paths

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// RecipesDirName is the workspace subdirectory that marks a directory as a
// nawabs workspace. The project locator must never descend into it.
const RecipesDirName = "nawabs"

// ErrWorkspaceNotFound is returned when no enclosing workspace exists.
var ErrWorkspaceNotFound = errors.New("no workspace found (did you run 'nawabs init'?)")

// WorkspacePaths captures canonical locations inside a nawabs workspace.
type WorkspacePaths struct {
	Root         string
	NawabsDir    string
	PackagesDir  string
	RecipesDir   string
	ConfigDir    string
	ConfigScript string
	ConfigFile   string
	LogsDir      string
}

// New returns the canonical layout for a workspace rooted at root.
func New(root string) WorkspacePaths {
	nawabsDir := filepath.Join(root, RecipesDirName)
	return WorkspacePaths{
		Root:         root,
		NawabsDir:    nawabsDir,
		PackagesDir:  filepath.Join(nawabsDir, "packages"),
		RecipesDir:   filepath.Join(nawabsDir, "recipes"),
		ConfigDir:    filepath.Join(nawabsDir, "config"),
		ConfigScript: filepath.Join(nawabsDir, "config", "roots.nims"),
		ConfigFile:   filepath.Join(root, "nawabs.yaml"),
		LogsDir:      filepath.Join(nawabsDir, "logs"),
	}
}

// Discover determines the workspace root using the optional --workspace flag
// or, when the flag is empty, by walking upward from the current working
// directory until a directory containing the nawabs subdirectory is found.
func Discover(workspaceFlag string) (WorkspacePaths, error) {
	if workspaceFlag != "" {
		root, err := filepath.Abs(workspaceFlag)
		if err != nil {
			return WorkspacePaths{}, fmt.Errorf("resolve workspace root: %w", err)
		}
		return New(root), nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return WorkspacePaths{}, fmt.Errorf("resolve working directory: %w", err)
	}
	return DiscoverFrom(cwd)
}

// DiscoverFrom walks upward from start looking for a workspace root.
func DiscoverFrom(start string) (WorkspacePaths, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return WorkspacePaths{}, fmt.Errorf("resolve start directory: %w", err)
	}

	for {
		marker := filepath.Join(dir, RecipesDirName)
		exists, err := DirExists(marker)
		if err != nil {
			return WorkspacePaths{}, err
		}
		if exists {
			return New(dir), nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return WorkspacePaths{}, ErrWorkspaceNotFound
		}
		dir = parent
	}
}

// EnsureLayout creates the nawabs metadata hierarchy inside the workspace.
func (p WorkspacePaths) EnsureLayout() error {
	dirs := []string{p.NawabsDir, p.PackagesDir, p.RecipesDir, p.ConfigDir, p.LogsDir}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// FileExists reports whether a path exists and is a regular file.
func FileExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.Mode().IsRegular(), nil
}

// DirExists reports whether a path exists and is a directory.
func DirExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.IsDir(), nil
}
