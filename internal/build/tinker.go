package build

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"runtime"
	"strings"

	"nawabs/internal/catalog"
	"nawabs/internal/compiler"
	"nawabs/internal/config"
	"nawabs/internal/deps"
	"nawabs/internal/logx"
	"nawabs/internal/paths"
	"nawabs/internal/prompt"
	"nawabs/internal/vcs"
	"nawabs/internal/workspace"
)

var (
	// ErrResolverStuck is returned when a dependency's source directory is
	// already on the search path yet the file remains missing; the loop
	// cannot make progress on that file.
	ErrResolverStuck = errors.New("already in --path and yet compilation failed")
	// ErrResolverTimeout is returned when the iteration cap is exhausted.
	ErrResolverTimeout = errors.New("stopped unsuccessfully")
)

// maxIterations bounds the tinker loop. Each iteration either terminates,
// fails, or grows the search path by exactly one entry, so this also bounds
// total filesystem work.
const maxIterations = 300

const srcExt = ".nim"

// Tinkerer is the feedback-driven resolver: it invokes the compiler, maps
// missing-file diagnostics to packages, acquires them, grows the search path
// and retries.
type Tinkerer struct {
	Config  *config.Config
	Paths   paths.WorkspacePaths
	Catalog []catalog.Package
	Runner  vcs.Runner
	Logger  logx.Logger
	Asker   prompt.Asker
	Cloner  *deps.Cloner
	Out     io.Writer
}

func (t *Tinkerer) logf(format string, v ...any) {
	if t.Logger != nil {
		t.Logger.Printf(format, v...)
	}
}

// Tinker drives compileArgs for proj to success, growing the --path set in
// response to missing-file diagnostics. On success the winning command and
// path list are captured as a recipe (unless recipes are disabled).
func (t *Tinkerer) Tinker(ctx context.Context, proj workspace.Project, compileArgs []string) (Recipe, error) {
	if len(compileArgs) == 0 {
		return Recipe{}, errors.New("empty compile command")
	}

	// The main file stays last; tinkered --path entries are inserted before
	// it. Assembly-time duplicates are dropped here.
	head, pathList := dedupePathArgs(compileArgs[:len(compileArgs)-1])
	main := compileArgs[len(compileArgs)-1]

	onPath := make(map[string]struct{}, len(pathList))
	for _, p := range pathList {
		onPath[p] = struct{}{}
	}

	for iteration := 1; iteration <= maxIterations; iteration++ {
		args := append(append([]string{}, head...), main)
		command := JoinArgs(append([]string{t.Config.NimExe}, args...))

		action := compiler.Invoke(ctx, t.Runner, t.Config.NimExe, args, proj.Path(), t.Logger)
		switch action.Kind {
		case compiler.Success:
			recipe := Recipe{Project: proj.Name, Command: command, Paths: pathList}
			if !t.Config.NoRecipes {
				if err := WriteRecipe(t.Paths, recipe); err != nil {
					return Recipe{}, err
				}
				if err := WriteLastCommand(t.Paths, command); err != nil {
					return Recipe{}, err
				}
			}
			t.logf("build succeeded after %d iteration(s)", iteration)
			return recipe, nil

		case compiler.Failure:
			return Recipe{}, fmt.Errorf("compilation failed:\n%s\nlast command: %s", action.Message, command)

		case compiler.FileMissing:
			dir, err := t.resolveMissing(ctx, action.File)
			if err != nil {
				return Recipe{}, err
			}
			if _, dup := onPath[dir]; dup {
				return Recipe{}, fmt.Errorf("%w: %s (%s)", ErrResolverStuck, dir, action.File)
			}
			t.logf("missing %s -> adding %s to path", action.File, dir)
			onPath[dir] = struct{}{}
			pathList = append(pathList, dir)
			head = append(head, "--path:"+dir)
		}
	}

	return Recipe{}, ErrResolverTimeout
}

// resolveMissing maps a missing file (extension already stripped) to the
// source directory that should satisfy it, acquiring the owning package if
// necessary.
func (t *Tinkerer) resolveMissing(ctx context.Context, file string) (string, error) {
	terms := splitTerms(file)
	base := terms[len(terms)-1]

	// The missing file may belong to a project already in the workspace.
	proj, found, err := workspace.FindProject(t.Paths.Root, base)
	if err != nil {
		return "", err
	}

	if !found {
		cands := catalog.DetermineCandidates(t.Catalog, terms)
		pkg, err := catalog.Select(cands, catalog.SelectOptions{
			Interactive: t.Config.Interactive,
			Asker:       t.Asker,
			Out:         t.Out,
		})
		if err != nil {
			if errors.Is(err, catalog.ErrUnresolved) {
				return "", fmt.Errorf("cannot resolve missing file %s: %w", file, err)
			}
			return "", err
		}

		proj, found, err = workspace.FindProject(t.Paths.Root, pkg.Name)
		if err != nil {
			return "", err
		}
		if !found {
			proj, err = t.Cloner.InstallDep(ctx, pkg)
			if err != nil {
				return "", err
			}
		}
	}

	return findSrcDir(proj.Path(), base+srcExt), nil
}

// splitTerms turns a missing file path into search terms, splitting on both
// path separators.
func splitTerms(file string) []string {
	raw := strings.FieldsFunc(file, func(r rune) bool {
		return r == '/' || r == '\\'
	})
	if len(raw) == 0 {
		return []string{file}
	}
	return raw
}

// findSrcDir walks the project tree for directories containing filename and
// returns the one with the shortest path, first encountered winning ties.
// The shortest-path tiebreak is definitional, not merely heuristic. When no
// directory matches, the project root is returned.
func findSrcDir(root, filename string) string {
	fold := runtime.GOOS == "windows" || runtime.GOOS == "darwin"

	best := ""
	filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		name := d.Name()
		if name != filename && !(fold && strings.EqualFold(name, filename)) {
			return nil
		}
		dir := filepath.Dir(path)
		if best == "" || len(dir) < len(best) {
			best = dir
		}
		return nil
	})

	if best == "" {
		return root
	}
	return best
}

// dedupePathArgs removes duplicate --path: arguments, returning the cleaned
// argument list and the ordered path set.
func dedupePathArgs(args []string) ([]string, []string) {
	seen := map[string]struct{}{}
	cleaned := make([]string, 0, len(args))
	var pathList []string

	for _, arg := range args {
		dir, ok := strings.CutPrefix(arg, "--path:")
		if !ok {
			cleaned = append(cleaned, arg)
			continue
		}
		if _, dup := seen[dir]; dup {
			continue
		}
		seen[dir] = struct{}{}
		pathList = append(pathList, dir)
		cleaned = append(cleaned, arg)
	}
	return cleaned, pathList
}

// BuildOrTinker replays the project's recipe when one exists and recipes are
// enabled, otherwise falls back to the resolver.
func BuildOrTinker(ctx context.Context, t *Tinkerer, a *Assembler, proj workspace.Project, backend string) error {
	if !t.Config.NoRecipes {
		err := Replay(ctx, t.Runner, t.Paths, proj.Name, t.Logger)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrNoRecipe) {
			return err
		}
	}

	args, _, err := a.Command(proj, backend)
	if err != nil {
		return err
	}
	_, err = t.Tinker(ctx, proj, args)
	return err
}
