package build

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"nawabs/internal/logx"
	"nawabs/internal/paths"
	"nawabs/internal/project"
	"nawabs/internal/workspace"
)

// ErrRecursionBound mirrors the cloner's depth guard for command assembly.
var ErrRecursionBound = errors.New("unbounded recursion")

const (
	maxAssembleDepth = 10

	// defaultBackend is the compiler sub-command used when neither the
	// caller nor the project info names one.
	defaultBackend = "c"

	// noAutoPathFlag disables the compiler's own package-path discovery so
	// the assembled --path set is authoritative.
	noAutoPathFlag = "--noNimblePath"
)

// Assembler produces deterministic compiler command lines by walking a
// project's declared requirements.
type Assembler struct {
	Root   paths.WorkspacePaths
	Logger logx.Logger

	// ReadInfo is swappable for tests; defaults to project.ReadInfo.
	ReadInfo func(workspace.Project) (project.Info, error)
}

func (a *Assembler) readInfo(proj workspace.Project) (project.Info, error) {
	if a.ReadInfo != nil {
		return a.ReadInfo(proj)
	}
	return project.ReadInfo(proj)
}

// Command assembles the compiler argument vector for proj. The backend
// argument overrides the project's own hint. The returned paths are the
// resolved dependency source directories in pre-order; duplicates are kept
// (the tinker loop deduplicates on insertion).
func (a *Assembler) Command(proj workspace.Project, backend string) ([]string, []string, error) {
	info, err := a.readInfo(proj)
	if err != nil {
		return nil, nil, err
	}

	if backend == "" {
		backend = info.Backend
	}
	if backend == "" {
		backend = defaultBackend
	}

	args := []string{backend, noAutoPathFlag}
	var depPaths []string

	for _, req := range info.Requires {
		if err := a.appendDep(req, &args, &depPaths, 1); err != nil {
			return nil, nil, err
		}
	}

	main := project.FindMainFile(proj, info)
	if main == "" {
		return nil, nil, fmt.Errorf("cannot determine the main source file of %s", proj.Name)
	}
	args = append(args, main)

	return args, depPaths, nil
}

func (a *Assembler) appendDep(req string, args *[]string, depPaths *[]string, depth int) error {
	if depth > maxAssembleDepth {
		return fmt.Errorf("%w while assembling %s", ErrRecursionBound, req)
	}

	name := refName(req)
	dep, found, err := workspace.FindProject(a.Root.Root, name)
	if err != nil {
		return err
	}
	if !found {
		// Leave unresolved requirements to the tinker loop.
		if a.Logger != nil {
			a.Logger.Printf("requirement %s not in workspace, skipping", name)
		}
		return nil
	}

	info, err := a.readInfo(dep)
	if err != nil {
		return err
	}

	dir := srcDir(dep, info)
	*args = append(*args, "--path:"+dir)
	*depPaths = append(*depPaths, dir)

	for _, nested := range info.Requires {
		if err := a.appendDep(nested, args, depPaths, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// srcDir resolves the directory holding a dependency's importable sources:
// the declared srcDir, the conventional src/, or the project root.
func srcDir(proj workspace.Project, info project.Info) string {
	if info.SrcDir != "" {
		candidate := filepath.Join(proj.Path(), info.SrcDir)
		if exists, _ := paths.DirExists(candidate); exists {
			return candidate
		}
	}
	candidate := filepath.Join(proj.Path(), "src")
	if exists, _ := paths.DirExists(candidate); exists {
		return candidate
	}
	return proj.Path()
}

// refName reduces a requirement entry (name or URL) to a project name.
func refName(req string) string {
	if !strings.Contains(req, "://") && !strings.HasPrefix(req, "git@") {
		return req
	}
	req = strings.TrimSuffix(req, "/")
	base := req[strings.LastIndexByte(req, '/')+1:]
	return strings.TrimSuffix(base, ".git")
}
