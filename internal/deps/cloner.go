package deps

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"nawabs/internal/catalog"
	"nawabs/internal/config"
	"nawabs/internal/logx"
	"nawabs/internal/paths"
	"nawabs/internal/project"
	"nawabs/internal/prompt"
	"nawabs/internal/vcs"
	"nawabs/internal/workspace"
)

var (
	// ErrRecursionBound is returned when the dependency graph recurses deeper
	// than maxDepth, which in practice means a malformed manifest cycle.
	ErrRecursionBound = errors.New("unbounded recursion")
	// ErrPolicyViolation is returned when a missing dependency must be cloned
	// but the deps policy forbids it.
	ErrPolicyViolation = errors.New("dependency required but deps policy forbids cloning")
)

const maxDepth = 10

// Cloner acquires packages and their transitive requirements into the
// workspace according to the placement policy.
type Cloner struct {
	Config  *config.Config
	Paths   paths.WorkspacePaths
	Catalog []catalog.Package
	Client  *vcs.Client
	Logger  logx.Logger
	Asker   prompt.Asker

	// WorkDir is where depth-0 clones land; normally the directory the user
	// invoked the tool from. Keeping it explicit avoids mutating the process
	// working directory.
	WorkDir string

	// ReadInfo is swappable for tests; defaults to project.ReadInfo.
	ReadInfo func(workspace.Project) (project.Info, error)
}

func (c *Cloner) logf(format string, v ...any) {
	if c.Logger != nil {
		c.Logger.Printf(format, v...)
	}
}

func (c *Cloner) readInfo(proj workspace.Project) (project.Info, error) {
	if c.ReadInfo != nil {
		return c.ReadInfo(proj)
	}
	return project.ReadInfo(proj)
}

// ResolveRef turns a package name or URL into a catalog record. URLs outside
// the catalog are synthesized into a minimal package named after the URL's
// last path component.
func (c *Cloner) ResolveRef(ref string) (catalog.Package, error) {
	if isURL(ref) {
		return catalog.Package{
			Name:           urlBaseName(ref),
			URL:            ref,
			DownloadMethod: "git",
			Tags:           []string{},
		}, nil
	}
	pkg, ok := catalog.Lookup(c.Catalog, ref)
	if !ok {
		return catalog.Package{}, fmt.Errorf("%w: %s", catalog.ErrUnresolved, ref)
	}
	return pkg, nil
}

// CloneRec acquires ref and everything its project info declares. It reports
// whether the root package was already present in the workspace.
func (c *Cloner) CloneRec(ctx context.Context, ref string) (bool, error) {
	pkg, err := c.ResolveRef(ref)
	if err != nil {
		return false, err
	}
	_, already, err := c.cloneRec(ctx, pkg, 0)
	return already, err
}

// InstallDep acquires a single selected package with dependency semantics
// (depth > 0 placement) and returns its project.
func (c *Cloner) InstallDep(ctx context.Context, pkg catalog.Package) (workspace.Project, error) {
	proj, _, err := c.cloneRec(ctx, pkg, 1)
	return proj, err
}

func (c *Cloner) cloneRec(ctx context.Context, pkg catalog.Package, depth int) (workspace.Project, bool, error) {
	if depth > maxDepth {
		return workspace.Project{}, false, fmt.Errorf("%w while cloning %s", ErrRecursionBound, pkg.Name)
	}

	proj, already, err := workspace.FindProject(c.Paths.Root, pkg.Name)
	if err != nil {
		return workspace.Project{}, false, err
	}
	if already {
		c.logf("already present: %s at %s", pkg.Name, proj.Path())
	} else {
		proj, err = c.acquire(ctx, pkg, depth)
		if err != nil {
			return workspace.Project{}, false, err
		}
	}

	// A project may pre-exist while some of its dependencies do not, so the
	// requirements are walked either way.
	info, err := c.readInfo(proj)
	if err != nil {
		return workspace.Project{}, false, err
	}
	for _, dep := range info.ForeignDeps {
		c.Config.AddForeignDep(dep)
	}
	for _, req := range info.Requires {
		reqPkg, err := c.ResolveRef(req)
		if err != nil {
			return workspace.Project{}, false, err
		}
		if _, _, err := c.cloneRec(ctx, reqPkg, depth+1); err != nil {
			return workspace.Project{}, false, err
		}
	}

	return proj, already, nil
}

// acquire clones pkg into the directory the placement policy selects.
func (c *Cloner) acquire(ctx context.Context, pkg catalog.Package, depth int) (workspace.Project, error) {
	var target string
	switch {
	case depth == 0:
		target = c.WorkDir

	case c.Config.DepsPolicy == config.PolicyNoDeps:
		return workspace.Project{}, fmt.Errorf("%w: %s", ErrPolicyViolation, pkg.Name)

	case c.Config.DepsDir != "":
		target = c.Config.DepsDir
		if !filepath.IsAbs(target) {
			target = filepath.Join(c.Paths.Root, target)
		}
		if err := os.MkdirAll(target, 0o755); err != nil {
			return workspace.Project{}, fmt.Errorf("create deps dir: %w", err)
		}

	case !c.Config.Interactive || c.Asker == nil:
		target = c.Paths.Root

	default:
		var err error
		target, err = c.askPlacement(pkg)
		if err != nil {
			return workspace.Project{}, err
		}
	}

	c.logf("cloning %s into %s", pkg.Name, target)
	if err := c.Client.Clone(ctx, pkg.URL, target, pkg.Name, c.Config.CloneUsingHTTPS); err != nil {
		return workspace.Project{}, err
	}
	return workspace.Project{Name: pkg.Name, Subdir: target}, nil
}

// askPlacement prompts until the user names a valid clone destination.
func (c *Cloner) askPlacement(pkg catalog.Package) (string, error) {
	question := fmt.Sprintf("Where to put %s? ([w]orkspace, '.', a grouping folder ending in '_', or abort)", pkg.Name)
	for {
		answer, err := c.Asker.Ask(question)
		if err != nil {
			return "", err
		}

		switch strings.ToLower(answer) {
		case "", "w", "ws", "_":
			return c.Paths.Root, nil
		case ".":
			return c.WorkDir, nil
		case "abort":
			return "", prompt.ErrAborted
		}

		if answer == paths.RecipesDirName || !workspace.IsGroupingDir(answer) {
			c.logf("invalid placement answer: %q", answer)
			continue
		}

		group := filepath.Join(c.Paths.Root, answer)
		if err := os.MkdirAll(group, 0o755); err != nil {
			return "", fmt.Errorf("create grouping folder: %w", err)
		}
		return group, nil
	}
}

func isURL(ref string) bool {
	return strings.Contains(ref, "://") || strings.HasPrefix(ref, "git@")
}

// urlBaseName derives a package name from a URL's last path component.
func urlBaseName(url string) string {
	url = strings.TrimSuffix(url, "/")
	base := url[strings.LastIndexByte(url, '/')+1:]
	if idx := strings.LastIndexByte(base, ':'); idx >= 0 {
		base = base[idx+1:]
	}
	return strings.TrimSuffix(base, ".git")
}
