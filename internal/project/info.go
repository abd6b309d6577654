package project

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"nawabs/internal/workspace"
)

// Info is the per-build view of a project's own dependency declaration.
type Info struct {
	// Backend is the compiler sub-command hint; empty means the default.
	Backend string
	// Requires lists required package names or URLs in declaration order.
	Requires []string
	// ForeignDeps are system-level dependencies surfaced to the user.
	ForeignDeps []string
	// SrcDir is the declared source directory, when any.
	SrcDir string
	// Bin lists declared program names.
	Bin []string
}

// ReadInfo derives Info from the project's nimble file using a permissive
// line-oriented parse. A project without a nimble file yields an empty Info.
func ReadInfo(proj workspace.Project) (Info, error) {
	path, err := nimbleFile(proj)
	if err != nil {
		return Info{}, err
	}
	if path == "" {
		return Info{}, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return Info{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	var info Info
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		switch {
		case strings.HasPrefix(line, "requires"):
			for _, quoted := range quotedStrings(line) {
				for _, entry := range strings.Split(quoted, ",") {
					name := requirementName(entry)
					if name == "" || strings.EqualFold(name, "nim") {
						continue
					}
					info.Requires = append(info.Requires, name)
				}
			}
		case strings.HasPrefix(line, "foreignDep"):
			if deps := quotedStrings(line); len(deps) > 0 {
				info.ForeignDeps = append(info.ForeignDeps, deps...)
			}
		case strings.HasPrefix(line, "backend"):
			if values := quotedStrings(line); len(values) == 1 {
				info.Backend = values[0]
			}
		case strings.HasPrefix(line, "srcDir"):
			if values := quotedStrings(line); len(values) == 1 {
				info.SrcDir = values[0]
			}
		case strings.HasPrefix(line, "bin"):
			info.Bin = append(info.Bin, quotedStrings(line)...)
		}
	}
	if err := scanner.Err(); err != nil {
		return Info{}, fmt.Errorf("read %s: %w", path, err)
	}

	return info, nil
}

// nimbleFile prefers <name>.nimble and falls back to the first *.nimble file
// in the project directory.
func nimbleFile(proj workspace.Project) (string, error) {
	preferred := filepath.Join(proj.Path(), proj.Name+".nimble")
	if _, err := os.Stat(preferred); err == nil {
		return preferred, nil
	}

	entries, err := os.ReadDir(proj.Path())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("read project directory %s: %w", proj.Path(), err)
	}
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".nimble") {
			return filepath.Join(proj.Path(), entry.Name()), nil
		}
	}
	return "", nil
}

// requirementName strips version constraints from a requirement entry,
// keeping only the package name or URL.
func requirementName(entry string) string {
	entry = strings.TrimSpace(entry)
	for _, sep := range []string{">=", "<=", "==", ">", "<", "&", "#"} {
		if idx := strings.Index(entry, sep); idx >= 0 {
			entry = entry[:idx]
		}
	}
	fields := strings.Fields(entry)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// quotedStrings extracts every double-quoted literal from a line.
func quotedStrings(line string) []string {
	var values []string
	for {
		start := strings.IndexByte(line, '"')
		if start < 0 {
			return values
		}
		line = line[start+1:]
		end := strings.IndexByte(line, '"')
		if end < 0 {
			return values
		}
		values = append(values, line[:end])
		line = line[end+1:]
	}
}

// FindMainFile resolves the root source file the compiler should be handed.
// The declared bin entries win, then <name>.nim beside the nimble file, then
// the conventional src/<name>.nim, then a sole top-level .nim file. An empty
// result means the project has no buildable entry point.
func FindMainFile(proj workspace.Project, info Info) string {
	root := proj.Path()

	var candidates []string
	for _, bin := range info.Bin {
		if info.SrcDir != "" {
			candidates = append(candidates, filepath.Join(root, info.SrcDir, bin+".nim"))
		}
		candidates = append(candidates, filepath.Join(root, bin+".nim"))
	}
	candidates = append(candidates, filepath.Join(root, proj.Name+".nim"))
	if info.SrcDir != "" {
		candidates = append(candidates, filepath.Join(root, info.SrcDir, proj.Name+".nim"))
	}
	candidates = append(candidates, filepath.Join(root, "src", proj.Name+".nim"))

	for _, candidate := range candidates {
		if info, err := os.Stat(candidate); err == nil && info.Mode().IsRegular() {
			return candidate
		}
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return ""
	}
	var sole string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".nim") {
			continue
		}
		if sole != "" {
			return ""
		}
		sole = filepath.Join(root, entry.Name())
	}
	return sole
}
