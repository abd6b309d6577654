package tools

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// ToolInfo captures availability and version details for an external tool.
type ToolInfo struct {
	Name      string `json:"name"`
	Path      string `json:"path,omitempty"`
	Version   string `json:"version,omitempty"`
	Available bool   `json:"available"`
	Error     string `json:"error,omitempty"`
}

// Probe discovers availability and version information for the compiler and
// the VCS binaries the orchestrator shells out to. nimExe is the configured
// compiler executable name.
func Probe(ctx context.Context, nimExe string) map[string]ToolInfo {
	if ctx == nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
	}

	result := make(map[string]ToolInfo, 3)
	result["nim"] = probeOne(ctx, nimExe, "nim")
	result["git"] = probeOne(ctx, "git", "git")
	result["hg"] = probeOne(ctx, "hg", "hg")
	return result
}

func probeOne(ctx context.Context, exe, kind string) ToolInfo {
	path, err := exec.LookPath(exe)
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return ToolInfo{Name: exe, Available: false, Error: "not found"}
		}
		return ToolInfo{Name: exe, Available: false, Error: err.Error()}
	}

	version, err := readVersion(ctx, path, kind)
	if err != nil {
		return ToolInfo{Name: exe, Path: path, Available: true, Error: err.Error()}
	}

	return ToolInfo{Name: exe, Path: path, Version: version, Available: true}
}

func readVersion(ctx context.Context, path, kind string) (string, error) {
	cmd := exec.CommandContext(ctx, path, "--version")
	output, err := cmd.Output()
	if err != nil {
		return "", err
	}

	line := firstLine(strings.TrimSpace(string(output)))
	return normalizeVersionLine(kind, line), nil
}

func firstLine(text string) string {
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		return text[:idx]
	}
	return text
}

func normalizeVersionLine(kind, line string) string {
	fields := strings.Fields(line)
	switch kind {
	case "nim":
		// "Nim Compiler Version 2.0.8 [Linux: amd64]"
		if len(fields) >= 4 {
			return fields[3]
		}
	case "git":
		// "git version 2.43.0"
		if len(fields) >= 3 {
			return fields[2]
		}
	case "hg":
		// "Mercurial Distributed SCM (version 6.5)"
		if len(fields) >= 5 {
			return strings.TrimSuffix(fields[4], ")")
		}
	}
	return line
}

// Missing returns the names of unavailable tools, for a fatal report when a
// command needs them.
func Missing(infos map[string]ToolInfo, names ...string) error {
	var absent []string
	for _, name := range names {
		if info, ok := infos[name]; !ok || !info.Available {
			absent = append(absent, name)
		}
	}
	if len(absent) == 0 {
		return nil
	}
	return fmt.Errorf("required tools missing: %s", strings.Join(absent, ", "))
}
